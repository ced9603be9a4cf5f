package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := cmd.Execute()
	return out.String(), err
}

func writeForm(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestStepsCommand(t *testing.T) {
	out, err := execute(t, "steps", "--role", "sme")
	require.NoError(t, err)
	assert.Contains(t, out, "company-info")
	assert.Contains(t, out, "cfo-needs")
	assert.NotContains(t, out, "professional-background")

	_, err = execute(t, "steps", "--role", "investor")
	assert.Error(t, err)
}

func TestValidateCommand_YAML(t *testing.T) {
	path := writeForm(t, "answers.yaml", `
firstName: Dana
lastName: Lee
education: MBA
linkedinUrl: https://linkedin.com/in/dana
resume: cv.pdf
certifications: [CPA, Other]
certificationFiles:
  CPA:
    name: cpa.pdf
    size: 2048
`)

	out, err := execute(t, "validate", "--role", "cfo", "--step", "professional-background", "--form", path)
	assert.ErrorIs(t, err, errInvalidForm)
	assert.Contains(t, out, "Certificate upload for Other")
	assert.Contains(t, out, "Custom certification name")
	assert.NotContains(t, out, "Resume")
}

func TestValidateCommand_JSON(t *testing.T) {
	path := writeForm(t, "answers.json", `{
		"financialChallenges": ["Cash flow"],
		"communicationMethods": ["Email"],
		"engagementDuration": "3-6 months",
		"supportAreas": ["Budgeting"]
	}`)

	out, err := execute(t, "validate", "--role", "sme", "--step", "financial-goals", "--form", path, "--json")
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, true, results[0]["valid"])

	out, err = execute(t, "validate", "--role", "sme", "--form", path)
	assert.ErrorIs(t, err, errInvalidForm)
	assert.Contains(t, out, "Legal Company Name")
	assert.Contains(t, out, "cfo-needs")
}

func TestValidateCommand_UnknownStep(t *testing.T) {
	path := writeForm(t, "answers.json", `{}`)

	_, err := execute(t, "validate", "--role", "sme", "--step", "availability", "--form", path)
	assert.Error(t, err)
}
