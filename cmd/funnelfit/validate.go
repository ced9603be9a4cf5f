package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"funnelfit/portal-backend/internal/onboarding"
)

var errInvalidForm = errors.New("form is incomplete")

type validateOptions struct {
	role     string
	step     string
	formPath string
	asJSON   bool
}

func newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check saved answers against the step rules",
		Long: `Validate loads answers from a JSON or YAML file and reports the
required fields each step is missing. Without --step every step of the
role is checked. Exits non-zero when any step is incomplete.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.role, "role", "r", "", "Account type (sme or cfo)")
	cmd.Flags().StringVarP(&opts.step, "step", "s", "", "Step ID to check")
	cmd.Flags().StringVarP(&opts.formPath, "form", "f", "", "Answers file (.json, .yaml or .yml)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("role")
	_ = cmd.MarkFlagRequired("form")
	return cmd
}

func runValidate(cmd *cobra.Command, opts *validateOptions) error {
	role, err := onboarding.ParseRole(opts.role)
	if err != nil {
		return err
	}

	form, err := loadForm(opts.formPath)
	if err != nil {
		return err
	}

	steps := onboarding.StepsFor(role)
	if opts.step != "" {
		var found []onboarding.Step
		for _, s := range steps {
			if string(s.ID) == opts.step {
				found = append(found, s)
			}
		}
		if len(found) == 0 {
			return fmt.Errorf("step %q is not part of the %s flow", opts.step, role)
		}
		steps = found
	}

	results := make([]onboarding.ValidationResult, 0, len(steps))
	valid := true
	for _, s := range steps {
		result := onboarding.Validate(s.ID, form)
		valid = valid && result.Valid
		results = append(results, result)
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(out, "%-26s ok\n", r.Step)
				continue
			}
			fmt.Fprintf(out, "%-26s missing: %s\n", r.Step, strings.Join(r.MissingFields, ", "))
		}
	}

	if !valid {
		return errInvalidForm
	}
	return nil
}

func loadForm(path string) (*onboarding.FormState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form: %w", err)
	}

	values := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &values)
	default:
		err = json.Unmarshal(data, &values)
	}
	if err != nil {
		return nil, fmt.Errorf("parse form %s: %w", path, err)
	}

	return onboarding.FormStateFromValues(values)
}
