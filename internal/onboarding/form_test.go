package onboarding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormState_ScalarKinds(t *testing.T) {
	form := NewFormState()

	require.NoError(t, form.SetScalar(FieldCity, "Austin"))
	assert.Equal(t, "Austin", form.Scalar(FieldCity))
	assert.Equal(t, "", form.Scalar(FieldState))

	err := form.SetScalar(FieldCertifications, "CPA")
	var kindErr *FieldKindError
	require.ErrorAs(t, err, &kindErr)
	assert.Equal(t, KindSet, kindErr.Got)

	assert.ErrorIs(t, form.SetScalar(Field("favoriteColor"), "blue"), ErrUnknownField)
}

func TestFormState_SetMemberIsIdempotent(t *testing.T) {
	form := NewFormState()

	require.NoError(t, form.AddCertification("CPA"))
	ref := NewFileRef("cpa.pdf", 1024, "application/pdf")
	require.NoError(t, form.SetKeyedFile(FieldCertificationFiles, "CPA", ref))

	// Checking an already checked box keeps its upload
	require.NoError(t, form.AddCertification("CPA"))
	got, ok := form.KeyedFile(FieldCertificationFiles, "CPA")
	assert.True(t, ok)
	assert.Equal(t, ref, got)
	assert.Equal(t, []string{"CPA"}, form.Members(FieldCertifications))
}

func TestFormState_UncheckRemovesUploadSlot(t *testing.T) {
	form := NewFormState()

	require.NoError(t, form.AddCertification("CPA"))
	require.NoError(t, form.AddCertification(CertificationOther))
	require.NoError(t, form.SetKeyedFile(FieldCertificationFiles, CertificationOther, NewFileRef("other.pdf", 10, "")))

	require.NoError(t, form.RemoveCertification(CertificationOther))

	assert.False(t, form.HasMember(FieldCertifications, CertificationOther))
	_, ok := form.KeyedFile(FieldCertificationFiles, CertificationOther)
	assert.False(t, ok)
	assert.Len(t, form.KeyedFiles(FieldCertificationFiles), 1)

	// Unchecking twice is harmless
	assert.NoError(t, form.RemoveCertification(CertificationOther))
}

func TestFormState_RecheckStartsWithEmptySlot(t *testing.T) {
	form := professionalBackgroundForm(t)

	require.NoError(t, form.AddCertification("CPA"))
	require.NoError(t, form.SetKeyedFile(FieldCertificationFiles, "CPA", NewFileRef("cpa.pdf", 10, "")))
	require.True(t, Validate(StepProfessionalBackground, form).Valid)

	require.NoError(t, form.RemoveCertification("CPA"))
	require.NoError(t, form.AddCertification("CPA"))

	ref, ok := form.KeyedFile(FieldCertificationFiles, "CPA")
	assert.True(t, ok)
	assert.Nil(t, ref)

	result := Validate(StepProfessionalBackground, form)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"Certificate upload for CPA"}, result.MissingFields)
}

func TestFormState_SetMemberRejectsEmptyItem(t *testing.T) {
	form := NewFormState()
	assert.ErrorIs(t, form.SetMember(FieldSupportAreas, "  ", true), ErrEmptyItem)
}

func TestFormState_KeyedFileNeedsSlot(t *testing.T) {
	form := NewFormState()

	err := form.SetKeyedFile(FieldCertificationFiles, "CFA", NewFileRef("cfa.pdf", 1, ""))
	assert.ErrorIs(t, err, ErrSlotNotFound)

	require.NoError(t, form.AddCertification("CFA"))
	require.NoError(t, form.SetKeyedFile(FieldCertificationFiles, "CFA", NewFileRef("cfa.pdf", 1, "")))
	require.NoError(t, form.SetKeyedFile(FieldCertificationFiles, "CFA", nil))

	ref, ok := form.KeyedFile(FieldCertificationFiles, "CFA")
	assert.True(t, ok)
	assert.Nil(t, ref)
}

func TestFormState_SetFile(t *testing.T) {
	form := NewFormState()

	require.NoError(t, form.SetFile(FieldResume, NewFileRef("cv.pdf", 2048, "application/pdf")))
	require.NotNil(t, form.File(FieldResume))
	assert.Equal(t, "cv.pdf", form.File(FieldResume).Name)

	require.NoError(t, form.SetFile(FieldResume, nil))
	assert.Nil(t, form.File(FieldResume))

	var kindErr *FieldKindError
	assert.ErrorAs(t, form.SetFile(FieldCity, nil), &kindErr)
}

func TestFormState_SnapshotIsIndependent(t *testing.T) {
	form := NewFormState()
	require.NoError(t, form.SetScalar(FieldFirstName, "Dana"))
	require.NoError(t, form.AddCertification("CPA"))
	require.NoError(t, form.SetFile(FieldResume, NewFileRef("cv.pdf", 1, "")))

	snap := form.Snapshot()
	require.NoError(t, form.SetScalar(FieldFirstName, "Sam"))
	require.NoError(t, form.RemoveCertification("CPA"))
	form.File(FieldResume).Name = "renamed.pdf"

	assert.Equal(t, "Dana", snap.Scalar(FieldFirstName))
	assert.True(t, snap.HasMember(FieldCertifications, "CPA"))
	_, ok := snap.KeyedFile(FieldCertificationFiles, "CPA")
	assert.True(t, ok)
	assert.Equal(t, "cv.pdf", snap.File(FieldResume).Name)
}

func TestFormState_JSONRoundTrip(t *testing.T) {
	form := NewFormState()
	require.NoError(t, form.SetScalar(FieldEducation, "MBA"))
	require.NoError(t, form.AddCertification("CPA"))
	require.NoError(t, form.SetKeyedFile(FieldCertificationFiles, "CPA", NewFileRef("cpa.pdf", 512, "application/pdf")))

	data, err := json.Marshal(form)
	require.NoError(t, err)

	var values map[string]any
	require.NoError(t, json.Unmarshal(data, &values))
	restored, err := FormStateFromValues(values)
	require.NoError(t, err)

	assert.Equal(t, "MBA", restored.Scalar(FieldEducation))
	assert.Equal(t, []string{"CPA"}, restored.Members(FieldCertifications))
	ref, ok := restored.KeyedFile(FieldCertificationFiles, "CPA")
	require.True(t, ok)
	require.NotNil(t, ref)
	assert.Equal(t, "cpa.pdf", ref.Name)
	assert.Equal(t, int64(512), ref.Size)
}

func TestFormStateFromValues_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{name: "unknown field", values: map[string]any{"nickname": "D"}},
		{name: "set not a list", values: map[string]any{"supportAreas": "Budgeting"}},
		{name: "file map not an object", values: map[string]any{"certifications": []any{"CPA"}, "certificationFiles": "cpa.pdf"}},
		{name: "slot without certification", values: map[string]any{"certificationFiles": map[string]any{"CPA": "cpa.pdf"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FormStateFromValues(tt.values)
			assert.Error(t, err)
		})
	}
}
