package onboarding

import (
	"fmt"
	"strings"
)

// ValidationResult is the outcome of checking one step against the form
type ValidationResult struct {
	Step          StepID   `json:"step"`
	Valid         bool     `json:"valid"`
	MissingFields []string `json:"missing_fields"`
}

// Err returns the result as a *ValidationFailure, or nil when valid
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationFailure{
		Step:          r.Step,
		MissingFields: append([]string(nil), r.MissingFields...),
	}
}

// addMissing records a failed requirement
func (r *ValidationResult) addMissing(label string) {
	r.MissingFields = append(r.MissingFields, label)
	r.Valid = false
}

type requirement struct {
	field Field
	label string
}

type stepRule func(form *FormState, result *ValidationResult)

var stepRules = map[StepID]stepRule{
	StepCompanyInfo: requireScalars(
		requirement{FieldLegalCompanyName, "Legal Company Name"},
		requirement{FieldStreetAddress, "Street Address"},
		requirement{FieldCity, "City"},
		requirement{FieldState, "State"},
		requirement{FieldZipCode, "ZIP Code"},
		requirement{FieldCountry, "Country"},
		requirement{FieldIndustry, "Industry"},
		requirement{FieldAnnualRevenue, "Annual Revenue"},
		requirement{FieldEmployeeCount, "Number of Employees"},
		requirement{FieldYearsInBusiness, "Years in Business"},
	),
	StepContactPerson: requireScalars(
		requirement{FieldFirstName, "First Name"},
		requirement{FieldLastName, "Last Name"},
		requirement{FieldJobTitle, "Job Title"},
	),
	StepFinancialGoals: requireSets(
		requirement{FieldFinancialChallenges, "At least one financial challenge"},
	),
	StepCommunication: requireSets(
		requirement{FieldCommunicationMethods, "At least one communication method"},
	),
	StepCFONeeds: all(
		requireScalars(requirement{FieldEngagementDuration, "Engagement Duration"}),
		requireSets(requirement{FieldSupportAreas, "At least one support area"}),
	),
	StepProfessionalBackground: validateProfessionalBackground,
	StepAreasOfExpertise: requireSets(
		requirement{FieldAreasOfExpertise, "At least one area of expertise"},
	),
	StepExperienceLevel: all(
		requireScalars(
			requirement{FieldExperienceLevel, "Experience Level"},
			requirement{FieldCompanySize, "Company Size"},
		),
		requireSets(requirement{FieldIndustriesWorked, "At least one industry"}),
	),
	StepAvailability: requireScalars(
		requirement{FieldAvailability, "Availability"},
		requirement{FieldEngagementLength, "Engagement Length"},
	),
	StepWorkExpectations: requireScalars(
		requirement{FieldEngagementModel, "Engagement Model"},
		requirement{FieldRateExpectations, "Rate Expectations"},
	),
}

// Validate checks the required fields of a step against the form.
// It only reads the form. Steps without rules are always valid.
func Validate(step StepID, form *FormState) ValidationResult {
	result := ValidationResult{Step: step, Valid: true, MissingFields: []string{}}
	if rule, ok := stepRules[step]; ok {
		rule(form, &result)
	}
	return result
}

func requireScalars(reqs ...requirement) stepRule {
	return func(form *FormState, result *ValidationResult) {
		for _, req := range reqs {
			if blank(form.Scalar(req.field)) {
				result.addMissing(req.label)
			}
		}
	}
}

func requireSets(reqs ...requirement) stepRule {
	return func(form *FormState, result *ValidationResult) {
		for _, req := range reqs {
			if len(form.Members(req.field)) == 0 {
				result.addMissing(req.label)
			}
		}
	}
}

func all(rules ...stepRule) stepRule {
	return func(form *FormState, result *ValidationResult) {
		for _, rule := range rules {
			rule(form, result)
		}
	}
}

func validateProfessionalBackground(form *FormState, result *ValidationResult) {
	requireScalars(
		requirement{FieldFirstName, "First Name"},
		requirement{FieldLastName, "Last Name"},
		requirement{FieldEducation, "Education"},
	)(form, result)

	if form.File(FieldResume) == nil {
		result.addMissing("Resume")
	}
	if blank(form.Scalar(FieldLinkedInURL)) {
		result.addMissing("LinkedIn Profile URL")
	}

	certs := form.Members(FieldCertifications)
	if len(certs) == 0 {
		result.addMissing("At least one certification")
	}
	for _, cert := range certs {
		if ref, _ := form.KeyedFile(FieldCertificationFiles, cert); ref == nil {
			result.addMissing(fmt.Sprintf("Certificate upload for %s", cert))
		}
	}

	if form.HasMember(FieldCertifications, CertificationOther) && blank(form.Scalar(FieldCustomCertificationName)) {
		result.addMissing("Custom certification name")
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
