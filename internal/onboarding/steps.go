package onboarding

import (
	"fmt"
	"strings"
)

// Role identifies which onboarding flow a user walks through
type Role string

const (
	RoleSME Role = "sme"
	RoleCFO Role = "cfo"
)

// ParseRole converts an account type string into a Role
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleSME:
		return RoleSME, nil
	case RoleCFO:
		return RoleCFO, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// StepID identifies a single wizard screen
type StepID string

const (
	// SME flow
	StepCompanyInfo    StepID = "company-info"
	StepContactPerson  StepID = "contact-person"
	StepFinancialGoals StepID = "financial-goals"
	StepCommunication  StepID = "communication"
	StepCFONeeds       StepID = "cfo-needs"

	// CFO flow
	StepProfessionalBackground StepID = "professional-background"
	StepAreasOfExpertise       StepID = "areas-of-expertise"
	StepExperienceLevel        StepID = "experience-level"
	StepAvailability           StepID = "availability"
	StepWorkExpectations       StepID = "work-expectations"
)

// Step is one screen of the wizard. Its ordinal is its position in the role's list.
type Step struct {
	ID       StepID `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// StepStatus is the progress-indicator state of a step
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepActive    StepStatus = "active"
	StepCompleted StepStatus = "completed"
)

var smeSteps = [...]Step{
	{ID: StepCompanyInfo, Title: "Company Information", Subtitle: "Tell us about your business"},
	{ID: StepContactPerson, Title: "Contact Person", Subtitle: "Who should your CFO work with?"},
	{ID: StepFinancialGoals, Title: "Financial Goals", Subtitle: "What challenges are you facing?"},
	{ID: StepCommunication, Title: "Communication", Subtitle: "How do you prefer to stay in touch?"},
	{ID: StepCFONeeds, Title: "CFO Needs", Subtitle: "What kind of support are you looking for?"},
}

var cfoSteps = [...]Step{
	{ID: StepProfessionalBackground, Title: "Professional Background", Subtitle: "Your education and certifications"},
	{ID: StepAreasOfExpertise, Title: "Areas of Expertise", Subtitle: "Where do you add the most value?"},
	{ID: StepExperienceLevel, Title: "Experience Level", Subtitle: "Companies and industries you have served"},
	{ID: StepAvailability, Title: "Availability", Subtitle: "How much time can you commit?"},
	{ID: StepWorkExpectations, Title: "Work Expectations", Subtitle: "Engagement model and rates"},
}

// StepsFor returns a copy of the ordered step list for a role
func StepsFor(role Role) []Step {
	switch role {
	case RoleSME:
		return append([]Step(nil), smeSteps[:]...)
	case RoleCFO:
		return append([]Step(nil), cfoSteps[:]...)
	default:
		return nil
	}
}
