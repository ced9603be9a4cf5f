package onboarding

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownRole      = errors.New("unknown role")
	ErrUnknownField     = errors.New("unknown field")
	ErrSlotNotFound     = errors.New("no upload slot for key")
	ErrEmptyItem        = errors.New("empty set item")
	ErrSessionNotFound  = errors.New("session not found")
	ErrWizardCompleted  = errors.New("onboarding already completed")
	ErrSessionAbandoned = errors.New("onboarding session abandoned")
)

// FieldKindError is returned when a field is accessed as the wrong kind
type FieldKindError struct {
	Field Field
	Want  FieldKind
	Got   FieldKind
}

func (e *FieldKindError) Error() string {
	return fmt.Sprintf("field %q is a %s field, not %s", e.Field, e.Got, e.Want)
}

// ValidationFailure carries the requirements a step is still missing
type ValidationFailure struct {
	Step          StepID
	MissingFields []string
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("step %s is incomplete, please provide: %s", e.Step, strings.Join(e.MissingFields, ", "))
}
