package onboarding

import "fmt"

// StepSequencer holds the ordered step list for a role and the pointer to the active step
type StepSequencer struct {
	steps []Step
	index int
}

// StepProgress is the progress-indicator entry for a single step
type StepProgress struct {
	Step
	Order  int        `json:"order"`
	Status StepStatus `json:"status"`
}

// Progress represents the overall onboarding progress
type Progress struct {
	CurrentStep     StepID         `json:"current_step"`
	CurrentIndex    int            `json:"current_index"`
	TotalSteps      int            `json:"total_steps"`
	PercentComplete float64        `json:"percent_complete"`
	Steps           []StepProgress `json:"steps"`
}

// NewStepSequencer creates a sequencer positioned on the first step of the role's flow
func NewStepSequencer(role Role) (*StepSequencer, error) {
	steps := StepsFor(role)
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return &StepSequencer{steps: steps}, nil
}

// CurrentStep returns the step at the current index
func (s *StepSequencer) CurrentStep() Step {
	return s.steps[s.index]
}

// Index returns the ordinal of the current step
func (s *StepSequencer) Index() int {
	return s.index
}

// Steps returns a copy of the step list
func (s *StepSequencer) Steps() []Step {
	return append([]Step(nil), s.steps...)
}

// IsLast reports whether the current step is the final one
func (s *StepSequencer) IsLast() bool {
	return s.index == len(s.steps)-1
}

// StatusOf reports the display status of a step relative to the current one.
// Unknown ids are reported as pending.
func (s *StepSequencer) StatusOf(id StepID) StepStatus {
	for i, step := range s.steps {
		if step.ID != id {
			continue
		}
		switch {
		case i < s.index:
			return StepCompleted
		case i == s.index:
			return StepActive
		default:
			return StepPending
		}
	}
	return StepPending
}

// Advance moves to the next step. On the last step it returns false (terminal) and does not move.
// Callers only advance after the current step validated.
func (s *StepSequencer) Advance() (Step, bool) {
	if s.IsLast() {
		return s.CurrentStep(), false
	}
	s.index++
	return s.CurrentStep(), true
}

// Retreat moves to the previous step. On the first step it is a no-op and returns false.
func (s *StepSequencer) Retreat() (Step, bool) {
	if s.index == 0 {
		return s.CurrentStep(), false
	}
	s.index--
	return s.CurrentStep(), true
}

// Seek positions the sequencer on an explicit index
func (s *StepSequencer) Seek(index int) error {
	if index < 0 || index >= len(s.steps) {
		return fmt.Errorf("step index %d out of range [0,%d)", index, len(s.steps))
	}
	s.index = index
	return nil
}

// Progress builds the progress indicator view
func (s *StepSequencer) Progress() Progress {
	steps := make([]StepProgress, len(s.steps))
	for i, step := range s.steps {
		steps[i] = StepProgress{
			Step:   step,
			Order:  i + 1,
			Status: s.StatusOf(step.ID),
		}
	}

	return Progress{
		CurrentStep:     s.CurrentStep().ID,
		CurrentIndex:    s.index,
		TotalSteps:      len(s.steps),
		PercentComplete: float64(s.index) / float64(len(s.steps)) * 100,
		Steps:           steps,
	}
}
