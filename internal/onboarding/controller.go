package onboarding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"funnelfit/portal-backend/pkg/workflows"
)

// Owner identifies who a wizard belongs to
type Owner struct {
	SessionID uuid.UUID `json:"session_id"`
	Role      Role      `json:"role"`
	Email     string    `json:"email"`
	ClientID  string    `json:"client_id,omitempty"`
}

// WizardCompleted is emitted once the last step validates
type WizardCompleted struct {
	Owner
	Form        *FormState `json:"form"`
	CompletedAt time.Time  `json:"completed_at"`
}

// CompletionHandler receives the finished form, e.g. to persist a resume marker and route on
type CompletionHandler interface {
	OnWizardCompleted(ctx context.Context, event WizardCompleted) error
}

// CompletionHandlerFunc adapts a function to CompletionHandler
type CompletionHandlerFunc func(ctx context.Context, event WizardCompleted) error

func (f CompletionHandlerFunc) OnWizardCompleted(ctx context.Context, event WizardCompleted) error {
	return f(ctx, event)
}

// Outcome describes what a Continue or Back request did
type Outcome string

const (
	OutcomeBlocked   Outcome = "blocked"
	OutcomeAdvanced  Outcome = "advanced"
	OutcomeCompleted Outcome = "completed"
	OutcomeRetreated Outcome = "retreated"
	OutcomeNoOp      Outcome = "noop"
)

// TransitionResult is returned from OnContinue and OnBack
type TransitionResult struct {
	Outcome    Outcome           `json:"outcome"`
	Step       Step              `json:"step"`
	Validation *ValidationResult `json:"validation,omitempty"`
	Completed  *WizardCompleted  `json:"completed,omitempty"`
}

// TransitionController implements the Continue/Back semantics of the wizard
type TransitionController struct {
	owner     Owner
	sequencer *StepSequencer
	form      *FormState
	lifecycle *workflows.StateMachine
	state     string
	handler   CompletionHandler
	logger    *zap.Logger
}

// NewTransitionController wires a sequencer and form store together
func NewTransitionController(
	owner Owner,
	sequencer *StepSequencer,
	form *FormState,
	handler CompletionHandler,
	logger *zap.Logger,
) *TransitionController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransitionController{
		owner:     owner,
		sequencer: sequencer,
		form:      form,
		lifecycle: workflows.NewStateMachine(),
		state:     workflows.StateInProgress,
		handler:   handler,
		logger:    logger,
	}
}

// State returns the lifecycle state of the wizard
func (c *TransitionController) State() string {
	return c.state
}

// Check validates the current step without moving
func (c *TransitionController) Check() ValidationResult {
	return Validate(c.sequencer.CurrentStep().ID, c.form.Snapshot())
}

// OnContinue validates the current step and advances. On the last step a valid form
// is handed to the completion handler and the wizard ends. A failed validation is not
// an error: the result carries the missing fields and the wizard stays put.
func (c *TransitionController) OnContinue(ctx context.Context) (*TransitionResult, error) {
	if err := c.ensureActive(); err != nil {
		return nil, err
	}

	step := c.sequencer.CurrentStep()
	snapshot := c.form.Snapshot()
	validation := Validate(step.ID, snapshot)

	if !validation.Valid {
		c.logger.Debug("Step incomplete",
			zap.String("session_id", c.owner.SessionID.String()),
			zap.String("step", string(step.ID)),
			zap.Strings("missing_fields", validation.MissingFields))
		return &TransitionResult{Outcome: OutcomeBlocked, Step: step, Validation: &validation}, nil
	}

	if next, ok := c.sequencer.Advance(); ok {
		c.logger.Debug("Step advanced",
			zap.String("session_id", c.owner.SessionID.String()),
			zap.String("from", string(step.ID)),
			zap.String("to", string(next.ID)))
		return &TransitionResult{Outcome: OutcomeAdvanced, Step: next, Validation: &validation}, nil
	}

	event := WizardCompleted{
		Owner:       c.owner,
		Form:        snapshot,
		CompletedAt: time.Now().UTC(),
	}

	if !c.lifecycle.CanTransition(c.state, workflows.StateCompleted) {
		return nil, fmt.Errorf("cannot complete onboarding from state %s", c.state)
	}

	if c.handler != nil {
		if err := c.handler.OnWizardCompleted(ctx, event); err != nil {
			return nil, fmt.Errorf("failed to hand off completed onboarding: %w", err)
		}
	}

	state, err := c.lifecycle.Fire(ctx, c.state, workflows.EventComplete)
	if err != nil {
		return nil, err
	}
	c.state = state

	c.logger.Info("Onboarding completed",
		zap.String("session_id", c.owner.SessionID.String()),
		zap.String("role", string(c.owner.Role)))

	return &TransitionResult{
		Outcome:    OutcomeCompleted,
		Step:       step,
		Validation: &validation,
		Completed:  &event,
	}, nil
}

// OnBack moves to the previous step without validating the one being left
func (c *TransitionController) OnBack() (*TransitionResult, error) {
	if err := c.ensureActive(); err != nil {
		return nil, err
	}

	step, moved := c.sequencer.Retreat()
	if !moved {
		return &TransitionResult{Outcome: OutcomeNoOp, Step: step}, nil
	}
	return &TransitionResult{Outcome: OutcomeRetreated, Step: step}, nil
}

// Abandon ends an in-progress wizard without completing it
func (c *TransitionController) Abandon(ctx context.Context) error {
	if err := c.ensureActive(); err != nil {
		return err
	}
	state, err := c.lifecycle.Fire(ctx, c.state, workflows.EventAbandon)
	if err != nil {
		return err
	}
	c.state = state
	return nil
}

func (c *TransitionController) ensureActive() error {
	switch c.state {
	case workflows.StateCompleted:
		return ErrWizardCompleted
	case workflows.StateAbandoned:
		return ErrSessionAbandoned
	default:
		return nil
	}
}
