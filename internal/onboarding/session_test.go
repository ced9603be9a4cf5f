package onboarding

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelfit/portal-backend/pkg/workflows"
)

func TestManager_StartAndGet(t *testing.T) {
	m := NewManager(nil, nil)

	session, err := m.Start(RoleCFO, "dana@example.com", "client-1")
	require.NoError(t, err)

	got, err := m.Get(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)
	assert.Equal(t, 1, m.Count())

	view := got.View()
	assert.Equal(t, RoleCFO, view.Role)
	assert.Equal(t, workflows.StateInProgress, view.State)
	assert.Equal(t, StepProfessionalBackground, view.CurrentStep.ID)
	assert.Equal(t, 5, view.Progress.TotalSteps)

	_, err = m.Get(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Start(Role("investor"), "", "")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestManager_Reset(t *testing.T) {
	m := NewManager(nil, nil)
	session, err := m.Start(RoleSME, "alex@example.com", "")
	require.NoError(t, err)

	require.NoError(t, session.Edit(func(form *FormState) error {
		for field, value := range companyInfoFields() {
			if err := form.SetScalar(field, value); err != nil {
				return err
			}
		}
		return nil
	}))
	_, err = session.Continue(context.Background())
	require.NoError(t, err)

	reset, err := m.Reset(session.ID)
	require.NoError(t, err)

	assert.Equal(t, session.ID, reset.ID)
	assert.Equal(t, session.CreatedAt, reset.CreatedAt)
	view := reset.View()
	assert.Equal(t, StepCompanyInfo, view.CurrentStep.ID)
	assert.Empty(t, view.Form.Values())

	_, err = m.Reset(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_Abandon(t *testing.T) {
	m := NewManager(nil, nil)
	session, err := m.Start(RoleSME, "", "client-2")
	require.NoError(t, err)

	abandoned, err := m.Abandon(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, workflows.StateAbandoned, abandoned.State())
	assert.Equal(t, 0, m.Count())

	err = abandoned.Edit(func(form *FormState) error { return nil })
	assert.ErrorIs(t, err, ErrSessionAbandoned)

	_, err = m.Abandon(context.Background(), session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSession_EditFailureKeepsTimestamp(t *testing.T) {
	m := NewManager(nil, nil)
	session, err := m.Start(RoleSME, "", "")
	require.NoError(t, err)
	before := session.lastActivity()

	err = session.Edit(func(form *FormState) error {
		return form.SetScalar(Field("unknown"), "x")
	})
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, before, session.lastActivity())
}

func TestManager_ExpireIdle(t *testing.T) {
	m := NewManager(nil, nil)
	stale, err := m.Start(RoleSME, "", "")
	require.NoError(t, err)
	fresh, err := m.Start(RoleCFO, "", "")
	require.NoError(t, err)

	stale.mu.Lock()
	stale.UpdatedAt = time.Now().UTC().Add(-3 * time.Hour)
	stale.mu.Unlock()

	assert.Equal(t, 1, m.ExpireIdle(time.Hour))
	assert.Equal(t, 1, m.Count())

	_, err = m.Get(stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestManager_ResetKeepsSessionPointer(t *testing.T) {
	m := NewManager(nil, nil)
	held, err := m.Start(RoleCFO, "", "")
	require.NoError(t, err)
	require.NoError(t, held.Edit(func(form *FormState) error {
		return form.SetScalar(FieldEducation, "MBA")
	}))

	reset, err := m.Reset(held.ID)
	require.NoError(t, err)
	assert.Same(t, held, reset)
	assert.Empty(t, held.View().Form.Values())

	// An edit through a pointer fetched before the reset is not lost
	require.NoError(t, held.Edit(func(form *FormState) error {
		return form.SetScalar(FieldEducation, "CPA")
	}))
	current, err := m.Get(held.ID)
	require.NoError(t, err)
	assert.Equal(t, "CPA", current.View().Form.Scalar(FieldEducation))
}

func TestManager_ResetReopensCompletedSession(t *testing.T) {
	m := NewManager(nil, nil)
	session, err := m.Start(RoleCFO, "", "")
	require.NoError(t, err)
	require.NoError(t, session.sequencer.Seek(len(session.sequencer.Steps())-1))
	require.NoError(t, session.Edit(func(form *FormState) error {
		if err := form.SetScalar(FieldEngagementModel, "Retainer"); err != nil {
			return err
		}
		return form.SetScalar(FieldRateExpectations, "$150/hr")
	}))
	_, err = session.Continue(context.Background())
	require.NoError(t, err)
	require.Equal(t, workflows.StateCompleted, session.State())

	_, err = m.Reset(session.ID)
	require.NoError(t, err)
	assert.Equal(t, workflows.StateInProgress, session.State())
	assert.Equal(t, StepProfessionalBackground, session.View().CurrentStep.ID)
}

func TestManager_ExpireIdleDoesNotBlockLookups(t *testing.T) {
	m := NewManager(nil, nil)
	busy, err := m.Start(RoleSME, "", "")
	require.NoError(t, err)
	other, err := m.Start(RoleCFO, "", "")
	require.NoError(t, err)

	// Hold the session lock as a slow completion hand-off would
	busy.mu.Lock()
	swept := make(chan int)
	go func() { swept <- m.ExpireIdle(time.Hour) }()
	time.Sleep(20 * time.Millisecond)

	found := make(chan error)
	go func() {
		_, err := m.Get(other.ID)
		found <- err
	}()

	select {
	case err := <-found:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("lookup blocked behind the idle sweep")
	}

	busy.mu.Unlock()
	assert.Equal(t, 0, <-swept)
}
