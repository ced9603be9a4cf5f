package resume

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"funnelfit/portal-backend/internal/onboarding"
)

// Tracker reads and writes the session marker of each client
type Tracker struct {
	store  KVStore
	logger *zap.Logger
}

// NewTracker creates a tracker over a key-value store
func NewTracker(store KVStore, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: store, logger: logger}
}

// namespaced scopes a storage key to one client, standing in for that client's local storage
func namespaced(clientID, key string) string {
	if clientID == "" {
		return key
	}
	return clientID + ":" + key
}

// Save writes all three marker keys
func (t *Tracker) Save(ctx context.Context, clientID string, marker Marker) error {
	values := []struct {
		key   string
		value string
	}{
		{KeyCurrentPage, marker.CurrentPage},
		{KeyAccountType, marker.AccountType},
		{KeyUserEmail, marker.UserEmail},
	}
	for _, kv := range values {
		if err := t.store.Set(ctx, namespaced(clientID, kv.key), kv.value); err != nil {
			return fmt.Errorf("failed to store %s: %w", kv.key, err)
		}
	}
	return nil
}

// TrackPage records the page a client is on
func (t *Tracker) TrackPage(ctx context.Context, clientID, page, accountType, email string) error {
	return t.Save(ctx, clientID, Marker{
		CurrentPage: page,
		AccountType: accountType,
		UserEmail:   email,
	})
}

// Load returns the stored marker, or nil when the client has none
func (t *Tracker) Load(ctx context.Context, clientID string) (*Marker, error) {
	page, ok, err := t.store.Get(ctx, namespaced(clientID, KeyCurrentPage))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", KeyCurrentPage, err)
	}
	if !ok {
		return nil, nil
	}

	marker := &Marker{CurrentPage: page}
	if marker.AccountType, _, err = t.store.Get(ctx, namespaced(clientID, KeyAccountType)); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", KeyAccountType, err)
	}
	if marker.UserEmail, _, err = t.store.Get(ctx, namespaced(clientID, KeyUserEmail)); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", KeyUserEmail, err)
	}
	return marker, nil
}

// Clear removes the marker, as on sign out
func (t *Tracker) Clear(ctx context.Context, clientID string) error {
	return t.store.Clear(ctx,
		namespaced(clientID, KeyCurrentPage),
		namespaced(clientID, KeyAccountType),
		namespaced(clientID, KeyUserEmail),
	)
}

// CompletionRecorder persists the marker for a finished wizard so a reload lands on the success page
type CompletionRecorder struct {
	tracker *Tracker
}

// NewCompletionRecorder creates the completion collaborator of the wizard
func NewCompletionRecorder(tracker *Tracker) *CompletionRecorder {
	return &CompletionRecorder{tracker: tracker}
}

// OnWizardCompleted implements onboarding.CompletionHandler
// Sessions without a client id have nowhere to resume from, so nothing is stored.
func (r *CompletionRecorder) OnWizardCompleted(ctx context.Context, event onboarding.WizardCompleted) error {
	if event.ClientID == "" {
		r.tracker.logger.Debug("Skipping completion marker for session without client id",
			zap.String("session_id", event.SessionID.String()))
		return nil
	}

	err := r.tracker.Save(ctx, event.ClientID, Marker{
		CurrentPage: onboarding.PageSuccess,
		AccountType: string(event.Role),
		UserEmail:   event.Email,
	})
	if err != nil {
		return err
	}

	r.tracker.logger.Info("Stored onboarding completion marker",
		zap.String("session_id", event.SessionID.String()),
		zap.String("client_id", event.ClientID),
		zap.String("account_type", string(event.Role)))
	return nil
}
