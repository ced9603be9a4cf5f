package resume

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"funnelfit/portal-backend/internal/onboarding"
)

// MockKVStore is a mock implementation of the KVStore interface
type MockKVStore struct {
	mock.Mock
}

func (m *MockKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockKVStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKVStore) Clear(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func TestTracker_SaveLoadClear(t *testing.T) {
	store := NewMemoryStore()
	tracker := NewTracker(store, zap.NewNop())
	ctx := context.Background()

	marker, err := tracker.Load(ctx, "client-1")
	require.NoError(t, err)
	assert.Nil(t, marker)

	require.NoError(t, tracker.TrackPage(ctx, "client-1", onboarding.PageOnboarding, "sme", "alex@example.com"))

	marker, err = tracker.Load(ctx, "client-1")
	require.NoError(t, err)
	require.NotNil(t, marker)
	assert.Equal(t, Marker{CurrentPage: "onboarding", AccountType: "sme", UserEmail: "alex@example.com"}, *marker)

	// Other clients are isolated
	other, err := tracker.Load(ctx, "client-2")
	require.NoError(t, err)
	assert.Nil(t, other)

	value, ok, err := store.Get(ctx, "client-1:"+KeyAccountType)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sme", value)

	require.NoError(t, tracker.Clear(ctx, "client-1"))
	marker, err = tracker.Load(ctx, "client-1")
	require.NoError(t, err)
	assert.Nil(t, marker)
}

func TestTracker_UnscopedKeys(t *testing.T) {
	store := NewMemoryStore()
	tracker := NewTracker(store, nil)

	require.NoError(t, tracker.TrackPage(context.Background(), "", "onboarding", "cfo", ""))
	value, ok, err := store.Get(context.Background(), KeyCurrentPage)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "onboarding", value)
}

func TestTracker_SaveError(t *testing.T) {
	store := new(MockKVStore)
	store.On("Set", mock.Anything, "c:"+KeyCurrentPage, "success").Return(errors.New("disk full"))

	err := NewTracker(store, nil).Save(context.Background(), "c", Marker{CurrentPage: "success"})
	assert.ErrorContains(t, err, KeyCurrentPage)
	store.AssertNumberOfCalls(t, "Set", 1)
}

func TestTracker_LoadError(t *testing.T) {
	store := new(MockKVStore)
	store.On("Get", mock.Anything, "c:"+KeyCurrentPage).Return("", false, errors.New("timeout"))

	_, err := NewTracker(store, nil).Load(context.Background(), "c")
	assert.Error(t, err)
}

func TestTracker_ClearNamespacesKeys(t *testing.T) {
	store := new(MockKVStore)
	store.On("Clear", mock.Anything, []string{"c:" + KeyCurrentPage, "c:" + KeyAccountType, "c:" + KeyUserEmail}).Return(nil).Once()

	require.NoError(t, NewTracker(store, nil).Clear(context.Background(), "c"))
	store.AssertExpectations(t)
}

func TestCompletionRecorder(t *testing.T) {
	store := NewMemoryStore()
	tracker := NewTracker(store, zap.NewNop())
	recorder := NewCompletionRecorder(tracker)

	var _ onboarding.CompletionHandler = recorder

	err := recorder.OnWizardCompleted(context.Background(), onboarding.WizardCompleted{
		Owner: onboarding.Owner{
			SessionID: uuid.New(),
			Role:      onboarding.RoleCFO,
			Email:     "dana@example.com",
			ClientID:  "browser-7",
		},
		Form:        onboarding.NewFormState(),
		CompletedAt: time.Now(),
	})
	require.NoError(t, err)

	ctx := context.Background()
	for key, want := range map[string]string{
		KeyCurrentPage: "success",
		KeyAccountType: "cfo",
		KeyUserEmail:   "dana@example.com",
	} {
		got, ok, err := store.Get(ctx, "browser-7:"+key)
		require.NoError(t, err)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
}

func TestCompletionRecorder_SkipsSessionsWithoutClient(t *testing.T) {
	store := new(MockKVStore)
	recorder := NewCompletionRecorder(NewTracker(store, nil))

	for _, email := range []string{"a@x.com", "b@y.com"} {
		err := recorder.OnWizardCompleted(context.Background(), onboarding.WizardCompleted{
			Owner: onboarding.Owner{SessionID: uuid.New(), Role: onboarding.RoleSME, Email: email},
			Form:  onboarding.NewFormState(),
		})
		require.NoError(t, err)
	}

	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}
