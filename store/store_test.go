package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/quiz-client/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockStorage is a mock implementation of Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStorage) SetItem(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStorage) RemoveItem(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func newTestStore(t *testing.T) (*Store, *MemoryStorage) {
	t.Helper()
	mem := NewMemoryStorage()
	return New(mem, zap.NewNop()), mem
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		identity models.Identity
	}{
		{name: "admin", identity: models.Identity{Username: "root", Roles: models.ParseRoleSet("admin", "user")}},
		{name: "user", identity: models.Identity{Username: "alice", Roles: models.ParseRoleSet("user")}},
		{name: "no roles", identity: models.Identity{Username: "guest"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			s.Save(ctx, "token-"+tt.name, tt.identity)

			got := s.Load(ctx)
			require.True(t, got.Present())
			assert.Equal(t, "token-"+tt.name, got.Token)
			assert.Equal(t, tt.identity, got.Identity)
			assert.NoError(t, got.Err)
		})
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	s.Save(ctx, "first", models.Identity{Username: "alice"})
	s.Save(ctx, "second", models.Identity{Username: "bob", Roles: models.ParseRoleSet("admin")})

	got := s.Load(ctx)
	require.True(t, got.Present())
	assert.Equal(t, "second", got.Token)
	assert.Equal(t, "bob", got.Identity.Username)
	assert.True(t, got.Identity.IsAdmin())
}

func TestStore_LoadAbsent(t *testing.T) {
	s, _ := newTestStore(t)

	got := s.Load(context.Background())
	assert.Equal(t, StatusAbsent, got.Status)
	assert.False(t, got.Present())
	assert.Empty(t, got.Token)
}

func TestStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		items   map[string]string
		wantErr error
	}{
		{
			name:    "token without identity",
			items:   map[string]string{TokenKey: "abc"},
			wantErr: ErrPartialRecord,
		},
		{
			name:    "identity without token",
			items:   map[string]string{UserKey: `{"username":"alice","roles":[]}`},
			wantErr: ErrPartialRecord,
		},
		{
			name:    "empty token",
			items:   map[string]string{TokenKey: "  ", UserKey: `{"username":"alice","roles":[]}`},
			wantErr: ErrEmptyToken,
		},
		{
			name:  "identity not json",
			items: map[string]string{TokenKey: "abc", UserKey: "{not json"},
		},
		{
			name:  "identity null",
			items: map[string]string{TokenKey: "abc", UserKey: "null"},
		},
		{
			name:  "identity without username",
			items: map[string]string{TokenKey: "abc", UserKey: `{"roles":["admin"]}`},
		},
		{
			name:  "roles wrong type",
			items: map[string]string{TokenKey: "abc", UserKey: `{"username":"alice","roles":{"admin":true}}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, mem := newTestStore(t)
			for k, v := range tt.items {
				require.NoError(t, mem.SetItem(ctx, k, v))
			}

			got := s.Load(ctx)
			assert.Equal(t, StatusCorrupt, got.Status)
			assert.False(t, got.Present())
			assert.Empty(t, got.Token)
			assert.Equal(t, models.Identity{}, got.Identity)
			require.Error(t, got.Err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, got.Err, tt.wantErr)
			}

			// Load leaves the medium untouched
			assert.Equal(t, len(tt.items), mem.Len())
		})
	}
}

func TestStore_LoadStorageError(t *testing.T) {
	ctx := context.Background()
	storage := new(MockStorage)
	storage.On("GetItem", ctx, TokenKey).Return("", false, errors.New("disk on fire"))

	got := New(storage, zap.NewNop()).Load(ctx)

	assert.Equal(t, StatusCorrupt, got.Status)
	assert.ErrorContains(t, got.Err, "disk on fire")
	storage.AssertExpectations(t)
}

func TestStore_SaveFailureIsLoggedNotReturned(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)

	storage := new(MockStorage)
	storage.On("SetItem", ctx, TokenKey, "abc").Return(errors.New("quota exceeded"))
	storage.On("RemoveItem", ctx, TokenKey).Return(nil)
	storage.On("RemoveItem", ctx, UserKey).Return(nil)

	New(storage, zap.New(core)).Save(ctx, "abc", models.Identity{Username: "alice"})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to persist token", logs.All()[0].Message)
	storage.AssertExpectations(t)
	storage.AssertNotCalled(t, "SetItem", ctx, UserKey, mock.Anything)
}

// failingKeyStorage rejects writes to one key and delegates the rest
type failingKeyStorage struct {
	*MemoryStorage
	key string
}

func (f *failingKeyStorage) SetItem(ctx context.Context, key, value string) error {
	if key == f.key {
		return errors.New("write rejected")
	}
	return f.MemoryStorage.SetItem(ctx, key, value)
}

func TestStore_FailedSaveNeverMixesIdentities(t *testing.T) {
	alice := models.Identity{Username: "alice", Roles: models.NewRoleSet(models.RoleAdmin)}
	bob := models.Identity{Username: "bob", Roles: models.NewRoleSet(models.RoleUser)}

	for _, key := range []string{TokenKey, UserKey} {
		t.Run(key, func(t *testing.T) {
			ctx := context.Background()
			mem := NewMemoryStorage()

			New(mem, zap.NewNop()).Save(ctx, "alice-token", alice)

			s := New(&failingKeyStorage{MemoryStorage: mem, key: key}, zap.NewNop())
			s.Save(ctx, "bob-token", bob)

			got := s.Load(ctx)
			assert.Equal(t, StatusAbsent, got.Status)
			assert.False(t, s.HasToken(ctx))
			assert.Equal(t, 0, mem.Len())
		})
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	require.NoError(t, mem.SetItem(ctx, "unrelated", "keep"))

	s.Save(ctx, "abc", models.Identity{Username: "alice"})
	require.True(t, s.Load(ctx).Present())

	s.Clear(ctx)
	assert.Equal(t, StatusAbsent, s.Load(ctx).Status)
	assert.False(t, s.HasToken(ctx))

	// second clear is a no-op
	s.Clear(ctx)
	assert.Equal(t, StatusAbsent, s.Load(ctx).Status)

	v, ok, err := mem.GetItem(ctx, "unrelated")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "keep", v)
}

func TestStore_ClearRemovesCorruptRecord(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	require.NoError(t, mem.SetItem(ctx, TokenKey, "abc"))

	s.Clear(ctx)
	assert.Equal(t, 0, mem.Len())
}

func TestStore_HasToken(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		s, _ := newTestStore(t)
		assert.False(t, s.HasToken(ctx))
	})

	t.Run("token only still counts", func(t *testing.T) {
		s, mem := newTestStore(t)
		require.NoError(t, mem.SetItem(ctx, TokenKey, "abc"))
		assert.True(t, s.HasToken(ctx))
	})

	t.Run("blank token", func(t *testing.T) {
		s, mem := newTestStore(t)
		require.NoError(t, mem.SetItem(ctx, TokenKey, ""))
		assert.False(t, s.HasToken(ctx))
	})

	t.Run("storage error", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("GetItem", ctx, TokenKey).Return("", false, errors.New("boom"))
		assert.False(t, New(storage, zap.NewNop()).HasToken(ctx))
	})
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "absent", StatusAbsent.String())
	assert.Equal(t, "present", StatusPresent.String())
	assert.Equal(t, "corrupt", StatusCorrupt.String())
}
