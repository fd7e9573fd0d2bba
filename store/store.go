// Package store mirrors the session credential into durable storage so it
// survives process restarts.
//
// Two fixed keys are used: TokenKey holds the raw bearer token and UserKey
// holds the JSON identity record. Both are written together by Save and
// removed together by Clear. Load never fails: a missing, partial or
// malformed pair is reported through Result.Status and callers treat
// anything but StatusPresent as "no session".
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/upb/quiz-client/models"
	"github.com/upb/quiz-client/utils"
	"go.uber.org/zap"
)

const (
	TokenKey = "authToken"
	UserKey  = "authUser"
)

// Status tags the outcome of Load
type Status int

const (
	StatusAbsent Status = iota
	StatusPresent
	StatusCorrupt
)

func (s Status) String() string {
	switch s {
	case StatusPresent:
		return "present"
	case StatusCorrupt:
		return "corrupt"
	default:
		return "absent"
	}
}

var (
	ErrPartialRecord = errors.New("only one of token and identity is stored")
	ErrEmptyToken    = errors.New("stored token is empty")
)

// Result is what Load found. Token and Identity are set only when Status
// is StatusPresent; Err explains a StatusCorrupt result.
type Result struct {
	Status   Status
	Token    string
	Identity models.Identity
	Err      error
}

// Present reports whether a usable pair was loaded
func (r Result) Present() bool {
	return r.Status == StatusPresent
}

// Store is the persistent credential store
type Store struct {
	storage Storage
	logger  *zap.Logger
}

// New creates a credential store over the given storage medium
func New(storage Storage, logger *zap.Logger) *Store {
	return &Store{
		storage: storage,
		logger:  logger,
	}
}

// Save writes both keys, overwriting prior values. Failures are logged and
// swallowed; in-memory session state does not depend on the write. A
// failed write removes both keys so a new token is never left paired with
// an earlier identity, nor the earlier pair left to be restored.
func (s *Store) Save(ctx context.Context, token string, identity models.Identity) {
	data, err := json.Marshal(identity)
	if err != nil {
		s.logger.Warn("failed to encode identity for storage", zap.Error(err))
		s.Clear(ctx)
		return
	}

	if err := s.storage.SetItem(ctx, TokenKey, token); err != nil {
		s.logger.Warn("failed to persist token", zap.Error(err))
		s.Clear(ctx)
		return
	}
	if err := s.storage.SetItem(ctx, UserKey, string(data)); err != nil {
		s.logger.Warn("failed to persist identity", zap.Error(err))
		s.Clear(ctx)
	}
}

// Load returns the mirrored pair if both keys hold well-formed values
func (s *Store) Load(ctx context.Context) Result {
	token, hasToken, err := s.storage.GetItem(ctx, TokenKey)
	if err != nil {
		return s.corrupt(fmt.Errorf("failed to read token: %w", err))
	}
	raw, hasUser, err := s.storage.GetItem(ctx, UserKey)
	if err != nil {
		return s.corrupt(fmt.Errorf("failed to read identity: %w", err))
	}

	switch {
	case !hasToken && !hasUser:
		return Result{Status: StatusAbsent}
	case hasToken != hasUser:
		return s.corrupt(ErrPartialRecord)
	case strings.TrimSpace(token) == "":
		return s.corrupt(ErrEmptyToken)
	}

	var identity models.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return s.corrupt(fmt.Errorf("failed to decode identity: %w", err))
	}
	if err := utils.ValidateStruct(identity); err != nil {
		return s.corrupt(fmt.Errorf("invalid identity record: %w", err))
	}

	return Result{
		Status:   StatusPresent,
		Token:    token,
		Identity: identity,
	}
}

// HasToken reports whether a non-empty token is stored, without looking at
// the identity record.
func (s *Store) HasToken(ctx context.Context) bool {
	token, ok, err := s.storage.GetItem(ctx, TokenKey)
	if err != nil {
		s.logger.Debug("token probe failed", zap.Error(err))
		return false
	}
	return ok && strings.TrimSpace(token) != ""
}

// Clear removes both keys. Safe to call repeatedly.
func (s *Store) Clear(ctx context.Context) {
	for _, key := range []string{TokenKey, UserKey} {
		if err := s.storage.RemoveItem(ctx, key); err != nil {
			s.logger.Warn("failed to remove stored credential",
				zap.String("key", key),
				zap.Error(err))
		}
	}
}

func (s *Store) corrupt(err error) Result {
	s.logger.Warn("stored session ignored", zap.Error(err))
	return Result{Status: StatusCorrupt, Err: err}
}
