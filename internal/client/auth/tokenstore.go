// Package auth owns the locally persisted authentication record: writing it
// after a successful login, reading it back with expiry and shape checks,
// and deleting it on logout.
package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/mediabot/internal/client/models"
	"github.com/dmitrijs2005/mediabot/internal/client/storage"
	"github.com/dmitrijs2005/mediabot/internal/client/tenant"
	"github.com/dmitrijs2005/mediabot/internal/logging"
	"github.com/dmitrijs2005/mediabot/internal/timex"
)

// StorageKey is where the current-format AuthRecord lives.
const StorageKey = "mediabot_auth_token"

// TTL is the local lifetime of a saved record.
const TTL = 7 * 24 * time.Hour

// record is the stored JSON shape; expiresAt is milliseconds since epoch.
type record struct {
	Token        string      `json:"token"`
	Email        string      `json:"email"`
	BusinessID   string      `json:"business_id"`
	BusinessName string      `json:"business_name"`
	Role         models.Role `json:"role"`
	ExpiresAt    int64       `json:"expiresAt"`
}

type TokenStore struct {
	store storage.Store
	log   logging.Logger
	now   timex.Clock
}

func NewTokenStore(store storage.Store, log logging.Logger, now timex.Clock) *TokenStore {
	return &TokenStore{store: store, log: log, now: now.Or()}
}

// Save overwrites the stored record. A nil user leaves tenant fields empty
// and the role at client; such a record will not survive Read.
func (s *TokenStore) Save(ctx context.Context, email, token string, user *models.User) error {
	rec := record{
		Token:     token,
		Email:     email,
		Role:      models.RoleClient,
		ExpiresAt: s.now().Add(TTL).UnixMilli(),
	}
	if user != nil {
		rec.BusinessID = user.BusinessID
		rec.BusinessName = user.BusinessName
		if user.Role != "" {
			rec.Role = user.Role
		}
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, StorageKey, b)
}

// Read returns the stored record. Anything that is unparsable, incomplete,
// carries an invalid tenant id, or is past its expiry is deleted and
// reported as absent.
func (s *TokenStore) Read(ctx context.Context) (models.AuthRecord, bool) {
	raw, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		s.log.Error(ctx, "error reading auth token", "error", err)
		return models.AuthRecord{}, false
	}
	if len(raw) == 0 {
		return models.AuthRecord{}, false
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.log.Error(ctx, "error reading auth token", "error", err)
		s.Clear(ctx)
		return models.AuthRecord{}, false
	}

	if s.now().UnixMilli() > rec.ExpiresAt {
		s.log.Info(ctx, "auth token expired locally", "email", rec.Email)
		s.Clear(ctx)
		return models.AuthRecord{}, false
	}

	if rec.Token == "" || rec.Email == "" || !rec.Role.Valid() || !tenant.Validate(rec.BusinessID) {
		s.log.Warn(ctx, "incomplete auth record discarded", "email", rec.Email, "business_id", rec.BusinessID)
		s.Clear(ctx)
		return models.AuthRecord{}, false
	}

	return models.AuthRecord{
		Token:      rec.Token,
		Email:      rec.Email,
		TenantID:   rec.BusinessID,
		TenantName: rec.BusinessName,
		Role:       rec.Role,
		ExpiresAt:  time.UnixMilli(rec.ExpiresAt),
	}, true
}

// Clear deletes the record. Storage errors are logged, not returned.
func (s *TokenStore) Clear(ctx context.Context) {
	if err := s.store.Delete(ctx, StorageKey); err != nil {
		s.log.Error(ctx, "error clearing auth token", "error", err)
	}
}

func (s *TokenStore) IsValid(ctx context.Context) bool {
	_, ok := s.Read(ctx)
	return ok
}

func (s *TokenStore) CurrentUser(ctx context.Context) (models.User, bool) {
	rec, ok := s.Read(ctx)
	if !ok {
		return models.User{}, false
	}
	return rec.User(), true
}

func (s *TokenStore) CurrentEmail(ctx context.Context) (string, bool) {
	rec, ok := s.Read(ctx)
	return rec.Email, ok
}

func (s *TokenStore) CurrentTenantID(ctx context.Context) (string, bool) {
	rec, ok := s.Read(ctx)
	return rec.TenantID, ok
}

func (s *TokenStore) HasRole(ctx context.Context, role models.Role) bool {
	rec, ok := s.Read(ctx)
	return ok && rec.Role == role
}

// AuthHeader returns "Bearer <token>", or "" when no record is stored.
func (s *TokenStore) AuthHeader(ctx context.Context) string {
	rec, ok := s.Read(ctx)
	if !ok {
		return ""
	}
	return "Bearer " + rec.Token
}
