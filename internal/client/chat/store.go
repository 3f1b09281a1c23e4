// Package chat persists chat history in local storage.
//
// Store keeps one JSON array per tenant under "{tenantID}:chat-history" and
// rewrites it wholesale on every append. Every message is stamped with the
// tenant id on write and filtered by it on read, so a read for tenant T
// never yields another tenant's message even if the bucket was shared or
// corrupted. History has no size bound.
//
// UnscopedStore is the older single-bucket variant without isolation.
package chat

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/mediabot/internal/client/models"
	"github.com/dmitrijs2005/mediabot/internal/client/storage"
	"github.com/dmitrijs2005/mediabot/internal/client/tenant"
	"github.com/dmitrijs2005/mediabot/internal/logging"
	"github.com/dmitrijs2005/mediabot/internal/timex"
	"github.com/google/uuid"
)

const HistoryKey = "chat-history"

var ErrNoTenant = errors.New("business_id not found")

// TenantSource yields the active tenant id, normally *tenant.Resolver.
type TenantSource interface {
	CurrentTenantID(ctx context.Context) (string, bool)
}

type Store struct {
	tenants TenantSource
	store   storage.Store
	log     logging.Logger
	now     timex.Clock
	newID   func() string
}

func NewStore(tenants TenantSource, store storage.Store, log logging.Logger, now timex.Clock) *Store {
	return &Store{tenants: tenants, store: store, log: log, now: now.Or(), newID: uuid.NewString}
}

// bucket resolves the tenant and its storage key. ok is false when no valid
// tenant is available.
func (s *Store) bucket(ctx context.Context) (tenantID, key string, ok bool) {
	tenantID, found := s.tenants.CurrentTenantID(ctx)
	if !found {
		return "", "", false
	}
	key, err := tenant.Key(tenantID, HistoryKey)
	if err != nil {
		s.log.Warn(ctx, "refusing chat bucket for invalid tenant", "error", err)
		return "", "", false
	}
	return tenantID, key, true
}

// Append stamps msg with the current tenant and adds it to that tenant's
// history. Without a tenant it logs and returns nil; nothing is buffered.
// Empty ID and zero Timestamp are filled in.
func (s *Store) Append(ctx context.Context, msg models.Message) error {
	tenantID, key, ok := s.bucket(ctx)
	if !ok {
		s.log.Warn(ctx, "cannot save message: business_id not found")
		return nil
	}

	if msg.ID == "" {
		msg.ID = s.newID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	msg.TenantID = tenantID

	return s.store.Update(ctx, key, func(old []byte) ([]byte, error) {
		history := s.decode(ctx, old, tenantID)
		history = append(history, msg)
		return json.Marshal(history)
	})
}

// ReadAll returns the current tenant's history in append order, or an
// empty slice when no tenant resolves or the bucket cannot be parsed.
func (s *Store) ReadAll(ctx context.Context) []models.Message {
	tenantID, key, ok := s.bucket(ctx)
	if !ok {
		s.log.Warn(ctx, "cannot load history: business_id not found")
		return []models.Message{}
	}

	raw, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Error(ctx, "error loading chat history", "error", err)
		return []models.Message{}
	}
	return s.decode(ctx, raw, tenantID)
}

// Clear deletes the current tenant's bucket.
func (s *Store) Clear(ctx context.Context) error {
	_, key, ok := s.bucket(ctx)
	if !ok {
		return nil
	}
	return s.store.Delete(ctx, key)
}

// Export returns the raw stored JSON of the current tenant's bucket.
func (s *Store) Export(ctx context.Context) string {
	_, key, ok := s.bucket(ctx)
	if !ok {
		return "[]"
	}
	raw, err := s.store.Get(ctx, key)
	if err != nil || len(raw) == 0 {
		return "[]"
	}
	return string(raw)
}

func (s *Store) decode(ctx context.Context, raw []byte, tenantID string) []models.Message {
	out := []models.Message{}
	if len(raw) == 0 {
		return out
	}

	var stored []models.Message
	if err := json.Unmarshal(raw, &stored); err != nil {
		s.log.Error(ctx, "error loading chat history", "error", err)
		return out
	}

	for _, m := range stored {
		if m.TenantID != tenantID {
			continue
		}
		out = append(out, m)
	}
	if dropped := len(stored) - len(out); dropped > 0 {
		s.log.Warn(ctx, "foreign messages filtered from chat history", "business_id", tenantID, "dropped", dropped)
	}
	return out
}
