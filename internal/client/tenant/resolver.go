package tenant

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/mediabot/internal/client/models"
	"github.com/dmitrijs2005/mediabot/internal/client/storage"
	"github.com/dmitrijs2005/mediabot/internal/logging"
)

// Storage keys of the old, unscoped auth format.
const (
	LegacyTokenKey    = "auth_token"
	LegacyEmailKey    = "user_email"
	LegacyBusinessKey = "business_id"
)

// SourceKind tags where an Identity was found.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceCurrent
	SourceLegacy
)

func (k SourceKind) String() string {
	switch k {
	case SourceCurrent:
		return "current"
	case SourceLegacy:
		return "legacy"
	default:
		return "none"
	}
}

// Identity is the tenant-bearing part of whichever auth record was found.
type Identity struct {
	Kind     SourceKind
	TenantID string
	Email    string
	Token    string
}

// RecordReader is the current-format source, normally *auth.TokenStore.
// Read absorbs every failure into "not found".
type RecordReader interface {
	Read(ctx context.Context) (models.AuthRecord, bool)
}

type legacyRecord struct {
	BusinessID string `json:"business_id"`
	Email      string `json:"email"`
	Token      string `json:"token"`
	ExpiresAt  string `json:"expires_at,omitempty"`
}

// Resolver finds the current tenant by asking its sources in priority
// order: the current token record first, the legacy record second.
type Resolver struct {
	store   storage.Store
	log     logging.Logger
	sources []func(ctx context.Context) (Identity, bool)
}

func NewResolver(current RecordReader, store storage.Store, log logging.Logger) *Resolver {
	r := &Resolver{store: store, log: log}
	r.sources = []func(ctx context.Context) (Identity, bool){
		func(ctx context.Context) (Identity, bool) {
			rec, ok := current.Read(ctx)
			if !ok {
				return Identity{}, false
			}
			return Identity{Kind: SourceCurrent, TenantID: rec.TenantID, Email: rec.Email, Token: rec.Token}, true
		},
		r.readLegacy,
	}
	return r
}

// Resolve returns the identity of the first source that holds a record
// with a non-empty tenant id. The id is not validated.
func (r *Resolver) Resolve(ctx context.Context) (Identity, bool) {
	for _, src := range r.sources {
		if id, ok := src(ctx); ok && id.TenantID != "" {
			return id, true
		}
	}
	return Identity{}, false
}

func (r *Resolver) CurrentTenantID(ctx context.Context) (string, bool) {
	id, ok := r.Resolve(ctx)
	if !ok {
		return "", false
	}
	return id.TenantID, true
}

// CurrentAuth is like Resolve but skips sources whose tenant id fails
// Validate.
func (r *Resolver) CurrentAuth(ctx context.Context) (Identity, bool) {
	for _, src := range r.sources {
		if id, ok := src(ctx); ok && Validate(id.TenantID) {
			return id, true
		}
	}
	return Identity{}, false
}

// SaveLegacy writes the old auth format: one JSON record plus two loose keys.
func (r *Resolver) SaveLegacy(ctx context.Context, email, token, tenantID string) error {
	b, err := json.Marshal(legacyRecord{BusinessID: tenantID, Email: email, Token: token})
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, LegacyTokenKey, b); err != nil {
		return err
	}
	if err := r.store.Set(ctx, LegacyEmailKey, []byte(email)); err != nil {
		return err
	}
	return r.store.Set(ctx, LegacyBusinessKey, []byte(tenantID))
}

// ClearLegacy removes every key of the old auth format.
func (r *Resolver) ClearLegacy(ctx context.Context) error {
	for _, k := range []string{LegacyTokenKey, LegacyEmailKey, LegacyBusinessKey} {
		if err := r.store.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) readLegacy(ctx context.Context) (Identity, bool) {
	raw, err := r.store.Get(ctx, LegacyTokenKey)
	if err != nil {
		r.log.Error(ctx, "cannot read legacy auth record", "error", err)
		return Identity{}, false
	}
	if len(raw) == 0 {
		return Identity{}, false
	}

	var rec legacyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		r.log.Debug(ctx, "legacy auth record is not valid JSON", "error", err)
		return Identity{}, false
	}
	return Identity{Kind: SourceLegacy, TenantID: rec.BusinessID, Email: rec.Email, Token: rec.Token}, true
}
