package chat

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/mediabot/internal/client/models"
	"github.com/dmitrijs2005/mediabot/internal/client/storage"
	"github.com/dmitrijs2005/mediabot/internal/logging"
)

// UnscopedKey is the single bucket shared by every account.
const UnscopedKey = "mediabot-chat-history"

// UnscopedStore keeps all history in one bucket with no tenant isolation.
type UnscopedStore struct {
	store storage.Store
	log   logging.Logger
}

func NewUnscopedStore(store storage.Store, log logging.Logger) *UnscopedStore {
	return &UnscopedStore{store: store, log: log}
}

func (s *UnscopedStore) Append(ctx context.Context, msg models.Message) error {
	return s.store.Update(ctx, UnscopedKey, func(old []byte) ([]byte, error) {
		history := s.decode(ctx, old)
		history = append(history, msg)
		return json.Marshal(history)
	})
}

func (s *UnscopedStore) ReadAll(ctx context.Context) []models.Message {
	raw, err := s.store.Get(ctx, UnscopedKey)
	if err != nil {
		s.log.Error(ctx, "error loading chat history", "error", err)
		return []models.Message{}
	}
	return s.decode(ctx, raw)
}

func (s *UnscopedStore) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, UnscopedKey)
}

func (s *UnscopedStore) Export(ctx context.Context) string {
	raw, err := s.store.Get(ctx, UnscopedKey)
	if err != nil || len(raw) == 0 {
		return "[]"
	}
	return string(raw)
}

func (s *UnscopedStore) decode(ctx context.Context, raw []byte) []models.Message {
	out := []models.Message{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		s.log.Error(ctx, "error loading chat history", "error", err)
		return []models.Message{}
	}
	return out
}
