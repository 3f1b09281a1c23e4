package chat

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediabot/internal/client/models"
	"github.com/dmitrijs2005/mediabot/internal/client/storage"
	"github.com/dmitrijs2005/mediabot/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnscopedStore(t *testing.T) {
	mem := storage.NewMemoryStore()
	s := NewUnscopedStore(mem, logging.Discard())
	ctx := context.Background()

	assert.Empty(t, s.ReadAll(ctx))
	assert.Equal(t, "[]", s.Export(ctx))

	ts := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(ctx, models.Message{ID: "1", Text: "one", Sender: models.SenderUser, Timestamp: ts}))
	require.NoError(t, s.Append(ctx, models.Message{ID: "2", Text: "two", Sender: models.SenderAI, Timestamp: ts.Add(time.Second)}))

	got := s.ReadAll(ctx)
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Text)
	assert.True(t, got[1].Timestamp.Equal(ts.Add(time.Second)))
	assert.Empty(t, got[0].TenantID)

	raw, _ := mem.Get(ctx, UnscopedKey)
	assert.NotContains(t, string(raw), "business_id")

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.ReadAll(ctx))
}

func TestUnscopedStore_Corrupted(t *testing.T) {
	mem := storage.NewMemoryStore()
	s := NewUnscopedStore(mem, logging.Discard())
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, UnscopedKey, []byte("nope")))
	assert.Empty(t, s.ReadAll(ctx))
}
