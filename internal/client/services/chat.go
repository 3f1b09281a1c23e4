// Package services contains application services for the MediaBot client.
// This file defines the chat service: sending a message to the chat
// automation webhook on behalf of the current business and keeping both
// sides of the conversation in that business's history.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mediabot/internal/client/chat"
	"github.com/dmitrijs2005/mediabot/internal/client/client"
	"github.com/dmitrijs2005/mediabot/internal/client/models"
	"github.com/dmitrijs2005/mediabot/internal/client/session"
	"github.com/dmitrijs2005/mediabot/internal/client/tenant"
	"github.com/dmitrijs2005/mediabot/internal/logging"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrChatDisabled = errors.New("chat webhook is not configured")
)

// ChatService defines chat operations for the CLI.
//
// Send fails with chat.ErrNoTenant when no business is resolvable and with
// session.ErrConnection when the webhook cannot be reached. A rejection
// answered by the webhook comes back as *session.AuthError carrying the
// backend's message. Nothing is
// retried. The user message stays in history even if the reply never comes.
type ChatService interface {
	Send(ctx context.Context, text string) (models.Message, error)
	History(ctx context.Context) []models.Message
	Clear(ctx context.Context) error
	Export(ctx context.Context) string
}

type chatService struct {
	tenants chat.TenantSource
	history *chat.Store
	webhook client.Webhook
	log     logging.Logger
}

// NewChatService builds a ChatService. webhook may be nil, in which case
// Send reports ErrChatDisabled.
func NewChatService(tenants chat.TenantSource, history *chat.Store, webhook client.Webhook, log logging.Logger) ChatService {
	return &chatService{tenants: tenants, history: history, webhook: webhook, log: log}
}

func (s *chatService) Send(ctx context.Context, text string) (models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, ErrEmptyMessage
	}
	if s.webhook == nil {
		return models.Message{}, ErrChatDisabled
	}

	tenantID, ok := s.tenants.CurrentTenantID(ctx)
	if !ok || !tenant.Validate(tenantID) {
		s.log.Warn(ctx, "chat send without business_id")
		return models.Message{}, chat.ErrNoTenant
	}

	err := s.history.Append(ctx, models.Message{Text: text, Sender: models.SenderUser})
	if err != nil {
		return models.Message{}, fmt.Errorf("saving error: %w", err)
	}

	reply, err := s.webhook.Send(ctx, tenantID, text)
	if err != nil {
		s.log.Error(ctx, "webhook call failed", "business_id", tenantID, "error", err)
		return models.Message{}, session.MapError(err)
	}

	s.log.Debug(ctx, "webhook replied", "business_id", tenantID, "tokens_used", reply.TokensUsed)

	answer := models.Message{Text: reply.Response, Sender: models.SenderAI}
	if err := s.history.Append(ctx, answer); err != nil {
		return models.Message{}, fmt.Errorf("saving error: %w", err)
	}

	// the stored copy carries id, timestamp and tenant
	msgs := s.history.ReadAll(ctx)
	if n := len(msgs); n > 0 && msgs[n-1].Sender == models.SenderAI {
		return msgs[n-1], nil
	}
	return answer, nil
}

func (s *chatService) History(ctx context.Context) []models.Message {
	return s.history.ReadAll(ctx)
}

func (s *chatService) Clear(ctx context.Context) error {
	return s.history.Clear(ctx)
}

func (s *chatService) Export(ctx context.Context) string {
	return s.history.Export(ctx)
}
