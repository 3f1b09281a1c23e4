package client

import (
	"context"

	"github.com/dmitrijs2005/mediabot/internal/client/models"
)

// LoginResult is a successful /api/auth/login answer.
type LoginResult struct {
	Token     string
	User      models.User
	ExpiresIn string
}

// OTPResult is a successful /api/auth/verify-otp answer.
type OTPResult struct {
	Token      string
	BusinessID string
}

// Client is the backend auth API as the session layer sees it.
type Client interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	// VerifyToken returns nil only when the backend still accepts token.
	VerifyToken(ctx context.Context, token string) error
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) (*OTPResult, error)
	SubmitOnboarding(ctx context.Context, email string, data map[string]any) error
}

// ChatReply is a successful webhook answer.
type ChatReply struct {
	Response   string
	TokensUsed int
}

// Webhook is the external chat automation endpoint.
type Webhook interface {
	Send(ctx context.Context, tenantID, message string) (*ChatReply, error)
}
