// Package session is the login/logout/role-check surface the CLI works
// through. A Session mirrors the stored auth record in memory and moves
// through four states:
//
//	uninitialized -> loading               Init
//	loading       -> authenticated         record present and accepted by the backend
//	loading       -> unauthenticated       record missing, invalid, or rejected (record cleared)
//	authenticated -> unauthenticated       Logout, or CheckAuth failing
//	*             -> authenticated         Login with server-confirmed credentials
//
// There is no refresh transition. The local 7-day expiry and the backend's
// own token lifetime are independent; a token revoked server-side stays
// usable locally until the next Init or CheckAuth.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/mediabot/internal/client/auth"
	"github.com/dmitrijs2005/mediabot/internal/client/client"
	"github.com/dmitrijs2005/mediabot/internal/client/models"
	"github.com/dmitrijs2005/mediabot/internal/client/tenant"
	"github.com/dmitrijs2005/mediabot/internal/logging"
)

type State string

const (
	StateUninitialized   State = "uninitialized"
	StateLoading         State = "loading"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

type Session struct {
	api      client.Client
	tokens   *auth.TokenStore
	resolver *tenant.Resolver
	log      logging.Logger

	mu       sync.RWMutex
	state    State
	user     *models.User
	onChange func(from, to State)
}

func New(api client.Client, tokens *auth.TokenStore, resolver *tenant.Resolver, log logging.Logger) *Session {
	return &Session{
		api:      api,
		tokens:   tokens,
		resolver: resolver,
		log:      log,
		state:    StateUninitialized,
	}
}

// OnChange registers fn to be called after every state change.
func (s *Session) OnChange(fn func(from, to State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Session) setState(to State, user *models.User) {
	s.mu.Lock()
	from := s.state
	s.state = to
	s.user = user
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil && from != to {
		fn(from, to)
	}
}

// Init restores the session from the stored record. It only acts in the
// uninitialized state and returns the resulting state.
func (s *Session) Init(ctx context.Context) State {
	s.mu.Lock()
	if s.state != StateUninitialized {
		st := s.state
		s.mu.Unlock()
		return st
	}
	s.state = StateLoading
	s.user = nil
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(StateUninitialized, StateLoading)
	}

	rec, ok := s.tokens.Read(ctx)
	if !ok {
		s.tokens.Clear(ctx)
		s.setState(StateUnauthenticated, nil)
		return StateUnauthenticated
	}

	if err := s.api.VerifyToken(ctx, rec.Token); err != nil {
		s.log.Info(ctx, "token invalid, cleared auth state", "email", rec.Email, "error", err)
		s.tokens.Clear(ctx)
		s.setState(StateUnauthenticated, nil)
		return StateUnauthenticated
	}

	user := rec.User()
	s.log.Info(ctx, "auth restored", "email", user.Email, "business", user.BusinessName)
	s.setState(StateAuthenticated, &user)
	return StateAuthenticated
}

// Login validates the credentials locally, authenticates against the
// backend and persists the resulting record.
func (s *Session) Login(ctx context.Context, email, password string) (models.User, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return models.User{}, err
	}

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.log.Info(ctx, "login failed", "email", email, "error", err)
		return models.User{}, MapError(err)
	}

	// the current record must survive a login the backend answered with an
	// unusable business id
	if !tenant.Validate(res.User.BusinessID) {
		s.log.Info(ctx, "login rejected, unusable business id", "email", email, "business_id", res.User.BusinessID)
		return models.User{}, ErrIncompleteAuth
	}

	if err := s.tokens.Save(ctx, res.User.Email, res.Token, &res.User); err != nil {
		return models.User{}, fmt.Errorf("save auth token: %w", err)
	}

	rec, ok := s.tokens.Read(ctx)
	if !ok {
		s.setState(StateUnauthenticated, nil)
		return models.User{}, ErrIncompleteAuth
	}

	user := rec.User()
	user.ID = res.User.ID
	user.CreatedAt = res.User.CreatedAt
	if res.User.Status != "" {
		user.Status = res.User.Status
	}

	s.log.Info(ctx, "login successful", "email", user.Email, "business", user.BusinessName)
	s.setState(StateAuthenticated, &user)
	return user, nil
}

// Logout tells the backend (best effort) and clears local state whatever
// the backend answers.
func (s *Session) Logout(ctx context.Context) {
	if rec, ok := s.tokens.Read(ctx); ok {
		if err := s.api.Logout(ctx, rec.Token); err != nil {
			s.log.Warn(ctx, "logout API call failed", "error", err)
		}
	}

	s.tokens.Clear(ctx)
	if err := s.resolver.ClearLegacy(ctx); err != nil {
		s.log.Error(ctx, "cannot clear legacy auth data", "error", err)
	}

	s.setState(StateUnauthenticated, nil)
	s.log.Info(ctx, "user logged out")
}

// CheckAuth re-verifies the stored token with the backend. On failure the
// record is cleared and the session becomes unauthenticated.
func (s *Session) CheckAuth(ctx context.Context) bool {
	rec, ok := s.tokens.Read(ctx)
	if !ok {
		if s.State() == StateAuthenticated {
			s.setState(StateUnauthenticated, nil)
		}
		return false
	}

	if err := s.api.VerifyToken(ctx, rec.Token); err != nil {
		s.log.Info(ctx, "auth check failed", "email", rec.Email, "error", err)
		s.tokens.Clear(ctx)
		s.setState(StateUnauthenticated, nil)
		return false
	}
	return true
}

// SendOTP asks the backend to mail a one-time code.
func (s *Session) SendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !ValidateEmail(email) {
		return ErrInvalidEmail
	}
	if err := s.api.SendOTP(ctx, email); err != nil {
		return MapError(err)
	}
	return nil
}

// VerifyOTP exchanges a one-time code for a token. The backend returns no
// role or business name, so the identity is kept in the legacy format,
// where the tenant resolver finds it.
func (s *Session) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	email = normalizeEmail(email)
	if !ValidateEmail(email) {
		return "", ErrInvalidEmail
	}
	if otp == "" {
		return "", ErrInvalidOTP
	}

	res, err := s.api.VerifyOTP(ctx, email, otp)
	if err != nil {
		return "", MapError(err)
	}
	if !tenant.Validate(res.BusinessID) {
		return "", ErrIncompleteAuth
	}

	if err := s.resolver.SaveLegacy(ctx, email, res.Token, res.BusinessID); err != nil {
		return "", fmt.Errorf("save otp identity: %w", err)
	}
	return res.BusinessID, nil
}

func (s *Session) SubmitOnboarding(ctx context.Context, email string, data map[string]any) error {
	email = normalizeEmail(email)
	if !ValidateEmail(email) {
		return ErrInvalidEmail
	}
	if err := s.api.SubmitOnboarding(ctx, email, data); err != nil {
		return MapError(err)
	}
	return nil
}

// Record returns the stored auth record (for display only).
func (s *Session) Record(ctx context.Context) (models.AuthRecord, bool) {
	return s.tokens.Read(ctx)
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) TenantID() string {
	u, _ := s.User()
	return u.BusinessID
}

func (s *Session) IsLoading() bool {
	st := s.State()
	return st == StateLoading || st == StateUninitialized
}

func (s *Session) IsLoggedIn() bool {
	return s.State() == StateAuthenticated
}

func (s *Session) role() models.Role {
	u, _ := s.User()
	return u.Role
}

func (s *Session) IsClient() bool        { return s.role() == models.RoleClient }
func (s *Session) IsTeamTester() bool    { return s.role() == models.RoleTeamTester }
func (s *Session) HasClientAccess() bool { return s.IsClient() || s.IsTeamTester() }
func (s *Session) HasAdminAccess() bool  { return s.IsTeamTester() }

// RequireRole fails unless the session is authenticated with role.
func (s *Session) RequireRole(role models.Role) error {
	if !s.IsLoggedIn() {
		return ErrNotAuthenticated
	}
	if s.role() != role {
		return ErrForbidden
	}
	return nil
}

// MapError converts a backend failure into the error shown to the user. A
// well-formed backend rejection keeps its own message as an *AuthError;
// anything else is reported as ErrConnection.
func MapError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = "authorization failed"
		}
		return &AuthError{Message: msg, Code: apiErr.Code}
	}
	return fmt.Errorf("%w: %v", ErrConnection, err)
}
