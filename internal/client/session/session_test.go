package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediabot/internal/client/auth"
	"github.com/dmitrijs2005/mediabot/internal/client/client"
	"github.com/dmitrijs2005/mediabot/internal/client/models"
	"github.com/dmitrijs2005/mediabot/internal/client/storage"
	"github.com/dmitrijs2005/mediabot/internal/client/tenant"
	"github.com/dmitrijs2005/mediabot/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake client ----

type fakeClient struct {
	mu sync.Mutex

	LoginRet *client.LoginResult
	LoginErr error

	LogoutErr error
	VerifyErr error

	SendOTPErr   error
	VerifyOTPRet *client.OTPResult
	VerifyOTPErr error

	OnboardingErr error

	LoginCalls      int
	LogoutTokens    []string
	VerifyTokens    []string
	LastOTPEmail    string
	LastOnboarding  map[string]any
	OnboardingEmail string
}

func (f *fakeClient) Login(_ context.Context, email, password string) (*client.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutTokens = append(f.LogoutTokens, token)
	return f.LogoutErr
}

func (f *fakeClient) VerifyToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.VerifyTokens = append(f.VerifyTokens, token)
	return f.VerifyErr
}

func (f *fakeClient) SendOTP(_ context.Context, email string) error {
	f.LastOTPEmail = email
	return f.SendOTPErr
}

func (f *fakeClient) VerifyOTP(_ context.Context, email, otp string) (*client.OTPResult, error) {
	f.LastOTPEmail = email
	return f.VerifyOTPRet, f.VerifyOTPErr
}

func (f *fakeClient) SubmitOnboarding(_ context.Context, email string, data map[string]any) error {
	f.OnboardingEmail = email
	f.LastOnboarding = data
	return f.OnboardingErr
}

// ---- helpers ----

type fixture struct {
	sess     *Session
	api      *fakeClient
	tokens   *auth.TokenStore
	resolver *tenant.Resolver
	mem      *storage.MemoryStore
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		api: &fakeClient{},
		mem: storage.NewMemoryStore(),
		now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	log := logging.Discard()
	f.tokens = auth.NewTokenStore(f.mem, log, func() time.Time { return f.now })
	f.resolver = tenant.NewResolver(f.tokens, f.mem, log)
	f.sess = New(f.api, f.tokens, f.resolver, log)
	return f
}

func loginResult(email string, role models.Role) *client.LoginResult {
	return &client.LoginResult{
		Token: "tok-" + email,
		User: models.User{
			ID:           "u-" + email,
			Email:        email,
			BusinessID:   "biz_abcdefgh_abcdef",
			BusinessName: "Coffee House",
			Role:         role,
			CreatedAt:    "2025-01-01T00:00:00Z",
			Status:       "active",
		},
		ExpiresIn: "24h",
	}
}

// ---- Login ----

func TestLogin_ClientRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.LoginRet = loginResult("client1@mediabot.ru", models.RoleClient)

	u, err := f.sess.Login(ctx, "client1@mediabot.ru", "password123")
	require.NoError(t, err)

	assert.Equal(t, models.RoleClient, u.Role)
	assert.Equal(t, "u-client1@mediabot.ru", u.ID)
	assert.Equal(t, StateAuthenticated, f.sess.State())
	assert.True(t, f.sess.IsLoggedIn())
	assert.True(t, f.sess.IsClient())
	assert.True(t, f.sess.HasClientAccess())
	assert.False(t, f.sess.HasAdminAccess())
	assert.Equal(t, "biz_abcdefgh_abcdef", f.sess.TenantID())

	rec, ok := f.tokens.Read(ctx)
	require.True(t, ok)
	assert.Equal(t, "tok-client1@mediabot.ru", rec.Token)
	assert.Equal(t, f.now.Add(auth.TTL).UnixMilli(), rec.ExpiresAt.UnixMilli())
}

func TestLogin_TeamTesterHasAdminAccess(t *testing.T) {
	f := newFixture(t)
	f.api.LoginRet = loginResult("tester@mediabot.ru", models.RoleTeamTester)

	_, err := f.sess.Login(context.Background(), "tester@mediabot.ru", "password123")
	require.NoError(t, err)

	assert.True(t, f.sess.IsTeamTester())
	assert.True(t, f.sess.HasAdminAccess())
	assert.True(t, f.sess.HasClientAccess())
	require.NoError(t, f.sess.RequireRole(models.RoleTeamTester))
	require.ErrorIs(t, f.sess.RequireRole(models.RoleClient), ErrForbidden)
}

func TestLogin_NormalizesEmail(t *testing.T) {
	f := newFixture(t)
	f.api.LoginRet = loginResult("client1@mediabot.ru", models.RoleClient)

	_, err := f.sess.Login(context.Background(), "  Client1@MediaBot.RU ", "password123")
	require.NoError(t, err)
}

func TestLogin_ValidationBeforeNetwork(t *testing.T) {
	f := newFixture(t)

	_, err := f.sess.Login(context.Background(), "not-an-email", "password123")
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = f.sess.Login(context.Background(), "a@b.co", "12345")
	require.ErrorIs(t, err, ErrPasswordTooShort)

	// 6 символов кириллицей: длина считается в символах, не в байтах
	f.api.LoginRet = loginResult("a@b.co", models.RoleClient)
	_, err = f.sess.Login(context.Background(), "a@b.co", "пароль")
	require.NoError(t, err)

	assert.Equal(t, 1, f.api.LoginCalls)
}

func TestLogin_BackendRejection(t *testing.T) {
	f := newFixture(t)
	f.api.LoginErr = &client.APIError{StatusCode: 401, Message: "Invalid credentials", Code: "INVALID_CREDENTIALS"}

	_, err := f.sess.Login(context.Background(), "client1@mediabot.ru", "wrongpass")
	require.Error(t, err)

	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Invalid credentials", ae.Message)
	assert.Equal(t, "INVALID_CREDENTIALS", ae.Code)
	assert.False(t, f.sess.IsLoggedIn())
	assert.False(t, f.tokens.IsValid(context.Background()))
}

func TestLogin_BackendRejectionWithoutMessage(t *testing.T) {
	f := newFixture(t)
	f.api.LoginErr = &client.APIError{StatusCode: 400}

	_, err := f.sess.Login(context.Background(), "client1@mediabot.ru", "password123")
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "authorization failed", ae.Message)
}

func TestLogin_TransportFailure(t *testing.T) {
	f := newFixture(t)
	f.api.LoginErr = client.ErrUnavailable

	_, err := f.sess.Login(context.Background(), "client1@mediabot.ru", "password123")
	require.ErrorIs(t, err, ErrConnection)
}

func TestLogin_UnusableTenant(t *testing.T) {
	f := newFixture(t)
	res := loginResult("client1@mediabot.ru", models.RoleClient)
	res.User.BusinessID = "Bad Tenant"
	f.api.LoginRet = res

	_, err := f.sess.Login(context.Background(), "client1@mediabot.ru", "password123")
	require.ErrorIs(t, err, ErrIncompleteAuth)
	assert.False(t, f.sess.IsLoggedIn())
}

func TestLogin_UnusableTenantKeepsPreviousSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.LoginRet = loginResult("tester@mediabot.ru", models.RoleTeamTester)
	_, err := f.sess.Login(ctx, "tester@mediabot.ru", "password123")
	require.NoError(t, err)

	res := loginResult("client1@mediabot.ru", models.RoleClient)
	res.User.BusinessID = "Bad Tenant"
	f.api.LoginRet = res

	_, err = f.sess.Login(ctx, "client1@mediabot.ru", "password123")
	require.ErrorIs(t, err, ErrIncompleteAuth)

	// память и хранилище должны совпадать
	assert.True(t, f.sess.IsLoggedIn())
	assert.True(t, f.sess.HasAdminAccess())
	assert.Equal(t, "biz_abcdefgh_abcdef", f.sess.TenantID())
	require.True(t, f.tokens.IsValid(ctx))
	rec, ok := f.tokens.Read(ctx)
	require.True(t, ok)
	assert.Equal(t, "tester@mediabot.ru", rec.Email)
}

// ---- Init ----

func TestInit_NoRecord(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.sess.IsLoading())

	st := f.sess.Init(context.Background())
	assert.Equal(t, StateUnauthenticated, st)
	assert.False(t, f.sess.IsLoading())
	assert.Empty(t, f.api.VerifyTokens)
}

func TestInit_ValidRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := loginResult("client1@mediabot.ru", models.RoleClient).User
	require.NoError(t, f.tokens.Save(ctx, u.Email, "tok", &u))

	var transitions []State
	f.sess.OnChange(func(_, to State) { transitions = append(transitions, to) })

	st := f.sess.Init(ctx)
	assert.Equal(t, StateAuthenticated, st)
	assert.Equal(t, []State{StateLoading, StateAuthenticated}, transitions)
	assert.Equal(t, []string{"tok"}, f.api.VerifyTokens)

	got, ok := f.sess.User()
	require.True(t, ok)
	assert.Equal(t, "Coffee House", got.BusinessName)
}

func TestInit_RejectedToken_ClearsRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := loginResult("client1@mediabot.ru", models.RoleClient).User
	require.NoError(t, f.tokens.Save(ctx, u.Email, "tok", &u))
	f.api.VerifyErr = client.ErrUnauthorized

	assert.Equal(t, StateUnauthenticated, f.sess.Init(ctx))
	assert.False(t, f.tokens.IsValid(ctx))
}

func TestInit_ExpiredRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := loginResult("client1@mediabot.ru", models.RoleClient).User
	require.NoError(t, f.tokens.Save(ctx, u.Email, "tok", &u))
	f.now = f.now.Add(auth.TTL + time.Millisecond)

	assert.Equal(t, StateUnauthenticated, f.sess.Init(ctx))
	assert.Empty(t, f.api.VerifyTokens)
}

func TestInit_OnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.Equal(t, StateUnauthenticated, f.sess.Init(ctx))

	u := loginResult("client1@mediabot.ru", models.RoleClient).User
	require.NoError(t, f.tokens.Save(ctx, u.Email, "tok", &u))
	assert.Equal(t, StateUnauthenticated, f.sess.Init(ctx))
	assert.Empty(t, f.api.VerifyTokens)
}

func TestInit_ConcurrentCallsVerifyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := loginResult("client1@mediabot.ru", models.RoleClient).User
	require.NoError(t, f.tokens.Save(ctx, u.Email, "tok", &u))

	var (
		wg      sync.WaitGroup
		obsMu   sync.Mutex
		loading int
	)
	f.sess.OnChange(func(_, to State) {
		if to == StateLoading {
			obsMu.Lock()
			loading++
			obsMu.Unlock()
		}
	})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.sess.Init(ctx)
		}()
	}
	wg.Wait()

	f.api.mu.Lock()
	calls := len(f.api.VerifyTokens)
	f.api.mu.Unlock()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, loading)
	assert.Equal(t, StateAuthenticated, f.sess.State())
}

// ---- Logout / CheckAuth ----

func TestLogout_FailingBackendStillClears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.LoginRet = loginResult("client1@mediabot.ru", models.RoleClient)
	_, err := f.sess.Login(ctx, "client1@mediabot.ru", "password123")
	require.NoError(t, err)
	require.NoError(t, f.resolver.SaveLegacy(ctx, "old@mediabot.ru", "old", "business-old"))

	f.api.LogoutErr = errors.New("boom")
	f.sess.Logout(ctx)

	assert.Equal(t, []string{"tok-client1@mediabot.ru"}, f.api.LogoutTokens)
	assert.False(t, f.tokens.IsValid(ctx))
	assert.False(t, f.sess.IsLoggedIn())
	_, ok := f.resolver.CurrentTenantID(ctx)
	assert.False(t, ok)
	require.ErrorIs(t, f.sess.RequireRole(models.RoleClient), ErrNotAuthenticated)
}

func TestLogout_WithoutRecordSkipsBackend(t *testing.T) {
	f := newFixture(t)
	f.sess.Logout(context.Background())
	assert.Empty(t, f.api.LogoutTokens)
	assert.Equal(t, StateUnauthenticated, f.sess.State())
}

func TestCheckAuth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.LoginRet = loginResult("client1@mediabot.ru", models.RoleClient)
	_, err := f.sess.Login(ctx, "client1@mediabot.ru", "password123")
	require.NoError(t, err)

	assert.True(t, f.sess.CheckAuth(ctx))
	assert.True(t, f.sess.IsLoggedIn())

	f.api.VerifyErr = client.ErrUnauthorized
	assert.False(t, f.sess.CheckAuth(ctx))
	assert.False(t, f.sess.IsLoggedIn())
	assert.False(t, f.tokens.IsValid(ctx))
}

func TestCheckAuth_RecordExpiredLocally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.LoginRet = loginResult("client1@mediabot.ru", models.RoleClient)
	_, err := f.sess.Login(ctx, "client1@mediabot.ru", "password123")
	require.NoError(t, err)

	f.now = f.now.Add(8 * 24 * time.Hour)
	assert.False(t, f.sess.CheckAuth(ctx))
	assert.Equal(t, StateUnauthenticated, f.sess.State())
}

// ---- OTP / onboarding ----

func TestVerifyOTP_SavesLegacyIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.VerifyOTPRet = &client.OTPResult{Token: "otp-token", BusinessID: "business-coffee"}

	require.NoError(t, f.sess.SendOTP(ctx, "Owner@Coffee.ru"))
	assert.Equal(t, "owner@coffee.ru", f.api.LastOTPEmail)

	id, err := f.sess.VerifyOTP(ctx, "owner@coffee.ru", "123456")
	require.NoError(t, err)
	assert.Equal(t, "business-coffee", id)

	got, ok := f.resolver.CurrentAuth(ctx)
	require.True(t, ok)
	assert.Equal(t, tenant.SourceLegacy, got.Kind)
	assert.Equal(t, "otp-token", got.Token)
	assert.Equal(t, StateUninitialized, f.sess.State())
}

func TestVerifyOTP_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sess.VerifyOTP(ctx, "bad", "1")
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = f.sess.VerifyOTP(ctx, "a@b.co", "")
	require.ErrorIs(t, err, ErrInvalidOTP)

	f.api.VerifyOTPErr = &client.APIError{StatusCode: 400, Message: "Invalid OTP"}
	_, err = f.sess.VerifyOTP(ctx, "a@b.co", "000000")
	var ae *AuthError
	require.ErrorAs(t, err, &ae)

	f.api.VerifyOTPErr = nil
	f.api.VerifyOTPRet = &client.OTPResult{Token: "t", BusinessID: "NOPE"}
	_, err = f.sess.VerifyOTP(ctx, "a@b.co", "000000")
	require.ErrorIs(t, err, ErrIncompleteAuth)
}

func TestSubmitOnboarding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	data := map[string]any{"business_name": "Coffee House"}

	require.NoError(t, f.sess.SubmitOnboarding(ctx, "owner@coffee.ru", data))
	assert.Equal(t, data, f.api.LastOnboarding)

	require.ErrorIs(t, f.sess.SubmitOnboarding(ctx, "nope", data), ErrInvalidEmail)

	f.api.OnboardingErr = client.ErrUnavailable
	require.ErrorIs(t, f.sess.SubmitOnboarding(ctx, "owner@coffee.ru", data), ErrConnection)
}
