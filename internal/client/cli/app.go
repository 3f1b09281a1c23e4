package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/mediabot/internal/client/auth"
	"github.com/dmitrijs2005/mediabot/internal/client/chat"
	"github.com/dmitrijs2005/mediabot/internal/client/client"
	"github.com/dmitrijs2005/mediabot/internal/client/config"
	"github.com/dmitrijs2005/mediabot/internal/client/models"
	"github.com/dmitrijs2005/mediabot/internal/client/services"
	"github.com/dmitrijs2005/mediabot/internal/client/session"
	"github.com/dmitrijs2005/mediabot/internal/client/storage"
	"github.com/dmitrijs2005/mediabot/internal/client/tenant"
	"github.com/dmitrijs2005/mediabot/internal/filex"
	"github.com/dmitrijs2005/mediabot/internal/logging"
)

// requestTimeout bounds every backend and webhook call.
const requestTimeout = 30 * time.Second

// SessionService is the part of *session.Session the CLI drives.
type SessionService interface {
	Init(ctx context.Context) session.State
	Login(ctx context.Context, email, password string) (models.User, error)
	Logout(ctx context.Context)
	CheckAuth(ctx context.Context) bool
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) (string, error)
	SubmitOnboarding(ctx context.Context, email string, data map[string]any) error
	Record(ctx context.Context) (models.AuthRecord, bool)
	User() (models.User, bool)
	IsLoggedIn() bool
	RequireRole(role models.Role) error
}

type App struct {
	config  *config.Config
	session SessionService
	chat    services.ChatService
	log     logging.Logger
	scanner *bufio.Scanner
	out     io.Writer
	closer  io.Closer
}

// NewApp opens local storage and builds the services the REPL works with.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	path, err := filex.EnsureParentDir(c.StoragePath)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, path)
	if err != nil {
		log.Error(ctx, "error initializing storage", "path", path, "error", err)
		return nil, err
	}

	hc := &http.Client{Timeout: requestTimeout}
	api := client.NewHTTPClient(c.APIURL, hc)

	tokens := auth.NewTokenStore(store, log, nil)
	resolver := tenant.NewResolver(tokens, store, log)
	sess := session.New(api, tokens, resolver, log)

	var webhook client.Webhook
	if c.WebhookURL != "" {
		webhook = client.NewWebhookClient(c.WebhookURL, hc)
	}
	history := chat.NewStore(resolver, store, log, nil)
	cs := services.NewChatService(resolver, history, webhook, log)

	sess.OnChange(func(from, to session.State) {
		log.Debug(context.Background(), "session state changed", "from", from, "to", to)
	})

	return &App{
		config:  c,
		session: sess,
		chat:    cs,
		log:     log,
		scanner: bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
		closer:  store,
	}, nil
}

// Run restores the session, starts the auth watcher and blocks in the REPL
// until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.closer != nil {
			if err := a.closer.Close(); err != nil {
				a.log.Error(ctx, "error closing storage", "error", err)
			}
		}
	}()

	fmt.Fprintln(a.out, "Welcome to MediaBot CLI (type 'help' for commands)")

	if a.session.Init(ctx) == session.StateAuthenticated {
		if u, ok := a.session.User(); ok {
			fmt.Fprintf(a.out, "Welcome back, %s (%s)\n", u.Email, u.BusinessName)
		}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartAuthWatcher(watchCtx, a.config.CheckInterval)

	runREPL(ctx, a, a.getStatus, a.scanner)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsLoggedIn()
}

func (a *App) getStatus() string {
	u, ok := a.session.User()
	if !ok || !a.session.IsLoggedIn() {
		return "guest"
	}
	return fmt.Sprintf("%s %s", u.Email, u.Role)
}

// StartAuthWatcher re-verifies the stored token every interval while the
// user is logged in. A rejected token logs the user out locally.
func (a *App) StartAuthWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkAuth(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkAuth(ctx context.Context) {
	if !a.session.IsLoggedIn() {
		return
	}

	cctx, cancel := context.WithTimeout(ctx, requestTimeout)
	ok := a.session.CheckAuth(cctx)
	cancel()

	if !ok {
		a.log.Warn(ctx, "session is no longer valid, logged out")
		printlnFn("Your session has expired. Please log in again.")
	}
}
