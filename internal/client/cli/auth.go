package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mediabot/internal/client/auth"
	"github.com/dmitrijs2005/mediabot/internal/client/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for email and password and authenticates against the
// backend. Validation errors are reported before anything is sent.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.scanner, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	u, err := a.session.Login(cctx, email, password)
	if err != nil {
		return fmt.Errorf("login unsuccessful: %w", err)
	}

	fmt.Fprintf(a.out, "Logged in as %s (%s, %s)\n", u.Email, u.BusinessName, u.Role)
	return nil
}

// OTP runs the one-time code flow: request a code, then exchange it for a
// token bound to the business the backend reports.
func (a *App) OTP(ctx context.Context) error {
	email, err := getSimpleText(a.scanner, "Enter email", a.out)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, requestTimeout)
	err = a.session.SendOTP(cctx, email)
	cancel()
	if err != nil {
		return fmt.Errorf("cannot send code: %w", err)
	}
	fmt.Fprintln(a.out, "Code sent, check your inbox.")

	code, err := getSimpleText(a.scanner, "Enter code", a.out)
	if err != nil {
		return err
	}

	cctx, cancel = context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	businessID, err := a.session.VerifyOTP(cctx, email, code)
	if err != nil {
		return fmt.Errorf("code rejected: %w", err)
	}

	fmt.Fprintf(a.out, "Signed in to business %s\n", businessID)
	return nil
}

// Logout clears local auth state whatever the backend answers.
func (a *App) Logout(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	a.session.Logout(cctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the current account and both expiry times. The server-side
// one is read from the token without verification and is informational.
func (a *App) WhoAmI(ctx context.Context) error {
	u, ok := a.session.User()
	if !ok || !a.session.IsLoggedIn() {
		return session.ErrNotAuthenticated
	}

	fmt.Fprintf(a.out, "Email:    %s\n", u.Email)
	fmt.Fprintf(a.out, "Business: %s (%s)\n", u.BusinessName, u.BusinessID)
	fmt.Fprintf(a.out, "Role:     %s\n", u.Role)

	rec, ok := a.session.Record(ctx)
	if !ok {
		return errors.New("auth record is gone, please log in again")
	}
	fmt.Fprintf(a.out, "Local session expires: %s\n", rec.ExpiresAt.Local().Format(time.RFC1123))

	if exp, ok := auth.ServerExpiry(rec.Token); ok {
		fmt.Fprintf(a.out, "Server token expires:  %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}
