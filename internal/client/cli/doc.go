// Package cli provides the interactive MediaBot command-line client.
//
// It wires configuration, local storage, the session and chat services, and
// an interactive REPL. Typical flow: restore the stored session, start a
// background auth re-check watcher, and execute user commands.
//
// Key features:
//   - Login / Logout, OTP login
//   - whoami with the locally stored and server-side token expiry
//   - Chat with the business assistant, per-business history
//   - History export for team testers
//   - Onboarding questionnaire submission
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartAuthWatcher, and runREPL for details.
package cli
