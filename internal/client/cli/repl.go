package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	OTP(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Chat(ctx context.Context, text string) error
	History(ctx context.Context) error
	Clear(ctx context.Context) error
	Export(ctx context.Context) error
	Onboarding(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the MediaBot CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. The loop exits on scanner EOF,
// on ctx cancellation, or when the user types "exit" or "quit".
//
//	Not logged in:
//	  - help                  show available commands
//	  - login                 authenticate with email and password
//	  - otp                   authenticate with a one-time code
//	  - onboarding            submit the business questionnaire
//	  - exit | quit           leave the program
//
//	Logged in, additionally:
//	  - whoami                show the current account
//	  - chat [text]           talk to the assistant (prompts when text is omitted)
//	  - history               show this business's chat history
//	  - clear                 delete this business's chat history
//	  - export                print raw history JSON (team testers only)
//	  - logout                log out
//
// Errors returned by handlers are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("mediabot (%s) > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, rest := parts[0], strings.Join(parts[1:], " ")

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, chat, history, clear, export, onboarding, logout, exit")
			} else {
				printlnFn("Available commands: login, otp, onboarding, exit")
			}

		case "login":
			err = a.Login(ctx)

		case "otp":
			err = a.OTP(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.WhoAmI(ctx)

		case "chat":
			err = a.Chat(ctx, rest)

		case "history":
			err = a.History(ctx)

		case "clear":
			err = a.Clear(ctx)

		case "export":
			err = a.Export(ctx)

		case "onboarding":
			err = a.Onboarding(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
