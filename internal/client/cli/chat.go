package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mediabot/internal/client/chat"
	"github.com/dmitrijs2005/mediabot/internal/client/models"
	"github.com/dmitrijs2005/mediabot/internal/client/session"
)

var getMultiline = GetMultiline

// Chat sends text to the assistant, prompting for it when empty, and prints
// the reply.
func (a *App) Chat(ctx context.Context, text string) error {
	if text == "" {
		var err error
		text, err = getMultiline(a.scanner, "Your message", a.out)
		if err != nil {
			return err
		}
	}

	cctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	reply, err := a.chat.Send(cctx, text)
	if errors.Is(err, chat.ErrNoTenant) {
		return errors.New("no business selected, please log in first")
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "MediaBot: %s\n", reply.Text)
	return nil
}

// History prints the current business's conversation, oldest first.
func (a *App) History(ctx context.Context) error {
	msgs := a.chat.History(ctx)
	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "History is empty")
		return nil
	}
	for _, m := range msgs {
		who := "You"
		if m.Sender == models.SenderAI {
			who = "MediaBot"
		}
		fmt.Fprintf(a.out, "[%s] %s: %s\n", m.Timestamp.Local().Format(time.DateTime), who, m.Text)
	}
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	if err := a.chat.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "History cleared")
	return nil
}

// Export prints the raw stored history. Team testers only.
func (a *App) Export(ctx context.Context) error {
	if err := a.session.RequireRole(models.RoleTeamTester); err != nil {
		if errors.Is(err, session.ErrForbidden) {
			return errors.New("export is available to team testers only")
		}
		return err
	}
	fmt.Fprintln(a.out, a.chat.Export(ctx))
	return nil
}
