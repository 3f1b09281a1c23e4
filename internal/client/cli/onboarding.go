package cli

import (
	"context"
	"errors"
	"fmt"
)

var getFields = GetFields

// Onboarding collects the business questionnaire as name=value pairs and
// submits it. The logged-in email is offered as the default.
func (a *App) Onboarding(ctx context.Context) error {
	prompt := "Enter email"
	def := ""
	if u, ok := a.session.User(); ok {
		def = u.Email
		prompt = fmt.Sprintf("Enter email (empty for %s)", def)
	}

	email, err := getSimpleText(a.scanner, prompt, a.out)
	if err != nil {
		return err
	}
	if email == "" {
		email = def
	}

	data, err := getFields(a.scanner, "Tell us about your business (e.g. business_name=Coffee House)", a.out)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("nothing to submit")
	}

	cctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if err := a.session.SubmitOnboarding(cctx, email, data); err != nil {
		return fmt.Errorf("onboarding not submitted: %w", err)
	}
	fmt.Fprintln(a.out, "Thank you! Your answers were submitted.")
	return nil
}
