package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/dmitrijs2005/favisend/internal/client/services"
	"github.com/dmitrijs2005/favisend/internal/common"
)

// Guest runs the email verification flow: request a code for an email,
// then redeem it. At the code prompt "resend" asks for a new code, "back"
// returns to the email prompt and an empty line cancels.
func (a *App) Guest(ctx context.Context) error {
	if email := a.guestEmail(ctx); email != "" {
		a.printf("Guest access is already verified for %s (use guest-logout to switch)", email)
		return nil
	}

	a.guest.Reset()
	defer a.guest.Reset()

	for {
		switch a.guest.Snapshot().Step {
		case services.StepEmailEntry:
			done, err := a.guestEmailStep(ctx)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil || done {
				return err
			}

		case services.StepCodeEntry:
			done, err := a.guestCodeStep(ctx)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil || done {
				return err
			}

		case services.StepAuthorized:
			a.printf("Email verified. Use 'purchases' to see your files.")
			return nil
		}
	}
}

// guestEmailStep reports done when the user cancelled.
func (a *App) guestEmailStep(ctx context.Context) (bool, error) {
	prompt := "Enter your email (empty to cancel)"
	if prev := a.guest.Snapshot().Email; prev != "" {
		prompt = "Enter your email (was " + prev + ", empty to cancel)"
	}

	email, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return true, err
	}
	if email == "" {
		return true, nil
	}
	if err := a.guest.SetEmail(email); err != nil {
		return true, err
	}

	if err := a.guest.SubmitEmail(ctx); err != nil {
		if ctx.Err() != nil {
			return true, err
		}
		a.printf("Error: %s", common.UserMessage(err))
		return false, nil
	}

	a.printf("A verification code was sent to %s", email)
	return false, nil
}

// guestCodeStep reports done when the user cancelled.
func (a *App) guestCodeStep(ctx context.Context) (bool, error) {
	input, err := getSimpleText(a.reader, "Enter the 8-digit code ('resend', 'back', empty to cancel)", a.out)
	if err != nil {
		return true, err
	}

	switch strings.ToLower(input) {
	case "":
		return true, nil

	case "back":
		if err := a.guest.GoBack(); err != nil {
			a.printf("Error: %s", common.UserMessage(err))
		}
		return false, nil

	case "resend":
		if err := a.guest.Resend(ctx); err != nil {
			if ctx.Err() != nil {
				return true, err
			}
			a.printf("Error: %s", common.UserMessage(err))
			return false, nil
		}
		a.printf("A new code was sent to %s", a.guest.Snapshot().Email)
		return false, nil
	}

	a.guest.SetCode(input)
	if err := a.guest.SubmitCode(ctx); err != nil {
		if ctx.Err() != nil {
			return true, err
		}
		a.printf("Error: %s", common.UserMessage(err))
		return false, nil
	}
	return false, nil
}

// GuestLogout forgets the verified guest email.
func (a *App) GuestLogout(ctx context.Context) error {
	if err := services.GuestSignOut(ctx, a.store); err != nil {
		return err
	}
	a.guest.Reset()
	a.mu.Lock()
	a.listed = nil
	a.mu.Unlock()
	a.printf("Guest access removed")
	return nil
}
