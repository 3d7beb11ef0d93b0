package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/favisend/internal/client/models"
	"github.com/dmitrijs2005/favisend/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, an email and a password and creates an
// account. On success the user is logged in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	reg := models.Registration{Username: username, Email: email, Password: string(password)}
	if err := a.session.Register(ctx, reg); err != nil {
		return err
	}

	a.printf("Welcome, %s!", a.session.Snapshot().User.Name())
	return nil
}

// Login prompts for an email (or username) and a password. A failed login
// leaves any current session in place.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter email or username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, identifier, string(password)); err != nil {
		return err
	}

	a.printf("Logged in as %s", a.session.Snapshot().User.Name())
	return nil
}

// Logout ends the account session. Guest access is kept; see GuestLogout.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.printf("Logged out")
	return nil
}

// WhoAmI prints the current account and guest identity.
func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.session.Snapshot()
	if u := snap.User; u != nil {
		a.printf("Logged in as %s <%s>, balance %.2f", u.Name(), u.Email, u.Balance)
	} else {
		a.printf("Not logged in")
	}
	if email := a.guestEmail(ctx); email != "" {
		a.printf("Guest access verified for %s", email)
	}
	return nil
}

// Profile prompts for the editable profile fields and sends the ones that
// were filled in.
func (a *App) Profile(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNoCredentials
	}

	var upd models.UserUpdate
	fields := []struct {
		prompt string
		dst    **string
	}{
		{"Display name", &upd.DisplayName},
		{"First name", &upd.FirstName},
		{"Last name", &upd.LastName},
		{"Phone number", &upd.PhoneNumber},
		{"Country", &upd.Country},
		{"City", &upd.City},
	}
	for _, f := range fields {
		v, err := getOptional(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if upd.Empty() {
		a.printf("Nothing to update")
		return nil
	}

	if err := a.session.UpdateUser(ctx, upd); err != nil {
		if !a.isLoggedIn() && !errors.Is(err, common.ErrValidation) {
			a.printf("Your session has ended, please log in again.")
		}
		return err
	}
	a.printf("Profile updated")
	return nil
}
