package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mediashare/internal/client/models"
	"github.com/dmitrijs2005/mediashare/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errPasswordMismatch = errors.New("passwords must match")

// Register prompts for a username, email and password (twice), checks that
// the username and email are free and creates the account. It does not log
// the user in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	if av := a.accounts.UsernameAvailable(ctx, username); !av.Available {
		fmt.Fprintln(a.out, av.Message)
		return errors.New(av.Message)
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if av := a.accounts.EmailAvailable(ctx, email); !av.Available {
		fmt.Fprintln(a.out, av.Message)
		return errors.New(av.Message)
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getSecret(a.out, "Confirm password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		a.report(ctx, "register", errPasswordMismatch)
		return errPasswordMismatch
	}

	msg, err := a.accounts.Register(ctx, models.RegisterCredentials{
		Username: username,
		Email:    email,
		Password: string(password),
	})
	if err != nil {
		a.report(ctx, "register", err)
		return err
	}

	if msg == "" {
		msg = "Registration successful"
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// Login prompts the user for credentials and authenticates. The server's
// message, e.g. "Invalid credentials", is shown on failure.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.session.Login(ctx, models.Credentials{Username: username, Password: string(password)})
	if err != nil {
		a.report(ctx, "login", err)
		return err
	}

	a.resetLikes()
	fmt.Fprintf(a.out, "Logged in as %s\n", a.session.CurrentUser().Username)
	return nil
}

// Logout forgets the stored token and the current user. Failing to delete
// the token is logged; the user is logged out regardless.
func (a *App) Logout(ctx context.Context) error {
	if sf := a.session.Logout(ctx); !sf.OK() {
		sf.Log(ctx, a.logger)
	}
	a.resetLikes()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the current user's profile.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.session.CurrentUser()
	if u == nil {
		a.report(ctx, "whoami", common.ErrNotLoggedIn)
		return common.ErrNotLoggedIn
	}
	fmt.Fprintf(a.out, "%s <%s>\n", u.Username, u.Email)
	fmt.Fprintf(a.out, "  id: %d  level: %s  since: %s\n", u.UserID, u.LevelName, u.CreatedAt.Format("2006-01-02"))
	return nil
}

// Profile prompts for a new username, email and password. An empty answer
// keeps the current value.
func (a *App) Profile(ctx context.Context) error {
	u := a.session.CurrentUser()
	if u == nil {
		a.report(ctx, "profile", common.ErrNotLoggedIn)
		return common.ErrNotLoggedIn
	}

	var update models.ProfileUpdate

	username, err := getSimpleText(a.reader, fmt.Sprintf("New username (empty keeps %q)", u.Username), a.out)
	if err != nil {
		return err
	}
	if username != "" && username != u.Username {
		if av := a.accounts.UsernameAvailable(ctx, username); !av.Available {
			fmt.Fprintln(a.out, av.Message)
			return errors.New(av.Message)
		}
		update.Username = username
	}

	email, err := getSimpleText(a.reader, fmt.Sprintf("New email (empty keeps %q)", u.Email), a.out)
	if err != nil {
		return err
	}
	if email != "" && email != u.Email {
		if av := a.accounts.EmailAvailable(ctx, email); !av.Available {
			fmt.Fprintln(a.out, av.Message)
			return errors.New(av.Message)
		}
		update.Email = email
	}

	password, err := getSecret(a.out, "New password (empty keeps current): ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	update.Password = string(password)

	if update == (models.ProfileUpdate{}) {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	if err := a.session.UpdateProfile(ctx, update); err != nil {
		a.report(ctx, "profile", err)
		return err
	}
	fmt.Fprintln(a.out, "Profile updated")
	return nil
}
