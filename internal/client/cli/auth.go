package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/eventbooking/internal/client/client"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errEmptyInput = errors.New("value must not be empty")

func (a *App) prompt(label string) (string, error) {
	return getSimpleText(a.reader, label, a.out)
}

func (a *App) promptRequired(label string) (string, error) {
	s, err := a.prompt(label)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", errEmptyInput
	}
	return s, nil
}

// Register prompts for a username, an email and a password and creates the
// account. Registration does not log in.
func (a *App) Register(ctx context.Context) error {
	username, err := a.promptRequired("Enter username")
	if err != nil {
		return err
	}
	email, err := a.promptRequired("Enter email")
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	if _, err := a.auth.Register(ctx, username, email, password); err != nil {
		return err
	}

	a.printf("Account %s created. You can now log in.\n", username)
	return nil
}

// Login prompts for credentials and starts a session. When the previous
// session ended while a command was running, that command's location is
// reported so the user can pick up where they left off.
func (a *App) Login(ctx context.Context) error {
	login, err := a.promptRequired("Enter email or username")
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, login, password)
	if err != nil {
		return err
	}
	a.setLocation(client.LocationHome)
	a.printf("Welcome, %s!\n", user.Username)

	loc, err := a.auth.RedirectAfterLogin(ctx)
	if err != nil {
		a.log.Warn(ctx, "failed to read redirect location", "error", err)
		return nil
	}
	if loc != "" {
		a.printf("You were at %s when your session expired.\n", loc)
	}
	return nil
}

// Logout ends the session. The local session is gone even when the server
// could not be told.
func (a *App) Logout(ctx context.Context) error {
	err := a.auth.Logout(ctx)
	a.printf("Logged out.\n")
	if err != nil {
		a.log.Warn(ctx, "server logout failed", "error", err)
	}
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		a.printf("Not logged in.\n")
		return nil
	}

	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Name())
	}
	a.printf("%s <%s>\n  id:    %s\n  roles: %s\n", u.Username, u.Email, u.ID, strings.Join(roles, ", "))
	return nil
}
