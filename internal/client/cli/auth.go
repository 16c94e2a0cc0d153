package cli

import (
	"context"

	"github.com/dmitrijs2005/odooclient/internal/client/client"
	"github.com/dmitrijs2005/odooclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/odooclient/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for the database, login and password and authenticates.
// The last used database is offered as the default.
func (a *App) Login(ctx context.Context, _ []string) error {
	prompt := "Database"
	last, _ := a.repo.Get(ctx, metadata.KeyDatabase)
	if len(last) > 0 {
		prompt += " [" + string(last) + "]"
	}
	db, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if db == "" {
		db = string(last)
	}

	login, err := getSimpleText(a.reader, "Login", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	id, err := a.authService.Login(ctx, db, login, string(password))
	if err != nil {
		a.report(err)
		return err
	}
	a.println("Logged in as", id.Name, "("+id.Login+")")
	return nil
}

// Logout ends the session on the server when possible and always forgets it
// locally.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.authService.Logout(ctx); err != nil {
		a.report(err)
		return err
	}
	a.println("Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context, _ []string) error {
	id, err := a.authService.CurrentUser(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	if id == nil {
		a.println("Not logged in")
		return nil
	}
	a.println("Name:", id.Name)
	a.println("Login:", id.Login)
	a.println("Database:", id.DatabaseName)
	a.println("UID:", id.UID)
	a.println("Since:", id.LoginTime.Local().Format("2006-01-02 15:04"))
	return nil
}

// Status reports the local auth state and whether the server still accepts
// the session.
func (a *App) Status(ctx context.Context, _ []string) error {
	a.println("State:", a.authService.State().String())
	if !a.authService.IsAuthenticated(ctx) {
		return nil
	}
	if exp, ok := client.TokenExpiry(a.session.Session().AuthToken); ok {
		a.println("Token expires:", exp.Local().Format("2006-01-02 15:04:05"))
	}
	if a.authService.ValidateSession(ctx) {
		a.println("Session: valid")
	} else {
		a.println("Session: rejected by server")
	}
	return nil
}
