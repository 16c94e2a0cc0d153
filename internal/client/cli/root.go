package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := ""
	if id, err := a.authService.CurrentUser(context.Background()); err == nil && id != nil && a.isLoggedIn() {
		s = id.Login + "@" + id.DatabaseName + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root prints the welcome line, starts the connectivity watcher and runs the
// REPL until the user leaves.
func (a *App) Root(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Welcome to the Odoo CLI (type 'help' for commands)")
	if !a.store.HasURL(ctx) {
		a.println("No server configured yet. Use 'server <url>' or 'qr <payload>'.")
	}

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
