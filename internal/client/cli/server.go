package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/odooclient/internal/client/serveraddr"
)

// SetServer probes and stores the server address, then points the session
// client at it.
func (a *App) SetServer(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return a.saveServer(ctx, args[0])
}

// ScanQR accepts the text of a scanned QR code: a bare URL or
// {"url": ..., "name": ...}.
func (a *App) ScanQR(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	payload, err := serveraddr.ParseFromEncodedPayload(strings.Join(args, " "))
	if err != nil {
		a.report(err)
		return err
	}
	if payload.Name != "" {
		a.println("Server:", payload.Name)
	}
	return a.saveServer(ctx, payload.URL)
}

func (a *App) saveServer(ctx context.Context, raw string) error {
	url, err := a.store.Save(ctx, raw)
	if err != nil {
		a.report(err)
		return err
	}
	if err := a.session.Reconfigure(ctx); err != nil {
		a.report(err)
		return err
	}
	a.setMode(ModeOnline)
	a.println("Server set to", url)
	return nil
}

func (a *App) ServerInfo(ctx context.Context, _ []string) error {
	url, err := a.store.Get(ctx)
	if err != nil || url == "" {
		a.println("No server configured")
		return err
	}
	info, err := a.store.GetServerInfo(ctx, url)
	if err != nil {
		a.report(err)
		return err
	}
	a.println("URL:", url)
	a.println("Version:", info.ServerVersion)
	a.println("Series:", info.ServerSerie)
	return nil
}

func (a *App) Databases(ctx context.Context, _ []string) error {
	dbs, err := a.authService.ListDatabases(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	for _, db := range dbs {
		a.println(" -", db)
	}
	return nil
}

// Reset returns the client to its first-run state: the session is ended,
// the server address is forgotten and the session client stops targeting
// the old host. Branding and module order are kept.
func (a *App) Reset(ctx context.Context, _ []string) error {
	if err := a.authService.Logout(ctx); err != nil {
		a.report(err)
		return err
	}
	if err := a.store.Reset(ctx); err != nil {
		a.report(err)
		return err
	}
	if err := a.session.Reconfigure(ctx); err != nil {
		a.report(err)
		return err
	}
	a.setMode(ModeDisabled)
	a.println("Client reset. Use 'server <url>' to connect again.")
	return nil
}
