package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/odooclient/internal/client/client"
	"github.com/dmitrijs2005/odooclient/internal/client/config"
	"github.com/dmitrijs2005/odooclient/internal/client/models"
	"github.com/dmitrijs2005/odooclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/odooclient/internal/client/serveraddr"
	"github.com/dmitrijs2005/odooclient/internal/client/services"
	"github.com/dmitrijs2005/odooclient/internal/client/storage"
	"github.com/dmitrijs2005/odooclient/internal/filex"
	"github.com/dmitrijs2005/odooclient/internal/logging"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

const onlineCheckInterval = 30 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	repo    metadata.Repository
	store   *serveraddr.Store
	session *client.SessionClient

	authService *services.AuthService
	prefs       *services.Preferences
	contacts    *services.Resource[models.Contact]
	leads       *services.Resource[models.Lead]
	employees   *services.Resource[models.Employee]
	countries   *services.Resource[models.Country]
	languages   *services.Resource[models.Language]

	Mode   Mode
	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens local storage and builds the client stack. A server URL from
// the configuration is saved (and probed) before the session client starts.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogLevel, os.Stderr)

	if err := filex.EnsureParentDir(c.StoragePath); err != nil {
		return nil, fmt.Errorf("error preparing storage directory: %w", err)
	}

	db, err := storage.Open(ctx, c.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	repo := metadata.NewSQLiteRepository(db)

	store := serveraddr.NewStore(repo, logger, serveraddr.Options{ProbeTimeout: c.ProbeTimeout})
	if c.ServerURL != "" {
		if _, err := store.Save(ctx, c.ServerURL); err != nil {
			logger.Warn(ctx, "configured server url not saved", "url", c.ServerURL, "error", err)
		}
	}

	session, err := client.NewSessionClient(ctx, store, repo, logger, client.Options{APIPath: c.APIPath, Timeout: c.RequestTimeout})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ropts := services.ResourceOptions{TTL: c.CacheTTL}
	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repo:        repo,
		store:       store,
		session:     session,
		authService: services.NewAuthService(ctx, session, repo, logger),
		prefs:       services.NewPreferences(repo, logger),
		contacts:    services.NewContacts(session, repo, logger, ropts),
		leads:       services.NewLeads(session, repo, logger, ropts),
		employees:   services.NewEmployees(session, repo, logger, ropts),
		countries:   services.NewCountries(session, repo, logger, ropts),
		languages:   services.NewLanguages(session, repo, logger, ropts),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.authService.State() == services.Authenticated
}

// checkOnline probes the configured server and updates Mode.
func (a *App) checkOnline(ctx context.Context) {
	url, err := a.store.Get(ctx)
	if err != nil || url == "" {
		a.setMode(ModeDisabled)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.store.TestConnection(ctx, url); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// report prints the message a user should see for err.
func (a *App) report(err error) {
	color.New(color.FgRed).Fprintln(a.out, "Error:", client.AsError(err).UserMessage)
}
