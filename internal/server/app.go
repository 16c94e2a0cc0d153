// Package server runs the mock Odoo backend used for local development of
// the client. It wires configuration, logging and demo data around the fake
// server in internal/odootest and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/odooclient/internal/logging"
	"github.com/dmitrijs2005/odooclient/internal/odootest"
	"github.com/dmitrijs2005/odooclient/internal/server/config"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	odoo   *odootest.Server
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(c.LogLevel, os.Stdout)

	odoo, err := odootest.New(odootest.Options{
		Databases: []string{c.Database},
		Users: []odootest.User{
			{UID: 2, Login: c.AdminLogin, Password: c.AdminPassword, Name: "Mitchell Admin", PartnerID: 3, CompanyID: 1},
		},
		Secret:            []byte(c.SecretKey),
		AccessTTL:         c.AccessTokenValidityDuration,
		RefreshTTL:        c.RefreshTokenValidityDuration,
		UIDFalseOnFailure: c.UIDFalseOnFailure,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init mock server: %w", err)
	}
	SeedDemoData(odoo)

	return &App{config: c, logger: logger, odoo: odoo}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	e := app.odoo.Echo()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "shutdown failed", "error", err)
		}
	}()

	app.logger.Info(ctx, "mock odoo listening", "addr", app.config.Addr, "database", app.config.Database)
	if err := e.Start(app.config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.logger.Info(context.Background(), "stopped")
}
