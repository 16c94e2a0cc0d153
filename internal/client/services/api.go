// Package services holds the application services of the Odoo client:
// authentication, cached resource access and stored preferences. Services are
// plain constructed values; screens receive them by injection.
package services

import (
	"context"

	"github.com/dmitrijs2005/odooclient/internal/client/client"
	"github.com/dmitrijs2005/odooclient/internal/client/models"
)

// SessionAPI is the part of client.SessionClient the services depend on.
type SessionAPI interface {
	Do(ctx context.Context, req client.Request) (*client.Response, error)
	Call(ctx context.Context, path string, params any, result any) error
	InitializeSession(ctx context.Context) bool
	SetTokens(ctx context.Context, access, refresh string) error
	ClearSession(ctx context.Context) error
	Session() models.SessionState
	OnLogout(fn func(ctx context.Context))
	APIPath() string
}

var _ SessionAPI = (*client.SessionClient)(nil)
