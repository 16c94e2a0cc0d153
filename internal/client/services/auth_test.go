package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/odooclient/internal/client/client"
	"github.com/dmitrijs2005/odooclient/internal/client/models"
	"github.com/dmitrijs2005/odooclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/odooclient/internal/logging"
)

func newAuth(t *testing.T) (*AuthService, *fakeAPI, metadata.Repository) {
	t.Helper()
	repo := setupRepo(t)
	api := newFakeAPI(repo)
	a := NewAuthService(context.Background(), api, repo, logging.Nop())
	a.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return a, api, repo
}

func TestLogin_MissingFields(t *testing.T) {
	cases := []struct {
		name                string
		db, login, password string
	}{
		{"no database", "", "admin", "admin"},
		{"no login", "acme", "  ", "admin"},
		{"no password", "acme", "admin", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, api, _ := newAuth(t)

			id, err := a.Login(context.Background(), tc.db, tc.login, tc.password)
			require.Nil(t, id)
			apiErr := client.AsError(err)
			require.Equal(t, client.KindValidation, apiErr.Kind)
			require.Equal(t, client.MsgMissingFields, apiErr.UserMessage)
			require.Empty(t, api.calls)
			require.Equal(t, Unauthenticated, a.State())
		})
	}
}

func TestLogin_UIDFalse_FailsAndPersistsNothing(t *testing.T) {
	a, api, repo := newAuth(t)
	api.rpc[AuthenticatePath] = func(p map[string]any) (any, error) {
		return map[string]any{"uid": false}, nil
	}

	id, err := a.Login(context.Background(), "acme", "admin", "wrong")
	require.Nil(t, id)

	apiErr := client.AsError(err)
	require.Equal(t, client.KindAuthentication, apiErr.Kind)
	require.Equal(t, client.MsgAuthFailed, apiErr.UserMessage)

	require.Nil(t, getMeta(t, repo, metadata.KeyUserIdentity))
	require.Nil(t, getMeta(t, repo, metadata.KeyDatabase))
	require.Nil(t, getMeta(t, repo, metadata.KeyAuthToken))
	require.Equal(t, Unauthenticated, a.State())
	require.False(t, a.IsAuthenticated(context.Background()))
}

func TestLogin_Success_PersistsIdentityAndDatabase(t *testing.T) {
	a, api, repo := newAuth(t)
	var got map[string]any
	api.rpc[AuthenticatePath] = func(p map[string]any) (any, error) {
		got = p
		return map[string]any{
			"uid":        2,
			"username":   "admin",
			"name":       "Mitchell Admin",
			"db":         "acme",
			"partner_id": 3,
			"company_id": 1,
			"session_id": "sess-abc",
		}, nil
	}
	ctx := context.Background()

	id, err := a.Login(ctx, " acme ", "admin", "admin")
	require.NoError(t, err)

	require.Equal(t, map[string]any{"db": "acme", "login": "admin", "password": "admin"}, got)
	require.Equal(t, 1, api.initCalls, "session bootstrap runs when no cookie is held")

	want := &models.UserIdentity{
		UID: 2, Login: "admin", Name: "Mitchell Admin", DatabaseName: "acme",
		CompanyID: 1, PartnerID: 3, SessionID: "sess-abc",
		LoginTime: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	require.Equal(t, want, id)

	var stored models.UserIdentity
	require.NoError(t, json.Unmarshal(getMeta(t, repo, metadata.KeyUserIdentity), &stored))
	require.Equal(t, *want, stored)
	require.Equal(t, []byte("acme"), getMeta(t, repo, metadata.KeyDatabase))
	require.Equal(t, "sess-abc", api.state.AuthToken)

	require.Equal(t, Authenticated, a.State())
	require.True(t, a.IsAuthenticated(ctx))

	cur, err := a.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, want, cur)
}

func TestLogin_FallsBackToCookieAndUserCompanies(t *testing.T) {
	a, api, _ := newAuth(t)
	api.state.Cookie = "session_id=cookie-sid; frontend_lang=en_US"
	api.rpc[AuthenticatePath] = func(p map[string]any) (any, error) {
		return map[string]any{
			"uid":            7,
			"partner_id":     []any{9, "Jane"},
			"company_id":     false,
			"user_companies": map[string]any{"current_company": 4},
			"access_token":   "jwt-access",
			"refresh_token":  "jwt-refresh",
		}, nil
	}

	id, err := a.Login(context.Background(), "acme", "jane", "secret")
	require.NoError(t, err)

	assert.Equal(t, 0, api.initCalls)
	assert.Equal(t, "jane", id.Login)
	assert.Equal(t, "acme", id.DatabaseName)
	assert.Equal(t, int64(9), id.PartnerID)
	assert.Equal(t, int64(4), id.CompanyID)
	assert.Equal(t, "cookie-sid", id.SessionID)
	assert.Equal(t, "jwt-access", api.state.AuthToken)
	assert.Equal(t, "jwt-refresh", api.state.RefreshToken)
}

func TestLogin_RPCErrorEnvelope_IsAuthenticationError(t *testing.T) {
	a, api, repo := newAuth(t)
	api.rpc[AuthenticatePath] = func(p map[string]any) (any, error) {
		return nil, &client.Error{Kind: client.KindRPC, Status: 200, Message: "Access Denied", UserMessage: "Access Denied"}
	}

	_, err := a.Login(context.Background(), "acme", "admin", "wrong")
	apiErr := client.AsError(err)
	require.Equal(t, client.KindAuthentication, apiErr.Kind)
	require.Equal(t, "Access Denied", apiErr.UserMessage)
	require.Nil(t, getMeta(t, repo, metadata.KeyUserIdentity))
}

func TestLogin_TransportErrorPassesThrough(t *testing.T) {
	a, api, _ := newAuth(t)
	api.rpc[AuthenticatePath] = func(p map[string]any) (any, error) {
		return nil, &client.Error{Kind: client.KindNetwork, Message: "dial tcp: refused", UserMessage: client.MsgNetwork}
	}

	_, err := a.Login(context.Background(), "acme", "admin", "admin")
	require.True(t, errors.Is(err, client.ErrUnavailable))
	require.Equal(t, Unauthenticated, a.State())
}

func TestLogin_NoSessionIssued_Fails(t *testing.T) {
	a, api, repo := newAuth(t)
	api.rpc[AuthenticatePath] = func(p map[string]any) (any, error) {
		return map[string]any{"uid": 2}, nil
	}

	_, err := a.Login(context.Background(), "acme", "admin", "admin")
	require.Equal(t, client.KindAuthentication, client.AsError(err).Kind)
	require.Nil(t, getMeta(t, repo, metadata.KeyUserIdentity))
}

func TestLogout_ServerFailureIsNotPropagated(t *testing.T) {
	a, api, repo := newAuth(t)
	ctx := context.Background()
	api.rpc[AuthenticatePath] = func(p map[string]any) (any, error) {
		return map[string]any{"uid": 2, "session_id": "s"}, nil
	}
	_, err := a.Login(ctx, "acme", "admin", "admin")
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, metadata.KeyServerURL, []byte("https://odoo.example.com")))

	api.rpc[SessionDestroyPath] = func(p map[string]any) (any, error) {
		return nil, &client.Error{Kind: client.KindNetwork, UserMessage: client.MsgNetwork}
	}

	require.NoError(t, a.Logout(ctx))
	require.Equal(t, 1, api.clearCalls)
	require.Contains(t, api.calls, SessionDestroyPath)
	require.Equal(t, Unauthenticated, a.State())
	require.False(t, a.IsAuthenticated(ctx))
	require.Nil(t, getMeta(t, repo, metadata.KeyUserIdentity))
	require.Equal(t, []byte("https://odoo.example.com"), getMeta(t, repo, metadata.KeyServerURL))

	cur, err := a.CurrentUser(ctx)
	require.NoError(t, err)
	require.Nil(t, cur)
}

func TestValidateSession(t *testing.T) {
	cases := []struct {
		name string
		h    rpcHandler
		want bool
	}{
		{"alive", func(map[string]any) (any, error) { return map[string]any{"uid": 2}, nil }, true},
		{"no uid", func(map[string]any) (any, error) { return map[string]any{"uid": false}, nil }, false},
		{"expired", func(map[string]any) (any, error) {
			return nil, &client.Error{Kind: client.KindAuthorization, UserMessage: client.MsgSessionExpired}
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, api, _ := newAuth(t)
			api.rpc[SessionInfoPath] = tc.h
			require.Equal(t, tc.want, a.ValidateSession(context.Background()))
		})
	}
}

func TestForcedLogout_ResetsState(t *testing.T) {
	a, api, _ := newAuth(t)
	ctx := context.Background()
	api.rpc[AuthenticatePath] = func(p map[string]any) (any, error) {
		return map[string]any{"uid": 2, "session_id": "s"}, nil
	}
	_, err := a.Login(ctx, "acme", "admin", "admin")
	require.NoError(t, err)
	require.Equal(t, Authenticated, a.State())

	api.expire(ctx)

	require.Equal(t, Unauthenticated, a.State())
	require.False(t, a.IsAuthenticated(ctx))
}

func TestNewAuthService_RestoresAuthenticatedState(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	api := newFakeAPI(repo)
	api.state.AuthToken = "persisted"
	require.NoError(t, repo.Set(ctx, metadata.KeyUserIdentity, []byte(`{"uid":2}`)))

	a := NewAuthService(ctx, api, repo, logging.Nop())
	require.Equal(t, Authenticated, a.State())
	require.Len(t, api.hooks, 1)
}

func TestListDatabases(t *testing.T) {
	a, api, _ := newAuth(t)
	api.rpc[client.DatabaseListPath] = func(map[string]any) (any, error) {
		return []string{"acme", "demo"}, nil
	}

	dbs, err := a.ListDatabases(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"acme", "demo"}, dbs)
}

func TestAuthState_String(t *testing.T) {
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
	assert.Equal(t, "authenticating", Authenticating.String())
	assert.Equal(t, "authenticated", Authenticated.String())
}
