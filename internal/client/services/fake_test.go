package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/odooclient/internal/client/client"
	"github.com/dmitrijs2005/odooclient/internal/client/models"
	"github.com/dmitrijs2005/odooclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/odooclient/internal/client/storage"
)

// ---- helpers ----

func setupRepo(t *testing.T) metadata.Repository {
	t.Helper()
	db, err := storage.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return metadata.NewSQLiteRepository(db)
}

func getMeta(t *testing.T, repo metadata.Repository, k string) []byte {
	t.Helper()
	v, err := repo.Get(context.Background(), k)
	require.NoError(t, err)
	return v
}

// ---- fake session API ----

// rpcHandler answers one JSON-RPC path. The returned value is marshalled
// into the caller's result.
type rpcHandler func(params map[string]any) (any, error)

// fakeAPI implements SessionAPI for unit tests.
type fakeAPI struct {
	repo  metadata.Repository
	state models.SessionState

	rpc map[string]rpcHandler
	do  func(req client.Request) (*client.Response, error)

	calls      []string
	requests   []client.Request
	initCalls  int
	clearCalls int
	hooks      []func(context.Context)
}

func newFakeAPI(repo metadata.Repository) *fakeAPI {
	return &fakeAPI{repo: repo, rpc: map[string]rpcHandler{}}
}

func (f *fakeAPI) Do(ctx context.Context, req client.Request) (*client.Response, error) {
	f.requests = append(f.requests, req)
	if f.do == nil {
		return &client.Response{Status: 200}, nil
	}
	return f.do(req)
}

func (f *fakeAPI) Call(ctx context.Context, path string, params any, result any) error {
	f.calls = append(f.calls, path)
	h, ok := f.rpc[path]
	if !ok {
		return nil
	}

	var p map[string]any
	if params != nil {
		b, _ := json.Marshal(params)
		_ = json.Unmarshal(b, &p)
	}
	res, err := h(p)
	if err != nil {
		return err
	}
	if result == nil || res == nil {
		return nil
	}
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, result)
}

func (f *fakeAPI) InitializeSession(ctx context.Context) bool {
	f.initCalls++
	return true
}

func (f *fakeAPI) SetTokens(ctx context.Context, access, refresh string) error {
	f.state.AuthToken = access
	f.state.RefreshToken = refresh
	if err := f.repo.Set(ctx, metadata.KeyAuthToken, []byte(access)); err != nil {
		return err
	}
	if refresh == "" {
		return f.repo.Delete(ctx, metadata.KeyRefreshToken)
	}
	return f.repo.Set(ctx, metadata.KeyRefreshToken, []byte(refresh))
}

func (f *fakeAPI) ClearSession(ctx context.Context) error {
	f.clearCalls++
	f.state.Clear()
	if err := f.repo.Delete(ctx, metadata.SessionKeys...); err != nil {
		return err
	}
	return f.repo.DeletePrefix(ctx, metadata.CachePrefix)
}

func (f *fakeAPI) Session() models.SessionState { return f.state }

func (f *fakeAPI) OnLogout(fn func(ctx context.Context)) { f.hooks = append(f.hooks, fn) }

func (f *fakeAPI) APIPath() string { return "/api" }

// expire simulates the session client's forced logout.
func (f *fakeAPI) expire(ctx context.Context) {
	_ = f.ClearSession(ctx)
	for _, fn := range f.hooks {
		fn(ctx)
	}
}

func jsonResponse(t *testing.T, status int, v any) *client.Response {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return &client.Response{Status: status, Body: b}
}
