package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/odooclient/internal/client/models"
	"github.com/dmitrijs2005/odooclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/odooclient/internal/common"
	"github.com/dmitrijs2005/odooclient/internal/logging"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultAPIPath = "/api"

	// RefreshPath is appended to the API path to exchange a refresh token.
	RefreshPath = "/auth/refresh"
	// DatabaseListPath doubles as the session bootstrap call.
	DatabaseListPath = "/web/database/list"
)

// MsgNoServer is returned when no server address has been configured yet.
const MsgNoServer = "No server configured. Please set the server address first."

// URLSource resolves the currently configured backend base URL. An empty
// string means none is configured.
type URLSource interface {
	Get(ctx context.Context) (string, error)
}

// Options tune a SessionClient. Zero values fall back to DefaultAPIPath and
// DefaultTimeout; a nil Transport uses http.DefaultTransport.
type Options struct {
	APIPath   string
	Timeout   time.Duration
	Transport http.RoundTripper
}

// SessionClient is the single HTTP client shared by all services. It attaches
// the bearer token and session cookie to every call, captures reissued
// cookies, recovers once from a 401 via the refresh token, and turns every
// failure into an *Error.
type SessionClient struct {
	urls      URLSource
	repo      metadata.Repository
	logger    logging.Logger
	apiPath   string
	timeout   time.Duration
	transport http.RoundTripper

	mu      sync.RWMutex
	baseURL string
	http    *http.Client
	state   models.SessionState

	refreshGroup singleflight.Group

	hooksMu  sync.Mutex
	onLogout []func(ctx context.Context)
}

// NewSessionClient restores persisted tokens from repo and configures the
// HTTP client for the URL currently held by urls (which may be none yet).
func NewSessionClient(ctx context.Context, urls URLSource, repo metadata.Repository, logger logging.Logger, opts Options) (*SessionClient, error) {
	if opts.APIPath == "" {
		opts.APIPath = DefaultAPIPath
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	c := &SessionClient{
		urls:      urls,
		repo:      repo,
		logger:    logger.With("component", "session"),
		apiPath:   "/" + strings.Trim(opts.APIPath, "/"),
		timeout:   opts.Timeout,
		transport: opts.Transport,
	}

	if err := c.restoreTokens(ctx); err != nil {
		return nil, err
	}
	if err := c.Reconfigure(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *SessionClient) restoreTokens(ctx context.Context) error {
	access, err := c.repo.Get(ctx, metadata.KeyAuthToken)
	if err != nil {
		return fmt.Errorf("restore auth token: %w", err)
	}
	refresh, err := c.repo.Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("restore refresh token: %w", err)
	}

	c.mu.Lock()
	c.state.AuthToken = string(access)
	c.state.RefreshToken = string(refresh)
	c.mu.Unlock()
	return nil
}

// Reconfigure re-reads the base URL and rebuilds the underlying HTTP client.
// It must be called after the server address changes.
func (c *SessionClient) Reconfigure(ctx context.Context) error {
	base, err := c.urls.Get(ctx)
	if err != nil {
		return fmt.Errorf("resolve server url: %w", err)
	}
	c.configure(ctx, base)
	return nil
}

func (c *SessionClient) configure(ctx context.Context, base string) {
	hc := &http.Client{Timeout: c.timeout, Transport: c.transport}

	c.mu.Lock()
	prev := c.baseURL
	c.baseURL = strings.TrimRight(base, "/")
	c.http = hc
	c.mu.Unlock()

	if prev != base {
		c.logger.Info(ctx, "http client configured", "base_url", base)
	}
}

// ensureBaseURL re-resolves the base URL before a call so that a changed or
// removed server address never sends requests to the previous host.
func (c *SessionClient) ensureBaseURL(ctx context.Context) (string, *http.Client, error) {
	stored, err := c.urls.Get(ctx)
	if err != nil {
		return "", nil, &Error{Kind: KindConfig, Message: err.Error(), UserMessage: MsgNoServer, Err: err}
	}
	stored = strings.TrimRight(stored, "/")

	c.mu.RLock()
	current, hc := c.baseURL, c.http
	c.mu.RUnlock()

	if stored != current {
		c.configure(ctx, stored)
		current = stored
		c.mu.RLock()
		hc = c.http
		c.mu.RUnlock()
	}
	if current == "" {
		return "", nil, &Error{Kind: KindConfig, Message: "no server url", UserMessage: MsgNoServer, Err: ErrInvalidServerURL}
	}
	return current, hc, nil
}

// BaseURL returns the host the client currently targets.
func (c *SessionClient) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// APIPath returns the REST facade prefix, e.g. "/api".
func (c *SessionClient) APIPath() string { return c.apiPath }

// Session returns a copy of the current session state.
func (c *SessionClient) Session() models.SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SetTokens stores the access and refresh tokens in memory and durably.
// An empty value removes the corresponding token.
func (c *SessionClient) SetTokens(ctx context.Context, access, refresh string) error {
	err := c.repo.Atomic(ctx, func(ctx context.Context, repo metadata.Repository) error {
		if err := putOrDelete(ctx, repo, metadata.KeyAuthToken, access); err != nil {
			return err
		}
		return putOrDelete(ctx, repo, metadata.KeyRefreshToken, refresh)
	})
	if err != nil {
		return fmt.Errorf("persist tokens: %w", err)
	}

	c.mu.Lock()
	c.state.AuthToken = access
	c.state.RefreshToken = refresh
	c.mu.Unlock()
	return nil
}

func putOrDelete(ctx context.Context, repo metadata.Repository, key, value string) error {
	if value == "" {
		return repo.Delete(ctx, key)
	}
	return repo.Set(ctx, key, []byte(value))
}

// OnLogout registers fn to run after a forced logout.
func (c *SessionClient) OnLogout(fn func(ctx context.Context)) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.onLogout = append(c.onLogout, fn)
}

// ClearSession drops the in-memory session and wipes every durable session
// key together with cached collections. Server address and preferences stay.
func (c *SessionClient) ClearSession(ctx context.Context) error {
	c.mu.Lock()
	c.state.Clear()
	c.mu.Unlock()

	err := c.repo.Atomic(ctx, func(ctx context.Context, repo metadata.Repository) error {
		if err := repo.Delete(ctx, metadata.SessionKeys...); err != nil {
			return err
		}
		return repo.DeletePrefix(ctx, metadata.CachePrefix)
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (c *SessionClient) forceLogout(ctx context.Context, reason string) {
	c.logger.Warn(ctx, "forcing logout", "reason", reason)
	if err := c.ClearSession(ctx); err != nil {
		c.logger.Error(ctx, "failed to clear session", "error", err)
	}

	c.hooksMu.Lock()
	hooks := append([]func(context.Context){}, c.onLogout...)
	c.hooksMu.Unlock()
	for _, fn := range hooks {
		fn(ctx)
	}
}

// Request describes one call relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any

	// NoAuth sends the call without token or cookie.
	NoAuth bool

	retried bool
}

// Response is a completed call with a 2xx status. Failed calls never produce
// a Response; they come back as *Error.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &Error{Kind: KindUnknown, Status: r.Status, Message: "malformed response: " + err.Error(), UserMessage: MsgUnexpected, Err: err}
	}
	return nil
}

// Do sends req through the request and response pipeline. Each call gets its
// own one-shot retry allowance.
func (c *SessionClient) Do(ctx context.Context, req Request) (*Response, error) {
	req.retried = false
	return c.do(ctx, &req)
}

func (c *SessionClient) do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.Status == http.StatusUnauthorized:
		return c.recoverUnauthorized(ctx, req, resp)
	case resp.Status >= http.StatusBadRequest:
		return nil, statusError(resp)
	}

	c.captureCookies(ctx, resp.Header)
	return resp, nil
}

func (c *SessionClient) recoverUnauthorized(ctx context.Context, req *Request, resp *Response) (*Response, error) {
	failure := statusError(resp)

	if req.retried {
		c.forceLogout(ctx, "replayed request rejected")
		return nil, failure
	}
	req.retried = true

	if c.Session().RefreshToken == "" {
		c.forceLogout(ctx, "no refresh token")
		return nil, failure
	}

	if err := c.refresh(ctx); err != nil {
		c.forceLogout(ctx, "token refresh failed")
		failure.Err = errors.Join(failure.Err, err)
		return nil, failure
	}

	c.logger.Debug(ctx, "replaying request after token refresh", "method", req.Method, "path", req.Path)
	return c.do(ctx, req)
}

func (c *SessionClient) send(ctx context.Context, req *Request) (*Response, error) {
	base, hc, err := c.ensureBaseURL(ctx)
	if err != nil {
		return nil, err
	}

	target := base + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &Error{Kind: KindValidation, Message: "encode body: " + err.Error(), UserMessage: MsgInvalidRequest, Err: err}
		}
		body = bytes.NewReader(b)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &Error{Kind: KindConfig, Message: err.Error(), UserMessage: MsgInvalidURL, Err: err}
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(common.RequestIDHeaderName, requestID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if !req.NoAuth {
		st := c.Session()
		if st.AuthToken != "" {
			httpReq.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+st.AuthToken)
		}
		if st.Cookie != "" {
			httpReq.Header.Set(common.CookieHeaderName, st.Cookie)
		}
	}

	httpResp, err := hc.Do(httpReq)
	if err != nil {
		c.logger.Warn(ctx, "request failed", "method", method, "path", req.Path, "request_id", requestID, "error", err)
		return nil, &Error{Kind: KindNetwork, Message: err.Error(), UserMessage: MsgNetwork, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Status: httpResp.StatusCode, Message: err.Error(), UserMessage: MsgNetwork, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}

	c.logger.Debug(ctx, "request done", "method", method, "path", req.Path, "status", httpResp.StatusCode, "request_id", requestID)
	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}

// captureCookies replaces the stored cookie string with the name=value parts
// of the response's Set-Cookie headers. Odoo reissues the full session cookie
// on each call, so nothing is merged.
func (c *SessionClient) captureCookies(ctx context.Context, h http.Header) {
	cookie := ParseSetCookie(h.Values(common.SetCookieHeaderName))
	if cookie == "" {
		return
	}

	c.mu.Lock()
	c.state.Cookie = cookie
	c.mu.Unlock()

	c.logger.Debug(ctx, "session cookie captured", "names", cookieNames(cookie))
}

// ParseSetCookie reduces Set-Cookie header values to "n1=v1; n2=v2",
// discarding attributes.
func ParseSetCookie(values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		pair, _, _ := strings.Cut(v, ";")
		pair = strings.TrimSpace(pair)
		if name, _, ok := strings.Cut(pair, "="); ok && strings.TrimSpace(name) != "" {
			parts = append(parts, pair)
		}
	}
	return strings.Join(parts, "; ")
}

func cookieNames(cookie string) []string {
	var names []string
	for _, part := range strings.Split(cookie, "; ") {
		name, _, _ := strings.Cut(part, "=")
		names = append(names, name)
	}
	return names
}

// statusError annotates a failed response with its kind and user message.
func statusError(resp *Response) *Error {
	msg := serverMessage(resp.Body)
	return &Error{
		Kind:        KindForStatus(resp.Status),
		Status:      resp.Status,
		Message:     msg,
		UserMessage: statusUserMessage(resp.Status, msg),
		Err:         fmt.Errorf("http status %d", resp.Status),
	}
}

// serverMessage digs a human-readable message out of common error bodies:
// {"message": ...}, {"error": "..."}, {"error": {"message": ...}} or
// {"error": {"data": {"message": ...}}}.
func serverMessage(body []byte) string {
	var env struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return strings.TrimSpace(string(body))
	}
	if env.Message != "" {
		return env.Message
	}
	if len(env.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(env.Error, &s); err == nil {
		return s
	}
	var rpcErr RPCError
	if err := json.Unmarshal(env.Error, &rpcErr); err == nil {
		return rpcErr.HumanMessage()
	}
	return ""
}

// refresh exchanges the refresh token for a new access token. Concurrent
// callers share a single exchange.
func (c *SessionClient) refresh(ctx context.Context) error {
	_, err, shared := c.refreshGroup.Do("refresh", func() (any, error) {
		return nil, c.exchangeRefreshToken(ctx)
	})
	if shared {
		c.logger.Debug(ctx, "joined in-flight token refresh")
	}
	return err
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (c *SessionClient) exchangeRefreshToken(ctx context.Context) error {
	refreshToken := c.Session().RefreshToken
	if refreshToken == "" {
		return common.ErrRefreshTokenMissing
	}

	base, hc, err := c.ensureBaseURL(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+c.apiPath+RefreshPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(common.RequestIDHeaderName, uuid.NewString())

	resp, err := hc.Do(httpReq)
	if err != nil {
		return fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh rejected with status %d: %w", resp.StatusCode, common.ErrInvalidToken)
	}

	var out refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	if out.AccessToken == "" {
		return fmt.Errorf("refresh response without access token: %w", common.ErrInvalidToken)
	}
	if out.RefreshToken == "" {
		out.RefreshToken = refreshToken
	}

	if err := c.SetTokens(ctx, out.AccessToken, out.RefreshToken); err != nil {
		return err
	}
	c.logger.Info(ctx, "access token refreshed")
	return nil
}
