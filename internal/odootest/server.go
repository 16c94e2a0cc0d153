// Package odootest is an in-process fake Odoo backend. It speaks the JSON-RPC
// session endpoints and a REST resource facade closely enough to exercise the
// client end to end: session cookies, bearer tokens with refresh, and the
// error statuses the client classifies.
package odootest

import (
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/odooclient/internal/logging"
	"github.com/dmitrijs2005/odooclient/internal/shared"
)

// User is an account the fake server accepts.
type User struct {
	UID       int64
	Login     string
	Password  string
	Name      string
	PartnerID int64
	CompanyID int64
}

// Options configure a fake server. DefaultOptions gives one database and
// one admin user.
type Options struct {
	Databases  []string
	Users      []User
	Secret     []byte
	APIPath    string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	BcryptCost int

	// UIDFalseOnFailure answers bad credentials with 200 {"uid": false}
	// instead of an AccessDenied error envelope.
	UIDFalseOnFailure bool

	Logger logging.Logger
}

// DefaultOptions is a single "acme" database with admin/admin.
func DefaultOptions() Options {
	return Options{
		Databases: []string{"acme"},
		Users: []User{
			{UID: 2, Login: "admin", Password: "admin", Name: "Mitchell Admin", PartnerID: 3, CompanyID: 1},
		},
		Secret:     []byte("odootest-secret"),
		APIPath:    "/api",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
}

type account struct {
	User
	hash []byte
}

type collection struct {
	nextID int64
	rows   []map[string]any
}

// Server is the fake backend. All exported methods are safe for concurrent use.
type Server struct {
	echo   *echo.Echo
	opts   Options
	logger logging.Logger

	mu       sync.Mutex
	accounts map[string]*account
	sessions map[string]int64
	refresh  map[string]int64
	issued   []string
	revoked  map[string]bool
	records  map[string]*collection
	hits     map[string]int
	failNext []int
}

// New hashes the configured passwords and builds the routes. Serve it with
// Handler, for example through httptest.NewServer.
func New(opts Options) (*Server, error) {
	def := DefaultOptions()
	if len(opts.Databases) == 0 {
		opts.Databases = def.Databases
	}
	if len(opts.Secret) == 0 {
		opts.Secret = def.Secret
	}
	if opts.APIPath == "" {
		opts.APIPath = def.APIPath
	}
	if opts.AccessTTL == 0 {
		opts.AccessTTL = def.AccessTTL
	}
	if opts.RefreshTTL == 0 {
		opts.RefreshTTL = def.RefreshTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	s := &Server{
		opts:     opts,
		logger:   opts.Logger.With("component", "odootest"),
		accounts: make(map[string]*account, len(opts.Users)),
		sessions: make(map[string]int64),
		refresh:  make(map[string]int64),
		revoked:  make(map[string]bool),
		records:  make(map[string]*collection),
		hits:     make(map[string]int),
	}

	for _, u := range opts.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), opts.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", u.Login, err)
		}
		s.accounts[u.Login] = &account{User: u, hash: hash}
	}

	s.echo = s.routes()
	return s, nil
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(s.countHits)

	e.POST("/web/webclient/version_info", s.rpc(s.versionInfo))
	e.POST("/web/database/list", s.rpc(s.databaseList))
	e.POST("/web/session/authenticate", s.rpc(s.authenticate))
	e.POST("/web/session/get_session_info", s.rpc(s.sessionInfo))
	e.POST("/web/session/destroy", s.rpc(s.destroy))

	api := e.Group(s.opts.APIPath)
	api.POST("/auth/refresh", s.refreshToken)

	res := api.Group("", s.requireAuth, s.injectFailures)
	res.GET("/:model", s.listRecords)
	res.POST("/:model", s.createRecord)
	res.GET("/:model/:id", s.getRecord)
	res.PUT("/:model/:id", s.updateRecord)
	res.DELETE("/:model/:id", s.deleteRecord)

	return e
}

// Handler exposes the server for httptest or an http.Server.
func (s *Server) Handler() http.Handler { return s.echo }

// Echo returns the underlying router, for Start/Shutdown.
func (s *Server) Echo() *echo.Echo { return s.echo }

func (s *Server) countHits(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		s.mu.Lock()
		s.hits[path]++
		s.mu.Unlock()

		err := next(c)
		s.logger.Debug(c.Request().Context(), "request", "method", c.Request().Method, "path", path, "status", c.Response().Status)
		return err
	}
}

// Hits is the number of requests seen for path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// Seed adds rows to model, assigning ids to rows that lack one.
func (s *Server) Seed(model string, rows ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collection(model)
	for _, r := range rows {
		row := cloneRow(r)
		if id, ok := toInt64(row["id"]); ok && id > 0 {
			if id >= col.nextID {
				col.nextID = id + 1
			}
		} else {
			row["id"] = col.nextID
			col.nextID++
		}
		col.rows = append(col.rows, row)
	}
}

// Records returns a copy of model's rows ordered by id.
func (s *Server) Records(model string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collection(model)
	out := make([]map[string]any, 0, len(col.rows))
	for _, r := range col.rows {
		out = append(out, cloneRow(r))
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := toInt64(out[i]["id"])
		b, _ := toInt64(out[j]["id"])
		return a < b
	})
	return out
}

// FailNext makes the next resource calls answer with the given statuses,
// one per call.
func (s *Server) FailNext(statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = append(s.failNext, statuses...)
}

// ExpireAccessTokens revokes every access token issued so far. Refresh
// tokens keep working.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.issued {
		s.revoked[t] = true
	}
}

// RevokeRefreshTokens makes every outstanding refresh token unusable.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = make(map[string]int64)
}

// DropSessions forgets every session cookie.
func (s *Server) DropSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]int64)
}

// SessionCount is the number of live session cookies.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// collection must be called with mu held.
func (s *Server) collection(model string) *collection {
	col, ok := s.records[model]
	if !ok {
		col = &collection{nextID: 1}
		s.records[model] = col
	}
	return col
}

// issueTokens must be called with mu held.
func (s *Server) issueTokens(uid int64, db string) (access, refresh string, err error) {
	access, err = GenerateToken(uid, db, s.opts.Secret, s.opts.AccessTTL)
	if err != nil {
		return "", "", err
	}
	refresh = uuid.NewString()
	s.issued = append(s.issued, access)
	s.refresh[refresh] = uid
	return access, refresh, nil
}

func (s *Server) newSession(c echo.Context, uid int64) string {
	// Odoo session ids are 40 hex characters.
	sid, err := shared.MakeRandHexString(20)
	if err != nil {
		sid = uuid.NewString()
	}
	s.mu.Lock()
	s.sessions[sid] = uid
	s.mu.Unlock()

	c.SetCookie(&http.Cookie{Name: "session_id", Value: sid, Path: "/", HttpOnly: true, Expires: time.Now().Add(7 * 24 * time.Hour)})
	return sid
}

func cloneRow(r map[string]any) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}
