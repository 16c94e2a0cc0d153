package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/odooclient/internal/client/client"
	"github.com/dmitrijs2005/odooclient/internal/client/models"
	"github.com/dmitrijs2005/odooclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/odooclient/internal/common"
	"github.com/dmitrijs2005/odooclient/internal/logging"
)

// Odoo session endpoints.
const (
	AuthenticatePath   = "/web/session/authenticate"
	SessionInfoPath    = "/web/session/get_session_info"
	SessionDestroyPath = "/web/session/destroy"
)

// AuthState is the login state machine: Unauthenticated, Authenticating
// while a login call is in flight, and Authenticated. A forced logout from the
// session client moves it back to Unauthenticated.
type AuthState int32

const (
	Unauthenticated AuthState = iota
	Authenticating
	Authenticated
)

func (s AuthState) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// authResult is the part of Odoo's authenticate result the client keeps.
// uid, partner_id and company_id may be ids, [id, name] pairs or false, so
// they decode as Many2One.
type authResult struct {
	UID           models.Many2One `json:"uid"`
	Username      models.Text     `json:"username"`
	Name          models.Text     `json:"name"`
	DB            models.Text     `json:"db"`
	PartnerID     models.Many2One `json:"partner_id"`
	CompanyID     models.Many2One `json:"company_id"`
	SessionID     models.Text     `json:"session_id"`
	AccessToken   models.Text     `json:"access_token"`
	RefreshToken  models.Text     `json:"refresh_token"`
	UserCompanies *struct {
		CurrentCompany models.Many2One `json:"current_company"`
	} `json:"user_companies"`
}

// AuthService runs the Unauthenticated → Authenticating → Authenticated state
// machine on top of the session client.
type AuthService struct {
	api    SessionAPI
	repo   metadata.Repository
	logger logging.Logger
	now    func() time.Time

	mu    sync.Mutex
	state AuthState
}

// NewAuthService wires an AuthService to api and repo. It starts in
// Authenticated when a token and identity survive from an earlier run, and
// subscribes to the session client's forced logouts.
func NewAuthService(ctx context.Context, api SessionAPI, repo metadata.Repository, logger logging.Logger) *AuthService {
	a := &AuthService{
		api:    api,
		repo:   repo,
		logger: logger.With("component", "auth"),
		now:    time.Now,
	}
	if a.IsAuthenticated(ctx) {
		a.state = Authenticated
	}
	api.OnLogout(a.sessionEnded)
	return a
}

// State returns the current login state.
func (a *AuthService) State() AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *AuthService) setState(ctx context.Context, s AuthState) {
	a.mu.Lock()
	prev := a.state
	a.state = s
	a.mu.Unlock()
	if prev != s {
		a.logger.Debug(ctx, "auth state changed", "from", prev.String(), "to", s.String())
	}
}

func (a *AuthService) sessionEnded(ctx context.Context) {
	a.logger.Info(ctx, "session ended by server")
	a.setState(ctx, Unauthenticated)
}

func authFailure(msg string, cause error) *client.Error {
	if msg == "" {
		msg = client.MsgAuthFailed
	}
	return &client.Error{Kind: client.KindAuthentication, Message: msg, UserMessage: msg, Err: cause}
}

// Login authenticates against database with the given credentials and
// persists the resulting identity. A 200 response without a uid is a failed
// login.
func (a *AuthService) Login(ctx context.Context, database, login, password string) (*models.UserIdentity, error) {
	database = strings.TrimSpace(database)
	login = strings.TrimSpace(login)
	if database == "" || login == "" || password == "" {
		return nil, &client.Error{Kind: client.KindValidation, Message: "missing credentials", UserMessage: client.MsgMissingFields}
	}

	a.setState(ctx, Authenticating)
	identity, err := a.authenticate(ctx, database, login, password)
	if err != nil {
		a.setState(ctx, Unauthenticated)
		a.logger.Warn(ctx, "login failed", "db", database, "login", login, "error", err)
		return nil, err
	}

	a.setState(ctx, Authenticated)
	a.logger.Info(ctx, "login succeeded", "db", database, "uid", identity.UID)
	return identity, nil
}

func (a *AuthService) authenticate(ctx context.Context, database, login, password string) (*models.UserIdentity, error) {
	if a.api.Session().Cookie == "" {
		a.api.InitializeSession(ctx)
	}

	var res authResult
	params := map[string]any{"db": database, "login": login, "password": password}
	if err := a.api.Call(ctx, AuthenticatePath, params, &res); err != nil {
		apiErr := client.AsError(err)
		if apiErr.Kind == client.KindRPC {
			return nil, authFailure(apiErr.Message, err)
		}
		return nil, apiErr
	}

	if !res.UID.IsSet() {
		return nil, authFailure("", fmt.Errorf("authenticate returned no uid"))
	}

	identity := &models.UserIdentity{
		UID:          res.UID.ID,
		Login:        string(res.Username),
		Name:         string(res.Name),
		DatabaseName: string(res.DB),
		PartnerID:    res.PartnerID.ID,
		CompanyID:    res.CompanyID.ID,
		SessionID:    string(res.SessionID),
		LoginTime:    a.now().UTC(),
	}
	if identity.Login == "" {
		identity.Login = login
	}
	if identity.DatabaseName == "" {
		identity.DatabaseName = database
	}
	if identity.CompanyID == 0 && res.UserCompanies != nil {
		identity.CompanyID = res.UserCompanies.CurrentCompany.ID
	}
	if identity.SessionID == "" {
		identity.SessionID = a.api.Session().CookieValue(common.SessionCookieName)
	}

	token := string(res.AccessToken)
	if token == "" {
		token = identity.SessionID
	}
	if token == "" {
		return nil, authFailure("", fmt.Errorf("no session issued: %w", common.ErrInvalidToken))
	}

	if err := a.persist(ctx, identity, token, string(res.RefreshToken)); err != nil {
		_ = a.api.ClearSession(ctx)
		return nil, &client.Error{Kind: client.KindUnknown, Message: err.Error(), UserMessage: client.MsgUnexpected, Err: err}
	}
	return identity, nil
}

func (a *AuthService) persist(ctx context.Context, identity *models.UserIdentity, token, refresh string) error {
	blob, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	if err := a.api.SetTokens(ctx, token, refresh); err != nil {
		return err
	}
	return a.repo.Atomic(ctx, func(ctx context.Context, repo metadata.Repository) error {
		if err := repo.Set(ctx, metadata.KeyUserIdentity, blob); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyDatabase, []byte(identity.DatabaseName))
	})
}

// Logout destroys the server session on a best-effort basis and always
// clears local state. Only a failure to clear local storage is returned.
func (a *AuthService) Logout(ctx context.Context) error {
	if err := a.api.Call(ctx, SessionDestroyPath, nil, nil); err != nil {
		a.logger.Warn(ctx, "server logout failed", "error", err)
	}

	err := a.api.ClearSession(ctx)
	a.setState(ctx, Unauthenticated)
	if err != nil {
		a.logger.Error(ctx, "local logout failed", "error", err)
		return &client.Error{Kind: client.KindUnknown, Message: err.Error(), UserMessage: client.MsgUnexpected, Err: err}
	}
	a.logger.Info(ctx, "logged out")
	return nil
}

// IsAuthenticated is true when both a token and an identity are stored. The
// token is not checked against the server.
func (a *AuthService) IsAuthenticated(ctx context.Context) bool {
	if a.api.Session().AuthToken == "" {
		return false
	}
	blob, err := a.repo.Get(ctx, metadata.KeyUserIdentity)
	return err == nil && len(blob) > 0
}

// ValidateSession asks the server whether the current session is alive.
func (a *AuthService) ValidateSession(ctx context.Context) bool {
	var info struct {
		UID models.Many2One `json:"uid"`
	}
	if err := a.api.Call(ctx, SessionInfoPath, nil, &info); err != nil {
		a.logger.Debug(ctx, "session validation failed", "error", err)
		return false
	}
	return info.UID.IsSet()
}

// CurrentUser returns the persisted identity, or nil when nobody is logged in.
func (a *AuthService) CurrentUser(ctx context.Context) (*models.UserIdentity, error) {
	blob, err := a.repo.Get(ctx, metadata.KeyUserIdentity)
	if err != nil {
		return nil, client.AsError(err)
	}
	if len(blob) == 0 {
		return nil, nil
	}
	var id models.UserIdentity
	if err := json.Unmarshal(blob, &id); err != nil {
		return nil, client.AsError(fmt.Errorf("decode identity: %w", err))
	}
	return &id, nil
}

// ListDatabases returns the databases the server offers at login.
func (a *AuthService) ListDatabases(ctx context.Context) ([]string, error) {
	var dbs []string
	if err := a.api.Call(ctx, client.DatabaseListPath, nil, &dbs); err != nil {
		return nil, err
	}
	return dbs, nil
}
