package odootest

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/odooclient/internal/common"
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

type rpcFault struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"data"`
}

func (f *rpcFault) Error() string { return f.Data.Message }

func fault(code int, name, msg string) *rpcFault {
	f := &rpcFault{Code: code, Message: "Odoo Server Error"}
	f.Data.Name = name
	f.Data.Message = msg
	return f
}

func accessDenied() *rpcFault {
	return fault(200, "odoo.exceptions.AccessDenied", "Access Denied")
}

func sessionExpired() *rpcFault {
	f := fault(100, "odoo.http.SessionExpiredException", "Session expired")
	f.Message = "Odoo Session Expired"
	return f
}

type rpcFunc func(c echo.Context, params json.RawMessage) (any, *rpcFault)

// rpc wraps fn in the JSON-RPC 2.0 envelope. Faults travel with HTTP 200,
// as Odoo does.
func (s *Server) rpc(fn rpcFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req rpcRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "malformed json-rpc request")
		}

		result, f := fn(c, req.Params)
		if f != nil {
			return c.JSON(http.StatusOK, map[string]any{"jsonrpc": "2.0", "id": req.ID, "error": f})
		}
		return c.JSON(http.StatusOK, map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}
}

func (s *Server) versionInfo(c echo.Context, _ json.RawMessage) (any, *rpcFault) {
	return map[string]any{
		"server_version":      "17.0",
		"server_version_info": []any{17, 0, 0, "final", 0, ""},
		"server_serie":        "17.0",
		"protocol_version":    1,
	}, nil
}

// databaseList also hands out an anonymous session cookie, which is what
// the client's session bootstrap relies on.
func (s *Server) databaseList(c echo.Context, _ json.RawMessage) (any, *rpcFault) {
	if _, ok := s.cookieSession(c); !ok {
		s.newSession(c, 0)
	}
	return s.opts.Databases, nil
}

func (s *Server) authenticate(c echo.Context, raw json.RawMessage) (any, *rpcFault) {
	var p struct {
		DB       string `json:"db"`
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fault(200, "builtins.ValueError", "invalid parameters")
	}

	if !slices.Contains(s.opts.Databases, p.DB) {
		return nil, fault(200, "odoo.exceptions.UserError", "database "+p.DB+" does not exist")
	}

	s.mu.Lock()
	acc, ok := s.accounts[p.Login]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(p.Password)) != nil {
		s.logger.Info(c.Request().Context(), "login rejected", "login", p.Login)
		if s.opts.UIDFalseOnFailure {
			return map[string]any{"uid": false}, nil
		}
		return nil, accessDenied()
	}

	sid := s.newSession(c, acc.UID)

	s.mu.Lock()
	access, refresh, err := s.issueTokens(acc.UID, p.DB)
	s.mu.Unlock()
	if err != nil {
		return nil, fault(200, "builtins.RuntimeError", err.Error())
	}

	return map[string]any{
		"uid":           acc.UID,
		"username":      acc.Login,
		"name":          acc.Name,
		"db":            p.DB,
		"partner_id":    acc.PartnerID,
		"company_id":    acc.CompanyID,
		"session_id":    sid,
		"access_token":  access,
		"refresh_token": refresh,
		"user_companies": map[string]any{
			"current_company": acc.CompanyID,
		},
	}, nil
}

func (s *Server) sessionInfo(c echo.Context, _ json.RawMessage) (any, *rpcFault) {
	uid, ok := s.caller(c)
	if !ok || uid == 0 {
		return nil, sessionExpired()
	}
	return map[string]any{"uid": uid, "db": s.opts.Databases[0]}, nil
}

func (s *Server) destroy(c echo.Context, _ json.RawMessage) (any, *rpcFault) {
	if sid, ok := s.cookieSession(c); ok {
		s.mu.Lock()
		delete(s.sessions, sid)
		s.mu.Unlock()
	}
	return true, nil
}

// refreshToken rotates a refresh token into a new token pair.
func (s *Server) refreshToken(c echo.Context) error {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&body); err != nil || body.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, common.ErrRefreshTokenMissing.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uid, ok := s.refresh[body.RefreshToken]
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, common.ErrInvalidToken.Error())
	}
	delete(s.refresh, body.RefreshToken)

	access, refresh, err := s.issueTokens(uid, s.opts.Databases[0])
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"access_token": access, "refresh_token": refresh})
}

// caller resolves the uid behind the bearer token, or else the session
// cookie. A bearer token that is present but unusable is never overridden
// by the cookie.
func (s *Server) caller(c echo.Context) (int64, bool) {
	if h := c.Request().Header.Get(common.AuthorizationHeaderName); h != "" {
		return s.bearerUID(strings.TrimPrefix(h, common.BearerPrefix))
	}
	sid, ok := s.cookieSession(c)
	if !ok {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[sid], true
}

func (s *Server) bearerUID(token string) (int64, bool) {
	s.mu.Lock()
	revoked := s.revoked[token]
	s.mu.Unlock()
	if revoked {
		return 0, false
	}
	claims, err := ParseToken(token, s.opts.Secret)
	if err != nil {
		return 0, false
	}
	return claims.UID, true
}

func (s *Server) cookieSession(c echo.Context) (string, bool) {
	ck, err := c.Cookie("session_id")
	if err != nil || ck.Value == "" {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[ck.Value]
	return ck.Value, ok
}
