// Package common contains shared constants and sentinel errors used across
// odooclient components.
package common

// Header names set or read on every call to the Odoo backend.
const (
	AuthorizationHeaderName = "Authorization"
	CookieHeaderName        = "Cookie"
	SetCookieHeaderName     = "Set-Cookie"
	RequestIDHeaderName     = "X-Request-ID"
)

// SessionCookieName is the cookie Odoo uses to identify an HTTP session.
const SessionCookieName = "session_id"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "
