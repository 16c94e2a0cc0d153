// Package models defines the client-side data models of the Odoo client:
// server address, session and identity state, cache entries, Odoo records
// and the validated branding/module-order preferences.
package models

import (
	"strings"
	"time"
)

// ServerConfig is the persisted backend location.
type ServerConfig struct {
	BaseURL string `json:"base_url"`
}

// ServerPayload is what a scanned QR code resolves to.
type ServerPayload struct {
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

// SessionState is owned by the session client. Empty strings mean "absent".
type SessionState struct {
	Cookie       string
	AuthToken    string
	RefreshToken string
}

// Clear drops every credential.
func (s *SessionState) Clear() {
	s.Cookie = ""
	s.AuthToken = ""
	s.RefreshToken = ""
}

// CookieValue returns the value of the named cookie inside the stored
// "name=value; name2=value2" string.
func (s SessionState) CookieValue(name string) string {
	for _, part := range strings.Split(s.Cookie, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && k == name {
			return v
		}
	}
	return ""
}

// UserIdentity is the authenticated Odoo user, persisted after login.
type UserIdentity struct {
	UID          int64     `json:"uid"`
	Login        string    `json:"login"`
	Name         string    `json:"name"`
	DatabaseName string    `json:"database_name"`
	CompanyID    int64     `json:"company_id"`
	PartnerID    int64     `json:"partner_id"`
	SessionID    string    `json:"session_id"`
	LoginTime    time.Time `json:"login_time"`
}

// CacheEntry is one cached collection together with its store time.
type CacheEntry[T any] struct {
	Payload  T         `json:"payload"`
	StoredAt time.Time `json:"stored_at"`
}

// IsStale reports whether the entry is older than ttl at now. Staleness is
// informational; stale entries are still served.
func (e CacheEntry[T]) IsStale(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.StoredAt) > ttl
}
