// Package client is the transport layer between the app and an Odoo server.
//
// # Overview
//
// SessionClient is the one HTTP client every service goes through. On each
// call it:
//  1. re-resolves the base URL from the server address store, rebuilding the
//     HTTP client when the address changed;
//  2. attaches "Authorization: Bearer <token>" and the session cookie;
//  3. on success, replaces the stored cookie with the response's Set-Cookie
//     name=value pairs;
//  4. on 401, exchanges the refresh token once and replays the request once;
//     when that is impossible or the replay is rejected too, it wipes the
//     durable session and runs the OnLogout hooks;
//  5. annotates every other failure as an *Error with a UserMessage.
//
// Call wraps Odoo's JSON-RPC 2.0 envelope on top of Do; InitializeSession
// harvests a cookie before login.
//
// # Error Handling
//
// Every failure is an *Error carrying a Kind. errors.Is matches ErrUnavailable
// (KindNetwork), ErrUnauthorized (KindAuthorization) and ErrInvalidServerURL
// (KindConfig).
//
// # Concurrency
//
// SessionClient is safe for concurrent use. Cookie replacement is last
// response wins. Each request owns its retry allowance; concurrent refreshes
// are collapsed into one exchange.
package client
