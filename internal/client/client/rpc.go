package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      string `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is the error member of an Odoo JSON-RPC response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
		Debug   string `json:"debug"`
	} `json:"data"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.HumanMessage())
}

// HumanMessage prefers the exception text over the generic envelope message.
func (e *RPCError) HumanMessage() string {
	if msg := strings.TrimSpace(e.Data.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(e.Message)
}

// SessionExpired reports Odoo's own "session expired" exception.
func (e *RPCError) SessionExpired() bool {
	return e.Code == 100 || strings.HasSuffix(e.Data.Name, "SessionExpiredException")
}

func newRPCBody(params any) rpcRequest {
	if params == nil {
		params = map[string]any{}
	}
	return rpcRequest{JSONRPC: "2.0", Method: "call", Params: params, ID: uuid.NewString()}
}

// Call posts a JSON-RPC 2.0 envelope to path and decodes its result into
// result (which may be nil). An error envelope becomes a KindRPC *Error, or
// KindAuthorization when Odoo reports an expired session.
func (c *SessionClient) Call(ctx context.Context, path string, params any, result any) error {
	return c.call(ctx, Request{Method: http.MethodPost, Path: path, Body: newRPCBody(params)}, result)
}

func (c *SessionClient) call(ctx context.Context, req Request, result any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}

	var env rpcResponse
	if err := resp.Decode(&env); err != nil {
		return err
	}
	if env.Error != nil {
		kind := KindRPC
		userMsg := env.Error.HumanMessage()
		if env.Error.SessionExpired() {
			kind = KindAuthorization
			userMsg = MsgSessionExpired
		}
		if userMsg == "" {
			userMsg = MsgUnexpected
		}
		return &Error{Kind: kind, Status: resp.Status, Message: env.Error.HumanMessage(), UserMessage: userMsg, Err: env.Error}
	}

	if result == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, result); err != nil {
		return &Error{Kind: KindUnknown, Status: resp.Status, Message: "malformed rpc result: " + err.Error(), UserMessage: MsgUnexpected, Err: err}
	}
	return nil
}

// InitializeSession performs an unauthenticated discovery call purely to
// obtain an initial session cookie. It reports whether a cookie is held
// afterwards; a failed call or a response without Set-Cookie is false.
// Login may still be attempted either way.
func (c *SessionClient) InitializeSession(ctx context.Context) bool {
	req := Request{Method: http.MethodPost, Path: DatabaseListPath, Body: newRPCBody(nil), NoAuth: true}
	if err := c.call(ctx, req, nil); err != nil {
		c.logger.Warn(ctx, "session bootstrap failed", "error", err)
		return false
	}
	ok := c.Session().Cookie != ""
	c.logger.Debug(ctx, "session bootstrap done", "cookie", ok)
	return ok
}
