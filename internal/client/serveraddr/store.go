// Package serveraddr persists and validates the Odoo server base URL and
// probes servers for reachability. Every operation reports failures as a
// *client.Error; none panics.
package serveraddr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/odooclient/internal/client/client"
	"github.com/dmitrijs2005/odooclient/internal/client/models"
	"github.com/dmitrijs2005/odooclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/odooclient/internal/logging"
)

const (
	DefaultProbeTimeout = 10 * time.Second

	// VersionInfoPath is the discovery endpoint used as reachability probe.
	VersionInfoPath = "/web/webclient/version_info"
)

var urlShape = regexp.MustCompile(`^https?://.+`)

// ServerInfo is what the discovery endpoint reports.
type ServerInfo struct {
	ServerVersion     string `json:"server_version"`
	ServerVersionInfo []any  `json:"server_version_info"`
	ServerSerie       string `json:"server_serie"`
	ProtocolVersion   int    `json:"protocol_version"`
}

// Options configure the reachability probe. A zero ProbeTimeout means
// DefaultProbeTimeout.
type Options struct {
	ProbeTimeout time.Duration
	Transport    http.RoundTripper
}

// Store owns the configured Odoo base URL. A URL is only persisted after a
// successful probe, so a stored value always pointed at a live server when
// it was saved. Errors are *client.Error values.
type Store struct {
	repo   metadata.Repository
	probe  *http.Client
	logger logging.Logger
}

// NewStore returns a Store persisting into repo.
func NewStore(repo metadata.Repository, logger logging.Logger, opts Options) *Store {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	return &Store{
		repo:   repo,
		probe:  &http.Client{Timeout: opts.ProbeTimeout, Transport: opts.Transport},
		logger: logger.With("component", "serveraddr"),
	}
}

func configError(msg string, cause error) *client.Error {
	return &client.Error{Kind: client.KindConfig, Message: msg, UserMessage: client.MsgInvalidURL,
		Err: fmt.Errorf("%w: %v", client.ErrInvalidServerURL, cause)}
}

// Normalize trims whitespace and trailing slashes and checks that raw is an
// absolute http(s) URL with a host.
func Normalize(raw string) (string, error) {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if !urlShape.MatchString(u) {
		return "", configError(fmt.Sprintf("%q is not an http(s) url", raw), fmt.Errorf("bad shape"))
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return "", configError(err.Error(), err)
	}
	if parsed.Host == "" || parsed.Hostname() == "" {
		return "", configError(fmt.Sprintf("%q has no host", raw), fmt.Errorf("missing host"))
	}
	return u, nil
}

// Save validates raw, probes it and persists it only when the probe succeeds.
// It returns the normalised URL.
func (s *Store) Save(ctx context.Context, raw string) (string, error) {
	u, err := Normalize(raw)
	if err != nil {
		return "", err
	}

	if err := s.TestConnection(ctx, u); err != nil {
		return "", err
	}

	if err := s.repo.Set(ctx, metadata.KeyServerURL, []byte(u)); err != nil {
		return "", &client.Error{Kind: client.KindUnknown, Message: err.Error(), UserMessage: client.MsgUnexpected, Err: err}
	}
	s.logger.Info(ctx, "server address saved", "url", u)
	return u, nil
}

// Get returns the persisted URL, or "" when none is stored.
func (s *Store) Get(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, metadata.KeyServerURL)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// HasURL reports whether a server address is stored. Read errors count as
// no address.
func (s *Store) HasURL(ctx context.Context) bool {
	u, err := s.Get(ctx)
	return err == nil && u != ""
}

// Reset forgets the stored URL.
func (s *Store) Reset(ctx context.Context) error {
	return s.repo.Delete(ctx, metadata.KeyServerURL)
}

// TestConnection probes rawURL without persisting anything.
func (s *Store) TestConnection(ctx context.Context, rawURL string) error {
	_, err := s.GetServerInfo(ctx, rawURL)
	return err
}

// GetServerInfo asks the server at rawURL for its version information.
func (s *Store) GetServerInfo(ctx context.Context, rawURL string) (*ServerInfo, error) {
	u, err := Normalize(rawURL)
	if err != nil {
		return nil, err
	}

	body, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "method": "call", "params": map[string]any{}, "id": uuid.NewString()})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u+VersionInfoPath, bytes.NewReader(body))
	if err != nil {
		return nil, configError(err.Error(), err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.probe.Do(req)
	if err != nil {
		s.logger.Warn(ctx, "server probe failed", "url", u, "error", err)
		return nil, &client.Error{Kind: client.KindNetwork, Message: err.Error(), UserMessage: client.MsgUnreachable,
			Err: fmt.Errorf("%w: %w", client.ErrUnavailable, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		return nil, &client.Error{Kind: client.KindNetwork, Status: resp.StatusCode,
			Message: fmt.Sprintf("probe returned status %d", resp.StatusCode), UserMessage: client.MsgUnreachable,
			Err: fmt.Errorf("%w: status %d", client.ErrUnavailable, resp.StatusCode)}
	}

	var env struct {
		Result *ServerInfo      `json:"result"`
		Error  *client.RPCError `json:"error"`
	}
	if err := json.Unmarshal(data, &env); err != nil || (env.Result == nil && env.Error == nil) {
		return nil, &client.Error{Kind: client.KindConfig, Status: resp.StatusCode,
			Message: "not an Odoo server", UserMessage: client.MsgUnreachable, Err: client.ErrInvalidServerURL}
	}
	if env.Error != nil {
		return nil, &client.Error{Kind: client.KindRPC, Status: resp.StatusCode, Message: env.Error.HumanMessage(),
			UserMessage: client.MsgUnreachable, Err: env.Error}
	}

	s.logger.Debug(ctx, "server probe ok", "url", u, "version", env.Result.ServerVersion)
	return env.Result, nil
}

// ParseFromEncodedPayload extracts a server URL from a scanned payload: either
// a bare URL or a JSON object {"url": ..., "name": ...}. Malformed JSON falls
// back to treating the whole payload as a URL candidate.
func ParseFromEncodedPayload(payload string) (*models.ServerPayload, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return nil, configError("empty payload", fmt.Errorf("empty payload"))
	}

	candidate := models.ServerPayload{URL: trimmed}
	if strings.HasPrefix(trimmed, "{") {
		var env models.ServerPayload
		if err := json.Unmarshal([]byte(trimmed), &env); err == nil {
			if env.URL == "" {
				return nil, configError("payload has no url", fmt.Errorf("missing url"))
			}
			candidate = env
		}
	}

	u, err := Normalize(candidate.URL)
	if err != nil {
		return nil, err
	}
	candidate.URL = u
	candidate.Name = strings.TrimSpace(candidate.Name)
	return &candidate, nil
}
