package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/odooclient/internal/client/client"
	"github.com/dmitrijs2005/odooclient/internal/client/models"
	"github.com/dmitrijs2005/odooclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/odooclient/internal/logging"
)

// DefaultCacheTTL is the age after which a cached collection is reported stale.
const DefaultCacheTTL = 5 * time.Minute

// Messages shown for failed resource calls.
const (
	MsgInvalidData   = "Invalid data. Please check the entered values."
	MsgRecordMissing = "The record was not found."
	MsgConflict      = "The record was changed by someone else. Please reload and try again."
	MsgUnprocessable = "The server could not process this record."
)

// ListQuery selects a page of records. Domain is an Odoo domain expression
// passed through verbatim.
type ListQuery struct {
	Limit  int
	Offset int
	Search string
	Domain string
	Fields []string
}

// Cacheable is true for "everything from the start" queries.
func (q ListQuery) Cacheable() bool {
	return strings.TrimSpace(q.Search) == "" && strings.TrimSpace(q.Domain) == "" && q.Offset == 0
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if d := strings.TrimSpace(q.Domain); d != "" {
		v.Set("domain", d)
	}
	if len(q.Fields) > 0 {
		v.Set("fields", strings.Join(q.Fields, ","))
	}
	return v
}

// ListResult is what a list screen renders. A failed read still carries an
// empty, non-nil Items slice alongside Err.
type ListResult[T any] struct {
	Items     []T
	Count     int
	FromCache bool
	IsStale   bool
	Err       *client.Error
}

// Success is true when the read produced no error, from cache or network.
func (r ListResult[T]) Success() bool { return r.Err == nil }

// ResourceOptions tune a Resource. TTL defaults to DefaultCacheTTL and Now to
// time.Now.
type ResourceOptions struct {
	TTL time.Duration
	Now func() time.Time
}

// Resource is the read-through cache and CRUD surface for one Odoo model
// exposed by the REST facade. The whole collection has a single cache slot.
type Resource[T any] struct {
	api    SessionAPI
	repo   metadata.Repository
	logger logging.Logger
	model  string
	ttl    time.Duration
	now    func() time.Time
}

// NewResource returns the Resource for model, addressed under the session
// client's API path as {api}/{model}[/{id}].
func NewResource[T any](api SessionAPI, repo metadata.Repository, logger logging.Logger, model string, opts ResourceOptions) *Resource[T] {
	if opts.TTL <= 0 {
		opts.TTL = DefaultCacheTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Resource[T]{
		api:    api,
		repo:   repo,
		logger: logger.With("resource", model),
		model:  model,
		ttl:    opts.TTL,
		now:    opts.Now,
	}
}

// NewContacts is the Resource for res.partner.
func NewContacts(api SessionAPI, repo metadata.Repository, logger logging.Logger, opts ResourceOptions) *Resource[models.Contact] {
	return NewResource[models.Contact](api, repo, logger, "res.partner", opts)
}

// NewLeads is the Resource for crm.lead.
func NewLeads(api SessionAPI, repo metadata.Repository, logger logging.Logger, opts ResourceOptions) *Resource[models.Lead] {
	return NewResource[models.Lead](api, repo, logger, "crm.lead", opts)
}

// NewEmployees is the Resource for hr.employee.
func NewEmployees(api SessionAPI, repo metadata.Repository, logger logging.Logger, opts ResourceOptions) *Resource[models.Employee] {
	return NewResource[models.Employee](api, repo, logger, "hr.employee", opts)
}

// NewCountries is the Resource for res.country.
func NewCountries(api SessionAPI, repo metadata.Repository, logger logging.Logger, opts ResourceOptions) *Resource[models.Country] {
	return NewResource[models.Country](api, repo, logger, "res.country", opts)
}

// NewLanguages is the Resource for res.lang.
func NewLanguages(api SessionAPI, repo metadata.Repository, logger logging.Logger, opts ResourceOptions) *Resource[models.Language] {
	return NewResource[models.Language](api, repo, logger, "res.lang", opts)
}

// Model returns the Odoo model name, which is also the cache slot name.
func (r *Resource[T]) Model() string { return r.model }

func (r *Resource[T]) path(id int64) string {
	p := r.api.APIPath() + "/" + r.model
	if id != 0 {
		p += "/" + strconv.FormatInt(id, 10)
	}
	return p
}

// List serves cacheable queries from the cache slot when it is filled, stale
// or not, and fetches everything else. It never fails outright; errors are
// reported in the result.
func (r *Resource[T]) List(ctx context.Context, q ListQuery) ListResult[T] {
	cacheable := q.Cacheable()
	if cacheable {
		if entry, ok := r.readCache(ctx); ok {
			stale := entry.IsStale(r.now(), r.ttl)
			r.logger.Debug(ctx, "serving cached list", "count", len(entry.Payload.Results), "stale", stale)
			return ListResult[T]{
				Items:     nonNil(entry.Payload.Results),
				Count:     entry.Payload.Count,
				FromCache: true,
				IsStale:   stale,
			}
		}
	}

	resp, err := r.api.Do(ctx, client.Request{Method: http.MethodGet, Path: r.path(0), Query: q.values()})
	if err != nil {
		r.logger.Warn(ctx, "list failed", "error", err)
		return ListResult[T]{Items: []T{}, Err: resourceError(err)}
	}
	var page models.ListPage[T]
	if err := resp.Decode(&page); err != nil {
		return ListResult[T]{Items: []T{}, Err: resourceError(err)}
	}
	page.Results = nonNil(page.Results)

	if cacheable {
		if err := r.writeCache(ctx, resp.Body); err != nil {
			r.logger.Warn(ctx, "cache write failed", "error", err)
		}
	}
	return ListResult[T]{Items: page.Results, Count: page.Count}
}

// Get fetches one record. It bypasses the cache.
func (r *Resource[T]) Get(ctx context.Context, id int64) (*T, error) {
	resp, err := r.api.Do(ctx, client.Request{Method: http.MethodGet, Path: r.path(id)})
	if err != nil {
		return nil, resourceError(err)
	}
	var rec T
	if err := resp.Decode(&rec); err != nil {
		return nil, resourceError(err)
	}
	return &rec, nil
}

// Create posts values (a record or a field map) and returns the stored record.
func (r *Resource[T]) Create(ctx context.Context, values any) (*T, error) {
	defer r.invalidateAfterWrite(ctx)
	return r.write(ctx, http.MethodPost, 0, values)
}

// Update writes values to record id. The returned record is nil when the
// server answers with an empty body.
func (r *Resource[T]) Update(ctx context.Context, id int64, values any) (*T, error) {
	defer r.invalidateAfterWrite(ctx)
	return r.write(ctx, http.MethodPut, id, values)
}

// Delete removes record id. The cache is cleared whether or not the call
// succeeds.
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	defer r.invalidateAfterWrite(ctx)
	if _, err := r.api.Do(ctx, client.Request{Method: http.MethodDelete, Path: r.path(id)}); err != nil {
		return resourceError(err)
	}
	return nil
}

func (r *Resource[T]) write(ctx context.Context, method string, id int64, values any) (*T, error) {
	resp, err := r.api.Do(ctx, client.Request{Method: method, Path: r.path(id), Body: values})
	if err != nil {
		r.logger.Warn(ctx, "write failed", "method", method, "id", id, "error", err)
		return nil, resourceError(err)
	}
	if len(strings.TrimSpace(string(resp.Body))) == 0 {
		return nil, nil
	}
	var rec T
	if err := resp.Decode(&rec); err != nil {
		return nil, resourceError(err)
	}
	return &rec, nil
}

// InvalidateCache drops the cached collection.
func (r *Resource[T]) InvalidateCache(ctx context.Context) error {
	if err := r.repo.Delete(ctx, metadata.CacheKey(r.model), metadata.CacheTimeKey(r.model)); err != nil {
		return client.AsError(fmt.Errorf("invalidate %s cache: %w", r.model, err))
	}
	return nil
}

func (r *Resource[T]) invalidateAfterWrite(ctx context.Context) {
	if err := r.InvalidateCache(ctx); err != nil {
		r.logger.Error(ctx, "cache invalidation failed", "error", err)
	}
}

func (r *Resource[T]) readCache(ctx context.Context) (models.CacheEntry[models.ListPage[T]], bool) {
	var entry models.CacheEntry[models.ListPage[T]]

	blob, err := r.repo.Get(ctx, metadata.CacheKey(r.model))
	if err != nil || len(blob) == 0 {
		if err != nil {
			r.logger.Warn(ctx, "cache read failed", "error", err)
		}
		return entry, false
	}
	stamp, err := r.repo.Get(ctx, metadata.CacheTimeKey(r.model))
	if err != nil || len(stamp) == 0 {
		return entry, false
	}

	if err := json.Unmarshal(blob, &entry.Payload); err != nil {
		r.logger.Warn(ctx, "cache entry unreadable", "error", err)
		return entry, false
	}
	if entry.StoredAt, err = time.Parse(time.RFC3339Nano, string(stamp)); err != nil {
		r.logger.Warn(ctx, "cache timestamp unreadable", "error", err)
		return entry, false
	}
	return entry, true
}

// writeCache stores the response body as received. Re-encoding the decoded
// page would drop the names of [id, name] relation pairs.
func (r *Resource[T]) writeCache(ctx context.Context, body []byte) error {
	blob := append([]byte(nil), body...)
	stamp := []byte(r.now().UTC().Format(time.RFC3339Nano))

	return r.repo.Atomic(ctx, func(ctx context.Context, repo metadata.Repository) error {
		if err := repo.Set(ctx, metadata.CacheKey(r.model), blob); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.CacheTimeKey(r.model), stamp)
	})
}

// resourceError restates a failed call in resource terms. The original error
// stays reachable through Err.
func resourceError(err error) *client.Error {
	src := client.AsError(err)
	out := *src

	switch {
	case src.Kind == client.KindNetwork:
		out.UserMessage = client.MsgNetwork
	case src.Status == http.StatusBadRequest:
		out.UserMessage = MsgInvalidData
	case src.Status == http.StatusNotFound:
		out.UserMessage = MsgRecordMissing
	case src.Status == http.StatusConflict:
		out.UserMessage = MsgConflict
	case src.Status == http.StatusUnprocessableEntity:
		out.UserMessage = MsgUnprocessable
	case src.Status >= http.StatusInternalServerError:
		out.UserMessage = client.MsgServerError
	case out.UserMessage == "":
		out.UserMessage = client.MsgUnexpected
	}
	return &out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
