package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/odooclient/internal/client/client"
	"github.com/dmitrijs2005/odooclient/internal/client/models"
	"github.com/dmitrijs2005/odooclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/odooclient/internal/logging"
)

// MsgInvalidBranding is shown when a branding payload is not a JSON object.
const MsgInvalidBranding = "The branding settings could not be read."

// Preferences persists the white-label branding and the home-screen module
// order. Both survive logout.
type Preferences struct {
	repo   metadata.Repository
	logger logging.Logger
}

// NewPreferences returns a Preferences backed by repo. Errors from its
// methods are *client.Error values carrying a UserMessage.
func NewPreferences(repo metadata.Repository, logger logging.Logger) *Preferences {
	return &Preferences{repo: repo, logger: logger.With("component", "preferences")}
}

// Branding returns the stored branding, or the defaults when none is stored
// or the stored blob no longer validates.
func (p *Preferences) Branding(ctx context.Context) (models.Branding, error) {
	blob, err := p.repo.Get(ctx, metadata.KeyBranding)
	if err != nil {
		return models.DefaultBranding(), client.AsError(fmt.Errorf("read branding: %w", err))
	}
	if len(blob) == 0 {
		return models.DefaultBranding(), nil
	}
	b, _, err := models.ParseBranding(blob)
	if err != nil {
		p.logger.Warn(ctx, "stored branding unreadable", "error", err)
		return models.DefaultBranding(), nil
	}
	return b, nil
}

// ApplyBranding validates payload and stores the result. Keys that were
// dropped are returned so the caller can report them.
func (p *Preferences) ApplyBranding(ctx context.Context, payload []byte) (models.Branding, []string, error) {
	b, ignored, err := models.ParseBranding(payload)
	if err != nil {
		return b, nil, &client.Error{Kind: client.KindValidation, Message: err.Error(), UserMessage: MsgInvalidBranding, Err: err}
	}
	if len(ignored) > 0 {
		p.logger.Info(ctx, "branding keys ignored", "keys", ignored)
	}

	blob, err := json.Marshal(b)
	if err != nil {
		return b, ignored, client.AsError(fmt.Errorf("encode branding: %w", err))
	}
	if err := p.repo.Set(ctx, metadata.KeyBranding, blob); err != nil {
		return b, ignored, client.AsError(fmt.Errorf("store branding: %w", err))
	}
	return b, ignored, nil
}

// ModuleOrder returns the stored home-screen order, normalised against the
// known modules. Without a stored order it is the default order.
func (p *Preferences) ModuleOrder(ctx context.Context) ([]string, error) {
	blob, err := p.repo.Get(ctx, metadata.KeyModuleOrder)
	if err != nil {
		return models.NormalizeModuleOrder(nil), client.AsError(fmt.Errorf("read module order: %w", err))
	}
	var order []string
	if len(blob) > 0 {
		if err := json.Unmarshal(blob, &order); err != nil {
			p.logger.Warn(ctx, "stored module order unreadable", "error", err)
			order = nil
		}
	}
	return models.NormalizeModuleOrder(order), nil
}

// SetModuleOrder normalises order, stores it and returns what was stored.
func (p *Preferences) SetModuleOrder(ctx context.Context, order []string) ([]string, error) {
	normalized := models.NormalizeModuleOrder(order)
	blob, err := json.Marshal(normalized)
	if err != nil {
		return nil, client.AsError(fmt.Errorf("encode module order: %w", err))
	}
	if err := p.repo.Set(ctx, metadata.KeyModuleOrder, blob); err != nil {
		return nil, client.AsError(fmt.Errorf("store module order: %w", err))
	}
	return normalized, nil
}
