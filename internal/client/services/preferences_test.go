package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/odooclient/internal/client/client"
	"github.com/dmitrijs2005/odooclient/internal/client/models"
	"github.com/dmitrijs2005/odooclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/odooclient/internal/common"
	"github.com/dmitrijs2005/odooclient/internal/logging"
)

func TestPreferences_BrandingDefaultsWhenUnset(t *testing.T) {
	p := NewPreferences(setupRepo(t), logging.Nop())

	b, err := p.Branding(context.Background())
	require.NoError(t, err)
	require.Equal(t, models.DefaultBranding(), b)
}

func TestPreferences_ApplyBranding(t *testing.T) {
	repo := setupRepo(t)
	p := NewPreferences(repo, logging.Nop())
	ctx := context.Background()

	b, ignored, err := p.ApplyBranding(ctx, []byte(`{"company_name":"Acme","primary_color":"blue","theme":"dark"}`))
	require.NoError(t, err)
	require.Equal(t, []string{"primary_color", "theme"}, ignored)
	require.Equal(t, "Acme", b.CompanyName)
	require.Equal(t, models.DefaultBranding().PrimaryColor, b.PrimaryColor)

	stored, err := p.Branding(ctx)
	require.NoError(t, err)
	require.Equal(t, b, stored)
	require.NotNil(t, getMeta(t, repo, metadata.KeyBranding))
}

func TestPreferences_ApplyBranding_RejectsNonObject(t *testing.T) {
	repo := setupRepo(t)
	p := NewPreferences(repo, logging.Nop())

	_, _, err := p.ApplyBranding(context.Background(), []byte(`["not", "an", "object"]`))
	require.ErrorIs(t, err, common.ErrorIncorrectPayload)
	require.Equal(t, client.KindValidation, client.AsError(err).Kind)
	require.Equal(t, MsgInvalidBranding, client.AsError(err).UserMessage)
	require.Nil(t, getMeta(t, repo, metadata.KeyBranding))
}

// brokenRepo fails every read and write.
type brokenRepo struct {
	metadata.Repository
}

func (brokenRepo) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("disk I/O error")
}

func (brokenRepo) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("disk I/O error")
}

func TestPreferences_StorageErrorsCarryUserMessage(t *testing.T) {
	p := NewPreferences(brokenRepo{}, logging.Nop())
	ctx := context.Background()

	b, err := p.Branding(ctx)
	require.Equal(t, models.DefaultBranding(), b)
	require.Equal(t, client.MsgUnexpected, client.AsError(err).UserMessage)

	_, _, err = p.ApplyBranding(ctx, []byte(`{"company_name":"Acme"}`))
	require.Equal(t, client.MsgUnexpected, client.AsError(err).UserMessage)

	order, err := p.ModuleOrder(ctx)
	require.Equal(t, models.DefaultModuleOrder, order)
	require.Equal(t, client.MsgUnexpected, client.AsError(err).UserMessage)

	_, err = p.SetModuleOrder(ctx, []string{"crm"})
	var ce *client.Error
	require.ErrorAs(t, err, &ce)
	require.Equal(t, client.MsgUnexpected, ce.UserMessage)
}

func TestPreferences_ModuleOrder(t *testing.T) {
	p := NewPreferences(setupRepo(t), logging.Nop())
	ctx := context.Background()

	order, err := p.ModuleOrder(ctx)
	require.NoError(t, err)
	require.Equal(t, models.DefaultModuleOrder, order)

	saved, err := p.SetModuleOrder(ctx, []string{"crm", "crm", "games", "contacts"})
	require.NoError(t, err)
	require.Equal(t, []string{"crm", "contacts", "employees", "discuss", "calendar", "settings"}, saved)

	order, err = p.ModuleOrder(ctx)
	require.NoError(t, err)
	require.Equal(t, saved, order)
}
