package cli

import (
	"context"
	"strings"
)

// Branding shows the current branding, or applies the JSON payload given as
// arguments.
func (a *App) Branding(ctx context.Context, args []string) error {
	if len(args) > 0 {
		_, ignored, err := a.prefs.ApplyBranding(ctx, []byte(strings.Join(args, " ")))
		if err != nil {
			a.report(err)
			return err
		}
		if len(ignored) > 0 {
			a.println("Ignored keys:", strings.Join(ignored, ", "))
		}
	}

	b, err := a.prefs.Branding(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	a.println("Company:", b.CompanyName)
	a.println("Colors:", b.PrimaryColor, b.SecondaryColor)
	if b.LogoURL != "" {
		a.println("Logo:", b.LogoURL)
	}
	a.println("Powered by Odoo:", b.ShowPoweredBy)
	return nil
}

// Modules shows the home-screen module order, or stores a new one.
func (a *App) Modules(ctx context.Context, args []string) error {
	var (
		order []string
		err   error
	)
	if len(args) > 0 {
		order, err = a.prefs.SetModuleOrder(ctx, args)
	} else {
		order, err = a.prefs.ModuleOrder(ctx)
	}
	if err != nil {
		a.report(err)
		return err
	}
	a.println(strings.Join(order, " > "))
	return nil
}
