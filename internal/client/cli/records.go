package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/odooclient/internal/client/models"
	"github.com/dmitrijs2005/odooclient/internal/client/services"
)

const listLimit = 80

func printList[T any](a *App, res services.ListResult[T], format func(T) string) error {
	if !res.Success() {
		a.report(res.Err)
		return res.Err
	}
	for _, item := range res.Items {
		a.println(format(item))
	}
	footer := fmt.Sprintf("%d of %d", len(res.Items), res.Count)
	if res.FromCache {
		footer += " (cached"
		if res.IsStale {
			footer += ", stale"
		}
		footer += ")"
	}
	a.println(footer)
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, errUsage
	}
	return id, nil
}

func formatContact(c models.Contact) string {
	s := fmt.Sprintf("%5d  %s", c.ID, c.Name)
	if c.Email != "" {
		s += " <" + string(c.Email) + ">"
	}
	if c.Phone != "" {
		s += "  " + string(c.Phone)
	}
	return s
}

// Contacts lists contacts. Arguments form a search term; without one the
// listing may come from the local cache.
func (a *App) Contacts(ctx context.Context, args []string) error {
	q := services.ListQuery{Limit: listLimit, Search: strings.Join(args, " ")}
	return printList(a, a.contacts.List(ctx, q), formatContact)
}

func (a *App) AddContact(ctx context.Context, _ []string) error {
	name, err := getSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email (optional)", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Phone (optional)", a.out)
	if err != nil {
		return err
	}

	c, err := a.contacts.Create(ctx, models.Contact{Name: models.Text(name), Email: models.Text(email), Phone: models.Text(phone)})
	if err != nil {
		a.report(err)
		return err
	}
	a.println("Created contact", c.ID)
	return nil
}

// EditContact reads field=value lines and writes them to the contact.
func (a *App) EditContact(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	values, err := GetFields(a.reader, a.out)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		a.println("Nothing to change")
		return nil
	}
	if _, err := a.contacts.Update(ctx, id, values); err != nil {
		a.report(err)
		return err
	}
	a.println("Updated contact", id)
	return nil
}

func (a *App) DeleteContact(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := a.contacts.Delete(ctx, id); err != nil {
		a.report(err)
		return err
	}
	a.println("Deleted contact", id)
	return nil
}

func (a *App) Leads(ctx context.Context, args []string) error {
	q := services.ListQuery{Limit: listLimit, Search: strings.Join(args, " ")}
	return printList(a, a.leads.List(ctx, q), func(l models.Lead) string {
		s := fmt.Sprintf("%5d  %s", l.ID, l.Name)
		if l.PartnerID.IsSet() {
			s += "  [" + l.PartnerID.Name + "]"
		}
		if l.ExpectedRevenue > 0 {
			s += fmt.Sprintf("  %.2f (%.0f%%)", l.ExpectedRevenue, l.Probability)
		}
		return s
	})
}

func (a *App) Employees(ctx context.Context, args []string) error {
	q := services.ListQuery{Limit: listLimit, Search: strings.Join(args, " ")}
	return printList(a, a.employees.List(ctx, q), func(e models.Employee) string {
		s := fmt.Sprintf("%5d  %s", e.ID, e.Name)
		if e.JobTitle != "" {
			s += ", " + string(e.JobTitle)
		}
		if e.DepartmentID.IsSet() {
			s += "  [" + e.DepartmentID.Name + "]"
		}
		return s
	})
}

func (a *App) Countries(ctx context.Context, _ []string) error {
	return printList(a, a.countries.List(ctx, services.ListQuery{}), func(c models.Country) string {
		return fmt.Sprintf("%s  %s  +%d", c.Code, c.Name, c.PhoneCode)
	})
}

func (a *App) Languages(ctx context.Context, _ []string) error {
	return printList(a, a.languages.List(ctx, services.ListQuery{}), func(l models.Language) string {
		mark := " "
		if l.Active {
			mark = "*"
		}
		return fmt.Sprintf("%s %-6s %s", mark, l.Code, l.Name)
	})
}
