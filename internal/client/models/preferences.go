package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/dmitrijs2005/odooclient/internal/common"
)

// Branding is the validated white-label configuration.
type Branding struct {
	CompanyName    string `json:"company_name"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	LogoURL        string `json:"logo_url"`
	ShowPoweredBy  bool   `json:"show_powered_by"`
}

// DefaultBranding is what the app shows before any payload is applied.
func DefaultBranding() Branding {
	return Branding{
		CompanyName:    "Odoo",
		PrimaryColor:   "#714B67",
		SecondaryColor: "#017E84",
		ShowPoweredBy:  true,
	}
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

type brandingKey struct {
	apply func(b *Branding, raw json.RawMessage) error
}

func stringField(set func(*Branding, string), check func(string) error) func(*Branding, json.RawMessage) error {
	return func(b *Branding, raw json.RawMessage) error {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if check != nil {
			if err := check(s); err != nil {
				return err
			}
		}
		set(b, s)
		return nil
	}
}

func checkColor(s string) error {
	if !hexColor.MatchString(s) {
		return fmt.Errorf("not a hex colour: %q", s)
	}
	return nil
}

func checkHTTPURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("not an http(s) url: %q", s)
	}
	return nil
}

// brandingKeys is the full set of recognised payload keys.
var brandingKeys = map[string]brandingKey{
	"company_name":    {apply: stringField(func(b *Branding, s string) { b.CompanyName = s }, nil)},
	"primary_color":   {apply: stringField(func(b *Branding, s string) { b.PrimaryColor = s }, checkColor)},
	"secondary_color": {apply: stringField(func(b *Branding, s string) { b.SecondaryColor = s }, checkColor)},
	"logo_url":        {apply: stringField(func(b *Branding, s string) { b.LogoURL = s }, checkHTTPURL)},
	"show_powered_by": {apply: func(b *Branding, raw json.RawMessage) error {
		return json.Unmarshal(raw, &b.ShowPoweredBy)
	}},
}

// ParseBranding decodes a branding payload on top of DefaultBranding.
// Unknown keys and invalid values are skipped and reported in ignored (sorted);
// an error is returned only when data is not a JSON object.
func ParseBranding(data []byte) (b Branding, ignored []string, err error) {
	b = DefaultBranding()

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return b, nil, fmt.Errorf("%w: branding: %v", common.ErrorIncorrectPayload, err)
	}

	for key, value := range raw {
		k, ok := brandingKeys[key]
		if !ok {
			ignored = append(ignored, key)
			continue
		}
		if err := k.apply(&b, value); err != nil {
			ignored = append(ignored, key)
		}
	}
	sort.Strings(ignored)
	return b, ignored, nil
}

// Known module identifiers, in default display order.
var DefaultModuleOrder = []string{"contacts", "crm", "employees", "discuss", "calendar", "settings"}

// NormalizeModuleOrder keeps known ids in the given order, drops unknown ids
// and duplicates, and appends the missing known ids in default order.
func NormalizeModuleOrder(order []string) []string {
	known := make(map[string]bool, len(DefaultModuleOrder))
	for _, id := range DefaultModuleOrder {
		known[id] = true
	}

	seen := make(map[string]bool, len(DefaultModuleOrder))
	out := make([]string, 0, len(DefaultModuleOrder))
	for _, id := range order {
		id = strings.TrimSpace(id)
		if !known[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range DefaultModuleOrder {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}
