package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/odooclient/internal/common"
)

func TestCacheEntry_IsStale(t *testing.T) {
	stored := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	e := CacheEntry[[]Contact]{StoredAt: stored}

	assert.False(t, e.IsStale(stored.Add(5*time.Minute), 5*time.Minute), "exactly ttl is fresh")
	assert.True(t, e.IsStale(stored.Add(5*time.Minute+time.Second), 5*time.Minute))
}

func TestSessionState_CookieValueAndClear(t *testing.T) {
	s := SessionState{Cookie: "frontend_lang=en_US; session_id=abc123", AuthToken: "t", RefreshToken: "r"}
	assert.Equal(t, "abc123", s.CookieValue("session_id"))
	assert.Equal(t, "", s.CookieValue("missing"))

	s.Clear()
	assert.Equal(t, SessionState{}, s)
}

func TestContact_DecodesOdooFalseValues(t *testing.T) {
	in := `{"id":7,"name":"Azure Interior","email":false,"phone":"+1 555","is_company":true,
		"country_id":[233,"United States"],"parent_id":false}`

	var c Contact
	require.NoError(t, json.Unmarshal([]byte(in), &c))

	assert.Equal(t, int64(7), c.ID)
	assert.Equal(t, Text("Azure Interior"), c.Name)
	assert.Equal(t, Text(""), c.Email)
	assert.Equal(t, Text("+1 555"), c.Phone)
	assert.True(t, c.IsCompany)
	assert.Equal(t, Many2One{ID: 233, Name: "United States"}, c.CountryID)
	assert.False(t, c.ParentID.IsSet())
}

func TestMany2One_BareIDAndMarshal(t *testing.T) {
	var m Many2One
	require.NoError(t, json.Unmarshal([]byte(`12`), &m))
	assert.Equal(t, Many2One{ID: 12}, m)

	b, err := json.Marshal(Many2One{ID: 12, Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "12", string(b))

	b, err = json.Marshal(Many2One{})
	require.NoError(t, err)
	assert.Equal(t, "false", string(b))

	require.Error(t, json.Unmarshal([]byte(`{"id":1}`), &m))
}

func TestParseBranding(t *testing.T) {
	in := `{"company_name":"Acme","primary_color":"#112233","secondary_color":"blue",
		"logo_url":"https://acme.example/logo.png","show_powered_by":false,"theme":"dark"}`

	b, ignored, err := ParseBranding([]byte(in))
	require.NoError(t, err)

	def := DefaultBranding()
	assert.Equal(t, "Acme", b.CompanyName)
	assert.Equal(t, "#112233", b.PrimaryColor)
	assert.Equal(t, def.SecondaryColor, b.SecondaryColor, "invalid colour keeps default")
	assert.Equal(t, "https://acme.example/logo.png", b.LogoURL)
	assert.False(t, b.ShowPoweredBy)
	assert.Equal(t, []string{"secondary_color", "theme"}, ignored)
}

func TestParseBranding_NotAnObject(t *testing.T) {
	b, _, err := ParseBranding([]byte(`["a"]`))
	require.ErrorIs(t, err, common.ErrorIncorrectPayload)
	assert.Equal(t, DefaultBranding(), b)
}

func TestNormalizeModuleOrder(t *testing.T) {
	got := NormalizeModuleOrder([]string{"crm", "bogus", "contacts", "crm", " settings "})
	assert.Equal(t, []string{"crm", "contacts", "settings", "employees", "discuss", "calendar"}, got)

	assert.Equal(t, DefaultModuleOrder, NormalizeModuleOrder(nil))
}
