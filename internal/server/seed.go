package server

import "github.com/dmitrijs2005/odooclient/internal/odootest"

// SeedDemoData fills every model the client knows with a few records.
func SeedDemoData(s *odootest.Server) {
	s.Seed("res.country",
		map[string]any{"name": "Belgium", "code": "BE", "phone_code": 32},
		map[string]any{"name": "France", "code": "FR", "phone_code": 33},
		map[string]any{"name": "United States", "code": "US", "phone_code": 1},
	)
	s.Seed("res.lang",
		map[string]any{"name": "English (US)", "code": "en_US", "active": true},
		map[string]any{"name": "French / Français", "code": "fr_FR", "active": true},
		map[string]any{"name": "Dutch / Nederlands", "code": "nl_NL", "active": false},
	)
	s.Seed("res.partner",
		map[string]any{"name": "Azure Interior", "is_company": true, "email": "azure.Interior24@example.com", "phone": "(870)-931-0505", "city": "Fremont", "country_id": []any{3, "United States"}},
		map[string]any{"name": "Deco Addict", "is_company": true, "email": "deco.addict82@example.com", "phone": "(603)-996-3829", "city": "Pleasant Hill", "country_id": []any{3, "United States"}},
		map[string]any{"name": "Brandon Freeman", "is_company": false, "email": "brandon.freeman55@example.com", "function": "Creative Director", "parent_id": []any{1, "Azure Interior"}},
		map[string]any{"name": "Mitchell Admin", "is_company": false, "email": "admin@yourcompany.example.com", "phone": false},
	)
	s.Seed("crm.lead",
		map[string]any{"name": "Office Design Project", "partner_id": []any{2, "Deco Addict"}, "expected_revenue": 24000, "probability": 30, "type": "opportunity", "stage_id": []any{2, "Qualified"}},
		map[string]any{"name": "Quote for 12 Tables", "partner_id": []any{1, "Azure Interior"}, "expected_revenue": 40000, "probability": 90, "type": "opportunity", "stage_id": []any{3, "Proposition"}},
		map[string]any{"name": "Furnitures for new office", "email_from": "info@example.com", "type": "lead", "partner_id": false},
	)
	s.Seed("hr.employee",
		map[string]any{"name": "Mitchell Admin", "job_title": "Chief Executive Officer", "work_email": "admin@yourcompany.example.com", "department_id": []any{1, "Management"}},
		map[string]any{"name": "Marc Demo", "job_title": "Experienced Developer", "work_email": "mark.brown23@example.com", "department_id": []any{2, "Research & Development"}, "parent_id": []any{1, "Mitchell Admin"}},
	)
}
