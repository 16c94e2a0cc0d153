package models

// Contact is a res.partner record.
type Contact struct {
	ID          int64    `json:"id,omitempty"`
	Name        Text     `json:"name"`
	DisplayName Text     `json:"display_name,omitempty"`
	Email       Text     `json:"email,omitempty"`
	Phone       Text     `json:"phone,omitempty"`
	Mobile      Text     `json:"mobile,omitempty"`
	IsCompany   bool     `json:"is_company"`
	Street      Text     `json:"street,omitempty"`
	City        Text     `json:"city,omitempty"`
	Zip         Text     `json:"zip,omitempty"`
	CountryID   Many2One `json:"country_id,omitempty"`
	ParentID    Many2One `json:"parent_id,omitempty"`
	Function    Text     `json:"function,omitempty"`
	Website     Text     `json:"website,omitempty"`
}

// Lead is a crm.lead record.
type Lead struct {
	ID              int64    `json:"id,omitempty"`
	Name            Text     `json:"name"`
	PartnerID       Many2One `json:"partner_id,omitempty"`
	EmailFrom       Text     `json:"email_from,omitempty"`
	Phone           Text     `json:"phone,omitempty"`
	ExpectedRevenue float64  `json:"expected_revenue,omitempty"`
	Probability     float64  `json:"probability,omitempty"`
	StageID         Many2One `json:"stage_id,omitempty"`
	UserID          Many2One `json:"user_id,omitempty"`
	Type            Text     `json:"type,omitempty"`
}

// Employee is an hr.employee record.
type Employee struct {
	ID           int64    `json:"id,omitempty"`
	Name         Text     `json:"name"`
	JobTitle     Text     `json:"job_title,omitempty"`
	WorkEmail    Text     `json:"work_email,omitempty"`
	WorkPhone    Text     `json:"work_phone,omitempty"`
	MobilePhone  Text     `json:"mobile_phone,omitempty"`
	DepartmentID Many2One `json:"department_id,omitempty"`
	ParentID     Many2One `json:"parent_id,omitempty"`
}

// Country is a res.country record.
type Country struct {
	ID        int64 `json:"id,omitempty"`
	Name      Text  `json:"name"`
	Code      Text  `json:"code,omitempty"`
	PhoneCode int   `json:"phone_code,omitempty"`
}

// Language is a res.lang record.
type Language struct {
	ID     int64 `json:"id,omitempty"`
	Name   Text  `json:"name"`
	Code   Text  `json:"code,omitempty"`
	Active bool  `json:"active"`
}
