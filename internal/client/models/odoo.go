package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

var jsonFalse = []byte("false")

// Text is an Odoo char/text field. Odoo serialises empty values as false.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, jsonFalse) || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("text field: %w", err)
	}
	*t = Text(s)
	return nil
}

// Many2One is an Odoo relational reference, encoded as [id, "display name"]
// or false when unset. It is written back as the bare id.
type Many2One struct {
	ID   int64
	Name string
}

// IsSet is false for Odoo's false (no related record).
func (m Many2One) IsSet() bool { return m.ID != 0 }

func (m *Many2One) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, jsonFalse) || bytes.Equal(b, []byte("null")) {
		*m = Many2One{}
		return nil
	}

	var id int64
	if err := json.Unmarshal(b, &id); err == nil {
		*m = Many2One{ID: id}
		return nil
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("many2one field: %w", err)
	}
	if len(pair) == 0 {
		*m = Many2One{}
		return nil
	}
	if err := json.Unmarshal(pair[0], &m.ID); err != nil {
		return fmt.Errorf("many2one id: %w", err)
	}
	m.Name = ""
	if len(pair) > 1 {
		var name Text
		if err := json.Unmarshal(pair[1], &name); err != nil {
			return fmt.Errorf("many2one name: %w", err)
		}
		m.Name = string(name)
	}
	return nil
}

// MarshalJSON writes the bare id, or false when unset, which is the form
// Odoo accepts on create and write.
func (m Many2One) MarshalJSON() ([]byte, error) {
	if m.ID == 0 {
		return jsonFalse, nil
	}
	return json.Marshal(m.ID)
}

// ListPage is the REST facade's list envelope.
type ListPage[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}
