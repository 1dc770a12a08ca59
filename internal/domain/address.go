package domain

import "strings"

type Address struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// Validate checks that every field required for checkout submission is
// present. Field names in the result are prefixed, e.g. "shipping.city".
func (a Address) Validate(prefix string) ValidationErrors {
	var errs ValidationErrors

	required := []struct {
		field, label, value string
	}{
		{"name", "name", a.Name},
		{"street", "street", a.Street},
		{"city", "city", a.City},
		{"state", "state", a.State},
		{"postal_code", "postal code", a.PostalCode},
		{"country", "country", a.Country},
		{"phone", "phone", a.Phone},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs.Add(prefix+"."+r.field, prefix+" "+r.label+" is required")
		}
	}

	return errs
}
