package domain

import "strings"

// Postal address captured for a quote. Immutable once captured.
type Address struct {
	Street  string `json:"street" validate:"required"`
	Number  string `json:"number"`
	Commune string `json:"commune" validate:"required"`
	Region  string `json:"region"`
	Note    string `json:"note,omitempty"`
}

// Key returns the normalized cache key of the address.
// The free-text note never takes part in the key.
func (a Address) Key() string {
	parts := []string{a.Street, a.Number, a.Commune, a.Region}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.Join(strings.Fields(p), " "))
	}
	return strings.Join(parts, "|")
}

// Line returns "street number" for single-line geocoding queries.
func (a Address) Line() string {
	return strings.TrimSpace(strings.Join(strings.Fields(a.Street+" "+a.Number), " "))
}
