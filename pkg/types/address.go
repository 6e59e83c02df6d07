package types

import "strings"

// Address is stored as jsonb on orders and customers.
type Address struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
}

// Validate reports whether the required address fields are present.
func (a Address) Validate() error {
	switch {
	case strings.TrimSpace(a.Line1) == "":
		return missingField("line1")
	case strings.TrimSpace(a.City) == "":
		return missingField("city")
	case strings.TrimSpace(a.State) == "":
		return missingField("state")
	case strings.TrimSpace(a.PostalCode) == "":
		return missingField("postal_code")
	}
	return nil
}

type missingField string

func (m missingField) Error() string {
	return "address: missing " + string(m)
}
