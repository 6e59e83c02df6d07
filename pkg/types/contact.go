package types

// Contact holds the shop's public contact details, stored as jsonb.
type Contact struct {
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}
