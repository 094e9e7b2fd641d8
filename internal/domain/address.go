package domain

// Address is the shipping/billing shape used by pricing (country + region
// drive tax lookup) and snapshotted onto orders.
type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Snapshot returns the address as a plain map for jsonb storage.
func (a Address) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"name":       a.Name,
		"line1":      a.Line1,
		"line2":      a.Line2,
		"city":       a.City,
		"region":     a.Region,
		"postalCode": a.PostalCode,
		"country":    a.Country,
	}
}
