package delivery

// FailureReason is one catalog entry a driver can pick when a delivery
// cannot be completed.
type FailureReason struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	RequiresNote bool   `json:"requires_note"`
}

// Catalog is the fixed, ordered failure-reason list. Immutable for the
// session.
type Catalog struct {
	reasons []FailureReason
	byID    map[string]FailureReason
}

func NewCatalog(reasons []FailureReason) *Catalog {
	byID := make(map[string]FailureReason, len(reasons))
	for _, r := range reasons {
		byID[r.ID] = r
	}
	return &Catalog{reasons: reasons, byID: byID}
}

// DefaultCatalog returns the production reason list.
func DefaultCatalog() *Catalog {
	return NewCatalog([]FailureReason{
		{ID: "recipient_not_available", Label: "Recipient not available", RequiresNote: false},
		{ID: "address_incorrect", Label: "Address incorrect/incomplete", RequiresNote: true},
		{ID: "access_denied", Label: "Access denied to building/area", RequiresNote: true},
		{ID: "refused_delivery", Label: "Delivery refused by recipient", RequiresNote: true},
		{ID: "damage_observed", Label: "Package damage observed", RequiresNote: true},
		{ID: "security_concern", Label: "Security/safety concern", RequiresNote: true},
		{ID: "business_closed", Label: "Business closed", RequiresNote: false},
		{ID: "weather_conditions", Label: "Severe weather conditions", RequiresNote: false},
		{ID: "other", Label: "Other reason", RequiresNote: true},
	})
}

// Reasons returns the entries in catalog order.
func (c *Catalog) Reasons() []FailureReason {
	out := make([]FailureReason, len(c.reasons))
	copy(out, c.reasons)
	return out
}

func (c *Catalog) Lookup(id string) (FailureReason, bool) {
	r, ok := c.byID[id]
	return r, ok
}
