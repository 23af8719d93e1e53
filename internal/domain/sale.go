package domain

import (
	"time"

	"github.com/vendops/earnings/internal/money"
)

// Sale is one recorded point-of-sale line. Negative quantities represent
// returns or voids and are netted like any other line.
type Sale struct {
	ID            string      `json:"id"`
	MachineID     string      `json:"machine_id"`
	OccurredAt    time.Time   `json:"occurred_at"`
	Quantity      int64       `json:"qty"`
	UnitPrice     money.Cents `json:"unit_price_cents"`
	UnitCost      money.Cents `json:"unit_cost_cents"`
	PaymentMethod string      `json:"payment_method,omitempty"`
	ImportID      string      `json:"import_id,omitempty"`
}

// Gross is quantity × unit price.
func (s Sale) Gross() money.Cents {
	return s.UnitPrice.Times(s.Quantity)
}

// Cost is quantity × unit cost.
func (s Sale) Cost() money.Cents {
	return s.UnitCost.Times(s.Quantity)
}

type Machine struct {
	ID         string `json:"id"`
	LocationID string `json:"location_id"`
	Name       string `json:"name"`
}

// Placement maps a machine ID to the location it stands in.
type Placement map[string]string

// NewPlacement indexes machines by ID.
func NewPlacement(machines []Machine) Placement {
	p := make(Placement, len(machines))
	for _, m := range machines {
		p[m.ID] = m.LocationID
	}
	return p
}

// LocationOf returns the location of a machine, or "" when it is unknown.
func (p Placement) LocationOf(machineID string) string {
	return p[machineID]
}
