package order

import (
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"

	"github.com/stuywashndry/washnd/pkg/enums/deliverystatus"
)

// Delivery pairs an order with a driver and the two endpoints of a trip.
// Pure data plus a status machine; routing and fee math live elsewhere.
type Delivery struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	DriverID    string    `json:"driver_id"`
	DriverName  string    `json:"driver_name"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GetID returns the delivery ID
func (d *Delivery) GetID() uuid.UUID {
	return d.ID
}

// ResourceType returns the resource type for URL generation
func (d *Delivery) ResourceType() string {
	return "deliveries"
}

func (d *Delivery) EnsureID() {
	if d.ID == uuid.Nil {
		d.ID = aqm.GenerateNewID()
	}
}

// BeforeCreate sets up the delivery before creation
func (d *Delivery) BeforeCreate() {
	d.EnsureID()
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.Status == "" {
		d.Status = deliverystatus.Statuses.EnrouteToPickup.Name
	}
}

// BeforeUpdate updates the timestamp
func (d *Delivery) BeforeUpdate() {
	d.UpdatedAt = time.Now()
}

// Advance moves the delivery to a new status if the transition table allows.
func (d *Delivery) Advance(to string) error {
	if deliverystatus.ByName(to) == nil {
		return fmt.Errorf("unknown delivery status %q", to)
	}
	if !deliverystatus.CanTransition(d.Status, to) {
		return fmt.Errorf("cannot transition delivery from %q to %q", d.Status, to)
	}
	d.Status = to
	d.UpdatedAt = time.Now()
	return nil
}
