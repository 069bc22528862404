package orderstatus

import (
	"strings"
)

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	parts := strings.Split(s.Name, "-")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

type Enum struct {
	PaidAwaitingConfirmation Status
	Placed                   Status
	ReadyForDriverPickup     Status
	DroppedOffByCustomer     Status
	InTransitToLaundromat    Status
	InProgress               Status
	ReadyForCustomerPickup   Status
	ReadyForDelivery         Status
	InTransitToCustomer      Status
	Delivered                Status
	PickedUp                 Status
	PaymentFailureVoided     Status
	OtherFailureVoided       Status
}

var Statuses = Enum{
	PaidAwaitingConfirmation: Status{Name: "paid-awaiting-confirmation"},
	Placed:                   Status{Name: "placed"},
	ReadyForDriverPickup:     Status{Name: "ready-for-driver-pickup"},
	DroppedOffByCustomer:     Status{Name: "dropped-off-by-customer"},
	InTransitToLaundromat:    Status{Name: "in-transit-to-laundromat"},
	InProgress:               Status{Name: "in-progress"},
	ReadyForCustomerPickup:   Status{Name: "ready-for-customer-pickup"},
	ReadyForDelivery:         Status{Name: "ready-for-delivery"},
	InTransitToCustomer:      Status{Name: "in-transit-to-customer"},
	Delivered:                Status{Name: "delivered"},
	PickedUp:                 Status{Name: "picked-up"},
	PaymentFailureVoided:     Status{Name: "payment-failure-voided"},
	OtherFailureVoided:       Status{Name: "other-failure-voided"},
}

var All = []Status{
	Statuses.PaidAwaitingConfirmation,
	Statuses.Placed,
	Statuses.ReadyForDriverPickup,
	Statuses.DroppedOffByCustomer,
	Statuses.InTransitToLaundromat,
	Statuses.InProgress,
	Statuses.ReadyForCustomerPickup,
	Statuses.ReadyForDelivery,
	Statuses.InTransitToCustomer,
	Statuses.Delivered,
	Statuses.PickedUp,
	Statuses.PaymentFailureVoided,
	Statuses.OtherFailureVoided,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}

// transitions maps each status to the statuses an order may advance to.
// Voided statuses are reachable from the initial status only: a voided order
// never becomes durable, so nothing downstream of placement can void.
var transitions = map[string][]string{
	Statuses.PaidAwaitingConfirmation.Name: {
		Statuses.Placed.Name,
		Statuses.PaymentFailureVoided.Name,
		Statuses.OtherFailureVoided.Name,
	},
	Statuses.Placed.Name: {
		Statuses.ReadyForDriverPickup.Name,
		Statuses.DroppedOffByCustomer.Name,
	},
	Statuses.ReadyForDriverPickup.Name: {
		Statuses.InTransitToLaundromat.Name,
	},
	Statuses.InTransitToLaundromat.Name: {
		Statuses.InProgress.Name,
	},
	Statuses.DroppedOffByCustomer.Name: {
		Statuses.InProgress.Name,
	},
	Statuses.InProgress.Name: {
		Statuses.ReadyForCustomerPickup.Name,
		Statuses.ReadyForDelivery.Name,
	},
	Statuses.ReadyForCustomerPickup.Name: {
		Statuses.PickedUp.Name,
	},
	Statuses.ReadyForDelivery.Name: {
		Statuses.InTransitToCustomer.Name,
	},
	Statuses.InTransitToCustomer.Name: {
		Statuses.Delivered.Name,
	},
	Statuses.Delivered.Name:            {},
	Statuses.PickedUp.Name:             {},
	Statuses.PaymentFailureVoided.Name: {},
	Statuses.OtherFailureVoided.Name:   {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsVoided reports whether the status is one of the absorbing failure states.
func IsVoided(name string) bool {
	return name == Statuses.PaymentFailureVoided.Name || name == Statuses.OtherFailureVoided.Name
}

// IsTerminal reports whether no further transition exists from the status.
func IsTerminal(name string) bool {
	next, ok := transitions[name]
	return ok && len(next) == 0
}
