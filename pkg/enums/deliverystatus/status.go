package deliverystatus

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
	EnrouteToPickup           Status
	PickedUp                  Status
	InProgress                Status
	DroppedOff                Status
	ConfirmationPhotoProvided Status
	Successful                Status
	Failed                    Status
	ReturnedToOrigin          Status
}

var Statuses = Enum{
	EnrouteToPickup:           Status{Name: "enroute-to-pickup"},
	PickedUp:                  Status{Name: "picked-up"},
	InProgress:                Status{Name: "in-progress"},
	DroppedOff:                Status{Name: "dropped-off"},
	ConfirmationPhotoProvided: Status{Name: "confirmation-photo-provided"},
	Successful:                Status{Name: "successful"},
	Failed:                    Status{Name: "failed"},
	ReturnedToOrigin:          Status{Name: "returned-to-origin"},
}

var All = []Status{
	Statuses.EnrouteToPickup,
	Statuses.PickedUp,
	Statuses.InProgress,
	Statuses.DroppedOff,
	Statuses.ConfirmationPhotoProvided,
	Statuses.Successful,
	Statuses.Failed,
	Statuses.ReturnedToOrigin,
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

var transitions = map[string][]string{
	Statuses.EnrouteToPickup.Name: {Statuses.PickedUp.Name},
	Statuses.PickedUp.Name:        {Statuses.InProgress.Name},
	Statuses.InProgress.Name: {
		Statuses.DroppedOff.Name,
		Statuses.Failed.Name,
	},
	Statuses.DroppedOff.Name:                {Statuses.ConfirmationPhotoProvided.Name},
	Statuses.ConfirmationPhotoProvided.Name: {Statuses.Successful.Name},
	Statuses.Failed.Name:                    {Statuses.ReturnedToOrigin.Name},
	Statuses.Successful.Name:                {},
	Statuses.ReturnedToOrigin.Name:          {},
}

// CanTransition reports whether a delivery may move between two statuses.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
