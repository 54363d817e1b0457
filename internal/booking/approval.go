package booking

import (
	"sort"

	"github.com/iliyamo/theater-reservation/internal/model"
)

// CapacityImpact is what an admin sees for one provisional reservation
// before approving or rejecting it. CurrentBooked only counts confirmed
// guests; other pending reservations are reviewed on their own row.
type CapacityImpact struct {
	Reservation   model.Reservation `json:"reservation"`
	Capacity      int               `json:"capacity"`
	CurrentBooked int               `json:"current_booked"`
	Projected     int               `json:"projected"`
	ExceedsBy     int               `json:"exceeds_by"`
	Remaining     int               `json:"remaining"`
}

// Impact computes the capacity impact of approving pending, given the
// effective capacity of its date and all reservations on that date.
func Impact(pending model.Reservation, capacity int, dateReservations []model.Reservation) CapacityImpact {
	booked := 0
	for _, r := range dateReservations {
		if r.ID != pending.ID && r.Status == model.ReservationConfirmed {
			booked += r.Guests
		}
	}
	projected := booked + pending.Guests
	imp := CapacityImpact{
		Reservation:   pending,
		Capacity:      capacity,
		CurrentBooked: booked,
		Projected:     projected,
	}
	if projected > capacity {
		imp.ExceedsBy = projected - capacity
	} else {
		imp.Remaining = capacity - projected
	}
	return imp
}

// PendingQueue builds the approval queue from the provisional reservations
// in rs. capacities maps show date to effective capacity; rs must contain
// every reservation on those dates.
func PendingQueue(rs []model.Reservation, capacities map[string]int) []CapacityImpact {
	byDate := make(map[string][]model.Reservation)
	for _, r := range rs {
		byDate[r.ShowDate] = append(byDate[r.ShowDate], r)
	}
	var out []CapacityImpact
	for _, r := range rs {
		if r.Status != model.ReservationProvisional {
			continue
		}
		out = append(out, Impact(r, capacities[r.ShowDate], byDate[r.ShowDate]))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Reservation, out[j].Reservation
		if a.ShowDate != b.ShowDate {
			return a.ShowDate < b.ShowDate
		}
		return a.ID < b.ID
	})
	return out
}
