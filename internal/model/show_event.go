package model

import "time"

// ShowEvent is one scheduled performance. The show date is the unit that
// capacity and reservations are tracked against.
//
// Fields:
//  ID               – primary key identifier.
//  Date             – performance date (YYYY-MM-DD), unique among live rows.
//  Name             – show title.
//  ShowType         – key into the pricing catalogue.
//  Capacity         – default seating capacity.
//  ManualCapacity   – optional override; supersedes Capacity when set.
//  Closed           – closed dates only accept waitlist requests.
//  ExternalBookings – guests booked through outside channels (informational).
//  DeletedAt        – logical deletion marker.
type ShowEvent struct {
	ID               uint64     `json:"id"`                // show_events.id
	Date             string     `json:"date"`              // show_events.show_date
	Name             string     `json:"name"`              // show_events.name
	ShowType         string     `json:"show_type"`         // show_events.show_type
	Capacity         int        `json:"capacity"`          // show_events.capacity
	ManualCapacity   *int       `json:"manual_capacity"`   // show_events.manual_capacity (nullable)
	Closed           bool       `json:"closed"`            // show_events.is_closed
	ExternalBookings int        `json:"external_bookings"` // show_events.external_bookings
	DeletedAt        *time.Time `json:"-"`                 // show_events.deleted_at (nullable)
	CreatedAt        time.Time  `json:"created_at"`        // show_events.created_at
	UpdatedAt        time.Time  `json:"updated_at"`        // show_events.updated_at
}

// EffectiveCapacity returns the manual override when present, otherwise the
// default capacity.
func (s ShowEvent) EffectiveCapacity() int {
	if s.ManualCapacity != nil {
		return *s.ManualCapacity
	}
	return s.Capacity
}
