// Package queue carries domain events between the reservation service and
// RabbitMQ: the payload type, a publisher and the booking log consumer.
package queue

import (
    "time"

    "github.com/google/uuid"
)

// Event types published on the events queue.
const (
    ReservationCreated       = "reservation.created"
    ReservationStatusChanged = "reservation.status_changed"
    ReservationCheckedIn     = "reservation.checked_in"
    WaitlistJoined           = "waitlist.joined"
    WaitlistNotified         = "waitlist.notified"
    WaitlistConverted        = "waitlist.converted"
    VoucherUsed              = "voucher.used"
)

// Event is the JSON payload of every message. It carries enough for a
// consumer to log or notify without querying the database; fields that do
// not apply to a type are left empty.
type Event struct {
    ID              string    `json:"id"`
    Type            string    `json:"type"`
    ReservationID   uint64    `json:"reservation_id,omitempty"`
    WaitlistEntryID uint64    `json:"waitlist_entry_id,omitempty"`
    VoucherID       uint64    `json:"voucher_id,omitempty"`
    ShowDate        string    `json:"show_date,omitempty"`
    Guests          int       `json:"guests,omitempty"`
    Status          string    `json:"status,omitempty"`
    TotalCents      int64     `json:"total_cents,omitempty"`
    Email           string    `json:"email,omitempty"`
    Actor           uint64    `json:"actor,omitempty"`
    OccurredAt      time.Time `json:"occurred_at"`
}

// NewEvent stamps an event of type typ with a fresh id and time.
func NewEvent(typ string, at time.Time) Event {
    return Event{ID: uuid.NewString(), Type: typ, OccurredAt: at.UTC()}
}
