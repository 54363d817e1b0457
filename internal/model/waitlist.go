package model

import "time"

// WaitlistEntry is a guest waiting for a closed or sold-out date. Entries
// that came from a waitlisted booking carry its ReservationID.
type WaitlistEntry struct {
	ID                     uint64         `json:"id"`                       // waitlist_entries.id
	ReservationID          *uint64        `json:"reservation_id"`           // waitlist_entries.reservation_id (nullable)
	ContactName            string         `json:"name"`                     // waitlist_entries.contact_name
	Email                  string         `json:"email"`                    // waitlist_entries.email
	Phone                  string         `json:"phone"`                    // waitlist_entries.phone
	Guests                 int            `json:"guests"`                   // waitlist_entries.guests
	ShowDate               string         `json:"date"`                     // waitlist_entries.show_date
	Status                 WaitlistStatus `json:"status"`                   // waitlist_entries.status
	Priority               int            `json:"priority"`                 // waitlist_entries.priority
	NotificationCount      int            `json:"notification_count"`       // waitlist_entries.notification_count
	LastNotifiedAt         *time.Time     `json:"last_notified_at"`         // waitlist_entries.last_notified_at (nullable)
	ConvertedReservationID *uint64        `json:"converted_reservation_id"` // waitlist_entries.converted_reservation_id (nullable)
	CreatedAt              time.Time      `json:"created_at"`               // waitlist_entries.created_at
	UpdatedAt              time.Time      `json:"updated_at"`               // waitlist_entries.updated_at
}
