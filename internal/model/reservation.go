package model

import "time"

// Reservation is one booking request for a show date. Cancelled rows are
// kept for reporting.
//
// Fields:
//  SubtotalCents       – price before promo and voucher.
//  DiscountCents       – promo discount applied to the subtotal.
//  VoucherAppliedCents – part of the order covered by the voucher.
//  TotalCents          – amount still owed by the guest.
//  StatusChangedBy     – admin user that made the last status change.
type Reservation struct {
	ID                  uint64            `json:"id"`                    // reservations.id
	ShowDate            string            `json:"date"`                  // reservations.show_date
	ContactName         string            `json:"name"`                  // reservations.contact_name
	Email               string            `json:"email"`                 // reservations.email
	Phone               string            `json:"phone"`                 // reservations.phone
	Guests              int               `json:"guests"`                // reservations.guests
	DrinkPackage        string            `json:"drink_package"`         // reservations.drink_package
	Addons              map[string]int    `json:"addons"`                // reservations.addons (JSON)
	SubtotalCents       int64             `json:"subtotal_cents"`        // reservations.subtotal_cents
	PromoCode           *string           `json:"promo_code"`            // reservations.promo_code (nullable)
	DiscountCents       int64             `json:"discount_cents"`        // reservations.discount_cents
	VoucherID           *uint64           `json:"voucher_id"`            // reservations.voucher_id (nullable)
	VoucherAppliedCents int64             `json:"voucher_applied_cents"` // reservations.voucher_applied_cents
	TotalCents          int64             `json:"total_cents"`           // reservations.total_cents
	CheckedIn           bool              `json:"checked_in"`            // reservations.checked_in
	Status              ReservationStatus `json:"status"`                // reservations.status
	Source              BookingSource     `json:"source"`                // reservations.source
	StatusChangedBy     *uint64           `json:"status_changed_by"`     // reservations.status_changed_by (nullable)
	CreatedAt           time.Time         `json:"created_at"`            // reservations.created_at
	UpdatedAt           time.Time         `json:"updated_at"`            // reservations.updated_at
}
