package model

import "time"

// Voucher is a prepaid theater voucher. ExpiresOn only carries a date; the
// voucher stays usable until the end of that day in the venue timezone.
//
// Fields:
//  Kind              – value (ValueCents) or persons (Persons guests).
//  UsedReservationID – reservation the voucher was applied to.
//  ExtensionCount    – number of admin expiry extensions.
type Voucher struct {
	ID                uint64        `json:"id"`                  // vouchers.id
	Code              string        `json:"code"`                // vouchers.code
	Kind              VoucherKind   `json:"kind"`                // vouchers.kind
	ValueCents        int64         `json:"value_cents"`         // vouchers.value_cents
	Persons           int           `json:"persons"`             // vouchers.persons
	IssuedOn          time.Time     `json:"issued_on"`           // vouchers.issued_on
	ExpiresOn         time.Time     `json:"expires_on"`          // vouchers.expires_on
	Status            VoucherStatus `json:"status"`              // vouchers.status
	UsedAt            *time.Time    `json:"used_at"`             // vouchers.used_at (nullable)
	UsedReservationID *uint64       `json:"used_reservation_id"` // vouchers.used_reservation_id (nullable)
	ExtensionCount    int           `json:"extension_count"`     // vouchers.extension_count
	Notes             string        `json:"notes"`               // vouchers.notes
	CreatedAt         time.Time     `json:"created_at"`          // vouchers.created_at
	UpdatedAt         time.Time     `json:"updated_at"`          // vouchers.updated_at
}
