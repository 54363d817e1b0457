package model

// ReservationStatus is the lifecycle tag stored in reservations.status.
type ReservationStatus string

const (
	ReservationConfirmed   ReservationStatus = "confirmed"
	ReservationProvisional ReservationStatus = "provisional"
	ReservationWaitlisted  ReservationStatus = "waitlisted"
	ReservationCancelled   ReservationStatus = "cancelled"
)

// Valid reports whether s is one of the known reservation statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationConfirmed, ReservationProvisional, ReservationWaitlisted, ReservationCancelled:
		return true
	}
	return false
}

// BookingSource records whether a reservation came in through the public
// booking flow or was entered by staff.
type BookingSource string

const (
	SourceExternal BookingSource = "external"
	SourceInternal BookingSource = "internal"
)

// WaitlistStatus is stored in waitlist_entries.status.
type WaitlistStatus string

const (
	WaitlistActive    WaitlistStatus = "active"
	WaitlistNotified  WaitlistStatus = "notified"
	WaitlistConverted WaitlistStatus = "converted"
	WaitlistExpired   WaitlistStatus = "expired"
	WaitlistRemoved   WaitlistStatus = "removed"
)

func (s WaitlistStatus) Valid() bool {
	switch s {
	case WaitlistActive, WaitlistNotified, WaitlistConverted, WaitlistExpired, WaitlistRemoved:
		return true
	}
	return false
}

// VoucherStatus is stored in vouchers.status. VoucherExpired is normally
// derived at read time from expires_on and never written by the service.
type VoucherStatus string

const (
	VoucherActive   VoucherStatus = "active"
	VoucherUsed     VoucherStatus = "used"
	VoucherExpired  VoucherStatus = "expired"
	VoucherExtended VoucherStatus = "extended"
	VoucherArchived VoucherStatus = "archived"
)

func (s VoucherStatus) Valid() bool {
	switch s {
	case VoucherActive, VoucherUsed, VoucherExpired, VoucherExtended, VoucherArchived:
		return true
	}
	return false
}

// VoucherKind distinguishes fixed-value vouchers from vouchers that admit a
// number of guests regardless of price.
type VoucherKind string

const (
	VoucherKindValue   VoucherKind = "value"
	VoucherKindPersons VoucherKind = "persons"
)

// DiscountType is stored in promo_codes.discount_type.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Admin roles carried in the access token "role" claim.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)
