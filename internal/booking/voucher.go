package booking

import (
	"fmt"
	"time"

	"github.com/iliyamo/theater-reservation/internal/model"
)

// VoucherError is the reason a voucher cannot be used.
type VoucherError string

const (
	VoucherNotFound    VoucherError = "not_found"
	VoucherAlreadyUsed VoucherError = "already_used"
	VoucherArchived    VoucherError = "archived"
	VoucherExpired     VoucherError = "expired"
)

// VoucherCheck is the outcome of ValidateForUse. Rejections are reported
// here, not as Go errors. Amounts are only filled for value vouchers.
type VoucherCheck struct {
	Valid          bool         `json:"valid"`
	Error          VoucherError `json:"error,omitempty"`
	Message        string       `json:"message"`
	Warning        string       `json:"warning,omitempty"`
	AppliedCents   int64        `json:"applied_cents"`
	RemainderCents int64        `json:"remainder_cents"`
	ForfeitedCents int64        `json:"forfeited_cents"`
}

func rejectVoucher(reason VoucherError, msg string) VoucherCheck {
	return VoucherCheck{Valid: false, Error: reason, Message: msg}
}

// ValidateForUse checks whether v can pay (part of) an order of totalCents
// at time now. Expiry is evaluated against the end of the expiry day in loc.
//
// A value voucher is applied in full: a shortfall must be paid separately
// and a surplus is forfeited, never refunded or banked. A persons voucher is
// valid as soon as its status allows use; its value is priced by the caller.
func ValidateForUse(v *model.Voucher, totalCents int64, now time.Time, loc *time.Location) VoucherCheck {
	if v == nil {
		return rejectVoucher(VoucherNotFound, "Voucher niet gevonden. Controleer de code.")
	}
	switch v.Status {
	case model.VoucherUsed:
		return rejectVoucher(VoucherAlreadyUsed, "Deze voucher is al gebruikt.")
	case model.VoucherArchived:
		return rejectVoucher(VoucherArchived, "Deze voucher is niet meer geldig.")
	}
	if v.Status == model.VoucherExpired || IsExpired(v, now, loc) {
		return rejectVoucher(VoucherExpired,
			fmt.Sprintf("Deze voucher is verlopen op %s.", v.ExpiresOn.Format("02-01-2006")))
	}

	if v.Kind == model.VoucherKindPersons {
		return VoucherCheck{
			Valid:   true,
			Message: "Voucher toegepast.",
			Warning: fmt.Sprintf("Voucher geldig voor %d personen. De overige kosten worden apart berekend.", v.Persons),
		}
	}

	check := VoucherCheck{
		Valid:        true,
		Message:      "Voucher toegepast.",
		AppliedCents: minInt64(v.ValueCents, totalCents),
	}
	switch {
	case v.ValueCents < totalCents:
		check.RemainderCents = totalCents - v.ValueCents
		check.Warning = fmt.Sprintf("De voucherwaarde is lager dan het totaalbedrag. Het resterende bedrag van %s moet apart worden betaald.",
			FormatEuro(check.RemainderCents))
	case v.ValueCents > totalCents:
		check.ForfeitedCents = v.ValueCents - totalCents
		check.Warning = fmt.Sprintf("De voucherwaarde is hoger dan het totaalbedrag. Het overschot van %s vervalt en wordt niet terugbetaald.",
			FormatEuro(check.ForfeitedCents))
	}
	return check
}

// ExpiryDeadline is the first instant at which v is expired: midnight after
// its expiry date in loc.
func ExpiryDeadline(v *model.Voucher, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := v.ExpiresOn.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

// IsExpired reports whether now is past the end of v's expiry day.
func IsExpired(v *model.Voucher, now time.Time, loc *time.Location) bool {
	return !now.Before(ExpiryDeadline(v, loc))
}

// EffectiveStatus is the status shown to admins: active and extended
// vouchers past their expiry day read as expired.
func EffectiveStatus(v *model.Voucher, now time.Time, loc *time.Location) model.VoucherStatus {
	if (v.Status == model.VoucherActive || v.Status == model.VoucherExtended) && IsExpired(v, now, loc) {
		return model.VoucherExpired
	}
	return v.Status
}

// PersonsVoucherValue prices a persons voucher for a booking: the covered
// guests (at most the booked guests) times the per-person price.
func PersonsVoucherValue(v *model.Voucher, guests int, perPersonCents int64) int64 {
	covered := v.Persons
	if covered > guests {
		covered = guests
	}
	if covered < 0 {
		covered = 0
	}
	return int64(covered) * perPersonCents
}
