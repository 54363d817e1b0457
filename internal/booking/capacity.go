// Package booking holds the admission rules of the reservation system:
// capacity, admission decisions, reservation status transitions, voucher
// and promo valuation, the approval queue read-model and price quotes.
// Everything here is a pure function of its inputs; callers load the data
// and persist the results.
package booking

import "github.com/iliyamo/theater-reservation/internal/model"

// Counted reports whether a reservation in status s occupies seats.
func Counted(s model.ReservationStatus) bool {
	return s == model.ReservationConfirmed || s == model.ReservationProvisional
}

// BookedGuests sums the guests of all counted reservations.
func BookedGuests(rs []model.Reservation) int {
	total := 0
	for _, r := range rs {
		if Counted(r.Status) {
			total += r.Guests
		}
	}
	return total
}

// AvailableCapacity returns max(0, capacity - booked guests). Cancelled and
// waitlisted reservations do not count.
func AvailableCapacity(capacity int, rs []model.Reservation) int {
	if left := capacity - BookedGuests(rs); left > 0 {
		return left
	}
	return 0
}
