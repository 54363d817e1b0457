package booking

import (
	"errors"
	"fmt"

	"github.com/iliyamo/theater-reservation/internal/model"
)

// ErrInvalidTransition is returned for a status change the reservation
// lifecycle does not allow.
var ErrInvalidTransition = errors.New("invalid reservation status transition")

// Decide classifies a new request. A closed date only takes waitlist
// requests; an open date confirms what fits and accepts the rest as
// provisional for admin review.
func Decide(requestedGuests, available int, closed bool) model.ReservationStatus {
	switch {
	case closed:
		return model.ReservationWaitlisted
	case requestedGuests <= available:
		return model.ReservationConfirmed
	default:
		return model.ReservationProvisional
	}
}

var transitions = map[model.ReservationStatus][]model.ReservationStatus{
	model.ReservationProvisional: {model.ReservationConfirmed, model.ReservationCancelled},
	model.ReservationConfirmed:   {model.ReservationCancelled},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to model.ReservationStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition returns ErrInvalidTransition (wrapped with both states) when
// from -> to is not allowed.
func Transition(from, to model.ReservationStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
