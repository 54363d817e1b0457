package service

import "fmt"

// RejectionKind tells the HTTP layer how to surface a RejectionError.
type RejectionKind int

const (
	KindRule     RejectionKind = iota // business rule said no
	KindNotFound                      // the referenced record does not exist
	KindConflict                      // the record is in a state that forbids the action
)

// RejectionError is a business-rule rejection with a guest-facing Dutch
// message. It is an expected outcome, not a failure of the service.
type RejectionError struct {
	Kind    RejectionKind
	Code    string
	Message string
}

func (e *RejectionError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func reject(kind RejectionKind, code, msg string) error {
	return &RejectionError{Kind: kind, Code: code, Message: msg}
}

// ValidationError reports malformed input for one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

var (
	errShowNotFound    = reject(KindNotFound, "show_not_found", "Er is geen voorstelling op deze datum.")
	errResNotFound     = reject(KindNotFound, "reservation_not_found", "Reservering niet gevonden.")
	errWaitlistMissing = reject(KindNotFound, "waitlist_not_found", "Wachtlijstinschrijving niet gevonden.")
	errVoucherMissing  = reject(KindNotFound, "voucher_not_found", "Voucher niet gevonden.")
	errPromoMissing    = reject(KindNotFound, "promo_not_found", "Kortingscode niet gevonden.")
	errPromoInvalid    = reject(KindRule, "promo_invalid", "Deze kortingscode is niet (meer) geldig.")
	errBadTransition   = reject(KindConflict, "invalid_transition", "Deze actie is niet mogelijk voor de huidige status van de reservering.")
)
