package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theater-reservation/internal/auth"
	"github.com/iliyamo/theater-reservation/internal/booking"
	"github.com/iliyamo/theater-reservation/internal/model"
	"github.com/iliyamo/theater-reservation/internal/queue"
	"github.com/iliyamo/theater-reservation/internal/repository"
)

// Submission is a booking request as accepted from a guest.
type Submission struct {
	Date         string
	Name         string
	Email        string
	Phone        string
	Guests       int
	DrinkPackage string
	Addons       map[string]int
	PromoCode    string
	VoucherCode  string
}

// Outcome is the result of a submitted booking.
type Outcome struct {
	Reservation     model.Reservation `json:"reservation"`
	Quote           booking.Quote     `json:"quote"`
	AvailableBefore int               `json:"available_before"`
	VoucherWarning  string            `json:"voucher_warning,omitempty"`
	WaitlistEntryID *uint64           `json:"waitlist_entry_id,omitempty"`
	Message         string            `json:"message"`
}

// CalendarDay is the public availability of one show date.
type CalendarDay struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	ShowType  string `json:"show_type"`
	Capacity  int    `json:"capacity"`
	Booked    int    `json:"booked"`
	Available int    `json:"available"`
	Closed    bool   `json:"closed"`
}

// CalendarView is the resolved range plus the show dates inside it.
type CalendarView struct {
	From string        `json:"from"`
	To   string        `json:"to"`
	Days []CalendarDay `json:"days"`
}

// calendarSpan is the default range length when no end date is given.
const calendarSpan = 90

var statusMessages = map[model.ReservationStatus]string{
	model.ReservationConfirmed:   "Uw reservering is bevestigd.",
	model.ReservationProvisional: "Uw reservering is ontvangen en wacht op bevestiging door ons team.",
	model.ReservationWaitlisted:  "U staat op de wachtlijst. Wij nemen contact met u op zodra er plaats vrijkomt.",
}

// BookingService runs guest bookings and the admin reservation workflow.
type BookingService struct {
	d *Deps
}

func NewBookingService(d *Deps) *BookingService { return &BookingService{d: d} }

// Submit admits a booking. The show row stays locked from the capacity read
// until the reservation is committed, so concurrent bookings for the same
// date are decided one after another.
func (s *BookingService) Submit(ctx context.Context, sub Submission) (Outcome, error) {
	rules := s.d.Rules.Get()
	if sub.Guests < 1 {
		return Outcome{}, &ValidationError{Field: "guests", Message: "minimaal 1 gast"}
	}
	if sub.Guests > rules.MaxGuestsPerBooking {
		return Outcome{}, reject(KindRule, "too_many_guests",
			fmt.Sprintf("Voor groepen groter dan %d gasten kunt u contact met ons opnemen.", rules.MaxGuestsPerBooking))
	}
	if _, err := parseDate("date", sub.Date); err != nil {
		return Outcome{}, err
	}
	sub.Email = strings.ToLower(strings.TrimSpace(sub.Email))

	now := s.d.now()
	var (
		out      Outcome
		entry    *model.WaitlistEntry
		voucher  *model.Voucher
		promoTag string
	)
	err := withTx(ctx, s.d.DB, func(tx *sql.Tx) error {
		show, err := s.d.Shows.GetByDateForUpdateTx(ctx, tx, sub.Date)
		if errors.Is(err, repository.ErrShowNotFound) {
			return errShowNotFound
		}
		if err != nil {
			return fmt.Errorf("lock show %s: %w", sub.Date, err)
		}

		quote, err := booking.PriceQuote(s.d.Pricing.Get(), show.ShowType, sub.Guests, sub.DrinkPackage, sub.Addons)
		if err != nil {
			var unknown *booking.UnknownItemError
			if errors.As(err, &unknown) {
				return &ValidationError{Field: unknown.Kind, Message: fmt.Sprintf("onbekende keuze %q", unknown.Key)}
			}
			if errors.Is(err, booking.ErrAmountOutOfRange) {
				return &ValidationError{Field: "addons", Message: fmt.Sprintf("maximaal %d stuks per extra", booking.MaxAddonQuantity)}
			}
			return err
		}

		load, err := s.d.Reservations.ListLoadByDateTx(ctx, tx, sub.Date)
		if err != nil {
			return fmt.Errorf("load reservations %s: %w", sub.Date, err)
		}
		available := booking.AvailableCapacity(show.EffectiveCapacity(), load)
		status := booking.Decide(sub.Guests, available, show.Closed)

		res := model.Reservation{
			ShowDate:      sub.Date,
			ContactName:   strings.TrimSpace(sub.Name),
			Email:         sub.Email,
			Phone:         strings.TrimSpace(sub.Phone),
			Guests:        sub.Guests,
			DrinkPackage:  strings.ToLower(strings.TrimSpace(sub.DrinkPackage)),
			Addons:        sub.Addons,
			SubtotalCents: quote.SubtotalCents,
			TotalCents:    quote.SubtotalCents,
			Status:        status,
			Source:        model.SourceExternal,
		}
		out.Quote = quote
		out.AvailableBefore = available

		// Waitlisted bookings consume neither promo nor voucher.
		if status != model.ReservationWaitlisted {
			if sub.PromoCode != "" {
				if err := s.applyPromo(ctx, tx, &res, sub.PromoCode, now); err != nil {
					return err
				}
				promoTag = *res.PromoCode
			}
			if sub.VoucherCode != "" {
				voucher, out.VoucherWarning, err = s.applyVoucher(ctx, tx, &res, sub.VoucherCode, quote.PerPersonCents, now)
				if err != nil {
					return err
				}
			}
		}

		if err := s.d.Reservations.CreateTx(ctx, tx, &res, now); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		if voucher != nil {
			err := s.d.Vouchers.MarkUsedTx(ctx, tx, voucher.ID, res.ID, now)
			if errors.Is(err, repository.ErrConflict) {
				return reject(KindConflict, "voucher_"+string(booking.VoucherAlreadyUsed), "Deze voucher is al gebruikt.")
			}
			if err != nil {
				return fmt.Errorf("mark voucher used: %w", err)
			}
		}
		if status == model.ReservationWaitlisted {
			entry = &model.WaitlistEntry{
				ReservationID: &res.ID,
				ContactName:   res.ContactName,
				Email:         res.Email,
				Phone:         res.Phone,
				Guests:        res.Guests,
				ShowDate:      res.ShowDate,
				Status:        model.WaitlistActive,
			}
			if err := s.d.Waitlist.Create(ctx, tx, entry, now); err != nil {
				return fmt.Errorf("insert waitlist entry: %w", err)
			}
			out.WaitlistEntryID = &entry.ID
		}
		out.Reservation = res
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	out.Message = statusMessages[out.Reservation.Status]

	res := out.Reservation
	ev := queue.NewEvent(queue.ReservationCreated, now)
	ev.ReservationID, ev.ShowDate, ev.Guests = res.ID, res.ShowDate, res.Guests
	ev.Status, ev.TotalCents, ev.Email = string(res.Status), res.TotalCents, res.Email
	events := []queue.Event{ev}
	if voucher != nil {
		v := queue.NewEvent(queue.VoucherUsed, now)
		v.VoucherID, v.ReservationID, v.ShowDate = voucher.ID, res.ID, res.ShowDate
		events = append(events, v)
	}
	if entry != nil {
		w := queue.NewEvent(queue.WaitlistJoined, now)
		w.WaitlistEntryID, w.ReservationID, w.ShowDate, w.Guests, w.Email = entry.ID, res.ID, res.ShowDate, res.Guests, res.Email
		events = append(events, w)
	}
	s.d.publish(events...)

	s.d.Log.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"date":           res.ShowDate,
		"guests":         res.Guests,
		"status":         res.Status,
		"available":      out.AvailableBefore,
		"promo":          promoTag,
		"voucher":        voucher != nil,
	}).Info("booking admitted")
	return out, nil
}

func (s *BookingService) applyPromo(ctx context.Context, tx *sql.Tx, res *model.Reservation, code string, now time.Time) error {
	p, err := s.d.Promos.GetByCode(ctx, tx, code)
	if errors.Is(err, repository.ErrPromoNotFound) {
		return errPromoInvalid
	}
	if err != nil {
		return fmt.Errorf("load promo: %w", err)
	}
	if booking.ValidatePromo(p, now) == nil {
		return errPromoInvalid
	}
	ok, err := s.d.Promos.IncrementUsageTx(ctx, tx, p.ID, now)
	if err != nil {
		return fmt.Errorf("count promo use: %w", err)
	}
	if !ok {
		return errPromoInvalid
	}
	res.PromoCode = &p.Code
	res.DiscountCents = booking.PromoDiscount(p, res.SubtotalCents)
	res.TotalCents = res.SubtotalCents - res.DiscountCents
	return nil
}

// applyVoucher validates the voucher against the total after promo and
// deducts its value. The voucher row stays locked until the booking commits.
func (s *BookingService) applyVoucher(ctx context.Context, tx *sql.Tx, res *model.Reservation, code string,
	perPersonCents int64, now time.Time) (*model.Voucher, string, error) {
	v, err := s.d.Vouchers.GetByCodeForUpdateTx(ctx, tx, normalizeVoucherCode(code))
	if err != nil && !errors.Is(err, repository.ErrVoucherNotFound) {
		return nil, "", fmt.Errorf("load voucher: %w", err)
	}
	check := booking.ValidateForUse(v, res.TotalCents, now, s.d.Rules.Get().Location())
	if !check.Valid {
		kind := KindRule
		if check.Error == booking.VoucherNotFound {
			kind = KindNotFound
		}
		return nil, "", reject(kind, "voucher_"+string(check.Error), check.Message)
	}
	applied := check.AppliedCents
	if v.Kind == model.VoucherKindPersons {
		applied = booking.PersonsVoucherValue(v, res.Guests, perPersonCents)
		if applied > res.TotalCents {
			applied = res.TotalCents
		}
	}
	res.VoucherID = &v.ID
	res.VoucherAppliedCents = applied
	res.TotalCents -= applied
	return v, check.Warning, nil
}

// Calendar reports availability per show date between from and to. An empty
// from means today at the venue; an empty to means calendarSpan days later.
func (s *BookingService) Calendar(ctx context.Context, from, to string) (CalendarView, error) {
	if from == "" {
		from = s.d.today().Format(dateLayout)
	}
	start, err := parseDate("from", from)
	if err != nil {
		return CalendarView{}, err
	}
	if to == "" {
		to = start.AddDate(0, 0, calendarSpan).Format(dateLayout)
	}
	if _, err := parseDate("to", to); err != nil {
		return CalendarView{}, err
	}
	shows, err := s.d.Shows.ListRange(ctx, from, to)
	if err != nil {
		return CalendarView{}, fmt.Errorf("list shows: %w", err)
	}
	load, err := s.d.Reservations.LoadByDateRange(ctx, from, to)
	if err != nil {
		return CalendarView{}, fmt.Errorf("load reservations: %w", err)
	}
	view := CalendarView{From: from, To: to, Days: make([]CalendarDay, 0, len(shows))}
	for _, sh := range shows {
		capacity := sh.EffectiveCapacity()
		view.Days = append(view.Days, CalendarDay{
			Date:      sh.Date,
			Name:      sh.Name,
			ShowType:  sh.ShowType,
			Capacity:  capacity,
			Booked:    booking.BookedGuests(load[sh.Date]),
			Available: booking.AvailableCapacity(capacity, load[sh.Date]),
			Closed:    sh.Closed,
		})
	}
	return view, nil
}

// CancelByGuest cancels a confirmed reservation when email matches the one
// it was booked with. A mismatch reads as not found.
func (s *BookingService) CancelByGuest(ctx context.Context, id uint64, email string) (model.Reservation, error) {
	var out model.Reservation
	now := s.d.now()
	err := withTx(ctx, s.d.DB, func(tx *sql.Tx) error {
		res, err := s.d.Reservations.GetByIDForUpdateTx(ctx, tx, id)
		if errors.Is(err, repository.ErrReservationNotFound) {
			return errResNotFound
		}
		if err != nil {
			return fmt.Errorf("load reservation: %w", err)
		}
		if !strings.EqualFold(res.Email, strings.TrimSpace(email)) {
			return errResNotFound
		}
		if res.Status != model.ReservationConfirmed {
			return errBadTransition
		}
		if err := s.d.Reservations.UpdateStatusTx(ctx, tx, id, res.Status, model.ReservationCancelled, nil, now); err != nil {
			return fmt.Errorf("cancel reservation: %w", err)
		}
		if _, err := s.releaseInstruments(ctx, tx, res, now); err != nil {
			return err
		}
		res.Status, res.UpdatedAt = model.ReservationCancelled, now
		out = *res
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	s.d.publish(statusEvent(out, 0, now))
	s.d.Log.WithField("reservation_id", id).Info("reservation cancelled by guest")
	return out, nil
}

func statusEvent(res model.Reservation, actor uint64, now time.Time) queue.Event {
	ev := queue.NewEvent(queue.ReservationStatusChanged, now)
	ev.ReservationID, ev.ShowDate, ev.Guests = res.ID, res.ShowDate, res.Guests
	ev.Status, ev.Email, ev.Actor = string(res.Status), res.Email, actor
	return ev
}

// List returns reservations matching f, newest first.
func (s *BookingService) List(ctx context.Context, sess *auth.Session, f repository.ReservationFilter) ([]model.Reservation, error) {
	if err := s.d.authorize(sess, anyStaff); err != nil {
		return nil, err
	}
	if f.Date != "" {
		if _, err := parseDate("date", f.Date); err != nil {
			return nil, err
		}
	}
	return s.d.Reservations.List(ctx, f)
}

func (s *BookingService) Get(ctx context.Context, sess *auth.Session, id uint64) (*model.Reservation, error) {
	if err := s.d.authorize(sess, anyStaff); err != nil {
		return nil, err
	}
	res, err := s.d.Reservations.GetByID(ctx, id)
	if errors.Is(err, repository.ErrReservationNotFound) {
		return nil, errResNotFound
	}
	return res, err
}

// History returns the admin actions recorded for a reservation, newest first.
func (s *BookingService) History(ctx context.Context, sess *auth.Session, id uint64) ([]model.AuditEntry, error) {
	if err := s.d.authorize(sess, anyStaff); err != nil {
		return nil, err
	}
	if _, err := s.d.Reservations.GetByID(ctx, id); errors.Is(err, repository.ErrReservationNotFound) {
		return nil, errResNotFound
	} else if err != nil {
		return nil, err
	}
	return s.d.Audit.ListForEntity(ctx, "reservation", id)
}

// PendingApprovals lists provisional reservations with the capacity impact
// of approving each one.
func (s *BookingService) PendingApprovals(ctx context.Context, sess *auth.Session) ([]booking.CapacityImpact, error) {
	if err := s.d.authorize(sess, anyStaff); err != nil {
		return nil, err
	}
	rs, err := s.d.Reservations.ListOnDatesWithStatus(ctx, model.ReservationProvisional)
	if err != nil {
		return nil, fmt.Errorf("load pending dates: %w", err)
	}
	if len(rs) == 0 {
		return []booking.CapacityImpact{}, nil
	}
	seen := make(map[string]bool)
	var dates []string
	for _, r := range rs {
		if !seen[r.ShowDate] {
			seen[r.ShowDate] = true
			dates = append(dates, r.ShowDate)
		}
	}
	shows, err := s.d.Shows.ListByDates(ctx, dates)
	if err != nil {
		return nil, fmt.Errorf("load shows: %w", err)
	}
	capacities := make(map[string]int, len(shows))
	for _, sh := range shows {
		capacities[sh.Date] = sh.EffectiveCapacity()
	}
	return booking.PendingQueue(rs, capacities), nil
}

// Approve confirms a provisional reservation. Capacity is not rechecked;
// the admin decides with the impact from PendingApprovals in view.
func (s *BookingService) Approve(ctx context.Context, sess *auth.Session, id uint64) (model.Reservation, error) {
	return s.changeStatus(ctx, sess, id, model.ReservationProvisional, model.ReservationConfirmed, "approve")
}

// Reject cancels a provisional reservation.
func (s *BookingService) Reject(ctx context.Context, sess *auth.Session, id uint64) (model.Reservation, error) {
	return s.changeStatus(ctx, sess, id, model.ReservationProvisional, model.ReservationCancelled, "reject")
}

// Cancel cancels a reservation in any state that allows it.
func (s *BookingService) Cancel(ctx context.Context, sess *auth.Session, id uint64) (model.Reservation, error) {
	return s.changeStatus(ctx, sess, id, "", model.ReservationCancelled, "cancel")
}

// releaseInstruments returns the promo use and the voucher a cancelled
// reservation consumed. A voucher that was already restored or archived by
// an admin is left alone. The result describes what was released.
func (s *BookingService) releaseInstruments(ctx context.Context, tx *sql.Tx, res *model.Reservation, now time.Time) (string, error) {
	var parts []string
	if res.PromoCode != nil && *res.PromoCode != "" {
		ok, err := s.d.Promos.DecrementUsageTx(ctx, tx, *res.PromoCode, now)
		if err != nil {
			return "", fmt.Errorf("release promo: %w", err)
		}
		if ok {
			parts = append(parts, "promo "+*res.PromoCode+" released")
		}
	}
	if res.VoucherID != nil {
		ok, err := s.d.Vouchers.ReleaseTx(ctx, tx, *res.VoucherID, res.ID, now)
		if err != nil {
			return "", fmt.Errorf("release voucher: %w", err)
		}
		if ok {
			parts = append(parts, fmt.Sprintf("voucher %d released", *res.VoucherID))
		}
	}
	if len(parts) > 0 {
		s.d.Log.WithField("reservation_id", res.ID).Info(strings.Join(parts, ", "))
	}
	return strings.Join(parts, ", "), nil
}

func (s *BookingService) changeStatus(ctx context.Context, sess *auth.Session, id uint64,
	from, to model.ReservationStatus, action string) (model.Reservation, error) {
	if err := s.d.authorize(sess, adminOnly); err != nil {
		return model.Reservation{}, err
	}
	now := s.d.now()
	var out model.Reservation
	err := withTx(ctx, s.d.DB, func(tx *sql.Tx) error {
		res, err := s.d.Reservations.GetByIDForUpdateTx(ctx, tx, id)
		if errors.Is(err, repository.ErrReservationNotFound) {
			return errResNotFound
		}
		if err != nil {
			return fmt.Errorf("load reservation: %w", err)
		}
		if from != "" && res.Status != from {
			return errBadTransition
		}
		if err := booking.Transition(res.Status, to); err != nil {
			return errBadTransition
		}
		actor := sess.UserID
		err = s.d.Reservations.UpdateStatusTx(ctx, tx, id, res.Status, to, &actor, now)
		if errors.Is(err, repository.ErrConflict) {
			return errBadTransition
		}
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		detail := fmt.Sprintf("%s -> %s", res.Status, to)
		if to == model.ReservationCancelled {
			released, err := s.releaseInstruments(ctx, tx, res, now)
			if err != nil {
				return err
			}
			if released != "" {
				detail += "; " + released
			}
		}
		if err := s.d.audit(ctx, tx, sess, action, "reservation", id, detail); err != nil {
			return err
		}
		res.Status, res.StatusChangedBy, res.UpdatedAt = to, &actor, now
		out = *res
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	s.d.publish(statusEvent(out, sess.UserID, now))
	s.d.Log.WithFields(logrus.Fields{"reservation_id": id, "status": to, "actor": sess.UserID}).Info("reservation " + action)
	return out, nil
}

// CheckIn marks a confirmed reservation as arrived, or undoes that.
func (s *BookingService) CheckIn(ctx context.Context, sess *auth.Session, id uint64, checkedIn bool) (model.Reservation, error) {
	if err := s.d.authorize(sess, anyStaff); err != nil {
		return model.Reservation{}, err
	}
	now := s.d.now()
	var out model.Reservation
	err := withTx(ctx, s.d.DB, func(tx *sql.Tx) error {
		res, err := s.d.Reservations.GetByIDForUpdateTx(ctx, tx, id)
		if errors.Is(err, repository.ErrReservationNotFound) {
			return errResNotFound
		}
		if err != nil {
			return fmt.Errorf("load reservation: %w", err)
		}
		if res.Status != model.ReservationConfirmed {
			return reject(KindConflict, "not_confirmed", "Alleen bevestigde reserveringen kunnen worden ingecheckt.")
		}
		if err := s.d.Reservations.SetCheckedInTx(ctx, tx, id, checkedIn, now); err != nil {
			return fmt.Errorf("check in: %w", err)
		}
		if err := s.d.audit(ctx, tx, sess, "check_in", "reservation", id, fmt.Sprintf("checked_in=%t", checkedIn)); err != nil {
			return err
		}
		res.CheckedIn, res.UpdatedAt = checkedIn, now
		out = *res
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	ev := queue.NewEvent(queue.ReservationCheckedIn, now)
	ev.ReservationID, ev.ShowDate, ev.Guests, ev.Actor = out.ID, out.ShowDate, out.Guests, sess.UserID
	s.d.publish(ev)
	return out, nil
}

func normalizeVoucherCode(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }
