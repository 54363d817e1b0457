package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theater-reservation/internal/auth"
	"github.com/iliyamo/theater-reservation/internal/booking"
	"github.com/iliyamo/theater-reservation/internal/model"
	"github.com/iliyamo/theater-reservation/internal/queue"
	"github.com/iliyamo/theater-reservation/internal/repository"
)

// WaitlistRequest is a guest asking to be put on the waitlist directly.
type WaitlistRequest struct {
	Date   string
	Name   string
	Email  string
	Phone  string
	Guests int
}

// Conversion is the result of turning a waitlist entry into a booking.
type Conversion struct {
	Entry       model.WaitlistEntry `json:"entry"`
	Reservation model.Reservation   `json:"reservation"`
}

type WaitlistService struct {
	d *Deps
}

func NewWaitlistService(d *Deps) *WaitlistService { return &WaitlistService{d: d} }

var errWaitlistNotNeeded = reject(KindRule, "waitlist_not_needed", "Er is nog plaats, u kunt direct boeken.")

// Join puts a guest on the waitlist of a closed or sold-out date.
func (s *WaitlistService) Join(ctx context.Context, req WaitlistRequest) (model.WaitlistEntry, error) {
	if req.Guests < 1 {
		return model.WaitlistEntry{}, &ValidationError{Field: "guests", Message: "minimaal 1 gast"}
	}
	if _, err := parseDate("date", req.Date); err != nil {
		return model.WaitlistEntry{}, err
	}
	show, err := s.d.Shows.GetByDate(ctx, req.Date)
	if errors.Is(err, repository.ErrShowNotFound) {
		return model.WaitlistEntry{}, errShowNotFound
	}
	if err != nil {
		return model.WaitlistEntry{}, fmt.Errorf("load show: %w", err)
	}
	load, err := s.d.Reservations.LoadByDateRange(ctx, req.Date, req.Date)
	if err != nil {
		return model.WaitlistEntry{}, fmt.Errorf("load reservations: %w", err)
	}
	if !show.Closed && booking.AvailableCapacity(show.EffectiveCapacity(), load[req.Date]) > 0 {
		return model.WaitlistEntry{}, errWaitlistNotNeeded
	}

	now := s.d.now()
	e := model.WaitlistEntry{
		ContactName: strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       strings.TrimSpace(req.Phone),
		Guests:      req.Guests,
		ShowDate:    req.Date,
		Status:      model.WaitlistActive,
	}
	if err := s.d.Waitlist.Create(ctx, s.d.DB, &e, now); err != nil {
		return model.WaitlistEntry{}, fmt.Errorf("insert waitlist entry: %w", err)
	}
	ev := queue.NewEvent(queue.WaitlistJoined, now)
	ev.WaitlistEntryID, ev.ShowDate, ev.Guests, ev.Email = e.ID, e.ShowDate, e.Guests, e.Email
	s.d.publish(ev)
	s.d.Log.WithFields(logrus.Fields{"entry_id": e.ID, "date": e.ShowDate, "guests": e.Guests}).Info("waitlist joined")
	return e, nil
}

// List returns entries ordered by priority, then age.
func (s *WaitlistService) List(ctx context.Context, sess *auth.Session, date string, status model.WaitlistStatus) ([]model.WaitlistEntry, error) {
	if err := s.d.authorize(sess, anyStaff); err != nil {
		return nil, err
	}
	return s.d.Waitlist.List(ctx, date, status)
}

func (s *WaitlistService) load(ctx context.Context, id uint64) (*model.WaitlistEntry, error) {
	e, err := s.d.Waitlist.GetByID(ctx, id)
	if errors.Is(err, repository.ErrWaitlistNotFound) {
		return nil, errWaitlistMissing
	}
	return e, err
}

var errWaitlistClosed = reject(KindConflict, "waitlist_closed", "Deze wachtlijstinschrijving is niet meer open.")

// Notify records that the guest was told a place came free.
func (s *WaitlistService) Notify(ctx context.Context, sess *auth.Session, id uint64) (model.WaitlistEntry, error) {
	if err := s.d.authorize(sess, anyStaff); err != nil {
		return model.WaitlistEntry{}, err
	}
	now := s.d.now()
	err := s.d.Waitlist.MarkNotified(ctx, id, now)
	if errors.Is(err, repository.ErrConflict) {
		if _, lerr := s.load(ctx, id); lerr != nil {
			return model.WaitlistEntry{}, lerr
		}
		return model.WaitlistEntry{}, errWaitlistClosed
	}
	if err != nil {
		return model.WaitlistEntry{}, fmt.Errorf("notify: %w", err)
	}
	if err := s.d.audit(ctx, s.d.DB, sess, "notify", "waitlist", id, ""); err != nil {
		return model.WaitlistEntry{}, err
	}
	e, err := s.load(ctx, id)
	if err != nil {
		return model.WaitlistEntry{}, err
	}
	ev := queue.NewEvent(queue.WaitlistNotified, now)
	ev.WaitlistEntryID, ev.ShowDate, ev.Guests, ev.Email, ev.Actor = e.ID, e.ShowDate, e.Guests, e.Email, sess.UserID
	s.d.publish(ev)
	return *e, nil
}

// Convert books the entry's guests as an internal reservation. Admission
// runs as for a guest booking except that a closed date does not force the
// waitlist.
func (s *WaitlistService) Convert(ctx context.Context, sess *auth.Session, id uint64) (Conversion, error) {
	if err := s.d.authorize(sess, adminOnly); err != nil {
		return Conversion{}, err
	}
	now := s.d.now()
	var out Conversion
	err := withTx(ctx, s.d.DB, func(tx *sql.Tx) error {
		e, err := s.d.Waitlist.GetByIDForUpdateTx(ctx, tx, id)
		if errors.Is(err, repository.ErrWaitlistNotFound) {
			return errWaitlistMissing
		}
		if err != nil {
			return fmt.Errorf("load entry: %w", err)
		}
		if e.Status != model.WaitlistActive && e.Status != model.WaitlistNotified {
			return errWaitlistClosed
		}
		show, err := s.d.Shows.GetByDateForUpdateTx(ctx, tx, e.ShowDate)
		if errors.Is(err, repository.ErrShowNotFound) {
			return errShowNotFound
		}
		if err != nil {
			return fmt.Errorf("lock show: %w", err)
		}
		quote, err := booking.PriceQuote(s.d.Pricing.Get(), show.ShowType, e.Guests, "", nil)
		if err != nil {
			return fmt.Errorf("price entry: %w", err)
		}
		load, err := s.d.Reservations.ListLoadByDateTx(ctx, tx, e.ShowDate)
		if err != nil {
			return fmt.Errorf("load reservations: %w", err)
		}
		available := booking.AvailableCapacity(show.EffectiveCapacity(), load)

		actor := sess.UserID
		res := model.Reservation{
			ShowDate:        e.ShowDate,
			ContactName:     e.ContactName,
			Email:           e.Email,
			Phone:           e.Phone,
			Guests:          e.Guests,
			Addons:          map[string]int{},
			SubtotalCents:   quote.SubtotalCents,
			TotalCents:      quote.SubtotalCents,
			Status:          booking.Decide(e.Guests, available, false),
			Source:          model.SourceInternal,
			StatusChangedBy: &actor,
		}
		if err := s.d.Reservations.CreateTx(ctx, tx, &res, now); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		if err := s.d.Waitlist.MarkConvertedTx(ctx, tx, e.ID, res.ID, now); err != nil {
			return fmt.Errorf("mark converted: %w", err)
		}
		if err := s.d.audit(ctx, tx, sess, "convert", "waitlist", e.ID, fmt.Sprintf("reservation %d (%s)", res.ID, res.Status)); err != nil {
			return err
		}
		e.Status, e.ConvertedReservationID, e.UpdatedAt = model.WaitlistConverted, &res.ID, now
		out = Conversion{Entry: *e, Reservation: res}
		return nil
	})
	if err != nil {
		return Conversion{}, err
	}

	conv := queue.NewEvent(queue.WaitlistConverted, now)
	conv.WaitlistEntryID, conv.ReservationID, conv.ShowDate = out.Entry.ID, out.Reservation.ID, out.Reservation.ShowDate
	conv.Status, conv.Actor = string(out.Reservation.Status), sess.UserID
	created := queue.NewEvent(queue.ReservationCreated, now)
	created.ReservationID, created.ShowDate, created.Guests = out.Reservation.ID, out.Reservation.ShowDate, out.Reservation.Guests
	created.Status, created.TotalCents, created.Email, created.Actor = string(out.Reservation.Status), out.Reservation.TotalCents, out.Reservation.Email, sess.UserID
	s.d.publish(conv, created)

	s.d.Log.WithFields(logrus.Fields{
		"entry_id":       out.Entry.ID,
		"reservation_id": out.Reservation.ID,
		"status":         out.Reservation.Status,
	}).Info("waitlist entry converted")
	return out, nil
}

// Remove takes an open entry off the waitlist.
func (s *WaitlistService) Remove(ctx context.Context, sess *auth.Session, id uint64) error {
	if err := s.d.authorize(sess, anyStaff); err != nil {
		return err
	}
	err := s.d.Waitlist.Remove(ctx, id, s.d.now())
	if errors.Is(err, repository.ErrConflict) {
		if _, lerr := s.load(ctx, id); lerr != nil {
			return lerr
		}
		return errWaitlistClosed
	}
	if err != nil {
		return fmt.Errorf("remove entry: %w", err)
	}
	return s.d.audit(ctx, s.d.DB, sess, "remove", "waitlist", id, "")
}

func (s *WaitlistService) SetPriority(ctx context.Context, sess *auth.Session, id uint64, priority int) (model.WaitlistEntry, error) {
	if err := s.d.authorize(sess, anyStaff); err != nil {
		return model.WaitlistEntry{}, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return model.WaitlistEntry{}, err
	}
	if err := s.d.Waitlist.SetPriority(ctx, id, priority, s.d.now()); err != nil {
		return model.WaitlistEntry{}, fmt.Errorf("set priority: %w", err)
	}
	if err := s.d.audit(ctx, s.d.DB, sess, "priority", "waitlist", id, fmt.Sprintf("priority=%d", priority)); err != nil {
		return model.WaitlistEntry{}, err
	}
	e, err := s.load(ctx, id)
	if err != nil {
		return model.WaitlistEntry{}, err
	}
	return *e, nil
}

// ExpirePast expires open entries for dates before today at the venue.
func (s *WaitlistService) ExpirePast(ctx context.Context) (int64, error) {
	today := s.d.today().Format(dateLayout)
	n, err := s.d.Waitlist.ExpireBefore(ctx, today, s.d.now())
	if err != nil {
		return 0, fmt.Errorf("expire waitlist before %s: %w", today, err)
	}
	return n, nil
}
