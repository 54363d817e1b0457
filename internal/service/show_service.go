package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/theater-reservation/internal/auth"
	"github.com/iliyamo/theater-reservation/internal/booking"
	"github.com/iliyamo/theater-reservation/internal/model"
	"github.com/iliyamo/theater-reservation/internal/repository"
)

// ShowInput creates a show. A nil Capacity takes the configured default.
type ShowInput struct {
	Date           string
	Name           string
	ShowType       string
	Capacity       *int
	ManualCapacity *int
	Closed         bool
}

// ShowUpdate changes the editable fields that are set.
type ShowUpdate struct {
	Name                *string
	ShowType            *string
	Capacity            *int
	ManualCapacity      *int
	ClearManualCapacity bool
	ExternalBookings    *int
}

// ShowView is a show with its live availability.
type ShowView struct {
	model.ShowEvent
	EffectiveCapacity int `json:"effective_capacity"`
	Booked            int `json:"booked"`
	Available         int `json:"available"`
}

type ShowService struct {
	d *Deps
}

func NewShowService(d *Deps) *ShowService { return &ShowService{d: d} }

func (s *ShowService) checkShowType(showType string) error {
	if _, ok := s.d.Pricing.Get().ShowTypes[strings.ToLower(showType)]; !ok {
		return &ValidationError{Field: "show_type", Message: fmt.Sprintf("onbekend type %q", showType)}
	}
	return nil
}

func nonNegative(field string, v *int) error {
	if v != nil && *v < 0 {
		return &ValidationError{Field: field, Message: "mag niet negatief zijn"}
	}
	return nil
}

func (s *ShowService) Create(ctx context.Context, sess *auth.Session, in ShowInput) (ShowView, error) {
	if err := s.d.authorize(sess, adminOnly); err != nil {
		return ShowView{}, err
	}
	if _, err := parseDate("date", in.Date); err != nil {
		return ShowView{}, err
	}
	if err := s.checkShowType(in.ShowType); err != nil {
		return ShowView{}, err
	}
	for field, v := range map[string]*int{"capacity": in.Capacity, "manual_capacity": in.ManualCapacity} {
		if err := nonNegative(field, v); err != nil {
			return ShowView{}, err
		}
	}
	show := model.ShowEvent{
		Date:           in.Date,
		Name:           strings.TrimSpace(in.Name),
		ShowType:       strings.ToLower(in.ShowType),
		Capacity:       s.d.Rules.Get().DefaultCapacity,
		ManualCapacity: in.ManualCapacity,
		Closed:         in.Closed,
	}
	if in.Capacity != nil {
		show.Capacity = *in.Capacity
	}
	err := s.d.Shows.Create(ctx, &show)
	if errors.Is(err, repository.ErrShowDateTaken) {
		return ShowView{}, reject(KindConflict, "show_date_taken", "Er staat al een voorstelling op deze datum.")
	}
	if err != nil {
		return ShowView{}, fmt.Errorf("create show: %w", err)
	}
	if err := s.d.audit(ctx, s.d.DB, sess, "create", "show", show.ID, show.Date); err != nil {
		return ShowView{}, err
	}
	return ShowView{ShowEvent: show, EffectiveCapacity: show.EffectiveCapacity(), Available: show.EffectiveCapacity()}, nil
}

// Update applies u and returns the show with its recomputed availability.
func (s *ShowService) Update(ctx context.Context, sess *auth.Session, id uint64, u ShowUpdate) (ShowView, error) {
	if err := s.d.authorize(sess, adminOnly); err != nil {
		return ShowView{}, err
	}
	show, err := s.load(ctx, id)
	if err != nil {
		return ShowView{}, err
	}
	if u.Name != nil {
		show.Name = strings.TrimSpace(*u.Name)
	}
	if u.ShowType != nil {
		if err := s.checkShowType(*u.ShowType); err != nil {
			return ShowView{}, err
		}
		show.ShowType = strings.ToLower(*u.ShowType)
	}
	for field, v := range map[string]*int{"capacity": u.Capacity, "manual_capacity": u.ManualCapacity, "external_bookings": u.ExternalBookings} {
		if err := nonNegative(field, v); err != nil {
			return ShowView{}, err
		}
	}
	if u.Capacity != nil {
		show.Capacity = *u.Capacity
	}
	switch {
	case u.ClearManualCapacity:
		show.ManualCapacity = nil
	case u.ManualCapacity != nil:
		show.ManualCapacity = u.ManualCapacity
	}
	if u.ExternalBookings != nil {
		show.ExternalBookings = *u.ExternalBookings
	}
	if err := s.d.Shows.Update(ctx, show); err != nil {
		return ShowView{}, fmt.Errorf("update show: %w", err)
	}
	if err := s.d.audit(ctx, s.d.DB, sess, "update", "show", id, describeCapacity(show)); err != nil {
		return ShowView{}, err
	}
	return s.withAvailability(ctx, *show)
}

func describeCapacity(show *model.ShowEvent) string {
	if show.ManualCapacity != nil {
		return fmt.Sprintf("capacity=%d manual=%d", show.Capacity, *show.ManualCapacity)
	}
	return fmt.Sprintf("capacity=%d", show.Capacity)
}

// SetClosed closes a date for direct bookings or reopens it.
func (s *ShowService) SetClosed(ctx context.Context, sess *auth.Session, id uint64, closed bool) (ShowView, error) {
	if err := s.d.authorize(sess, adminOnly); err != nil {
		return ShowView{}, err
	}
	show, err := s.load(ctx, id)
	if err != nil {
		return ShowView{}, err
	}
	if err := s.d.Shows.SetClosed(ctx, id, closed); err != nil {
		return ShowView{}, fmt.Errorf("set closed: %w", err)
	}
	if err := s.d.audit(ctx, s.d.DB, sess, "set_closed", "show", id, fmt.Sprintf("closed=%t", closed)); err != nil {
		return ShowView{}, err
	}
	show.Closed = closed
	return s.withAvailability(ctx, *show)
}

// Delete hides a show. Its reservations stay in place.
func (s *ShowService) Delete(ctx context.Context, sess *auth.Session, id uint64) error {
	if err := s.d.authorize(sess, adminOnly); err != nil {
		return err
	}
	err := s.d.Shows.SoftDelete(ctx, id, s.d.now())
	if errors.Is(err, repository.ErrShowNotFound) {
		return errShowNotFound
	}
	if err != nil {
		return fmt.Errorf("delete show: %w", err)
	}
	return s.d.audit(ctx, s.d.DB, sess, "delete", "show", id, "")
}

func (s *ShowService) List(ctx context.Context, sess *auth.Session, from, to string) ([]ShowView, error) {
	if err := s.d.authorize(sess, anyStaff); err != nil {
		return nil, err
	}
	if _, err := parseDate("from", from); err != nil {
		return nil, err
	}
	if _, err := parseDate("to", to); err != nil {
		return nil, err
	}
	shows, err := s.d.Shows.ListRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	load, err := s.d.Reservations.LoadByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	out := make([]ShowView, 0, len(shows))
	for _, sh := range shows {
		out = append(out, view(sh, load[sh.Date]))
	}
	return out, nil
}

func (s *ShowService) Get(ctx context.Context, sess *auth.Session, id uint64) (ShowView, error) {
	if err := s.d.authorize(sess, anyStaff); err != nil {
		return ShowView{}, err
	}
	show, err := s.load(ctx, id)
	if err != nil {
		return ShowView{}, err
	}
	return s.withAvailability(ctx, *show)
}

func (s *ShowService) load(ctx context.Context, id uint64) (*model.ShowEvent, error) {
	show, err := s.d.Shows.GetByID(ctx, id)
	if errors.Is(err, repository.ErrShowNotFound) {
		return nil, errShowNotFound
	}
	return show, err
}

func (s *ShowService) withAvailability(ctx context.Context, show model.ShowEvent) (ShowView, error) {
	load, err := s.d.Reservations.LoadByDateRange(ctx, show.Date, show.Date)
	if err != nil {
		return ShowView{}, fmt.Errorf("load reservations: %w", err)
	}
	return view(show, load[show.Date]), nil
}

func view(show model.ShowEvent, rs []model.Reservation) ShowView {
	capacity := show.EffectiveCapacity()
	return ShowView{
		ShowEvent:         show,
		EffectiveCapacity: capacity,
		Booked:            booking.BookedGuests(rs),
		Available:         booking.AvailableCapacity(capacity, rs),
	}
}
