// Package service orchestrates the booking rules in internal/booking with
// the MySQL repositories, the event publisher and the configuration facets.
// Admin operations take an explicit *auth.Session as their first argument
// after the context and check it before touching any data.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theater-reservation/internal/auth"
	"github.com/iliyamo/theater-reservation/internal/config"
	"github.com/iliyamo/theater-reservation/internal/model"
	"github.com/iliyamo/theater-reservation/internal/queue"
	"github.com/iliyamo/theater-reservation/internal/repository"
)

// EventPublisher delivers domain events. Implemented by *queue.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.Event) error { return nil }

// Deps bundles what the services share.
type Deps struct {
	DB           *sql.DB
	Shows        *repository.ShowRepo
	Reservations *repository.ReservationRepo
	Waitlist     *repository.WaitlistRepo
	Vouchers     *repository.VoucherRepo
	Promos       *repository.PromoRepo
	Audit        *repository.AuditRepo
	Settings     *repository.SettingsRepo

	Rules   *config.Store[config.BookingRules]
	Pricing *config.Store[config.PricingConfig]

	Events EventPublisher
	Log    *logrus.Logger
	Now    func() time.Time
}

// NewDeps wires the repositories around db and fills defaults for the clock
// and publisher.
func NewDeps(db *sql.DB, rules *config.Store[config.BookingRules], pricing *config.Store[config.PricingConfig],
	events EventPublisher, log *logrus.Logger) *Deps {
	if events == nil {
		events = NopPublisher{}
	}
	return &Deps{
		DB:           db,
		Shows:        repository.NewShowRepo(db),
		Reservations: repository.NewReservationRepo(db),
		Waitlist:     repository.NewWaitlistRepo(db),
		Vouchers:     repository.NewVoucherRepo(db),
		Promos:       repository.NewPromoRepo(db),
		Audit:        repository.NewAuditRepo(db),
		Settings:     repository.NewSettingsRepo(db),
		Rules:        rules,
		Pricing:      pricing,
		Events:       events,
		Log:          log,
		Now:          time.Now,
	}
}

var (
	adminOnly = []string{model.RoleAdmin}
	anyStaff  = []string{model.RoleAdmin, model.RoleStaff}
)

func (d *Deps) now() time.Time { return d.Now().UTC() }

// today is the current calendar date at the venue.
func (d *Deps) today() time.Time {
	y, m, day := d.Now().In(d.Rules.Get().Location()).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func (d *Deps) authorize(s *auth.Session, roles []string) error {
	return s.Check(d.Now(), roles...)
}

// withTx runs fn inside a transaction and commits when fn succeeds.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// publish sends events after the change is committed. Broker failures are
// logged and never fail the request.
func (d *Deps) publish(evs ...queue.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, ev := range evs {
		if err := d.Events.Publish(ctx, ev); err != nil {
			d.Log.WithError(err).WithField("event", ev.Type).Warn("event not published")
		}
	}
}

func (d *Deps) audit(ctx context.Context, q repository.DBTX, s *auth.Session, action, entity string, id uint64, detail string) error {
	err := d.Audit.Record(ctx, q, model.AuditEntry{
		ActorID:  s.UserID,
		Action:   action,
		Entity:   entity,
		EntityID: id,
		Detail:   detail,
	}, d.now())
	if err != nil {
		return fmt.Errorf("audit %s %s/%d: %w", action, entity, id, err)
	}
	return nil
}

const dateLayout = "2006-01-02"

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: "gebruik het formaat JJJJ-MM-DD"}
	}
	return t, nil
}
