package service

import (
	"context"
	"io"
	"regexp"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-reservation/internal/auth"
	"github.com/iliyamo/theater-reservation/internal/config"
	"github.com/iliyamo/theater-reservation/internal/model"
	"github.com/iliyamo/theater-reservation/internal/queue"
)

// 2025-03-01 11:00 in Amsterdam.
var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

func newTestDeps(t *testing.T) (*Deps, sqlmock.Sqlmock, *recordingPublisher) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	rules := config.BookingRules{
		DefaultCapacity:       120,
		Timezone:              "Europe/Amsterdam",
		MaxGuestsPerBooking:   40,
		VoucherValidityMonths: 12,
		WaitlistSweepInterval: time.Hour,
	}
	pricing := config.PricingConfig{
		ShowTypes:     map[string]int64{"dinner_show": 8950, "matinee": 6450},
		DrinkPackages: map[string]int64{"basic": 1750},
		Addons:        map[string]int64{"bubbles": 1250},
	}
	pub := &recordingPublisher{}
	d := NewDeps(db, config.NewStore(rules), config.NewStore(pricing), pub, log)
	d.Now = func() time.Time { return fixedNow }
	return d, mock, pub
}

func q(s string) string { return regexp.QuoteMeta(s) }

func adminSession() *auth.Session {
	return &auth.Session{UserID: 7, Role: model.RoleAdmin, ExpiresAt: fixedNow.Add(15 * time.Minute)}
}

func staffSession() *auth.Session {
	return &auth.Session{UserID: 8, Role: model.RoleStaff, ExpiresAt: fixedNow.Add(15 * time.Minute)}
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

var showCols = []string{"id", "show_date", "name", "show_type", "capacity", "manual_capacity", "is_closed",
	"external_bookings", "deleted_at", "created_at", "updated_at"}

func showRow(id uint64, date string, capacity int, manual any, closed bool) *sqlmock.Rows {
	return sqlmock.NewRows(showCols).
		AddRow(id, day(date), "Diner & Show", "dinner_show", capacity, manual, closed, 0, nil, fixedNow, fixedNow)
}

// loadRows builds the id/status/guests rows the capacity read returns.
func loadRows(rs ...model.Reservation) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "status", "guests"})
	for _, r := range rs {
		rows.AddRow(r.ID, string(r.Status), r.Guests)
	}
	return rows
}

var reservationCols = []string{"id", "show_date", "contact_name", "email", "phone", "guests", "drink_package", "addons",
	"subtotal_cents", "promo_code", "discount_cents", "voucher_id", "voucher_applied_cents", "total_cents",
	"checked_in", "status", "source", "status_changed_by", "created_at", "updated_at"}

func reservationRow(id uint64, date string, guests int, status model.ReservationStatus, email string) *sqlmock.Rows {
	return sqlmock.NewRows(reservationCols).AddRow(id, day(date), "Jan Jansen", email, "0612345678", guests, "", "{}",
		int64(guests)*8950, nil, 0, nil, 0, int64(guests)*8950, false, string(status), "external", nil, fixedNow, fixedNow)
}

var voucherCols = []string{"id", "code", "kind", "value_cents", "persons", "issued_on", "expires_on", "status", "used_at",
	"used_reservation_id", "extension_count", "notes", "created_at", "updated_at"}

func voucherRow(id uint64, code string, kind model.VoucherKind, value int64, persons int, expires string, status model.VoucherStatus) *sqlmock.Rows {
	return sqlmock.NewRows(voucherCols).AddRow(id, code, string(kind), value, persons, day("2024-03-01"), day(expires),
		string(status), nil, nil, 0, nil, fixedNow, fixedNow)
}

var promoCols = []string{"id", "code", "discount_type", "discount_value", "is_active", "usage_limit", "used_count",
	"expires_at", "created_at", "updated_at"}

var waitlistCols = []string{"id", "reservation_id", "contact_name", "email", "phone", "guests", "show_date", "status",
	"priority", "notification_count", "last_notified_at", "converted_reservation_id", "created_at", "updated_at"}

func waitlistRow(id uint64, date string, guests int, status model.WaitlistStatus) *sqlmock.Rows {
	return sqlmock.NewRows(waitlistCols).AddRow(id, nil, "Piet de Vries", "piet@example.nl", "0687654321", guests,
		day(date), string(status), 0, 0, nil, nil, fixedNow, fixedNow)
}

func expectAudit(mock sqlmock.Sqlmock, action, entity string) {
	mock.ExpectExec(q("INSERT INTO audit_log")).
		WithArgs(sqlmock.AnyArg(), action, entity, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
}
