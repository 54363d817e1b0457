package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-reservation/internal/auth"
	"github.com/iliyamo/theater-reservation/internal/model"
	"github.com/iliyamo/theater-reservation/internal/queue"
	"github.com/iliyamo/theater-reservation/internal/repository"
)

const (
	lockShowSQL = "FROM show_events WHERE show_date = ? AND deleted_at IS NULL FOR UPDATE"
	loadSQL     = "SELECT id, status, guests FROM reservations WHERE show_date = ?"
)

// fortyBooked is a date with 40 of 50 seats taken: cancelled and waitlisted
// rows do not count.
func fortyBooked() *sqlmock.Rows {
	return loadRows(
		model.Reservation{ID: 1, Status: model.ReservationConfirmed, Guests: 30},
		model.Reservation{ID: 2, Status: model.ReservationProvisional, Guests: 10},
		model.Reservation{ID: 3, Status: model.ReservationCancelled, Guests: 6},
		model.Reservation{ID: 4, Status: model.ReservationWaitlisted, Guests: 4},
	)
}

func rejection(t *testing.T, err error) *RejectionError {
	t.Helper()
	var rej *RejectionError
	require.True(t, errors.As(err, &rej), "expected a rejection, got %v", err)
	return rej
}

func TestSubmitConfirmedWithPromoAndVoucher(t *testing.T) {
	d, mock, pub := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(q(lockShowSQL)).WithArgs("2025-03-14").WillReturnRows(showRow(5, "2025-03-14", 50, nil, false))
	mock.ExpectQuery(q(loadSQL)).WithArgs("2025-03-14").WillReturnRows(fortyBooked())
	mock.ExpectQuery(q("FROM promo_codes WHERE code = ?")).WithArgs("WELKOM10").
		WillReturnRows(sqlmock.NewRows(promoCols).AddRow(3, "WELKOM10", "percentage", 10, true, nil, 2, nil, fixedNow, fixedNow))
	mock.ExpectExec(q("UPDATE promo_codes SET used_count = used_count + 1")).WithArgs(sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("FROM vouchers WHERE code = ? FOR UPDATE")).WithArgs("TB2024-A1B2").
		WillReturnRows(voucherRow(9, "TB2024-A1B2", model.VoucherKindValue, 5000, 0, "2025-12-31", model.VoucherActive))
	mock.ExpectExec(q("INSERT INTO reservations")).WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(q("UPDATE vouchers SET status = 'used'")).WithArgs(sqlmock.AnyArg(), 42, sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := svc.Submit(context.Background(), Submission{
		Date: "2025-03-14", Name: "Jan Jansen", Email: " Jan@Example.NL ", Phone: "0612345678",
		Guests: 4, DrinkPackage: "basic", PromoCode: "welkom10", VoucherCode: "tb2024-a1b2",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	res := out.Reservation
	assert.Equal(t, uint64(42), res.ID)
	assert.Equal(t, model.ReservationConfirmed, res.Status)
	assert.Equal(t, model.SourceExternal, res.Source)
	assert.Equal(t, "jan@example.nl", res.Email)
	assert.Equal(t, 10, out.AvailableBefore)
	assert.Equal(t, int64(42800), res.SubtotalCents)
	assert.Equal(t, int64(4280), res.DiscountCents)
	assert.Equal(t, int64(5000), res.VoucherAppliedCents)
	assert.Equal(t, int64(33520), res.TotalCents)
	assert.Equal(t, "WELKOM10", *res.PromoCode)
	assert.Contains(t, out.VoucherWarning, "€335,20")
	assert.Equal(t, []string{queue.ReservationCreated, queue.VoucherUsed}, pub.types())
}

func TestSubmitOverCapacityIsProvisional(t *testing.T) {
	d, mock, pub := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(q(lockShowSQL)).WillReturnRows(showRow(5, "2025-03-14", 50, nil, false))
	mock.ExpectQuery(q(loadSQL)).WillReturnRows(fortyBooked())
	mock.ExpectExec(q("INSERT INTO reservations")).WillReturnResult(sqlmock.NewResult(43, 1))
	mock.ExpectCommit()

	out, err := svc.Submit(context.Background(), Submission{Date: "2025-03-14", Name: "Groep", Email: "groep@example.nl", Guests: 12})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, model.ReservationProvisional, out.Reservation.Status)
	assert.Equal(t, int64(12*8950), out.Reservation.TotalCents)
	assert.Equal(t, []string{queue.ReservationCreated}, pub.types())
}

func TestSubmitManualCapacityOverridesDefault(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(q(lockShowSQL)).WillReturnRows(showRow(5, "2025-03-14", 50, 60, false))
	mock.ExpectQuery(q(loadSQL)).WillReturnRows(fortyBooked())
	mock.ExpectExec(q("INSERT INTO reservations")).WillReturnResult(sqlmock.NewResult(44, 1))
	mock.ExpectCommit()

	out, err := svc.Submit(context.Background(), Submission{Date: "2025-03-14", Name: "Groep", Email: "groep@example.nl", Guests: 12})
	require.NoError(t, err)
	assert.Equal(t, model.ReservationConfirmed, out.Reservation.Status)
	assert.Equal(t, 20, out.AvailableBefore)
}

func TestSubmitClosedDateGoesToWaitlist(t *testing.T) {
	d, mock, pub := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(q(lockShowSQL)).WillReturnRows(showRow(5, "2025-03-14", 50, nil, true))
	mock.ExpectQuery(q(loadSQL)).WillReturnRows(loadRows())
	// no promo or voucher lookups for a waitlisted booking
	mock.ExpectExec(q("INSERT INTO reservations")).WillReturnResult(sqlmock.NewResult(45, 1))
	mock.ExpectExec(q("INSERT INTO waitlist_entries")).WithArgs(45, "Jan Jansen", "jan@example.nl", "", 2, "2025-03-14",
		model.WaitlistActive, 0, sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	out, err := svc.Submit(context.Background(), Submission{
		Date: "2025-03-14", Name: "Jan Jansen", Email: "jan@example.nl", Guests: 2, PromoCode: "WELKOM10", VoucherCode: "TB2024-A1B2",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, model.ReservationWaitlisted, out.Reservation.Status)
	assert.Nil(t, out.Reservation.PromoCode)
	assert.Nil(t, out.Reservation.VoucherID)
	require.NotNil(t, out.WaitlistEntryID)
	assert.Equal(t, uint64(11), *out.WaitlistEntryID)
	assert.Equal(t, []string{queue.ReservationCreated, queue.WaitlistJoined}, pub.types())
}

func TestSubmitUnknownDate(t *testing.T) {
	d, mock, pub := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(q(lockShowSQL)).WillReturnRows(sqlmock.NewRows(showCols))
	mock.ExpectRollback()

	_, err := svc.Submit(context.Background(), Submission{Date: "2025-03-15", Name: "X", Email: "x@example.nl", Guests: 2})
	assert.Equal(t, "show_not_found", rejection(t, err).Code)
	assert.Equal(t, KindNotFound, rejection(t, err).Kind)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, pub.types())
}

func TestSubmitPromoExhaustedInFlight(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(q(lockShowSQL)).WillReturnRows(showRow(5, "2025-03-14", 50, nil, false))
	mock.ExpectQuery(q(loadSQL)).WillReturnRows(loadRows())
	mock.ExpectQuery(q("FROM promo_codes WHERE code = ?")).
		WillReturnRows(sqlmock.NewRows(promoCols).AddRow(3, "LAATSTE", "fixed", 1000, true, 5, 4, nil, fixedNow, fixedNow))
	// another booking took the last use between read and update
	mock.ExpectExec(q("UPDATE promo_codes SET used_count")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.Submit(context.Background(), Submission{Date: "2025-03-14", Name: "X", Email: "x@example.nl", Guests: 2, PromoCode: "laatste"})
	assert.Equal(t, "promo_invalid", rejection(t, err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitUsedVoucherRejected(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(q(lockShowSQL)).WillReturnRows(showRow(5, "2025-03-14", 50, nil, false))
	mock.ExpectQuery(q(loadSQL)).WillReturnRows(loadRows())
	mock.ExpectQuery(q("FROM vouchers WHERE code = ? FOR UPDATE")).
		WillReturnRows(voucherRow(9, "TB2024-A1B2", model.VoucherKindValue, 5000, 0, "2025-12-31", model.VoucherUsed))
	mock.ExpectRollback()

	_, err := svc.Submit(context.Background(), Submission{Date: "2025-03-14", Name: "X", Email: "x@example.nl", Guests: 2, VoucherCode: "TB2024-A1B2"})
	rej := rejection(t, err)
	assert.Equal(t, "voucher_already_used", rej.Code)
	assert.Equal(t, "Deze voucher is al gebruikt.", rej.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitPersonsVoucherCoversPerPersonPrice(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(q(lockShowSQL)).WillReturnRows(showRow(5, "2025-03-14", 50, nil, false))
	mock.ExpectQuery(q(loadSQL)).WillReturnRows(loadRows())
	mock.ExpectQuery(q("FROM vouchers WHERE code = ? FOR UPDATE")).
		WillReturnRows(voucherRow(9, "TB2024-C3D4", model.VoucherKindPersons, 0, 2, "2025-12-31", model.VoucherExtended))
	mock.ExpectExec(q("INSERT INTO reservations")).WillReturnResult(sqlmock.NewResult(46, 1))
	mock.ExpectExec(q("UPDATE vouchers SET status = 'used'")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := svc.Submit(context.Background(), Submission{Date: "2025-03-14", Name: "X", Email: "x@example.nl", Guests: 4, VoucherCode: "TB2024-C3D4"})
	require.NoError(t, err)
	assert.Equal(t, int64(2*8950), out.Reservation.VoucherAppliedCents)
	assert.Equal(t, int64(2*8950), out.Reservation.TotalCents)
	assert.Contains(t, out.VoucherWarning, "2 personen")
}

func TestSubmitGuestLimits(t *testing.T) {
	d, _, _ := newTestDeps(t)
	svc := NewBookingService(d)

	_, err := svc.Submit(context.Background(), Submission{Date: "2025-03-14", Guests: 0})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Submit(context.Background(), Submission{Date: "2025-03-14", Guests: 41})
	assert.Equal(t, "too_many_guests", rejection(t, err).Code)
}

func TestApproveWritesActorAndAudit(t *testing.T) {
	d, mock, pub := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM reservations WHERE id = ? FOR UPDATE")).WithArgs(42).
		WillReturnRows(reservationRow(42, "2025-03-14", 12, model.ReservationProvisional, "groep@example.nl"))
	mock.ExpectExec(q("UPDATE reservations SET status = ?, status_changed_by = ?")).
		WithArgs(model.ReservationConfirmed, 7, sqlmock.AnyArg(), 42, model.ReservationProvisional).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAudit(mock, "approve", "reservation")
	mock.ExpectCommit()

	res, err := svc.Approve(context.Background(), adminSession(), 42)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, model.ReservationConfirmed, res.Status)
	require.NotNil(t, res.StatusChangedBy)
	assert.Equal(t, uint64(7), *res.StatusChangedBy)
	assert.Equal(t, []string{queue.ReservationStatusChanged}, pub.types())
}

func TestApproveOnlyFromProvisional(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM reservations WHERE id = ? FOR UPDATE")).
		WillReturnRows(reservationRow(42, "2025-03-14", 4, model.ReservationConfirmed, "a@example.nl"))
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), adminSession(), 42)
	assert.Equal(t, "invalid_transition", rejection(t, err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminActionsCheckSession(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewBookingService(d)

	_, err := svc.Approve(context.Background(), staffSession(), 42)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	expired := adminSession()
	expired.ExpiresAt = fixedNow.Add(-1)
	_, err = svc.Reject(context.Background(), expired, 42)
	assert.ErrorIs(t, err, auth.ErrSessionExpired)

	_, err = svc.List(context.Background(), nil, repository.ReservationFilter{})
	assert.ErrorIs(t, err, auth.ErrNoSession)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelByGuestEmailMismatchReadsAsNotFound(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM reservations WHERE id = ? FOR UPDATE")).
		WillReturnRows(reservationRow(42, "2025-03-14", 4, model.ReservationConfirmed, "jan@example.nl"))
	mock.ExpectRollback()

	_, err := svc.CancelByGuest(context.Background(), 42, "iemand@example.nl")
	assert.Equal(t, "reservation_not_found", rejection(t, err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelByGuest(t *testing.T) {
	d, mock, pub := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM reservations WHERE id = ? FOR UPDATE")).
		WillReturnRows(reservationRow(42, "2025-03-14", 4, model.ReservationConfirmed, "jan@example.nl"))
	mock.ExpectExec(q("UPDATE reservations SET status = ?")).
		WithArgs(model.ReservationCancelled, nil, sqlmock.AnyArg(), 42, model.ReservationConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.CancelByGuest(context.Background(), 42, "JAN@example.nl")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, res.Status)
	assert.Equal(t, []string{queue.ReservationStatusChanged}, pub.types())
}

// paidRow is a reservation that used promo LENTE and voucher 3.
func paidRow(id uint64, status model.ReservationStatus) *sqlmock.Rows {
	return sqlmock.NewRows(reservationCols).AddRow(id, day("2025-03-14"), "Jan Jansen", "jan@example.nl", "", 12, "", "{}",
		int64(107400), "LENTE", 10740, 3, 50000, int64(46660), false, string(status), "external", nil, fixedNow, fixedNow)
}

func TestRejectReleasesVoucherAndPromo(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM reservations WHERE id = ? FOR UPDATE")).WithArgs(42).
		WillReturnRows(paidRow(42, model.ReservationProvisional))
	mock.ExpectExec(q("UPDATE reservations SET status = ?")).
		WithArgs(model.ReservationCancelled, 7, sqlmock.AnyArg(), 42, model.ReservationProvisional).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE promo_codes SET used_count = used_count - 1")).
		WithArgs(sqlmock.AnyArg(), "LENTE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("WHERE id = ? AND status = 'used' AND used_reservation_id = ?")).
		WithArgs(sqlmock.AnyArg(), 3, 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAudit(mock, "reject", "reservation")
	mock.ExpectCommit()

	res, err := svc.Reject(context.Background(), adminSession(), 42)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, model.ReservationCancelled, res.Status)
}

func TestCancelByGuestSkipsVoucherAlreadyRestored(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM reservations WHERE id = ? FOR UPDATE")).
		WillReturnRows(paidRow(42, model.ReservationConfirmed))
	mock.ExpectExec(q("UPDATE reservations SET status = ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE promo_codes SET used_count = used_count - 1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// an admin restored the voucher in the meantime
	mock.ExpectExec(q("status = 'used' AND used_reservation_id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	_, err := svc.CancelByGuest(context.Background(), 42, "jan@example.nl")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingApprovalsShowsImpact(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewBookingService(d)

	rows := sqlmock.NewRows(reservationCols).
		AddRow(1, day("2025-03-14"), "A", "a@example.nl", "", 30, "", "{}", 0, nil, 0, nil, 0, 0, false, "confirmed", "external", nil, fixedNow, fixedNow).
		AddRow(2, day("2025-03-14"), "B", "b@example.nl", "", 25, "", "{}", 0, nil, 0, nil, 0, 0, false, "provisional", "external", nil, fixedNow, fixedNow)
	mock.ExpectQuery(q("WHERE show_date IN (SELECT DISTINCT show_date FROM reservations WHERE status = ?)")).
		WithArgs(model.ReservationProvisional).WillReturnRows(rows)
	mock.ExpectQuery(q("show_date IN (?)")).WithArgs("2025-03-14").WillReturnRows(showRow(5, "2025-03-14", 50, nil, false))

	pending, err := svc.PendingApprovals(context.Background(), staffSession())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint64(2), pending[0].Reservation.ID)
	assert.Equal(t, 30, pending[0].CurrentBooked)
	assert.Equal(t, 55, pending[0].Projected)
	assert.Equal(t, 5, pending[0].ExceedsBy)
}

func TestCheckInRequiresConfirmed(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM reservations WHERE id = ? FOR UPDATE")).
		WillReturnRows(reservationRow(42, "2025-03-14", 4, model.ReservationProvisional, "a@example.nl"))
	mock.ExpectRollback()

	_, err := svc.CheckIn(context.Background(), staffSession(), 42, true)
	assert.Equal(t, KindConflict, rejection(t, err).Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendar(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectQuery(q("FROM show_events")).WithArgs("2025-03-01", "2025-03-31").
		WillReturnRows(showRow(5, "2025-03-14", 50, nil, false))
	mock.ExpectQuery(q("SELECT id, show_date, status, guests FROM reservations WHERE show_date BETWEEN ? AND ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "show_date", "status", "guests"}).
			AddRow(1, day("2025-03-14"), "confirmed", 30).
			AddRow(2, day("2025-03-14"), "cancelled", 8))

	view, err := svc.Calendar(context.Background(), "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	require.Len(t, view.Days, 1)
	assert.Equal(t, CalendarDay{Date: "2025-03-14", Name: "Diner & Show", ShowType: "dinner_show", Capacity: 50, Booked: 30, Available: 20}, view.Days[0])

	_, err = svc.Calendar(context.Background(), "maart", "2025-03-31")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCalendarDefaultsToVenueToday(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	// 23:30 UTC on 28 February is already 1 March in Amsterdam
	d.Now = func() time.Time { return time.Date(2025, 2, 28, 23, 30, 0, 0, time.UTC) }
	svc := NewBookingService(d)

	mock.ExpectQuery(q("FROM show_events")).WithArgs("2025-03-01", "2025-05-30").
		WillReturnRows(sqlmock.NewRows(showCols))
	mock.ExpectQuery(q("FROM reservations WHERE show_date BETWEEN ? AND ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "show_date", "status", "guests"}))

	view, err := svc.Calendar(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", view.From)
	assert.Equal(t, "2025-05-30", view.To)
	assert.Empty(t, view.Days)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryListsAuditTrail(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewBookingService(d)

	mock.ExpectQuery(q("FROM reservations WHERE id = ?")).WithArgs(uint64(42)).
		WillReturnRows(reservationRow(42, "2025-03-14", 4, model.ReservationConfirmed, "a@example.nl"))
	mock.ExpectQuery(q("FROM audit_log WHERE entity = ? AND entity_id = ?")).WithArgs("reservation", uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "actor_id", "action", "entity", "entity_id", "detail", "created_at"}).
			AddRow(2, 7, "approve", "reservation", 42, "provisional -> confirmed", fixedNow))

	items, err := svc.History(context.Background(), staffSession(), 42)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "approve", items[0].Action)
	assert.Equal(t, uint64(7), items[0].ActorID)
	require.NoError(t, mock.ExpectationsWereMet())
}
