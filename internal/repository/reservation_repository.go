package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/theater-reservation/internal/model"
)

// ReservationRepo manages persistence for reservations.
type ReservationRepo struct {
	db *sql.DB
}

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, show_date, contact_name, email, phone, guests, drink_package, addons,
        subtotal_cents, promo_code, discount_cents, voucher_id, voucher_applied_cents, total_cents,
        checked_in, status, source, status_changed_by, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var (
		res       model.Reservation
		date      time.Time
		addons    []byte
		promo     sql.NullString
		voucherID sql.NullInt64
		changedBy sql.NullInt64
	)
	if err := row.Scan(&res.ID, &date, &res.ContactName, &res.Email, &res.Phone, &res.Guests, &res.DrinkPackage, &addons,
		&res.SubtotalCents, &promo, &res.DiscountCents, &voucherID, &res.VoucherAppliedCents, &res.TotalCents,
		&res.CheckedIn, &res.Status, &res.Source, &changedBy, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	res.ShowDate = date.Format(dateLayout)
	res.PromoCode = stringPtr(promo)
	res.VoucherID = uintPtr(voucherID)
	res.StatusChangedBy = uintPtr(changedBy)
	if len(addons) > 0 {
		if err := json.Unmarshal(addons, &res.Addons); err != nil {
			return nil, err
		}
	}
	return &res, nil
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// CreateTx inserts the reservation inside tx and sets its ID. Timestamps are
// filled from now so callers can respond without a reload.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation, now time.Time) error {
	addons, err := json.Marshal(res.Addons)
	if err != nil {
		return err
	}
	const q = `INSERT INTO reservations
        (show_date, contact_name, email, phone, guests, drink_package, addons, subtotal_cents, promo_code,
         discount_cents, voucher_id, voucher_applied_cents, total_cents, status, source, status_changed_by, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	out, err := tx.ExecContext(ctx, q, res.ShowDate, res.ContactName, res.Email, res.Phone, res.Guests, res.DrinkPackage,
		string(addons), res.SubtotalCents, nullString(res.PromoCode), res.DiscountCents, nullUint(res.VoucherID),
		res.VoucherAppliedCents, res.TotalCents, res.Status, res.Source, nullUint(res.StatusChangedBy), now, now)
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.CreatedAt, res.UpdatedAt = now, now
	return nil
}

// ListLoadByDateTx returns id, status and guests of every reservation on
// date. It is the input of the capacity calculator.
func (r *ReservationRepo) ListLoadByDateTx(ctx context.Context, tx *sql.Tx, date string) ([]model.Reservation, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, status, guests FROM reservations WHERE show_date = ?`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res := model.Reservation{ShowDate: date}
		if err := rows.Scan(&res.ID, &res.Status, &res.Guests); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// LoadByDateRange returns id, date, status and guests of every reservation
// between from and to, grouped by date.
func (r *ReservationRepo) LoadByDateRange(ctx context.Context, from, to string) (map[string][]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, show_date, status, guests FROM reservations WHERE show_date BETWEEN ? AND ?`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string][]model.Reservation)
	for rows.Next() {
		var (
			res  model.Reservation
			date time.Time
		)
		if err := rows.Scan(&res.ID, &date, &res.Status, &res.Guests); err != nil {
			return nil, err
		}
		res.ShowDate = date.Format(dateLayout)
		out[res.ShowDate] = append(out[res.ShowDate], res)
	}
	return out, rows.Err()
}

// GetByID returns a reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return r.get(ctx, r.db, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
}

// GetByIDForUpdateTx loads and locks a reservation row until tx ends.
func (r *ReservationRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	return r.get(ctx, tx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ? FOR UPDATE`, id)
}

func (r *ReservationRepo) get(ctx context.Context, q DBTX, query string, args ...any) (*model.Reservation, error) {
	res, err := scanReservation(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return res, err
}

// ReservationFilter narrows List. Zero values are ignored.
type ReservationFilter struct {
	Date   string
	Status model.ReservationStatus
	Email  string
}

// List returns reservations matching f, newest first.
func (r *ReservationRepo) List(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	var (
		where []string
		args  []any
	)
	if f.Date != "" {
		where = append(where, "show_date = ?")
		args = append(args, f.Date)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Email != "" {
		where = append(where, "email = ?")
		args = append(args, strings.ToLower(f.Email))
	}
	q := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY show_date ASC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ListOnDatesWithStatus returns every reservation on a date that has at least
// one reservation in status. The approval queue uses it to load the
// provisional reservations together with the rest of their dates.
func (r *ReservationRepo) ListOnDatesWithStatus(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
        WHERE show_date IN (SELECT DISTINCT show_date FROM reservations WHERE status = ?)
        ORDER BY show_date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, status)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// UpdateStatusTx moves a reservation from one status to another. The
// from-status guard makes concurrent changes fail with ErrConflict.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to model.ReservationStatus, actor *uint64, now time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ?, status_changed_by = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, nullUint(actor), now, id, from)
	if err != nil {
		return err
	}
	return affected(res)
}

// SetCheckedInTx flags a confirmed reservation as arrived.
func (r *ReservationRepo) SetCheckedInTx(ctx context.Context, tx *sql.Tx, id uint64, checkedIn bool, now time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE reservations SET checked_in = ?, updated_at = ? WHERE id = ? AND status = 'confirmed'`,
		checkedIn, now, id)
	if err != nil {
		return err
	}
	return affected(res)
}
