package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/theater-reservation/internal/model"
)

// WaitlistRepo manages persistence for waitlist_entries.
type WaitlistRepo struct {
	db *sql.DB
}

func NewWaitlistRepo(db *sql.DB) *WaitlistRepo { return &WaitlistRepo{db: db} }

const waitlistColumns = `id, reservation_id, contact_name, email, phone, guests, show_date, status, priority,
        notification_count, last_notified_at, converted_reservation_id, created_at, updated_at`

func scanWaitlist(row interface{ Scan(...any) error }) (*model.WaitlistEntry, error) {
	var (
		e            model.WaitlistEntry
		date         time.Time
		reservation  sql.NullInt64
		lastNotified sql.NullTime
		converted    sql.NullInt64
	)
	if err := row.Scan(&e.ID, &reservation, &e.ContactName, &e.Email, &e.Phone, &e.Guests, &date, &e.Status, &e.Priority,
		&e.NotificationCount, &lastNotified, &converted, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.ShowDate = date.Format(dateLayout)
	e.ReservationID = uintPtr(reservation)
	e.LastNotifiedAt = timePtr(lastNotified)
	e.ConvertedReservationID = uintPtr(converted)
	return &e, nil
}

// Create inserts an entry using q, which may be the DB or a transaction.
func (r *WaitlistRepo) Create(ctx context.Context, q DBTX, e *model.WaitlistEntry, now time.Time) error {
	const ins = `INSERT INTO waitlist_entries
        (reservation_id, contact_name, email, phone, guests, show_date, status, priority, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if e.Status == "" {
		e.Status = model.WaitlistActive
	}
	res, err := q.ExecContext(ctx, ins, nullUint(e.ReservationID), e.ContactName, e.Email, e.Phone, e.Guests,
		e.ShowDate, e.Status, e.Priority, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	e.CreatedAt, e.UpdatedAt = now, now
	return nil
}

// GetByID returns an entry or ErrWaitlistNotFound.
func (r *WaitlistRepo) GetByID(ctx context.Context, id uint64) (*model.WaitlistEntry, error) {
	return r.get(ctx, r.db, `SELECT `+waitlistColumns+` FROM waitlist_entries WHERE id = ?`, id)
}

// GetByIDForUpdateTx loads and locks an entry until tx ends.
func (r *WaitlistRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.WaitlistEntry, error) {
	return r.get(ctx, tx, `SELECT `+waitlistColumns+` FROM waitlist_entries WHERE id = ? FOR UPDATE`, id)
}

func (r *WaitlistRepo) get(ctx context.Context, q DBTX, query string, args ...any) (*model.WaitlistEntry, error) {
	e, err := scanWaitlist(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWaitlistNotFound
	}
	return e, err
}

// List returns entries for an optional date and status, highest priority
// first and oldest first within a priority.
func (r *WaitlistRepo) List(ctx context.Context, date string, status model.WaitlistStatus) ([]model.WaitlistEntry, error) {
	var (
		where []string
		args  []any
	)
	if date != "" {
		where = append(where, "show_date = ?")
		args = append(args, date)
	}
	if status != "" {
		where = append(where, "status = ?")
		args = append(args, status)
	}
	q := `SELECT ` + waitlistColumns + ` FROM waitlist_entries`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY priority DESC, created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.WaitlistEntry
	for rows.Next() {
		e, err := scanWaitlist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// MarkNotified records one more notification for an open entry.
func (r *WaitlistRepo) MarkNotified(ctx context.Context, id uint64, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE waitlist_entries
        SET status = 'notified', notification_count = notification_count + 1, last_notified_at = ?, updated_at = ?
        WHERE id = ? AND status IN ('active', 'notified')`, now, now, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// MarkConvertedTx links an open entry to the reservation created for it.
func (r *WaitlistRepo) MarkConvertedTx(ctx context.Context, tx *sql.Tx, id, reservationID uint64, now time.Time) error {
	res, err := tx.ExecContext(ctx, `UPDATE waitlist_entries
        SET status = 'converted', converted_reservation_id = ?, updated_at = ?
        WHERE id = ? AND status IN ('active', 'notified')`, reservationID, now, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// Remove takes an open entry off the list.
func (r *WaitlistRepo) Remove(ctx context.Context, id uint64, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE waitlist_entries SET status = 'removed', updated_at = ?
        WHERE id = ? AND status IN ('active', 'notified')`, now, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// SetPriority changes the ordering weight of an entry.
func (r *WaitlistRepo) SetPriority(ctx context.Context, id uint64, priority int, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE waitlist_entries SET priority = ?, updated_at = ? WHERE id = ?`, priority, now, id)
	return err
}

// ExpireBefore expires open entries whose show date lies before date and
// returns how many rows changed.
func (r *WaitlistRepo) ExpireBefore(ctx context.Context, date string, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE waitlist_entries SET status = 'expired', updated_at = ?
        WHERE show_date < ? AND status IN ('active', 'notified')`, now, date)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
