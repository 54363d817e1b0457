package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/theater-reservation/internal/model"
)

// ShowRepo manages persistence for show_events. Deleted shows keep their
// row (deleted_at set) so reservations on the date stay reportable.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

const showColumns = `id, show_date, name, show_type, capacity, manual_capacity, is_closed, external_bookings, deleted_at, created_at, updated_at`

func scanShow(row interface{ Scan(...any) error }) (*model.ShowEvent, error) {
	var (
		s       model.ShowEvent
		date    time.Time
		manual  sql.NullInt64
		deleted sql.NullTime
	)
	if err := row.Scan(&s.ID, &date, &s.Name, &s.ShowType, &s.Capacity, &manual, &s.Closed,
		&s.ExternalBookings, &deleted, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Date = date.Format(dateLayout)
	s.ManualCapacity = intPtr(manual)
	s.DeletedAt = timePtr(deleted)
	return &s, nil
}

func (r *ShowRepo) one(ctx context.Context, q DBTX, query string, args ...any) (*model.ShowEvent, error) {
	s, err := scanShow(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShowNotFound
	}
	return s, err
}

// Create inserts a show and reloads it to pick up DB defaults. A live show
// on the same date yields ErrShowDateTaken.
func (r *ShowRepo) Create(ctx context.Context, s *model.ShowEvent) error {
	const q = `INSERT INTO show_events (show_date, name, show_type, capacity, manual_capacity, is_closed, external_bookings)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Date, s.Name, s.ShowType, s.Capacity, nullInt(s.ManualCapacity), s.Closed, s.ExternalBookings)
	if err != nil {
		if isDuplicate(err) {
			return ErrShowDateTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// GetByID returns a live show by id.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.ShowEvent, error) {
	return r.one(ctx, r.db, `SELECT `+showColumns+` FROM show_events WHERE id = ? AND deleted_at IS NULL`, id)
}

// GetByDate returns the live show on date (YYYY-MM-DD).
func (r *ShowRepo) GetByDate(ctx context.Context, date string) (*model.ShowEvent, error) {
	return r.one(ctx, r.db, `SELECT `+showColumns+` FROM show_events WHERE show_date = ? AND deleted_at IS NULL`, date)
}

// GetByDateForUpdateTx loads the live show on date and locks its row until
// tx ends. Admission for one date is serialized through this lock.
func (r *ShowRepo) GetByDateForUpdateTx(ctx context.Context, tx *sql.Tx, date string) (*model.ShowEvent, error) {
	return r.one(ctx, tx, `SELECT `+showColumns+` FROM show_events WHERE show_date = ? AND deleted_at IS NULL FOR UPDATE`, date)
}

// ListRange returns live shows with from <= date <= to, ordered by date.
func (r *ShowRepo) ListRange(ctx context.Context, from, to string) ([]model.ShowEvent, error) {
	return r.list(ctx, `SELECT `+showColumns+` FROM show_events
               WHERE show_date BETWEEN ? AND ? AND deleted_at IS NULL
               ORDER BY show_date ASC`, from, to)
}

// ListByDates returns the live shows on the given dates.
func (r *ShowRepo) ListByDates(ctx context.Context, dates []string) ([]model.ShowEvent, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	args := make([]any, len(dates))
	for i, d := range dates {
		args[i] = d
	}
	q := `SELECT ` + showColumns + ` FROM show_events
          WHERE deleted_at IS NULL AND show_date IN (?` + strings.Repeat(",?", len(dates)-1) + `)
          ORDER BY show_date ASC`
	return r.list(ctx, q, args...)
}

func (r *ShowRepo) list(ctx context.Context, query string, args ...any) ([]model.ShowEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.ShowEvent
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// Update writes the editable fields of a live show. The show date itself is
// immutable because reservations reference it.
func (r *ShowRepo) Update(ctx context.Context, s *model.ShowEvent) error {
	const q = `UPDATE show_events
               SET name = ?, show_type = ?, capacity = ?, manual_capacity = ?, external_bookings = ?
               WHERE id = ? AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, s.Name, s.ShowType, s.Capacity, nullInt(s.ManualCapacity), s.ExternalBookings, s.ID)
	return err
}

// SetClosed opens or closes a date for direct bookings.
func (r *ShowRepo) SetClosed(ctx context.Context, id uint64, closed bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE show_events SET is_closed = ? WHERE id = ? AND deleted_at IS NULL`, closed, id)
	return err
}

// SoftDelete marks the show deleted. Rows are never removed.
func (r *ShowRepo) SoftDelete(ctx context.Context, id uint64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE show_events SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, at, id)
	if err != nil {
		return err
	}
	if err := affected(res); err != nil {
		return ErrShowNotFound
	}
	return nil
}
