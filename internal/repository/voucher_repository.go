package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/theater-reservation/internal/model"
)

// VoucherRepo manages persistence for vouchers. The voucher row owns its
// used transition: MarkUsedTx only succeeds from a usable status.
type VoucherRepo struct {
	db *sql.DB
}

func NewVoucherRepo(db *sql.DB) *VoucherRepo { return &VoucherRepo{db: db} }

const voucherColumns = `id, code, kind, value_cents, persons, issued_on, expires_on, status, used_at,
        used_reservation_id, extension_count, notes, created_at, updated_at`

func scanVoucher(row interface{ Scan(...any) error }) (*model.Voucher, error) {
	var (
		v      model.Voucher
		usedAt sql.NullTime
		usedBy sql.NullInt64
		notes  sql.NullString
	)
	if err := row.Scan(&v.ID, &v.Code, &v.Kind, &v.ValueCents, &v.Persons, &v.IssuedOn, &v.ExpiresOn, &v.Status, &usedAt,
		&usedBy, &v.ExtensionCount, &notes, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.UsedAt = timePtr(usedAt)
	v.UsedReservationID = uintPtr(usedBy)
	v.Notes = notes.String
	return &v, nil
}

func (r *VoucherRepo) get(ctx context.Context, q DBTX, query string, args ...any) (*model.Voucher, error) {
	v, err := scanVoucher(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVoucherNotFound
	}
	return v, err
}

// Create inserts a voucher. Codes are stored upper-case.
func (r *VoucherRepo) Create(ctx context.Context, v *model.Voucher, now time.Time) error {
	v.Code = strings.ToUpper(strings.TrimSpace(v.Code))
	if v.Status == "" {
		v.Status = model.VoucherActive
	}
	const q = `INSERT INTO vouchers (code, kind, value_cents, persons, issued_on, expires_on, status, notes, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, v.Code, v.Kind, v.ValueCents, v.Persons,
		v.IssuedOn.Format(dateLayout), v.ExpiresOn.Format(dateLayout), v.Status, v.Notes, now, now)
	if err != nil {
		if isDuplicate(err) {
			return ErrVoucherCodeTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	v.CreatedAt, v.UpdatedAt = now, now
	return nil
}

func (r *VoucherRepo) GetByID(ctx context.Context, id uint64) (*model.Voucher, error) {
	return r.get(ctx, r.db, `SELECT `+voucherColumns+` FROM vouchers WHERE id = ?`, id)
}

// GetByCode looks a voucher up by its (case-insensitive) code.
func (r *VoucherRepo) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	return r.get(ctx, r.db, `SELECT `+voucherColumns+` FROM vouchers WHERE code = ?`, strings.ToUpper(strings.TrimSpace(code)))
}

// GetByCodeForUpdateTx loads and locks a voucher until tx ends.
func (r *VoucherRepo) GetByCodeForUpdateTx(ctx context.Context, tx *sql.Tx, code string) (*model.Voucher, error) {
	return r.get(ctx, tx, `SELECT `+voucherColumns+` FROM vouchers WHERE code = ? FOR UPDATE`, strings.ToUpper(strings.TrimSpace(code)))
}

// List returns vouchers, optionally filtered by stored status, newest first.
func (r *VoucherRepo) List(ctx context.Context, status model.VoucherStatus) ([]model.Voucher, error) {
	q := `SELECT ` + voucherColumns + ` FROM vouchers`
	var args []any
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// MarkUsedTx records the voucher as spent on reservationID. It fails with
// ErrConflict unless the voucher is still active or extended.
func (r *VoucherRepo) MarkUsedTx(ctx context.Context, tx *sql.Tx, id, reservationID uint64, now time.Time) error {
	res, err := tx.ExecContext(ctx, `UPDATE vouchers SET status = 'used', used_at = ?, used_reservation_id = ?, updated_at = ?
        WHERE id = ? AND status IN ('active', 'extended')`, now, reservationID, now, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// Extend pushes the expiry date of an unused voucher.
func (r *VoucherRepo) Extend(ctx context.Context, id uint64, expiresOn time.Time, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE vouchers
        SET expires_on = ?, status = 'extended', extension_count = extension_count + 1, updated_at = ?
        WHERE id = ? AND status IN ('active', 'extended', 'expired')`, expiresOn.Format(dateLayout), now, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// Archive hides a voucher from use. Restore reverses it.
func (r *VoucherRepo) Archive(ctx context.Context, id uint64, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE vouchers SET status = 'archived', updated_at = ?
        WHERE id = ? AND status <> 'archived'`, now, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// Restore makes an archived or used voucher active again and clears its
// usage. It is the only way out of the used status.
func (r *VoucherRepo) Restore(ctx context.Context, id uint64, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE vouchers
        SET status = 'active', used_at = NULL, used_reservation_id = NULL, updated_at = ?
        WHERE id = ? AND status IN ('archived', 'used')`, now, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// ReleaseTx hands a voucher back after the reservation it paid for was
// rejected or cancelled. Only a voucher still marked used by that
// reservation is touched; it reports whether a row changed.
func (r *VoucherRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, id, reservationID uint64, now time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx, `UPDATE vouchers
        SET status = 'active', used_at = NULL, used_reservation_id = NULL, updated_at = ?
        WHERE id = ? AND status = 'used' AND used_reservation_id = ?`, now, id, reservationID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
