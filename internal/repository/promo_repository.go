package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/theater-reservation/internal/model"
)

// PromoRepo manages persistence for promo_codes.
type PromoRepo struct {
	db *sql.DB
}

func NewPromoRepo(db *sql.DB) *PromoRepo { return &PromoRepo{db: db} }

const promoColumns = `id, code, discount_type, discount_value, is_active, usage_limit, used_count, expires_at, created_at, updated_at`

func scanPromo(row interface{ Scan(...any) error }) (*model.PromoCode, error) {
	var (
		p       model.PromoCode
		limit   sql.NullInt64
		expires sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Code, &p.Type, &p.Value, &p.Active, &limit, &p.UsedCount, &expires, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.UsageLimit = intPtr(limit)
	p.ExpiresAt = timePtr(expires)
	return &p, nil
}

func normalizeCode(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }

// Create inserts a promo code (stored upper-case).
func (r *PromoRepo) Create(ctx context.Context, p *model.PromoCode, now time.Time) error {
	p.Code = normalizeCode(p.Code)
	const q = `INSERT INTO promo_codes (code, discount_type, discount_value, is_active, usage_limit, expires_at, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var expires sql.NullTime
	if p.ExpiresAt != nil {
		expires = sql.NullTime{Time: *p.ExpiresAt, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, q, p.Code, p.Type, p.Value, p.Active, nullInt(p.UsageLimit), expires, now, now)
	if err != nil {
		if isDuplicate(err) {
			return ErrPromoCodeTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

// GetByCode returns the promo for code using q (DB or transaction).
func (r *PromoRepo) GetByCode(ctx context.Context, q DBTX, code string) (*model.PromoCode, error) {
	p, err := scanPromo(q.QueryRowContext(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE code = ?`, normalizeCode(code)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPromoNotFound
	}
	return p, err
}

func (r *PromoRepo) GetByID(ctx context.Context, id uint64) (*model.PromoCode, error) {
	p, err := scanPromo(r.db.QueryRowContext(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPromoNotFound
	}
	return p, err
}

func (r *PromoRepo) List(ctx context.Context) ([]model.PromoCode, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+promoColumns+` FROM promo_codes ORDER BY code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.PromoCode
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update writes the editable fields. The usage counter is never written here.
func (r *PromoRepo) Update(ctx context.Context, p *model.PromoCode, now time.Time) error {
	var expires sql.NullTime
	if p.ExpiresAt != nil {
		expires = sql.NullTime{Time: *p.ExpiresAt, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `UPDATE promo_codes
        SET discount_type = ?, discount_value = ?, is_active = ?, usage_limit = ?, expires_at = ?, updated_at = ?
        WHERE id = ?`, p.Type, p.Value, p.Active, nullInt(p.UsageLimit), expires, now, p.ID)
	return err
}

// Deactivate switches a code off.
func (r *PromoRepo) Deactivate(ctx context.Context, id uint64, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE promo_codes SET is_active = 0, updated_at = ? WHERE id = ?`, now, id)
	return err
}

// IncrementUsageTx counts one use of the promo in a single conditional
// UPDATE. It returns false when the code is inactive or its limit was reached
// in the meantime; the row is then left untouched.
func (r *PromoRepo) IncrementUsageTx(ctx context.Context, tx *sql.Tx, id uint64, now time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx, `UPDATE promo_codes SET used_count = used_count + 1, updated_at = ?
        WHERE id = ? AND is_active = 1 AND (usage_limit IS NULL OR used_count < usage_limit)`, now, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DecrementUsageTx gives back one use of the promo with the given code. The
// counter never drops below zero.
func (r *PromoRepo) DecrementUsageTx(ctx context.Context, tx *sql.Tx, code string, now time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx, `UPDATE promo_codes SET used_count = used_count - 1, updated_at = ?
        WHERE code = ? AND used_count > 0`, now, normalizeCode(code))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
