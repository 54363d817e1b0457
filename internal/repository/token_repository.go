package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo stores admin refresh tokens. Only the sha256 of the raw token is
// kept; see utils.HashRefreshRaw.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

const (
	qStoreRefresh = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`

	qLiveRefresh = `SELECT user_id FROM refresh_tokens
		WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > ?
		LIMIT 1`

	qRevokeRefresh = `UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL`

	qRevokeUserRefresh = `UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL`

	qPurgeRefresh = `DELETE FROM refresh_tokens WHERE expires_at < ?`
)

func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx, qStoreRefresh, userID, tokenHash, exp.UTC())
	return err
}

// ValidateRefresh returns the owner of a live token. Unknown, revoked and
// expired tokens all come back as sql.ErrNoRows.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error) {
	var userID uint64
	err := r.DB.QueryRowContext(ctx, qLiveRefresh, tokenHash, now.UTC()).Scan(&userID)
	return userID, err
}

// RevokeByHash is idempotent: revoking an already revoked token is a no-op.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx, qRevokeRefresh, tokenHash)
	return err
}

// RevokeAllForUser ends every session of one account (logout everywhere).
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, qRevokeUserRefresh, userID)
	return err
}

// PurgeExpired deletes tokens that expired before cutoff. The scheduler runs
// it next to the waitlist sweep.
func (r *TokenRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, qPurgeRefresh, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
