package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/theater-reservation/internal/model"
)

// AuditRepo appends admin actions to audit_log.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// Record writes e using q so the entry commits together with the change.
func (r *AuditRepo) Record(ctx context.Context, q DBTX, e model.AuditEntry, now time.Time) error {
	_, err := q.ExecContext(ctx, `INSERT INTO audit_log (actor_id, action, entity, entity_id, detail, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`, e.ActorID, e.Action, e.Entity, e.EntityID, e.Detail, now)
	return err
}

// ListForEntity returns the history of one entity, newest first.
func (r *AuditRepo) ListForEntity(ctx context.Context, entity string, id uint64) ([]model.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, actor_id, action, entity, entity_id, detail, created_at
        FROM audit_log WHERE entity = ? AND entity_id = ? ORDER BY id DESC`, entity, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
