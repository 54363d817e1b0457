package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// SettingsRepo stores one JSON document per configuration facet in the
// settings table, keyed by setting_group.
type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Load decodes the stored document for group into dst. It reports false when
// nothing has been stored yet.
func (r *SettingsRepo) Load(ctx context.Context, group string, dst any) (bool, error) {
	var doc []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE setting_group = ?`, group).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(doc, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Save upserts the document for group.
func (r *SettingsRepo) Save(ctx context.Context, group string, v any, updatedBy uint64) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO settings (setting_group, value, updated_by) VALUES (?, ?, ?)
        ON DUPLICATE KEY UPDATE value = VALUES(value), updated_by = VALUES(updated_by)`, group, string(doc), updatedBy)
	return err
}
