// Package repository contains the MySQL data access for the reservation
// service. Each repo wraps a *sql.DB; methods with a Tx suffix run inside a
// caller-owned transaction so a service can combine several repositories
// under one commit.
//
// The sentinel errors below let services and handlers tell the failure
// scenarios apart without inspecting driver errors.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when a write cannot proceed because of the current
// state of the row, e.g. a status change from a state that does not allow it.
var ErrConflict = errors.New("conflict")

var (
	ErrShowNotFound        = errors.New("show not found")
	ErrShowDateTaken       = errors.New("a show already exists on this date")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrWaitlistNotFound    = errors.New("waitlist entry not found")
	ErrVoucherNotFound     = errors.New("voucher not found")
	ErrVoucherCodeTaken    = errors.New("voucher code already exists")
	ErrPromoNotFound       = errors.New("promo code not found")
	ErrPromoCodeTaken      = errors.New("promo code already exists")
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const dateLayout = "2006-01-02"

// isDuplicate reports a MySQL unique key violation (error 1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// affected returns ErrConflict when the statement changed no rows.
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullUint(p *uint64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func uintPtr(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}
