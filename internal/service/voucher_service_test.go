package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-reservation/internal/booking"
	"github.com/iliyamo/theater-reservation/internal/model"
)

func TestVoucherCheck(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewVoucherService(d)

	mock.ExpectQuery(q("FROM vouchers WHERE code = ?")).WithArgs("TB2024-A1B2").
		WillReturnRows(voucherRow(9, "TB2024-A1B2", model.VoucherKindValue, 5000, 0, "2025-12-31", model.VoucherActive))
	check, err := svc.Check(context.Background(), "tb2024-a1b2", 4000)
	require.NoError(t, err)
	assert.True(t, check.Valid)
	assert.Equal(t, int64(4000), check.AppliedCents)
	assert.Equal(t, int64(1000), check.ForfeitedCents)

	mock.ExpectQuery(q("FROM vouchers WHERE code = ?")).WillReturnRows(sqlmock.NewRows(voucherCols))
	check, err = svc.Check(context.Background(), "ONBEKEND", 4000)
	require.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Equal(t, booking.VoucherNotFound, check.Error)
}

func TestVoucherCreateRetriesOnCodeCollision(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewVoucherService(d)
	codes := []string{"TB2025-AAAA", "TB2025-BBBB"}
	svc.NewCode = func(year int) string {
		assert.Equal(t, 2025, year)
		c := codes[0]
		codes = codes[1:]
		return c
	}

	mock.ExpectExec(q("INSERT INTO vouchers")).WithArgs("TB2025-AAAA", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectExec(q("INSERT INTO vouchers")).WithArgs("TB2025-BBBB", model.VoucherKindValue, 7500, 0,
		"2025-03-01", "2026-03-01", model.VoucherActive, "kerstpakket", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(21, 1))
	expectAudit(mock, "create", "voucher")

	v, err := svc.Create(context.Background(), adminSession(), VoucherInput{Kind: model.VoucherKindValue, ValueCents: 7500, Notes: "kerstpakket"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, "TB2025-BBBB", v.Code)
	assert.Equal(t, model.VoucherActive, v.EffectiveStatus)
}

func TestVoucherCreateValidatesKind(t *testing.T) {
	d, _, _ := newTestDeps(t)
	svc := NewVoucherService(d)

	for _, in := range []VoucherInput{
		{Kind: model.VoucherKindValue},
		{Kind: model.VoucherKindPersons},
		{Kind: "cadeau", ValueCents: 100},
	} {
		_, err := svc.Create(context.Background(), adminSession(), in)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, "%+v", in)
	}
}

func TestVoucherExtend(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewVoucherService(d)

	mock.ExpectQuery(q("FROM vouchers WHERE id = ?")).
		WillReturnRows(voucherRow(9, "TB2024-A1B2", model.VoucherKindValue, 5000, 0, "2025-02-28", model.VoucherActive))
	mock.ExpectExec(q("SET expires_on = ?, status = 'extended'")).WithArgs("2025-06-30", sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAudit(mock, "extend", "voucher")
	mock.ExpectQuery(q("FROM vouchers WHERE id = ?")).
		WillReturnRows(voucherRow(9, "TB2024-A1B2", model.VoucherKindValue, 5000, 0, "2025-06-30", model.VoucherExtended))

	v, err := svc.Extend(context.Background(), adminSession(), 9, "2025-06-30")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, model.VoucherExtended, v.EffectiveStatus)
}

func TestVoucherExtendRefusals(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewVoucherService(d)

	mock.ExpectQuery(q("FROM vouchers WHERE id = ?")).
		WillReturnRows(voucherRow(9, "TB2024-A1B2", model.VoucherKindValue, 5000, 0, "2025-12-31", model.VoucherUsed))
	_, err := svc.Extend(context.Background(), adminSession(), 9, "2026-06-30")
	assert.Equal(t, "voucher_not_extendable", rejection(t, err).Code)

	mock.ExpectQuery(q("FROM vouchers WHERE id = ?")).
		WillReturnRows(voucherRow(9, "TB2024-A1B2", model.VoucherKindValue, 5000, 0, "2025-12-31", model.VoucherActive))
	_, err = svc.Extend(context.Background(), adminSession(), 9, "2025-12-31")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVoucherRestoreClearsUsage(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewVoucherService(d)

	mock.ExpectExec(q("SET status = 'active', used_at = NULL, used_reservation_id = NULL")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAudit(mock, "restore", "voucher")
	mock.ExpectQuery(q("FROM vouchers WHERE id = ?")).
		WillReturnRows(voucherRow(9, "TB2024-A1B2", model.VoucherKindValue, 5000, 0, "2025-12-31", model.VoucherActive))

	v, err := svc.Restore(context.Background(), adminSession(), 9)
	require.NoError(t, err)
	assert.Equal(t, model.VoucherActive, v.Status)
}

func TestVoucherListShowsDerivedExpiry(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewVoucherService(d)

	mock.ExpectQuery(q("FROM vouchers")).
		WillReturnRows(voucherRow(9, "TB2024-A1B2", model.VoucherKindValue, 5000, 0, "2025-02-28", model.VoucherActive))
	vs, err := svc.List(context.Background(), staffSession(), "")
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, model.VoucherActive, vs[0].Status)
	assert.Equal(t, model.VoucherExpired, vs[0].EffectiveStatus)
}
