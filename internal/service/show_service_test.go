package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowCreateUsesDefaultCapacity(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewShowService(d)

	mock.ExpectExec(q("INSERT INTO show_events")).
		WithArgs("2025-04-05", "Voorjaarsgala", "dinner_show", 120, nil, false, 0).
		WillReturnResult(sqlmock.NewResult(6, 1))
	mock.ExpectQuery(q("FROM show_events WHERE id = ?")).WithArgs(6).WillReturnRows(showRow(6, "2025-04-05", 120, nil, false))
	expectAudit(mock, "create", "show")

	v, err := svc.Create(context.Background(), adminSession(), ShowInput{Date: "2025-04-05", Name: "Voorjaarsgala", ShowType: "Dinner_Show"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 120, v.EffectiveCapacity)
	assert.Equal(t, 120, v.Available)
}

func TestShowCreateRejections(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewShowService(d)

	_, err := svc.Create(context.Background(), adminSession(), ShowInput{Date: "2025-04-05", ShowType: "opera"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	mock.ExpectExec(q("INSERT INTO show_events")).WillReturnError(&mysql.MySQLError{Number: 1062})
	_, err = svc.Create(context.Background(), adminSession(), ShowInput{Date: "2025-04-05", ShowType: "matinee"})
	assert.Equal(t, "show_date_taken", rejection(t, err).Code)
}

func TestShowUpdateRecomputesAvailability(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewShowService(d)

	manual := 45
	mock.ExpectQuery(q("FROM show_events WHERE id = ?")).WillReturnRows(showRow(5, "2025-03-14", 50, nil, false))
	mock.ExpectExec(q("UPDATE show_events")).WithArgs("Diner & Show", "dinner_show", 50, 45, 0, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAudit(mock, "update", "show")
	mock.ExpectQuery(q(rangeLoadSQL)).WillReturnRows(rangeRows("2025-03-14", "confirmed", 40))

	v, err := svc.Update(context.Background(), adminSession(), 5, ShowUpdate{ManualCapacity: &manual})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 45, v.EffectiveCapacity)
	assert.Equal(t, 40, v.Booked)
	assert.Equal(t, 5, v.Available)
}

func TestShowDeleteMissing(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewShowService(d)

	mock.ExpectExec(q("UPDATE show_events SET deleted_at = ?")).WillReturnResult(sqlmock.NewResult(0, 0))
	err := svc.Delete(context.Background(), adminSession(), 99)
	assert.Equal(t, "show_not_found", rejection(t, err).Code)
}
