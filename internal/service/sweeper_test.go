package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-reservation/internal/config"
	"github.com/iliyamo/theater-reservation/internal/repository"
)

func TestSweeperRun(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	sw, err := NewSweeper(NewWaitlistService(d), repository.NewTokenRepo(d.DB), time.Hour, time.UTC, d.Log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sw.Shutdown() })
	sw.now = func() time.Time { return fixedNow }

	mock.ExpectExec(q("SET status = 'expired'")).WithArgs(sqlmock.AnyArg(), "2025-03-01").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("DELETE FROM refresh_tokens WHERE expires_at < ?")).WithArgs(fixedNow).WillReturnResult(sqlmock.NewResult(0, 5))

	sw.Run()
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRulesUpdateReschedulesSweep(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	sw, err := NewSweeper(NewWaitlistService(d), nil, time.Hour, time.UTC, d.Log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sw.Shutdown() })
	jobID := sw.job.ID()

	svc := NewSettingsService(d)
	svc.OnBookingRulesChange(sw.ApplyRules)

	mock.ExpectExec(q("INSERT INTO settings")).WithArgs(config.SettingsGroupBooking, sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(1, 1))
	r := d.Rules.Get()
	r.WaitlistSweepInterval = 15 * time.Minute
	_, err = svc.UpdateBookingRules(context.Background(), adminSession(), r)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 15*time.Minute, sw.Interval())
	assert.Equal(t, jobID, sw.job.ID())
	require.Len(t, sw.sched.Jobs(), 1)
}

func TestRescheduleSameIntervalIsNoop(t *testing.T) {
	d, _, _ := newTestDeps(t)
	sw, err := NewSweeper(NewWaitlistService(d), nil, time.Hour, time.UTC, d.Log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sw.Shutdown() })

	before := sw.job.ID()
	require.NoError(t, sw.Reschedule(time.Hour))
	assert.Equal(t, before, sw.job.ID())
	assert.Equal(t, time.Hour, sw.Interval())
}
