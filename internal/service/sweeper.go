package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theater-reservation/internal/config"
	"github.com/iliyamo/theater-reservation/internal/repository"
)

// Sweeper runs housekeeping on a schedule: it expires waitlist entries for
// past dates and purges expired refresh tokens.
type Sweeper struct {
	sched    gocron.Scheduler
	waitlist *WaitlistService
	tokens   *repository.TokenRepo
	log      *logrus.Logger
	now      func() time.Time

	mu       sync.Mutex
	job      gocron.Job
	interval time.Duration
}

// NewSweeper schedules the sweep every interval. Runs never overlap; a run
// that is still busy makes the next one wait for the following slot.
func NewSweeper(waitlist *WaitlistService, tokens *repository.TokenRepo, interval time.Duration,
	loc *time.Location, log *logrus.Logger) (*Sweeper, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}
	sw := &Sweeper{sched: sched, waitlist: waitlist, tokens: tokens, log: log, now: time.Now, interval: interval}
	sw.job, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(sw.Run),
		append(sw.jobOptions(), gocron.WithStartAt(gocron.WithStartImmediately()))...,
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}
	return sw, nil
}

func (s *Sweeper) jobOptions() []gocron.JobOption {
	return []gocron.JobOption{
		gocron.WithName("sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
}

// Interval is the current time between sweeps.
func (s *Sweeper) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Reschedule replaces the sweep interval in place; the job keeps its id.
func (s *Sweeper) Reschedule(interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if interval == s.interval {
		return nil
	}
	job, err := s.sched.Update(s.job.ID(), gocron.DurationJob(interval), gocron.NewTask(s.Run), s.jobOptions()...)
	if err != nil {
		return err
	}
	s.job, s.interval = job, interval
	return nil
}

// ApplyRules follows changes to the booking facet. Only the interval needs
// the scheduler; the venue timezone is read from the store on every run.
func (s *Sweeper) ApplyRules(r config.BookingRules) {
	if err := s.Reschedule(r.WaitlistSweepInterval); err != nil {
		s.log.WithError(err).Error("reschedule sweep")
		return
	}
	s.log.WithField("interval", r.WaitlistSweepInterval.String()).Debug("sweep interval applied")
}

func (s *Sweeper) Start() { s.sched.Start() }

func (s *Sweeper) Shutdown() error { return s.sched.Shutdown() }

// Run performs one sweep.
func (s *Sweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if n, err := s.waitlist.ExpirePast(ctx); err != nil {
		s.log.WithError(err).Error("waitlist sweep failed")
	} else if n > 0 {
		s.log.WithField("expired", n).Info("waitlist entries expired")
	}

	if s.tokens == nil {
		return
	}
	if n, err := s.tokens.PurgeExpired(ctx, s.now()); err != nil {
		s.log.WithError(err).Error("refresh token purge failed")
	} else if n > 0 {
		s.log.WithField("purged", n).Debug("expired refresh tokens removed")
	}
}
