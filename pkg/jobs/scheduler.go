package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// DailyEntry fires a job type once per day at Hour:00 in the scheduler location.
type DailyEntry struct {
	JobType string
	Hour    int
	Payload interface{}
}

// Scheduler enqueues DailyEntry jobs onto a Queue when they come due.
type Scheduler struct {
	queue    *Queue
	clock    clockwork.Clock
	location *time.Location
	logger   *zap.Logger
	entries  []DailyEntry

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler constructs a scheduler. A nil clock uses the real clock and a nil location uses UTC.
func NewScheduler(queue *Queue, clock clockwork.Clock, location *time.Location, logger *zap.Logger, entries ...DailyEntry) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{queue: queue, clock: clock, location: location, logger: logger, entries: entries}
}

// NextRun returns the first instant strictly after now that falls on hour:00 in loc.
func NextRun(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start launches one timer loop per entry.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for _, entry := range s.entries {
		s.wg.Add(1)
		go s.loop(ctx, entry)
	}
}

// Stop halts all timer loops.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, entry DailyEntry) {
	defer s.wg.Done()
	for {
		now := s.clock.Now()
		next := NextRun(now, entry.Hour, s.location)
		s.logger.Sugar().Debugw("scheduled job", "type", entry.JobType, "next_run", next)
		timer := s.clock.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}
		if err := s.queue.Enqueue(Job{Type: entry.JobType, Payload: entry.Payload}); err != nil {
			s.logger.Sugar().Errorw("failed to enqueue scheduled job", "type", entry.JobType, "error", err)
		}
	}
}
