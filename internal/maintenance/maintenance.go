// Package maintenance periodically rebuilds pilot and aircraft statistics
// from accepted reports.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zulandar/hangar/internal/aircraft"
	"github.com/zulandar/hangar/internal/config"
	"github.com/zulandar/hangar/internal/pilot"
	"github.com/zulandar/hangar/internal/pirep"
)

// Off disables the scheduler.
const Off = "off"

// Result summarises one maintenance run.
type Result struct {
	Pilots   pilot.BatchResult
	Aircraft aircraft.BatchResult
}

// Scheduler runs the recalculation job on a cron schedule.
type Scheduler struct {
	svc      *pirep.Service
	schedule cron.Schedule // nil when disabled
	log      *slog.Logger
	now      func() time.Time
}

// New parses expr with config.CronParser. "off" or "" yields a scheduler
// whose Run only waits for cancellation.
func New(svc *pirep.Service, expr string, log *slog.Logger) (*Scheduler, error) {
	if svc == nil {
		return nil, fmt.Errorf("maintenance: service is required")
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Scheduler{svc: svc, log: log, now: time.Now}
	if expr == "" || expr == Off {
		return s, nil
	}
	sched, err := config.CronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("maintenance: schedule %q: %w", expr, err)
	}
	s.schedule = sched
	return s, nil
}

// Enabled reports whether a schedule is configured.
func (s *Scheduler) Enabled() bool { return s.schedule != nil }

// Next returns the duration until the next run, or 0 when disabled.
func (s *Scheduler) Next() time.Duration {
	if s.schedule == nil {
		return 0
	}
	now := s.now()
	d := s.schedule.Next(now).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// RunOnce recalculates the fleet and then every pilot using the service's
// current rank policy.
func (s *Scheduler) RunOnce(ctx context.Context) (Result, error) {
	db := s.svc.DB().WithContext(ctx)
	var res Result

	fleet, err := aircraft.RecalculateAll(db, s.log)
	if err != nil {
		return res, err
	}
	res.Aircraft = fleet

	pilots, err := pilot.RecalculateAll(db, s.svc.RankPolicy(), s.log)
	if err != nil {
		return res, err
	}
	res.Pilots = pilots
	return res, nil
}

// Run blocks until ctx is cancelled, firing RunOnce at each scheduled time.
// A failed run is logged and the schedule continues.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.schedule == nil {
		s.log.Info("maintenance disabled")
		<-ctx.Done()
		return nil
	}

	timer := time.NewTimer(s.Next())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			start := time.Now()
			res, err := s.RunOnce(ctx)
			if err != nil {
				s.log.Error("maintenance run failed", "err", err)
			} else {
				s.log.Info("maintenance run finished",
					"aircraft", res.Aircraft.Updated,
					"pilots", res.Pilots.Updated,
					"failed", res.Aircraft.Failed+res.Pilots.Failed,
					"elapsed", time.Since(start))
			}
			timer.Reset(s.Next())
		}
	}
}
