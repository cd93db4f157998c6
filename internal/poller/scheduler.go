package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mailbridge/cadence/internal/config"
)

// Scheduler owns the recurring timers for the two poll tasks. Start and Stop
// are idempotent and safe to call from multiple goroutines.
type Scheduler struct {
	schedule Runner
	outlook  Runner
	cfg      config.PollerConfig
	log      *slog.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(schedule, outlook Runner, cfg config.PollerConfig, log *slog.Logger) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		outlook:  outlook,
		cfg:      cfg,
		log:      log,
	}
}

// Start arms the timers. Calling Start on a running scheduler is a no-op, so
// repeated lifecycle hooks never double the polling rate.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("poller already running, ignoring start")
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	go s.loop(s.stop)

	s.log.Info("poller started",
		"interval", s.cfg.Interval,
		"schedule_start_delay", s.cfg.ScheduleStartDelay,
		"outlook_start_delay", s.cfg.OutlookStartDelay,
	)
}

// Stop cancels future timer firings. In-flight task runs are not awaited or
// cancelled; they finish, log their outcome and have no further effect.
// Calling Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.stop)
	s.stop = nil

	s.log.Info("poller stopped")
}

// Running reports whether the timers are armed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// loop fires the tasks until stop closes. Each firing runs in its own
// goroutine. The one-shot timers give each task a prompt first run after
// startup, staggered so the schedule task goes first; they are deliberately
// not coalesced with the recurring tickers, so a task may run at both the
// stagger delay and the first full interval.
func (s *Scheduler) loop(stop <-chan struct{}) {
	scheduleTicker := time.NewTicker(s.cfg.Interval)
	defer scheduleTicker.Stop()
	outlookTicker := time.NewTicker(s.cfg.Interval)
	defer outlookTicker.Stop()

	scheduleOnce := time.NewTimer(s.cfg.ScheduleStartDelay)
	defer scheduleOnce.Stop()
	outlookOnce := time.NewTimer(s.cfg.OutlookStartDelay)
	defer outlookOnce.Stop()

	ctx := context.Background()
	for {
		select {
		case <-scheduleOnce.C:
			go s.schedule.Run(ctx)
		case <-outlookOnce.C:
			go s.outlook.Run(ctx)
		case <-scheduleTicker.C:
			go s.schedule.Run(ctx)
		case <-outlookTicker.C:
			go s.outlook.Run(ctx)
		case <-stop:
			return
		}
	}
}
