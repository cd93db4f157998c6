package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/mailbridge/cadence/internal/errors"
	"github.com/mailbridge/cadence/internal/httpclient"
	"github.com/mailbridge/cadence/internal/metrics"
	"github.com/mailbridge/cadence/internal/sentry"
	"github.com/mailbridge/cadence/internal/telemetry"
	"github.com/mailbridge/cadence/internal/trigger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	scheduleExecutePath = "/api/schedules/execute"
	outlookPollPath     = "/api/webhooks/poll/outlook"

	defaultBaseURL = "http://localhost:3000"
)

// Runner is a unit of deferred work fired by the scheduler's timers.
type Runner interface {
	Run(ctx context.Context)
}

// interpretFunc extracts a work count and log fields from a trigger payload.
// The count decides log verbosity: zero means a no-op tick.
type interpretFunc func(ctx context.Context, payload map[string]any) (count int, msg string, args []any)

// Task wraps one trigger endpoint with error isolation: Run never propagates
// a failure to the scheduler, whatever happens inside.
type Task struct {
	name      string
	client    *trigger.Client
	log       *slog.Logger
	configFn  func() trigger.Config
	interpret interpretFunc

	runs     atomic.Int64
	failures atomic.Int64
	lastRun  atomic.Int64
}

// TaskStats is a point-in-time snapshot of a task's counters.
type TaskStats struct {
	Name     string    `json:"name"`
	Runs     int64     `json:"runs"`
	Failures int64     `json:"failures"`
	LastRun  time.Time `json:"last_run"`
}

// NewScheduleTask creates the task that triggers execution of due schedules.
func NewScheduleTask(client *trigger.Client, log *slog.Logger) *Task {
	return &Task{
		name:      "schedule",
		client:    client,
		log:       log,
		configFn:  func() trigger.Config { return envTriggerConfig(scheduleExecutePath) },
		interpret: interpretSchedule,
	}
}

// NewOutlookTask creates the task that drains pending Outlook webhook
// notifications.
func NewOutlookTask(client *trigger.Client, log *slog.Logger) *Task {
	return &Task{
		name:      "outlook",
		client:    client,
		log:       log,
		configFn:  func() trigger.Config { return envTriggerConfig(outlookPollPath) },
		interpret: interpretOutlook,
	}
}

// envTriggerConfig rebuilds the trigger config from the process environment.
// Re-read on every tick so base URL and secret rotation take effect without
// a restart.
func envTriggerConfig(path string) trigger.Config {
	baseURL := os.Getenv("APP_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return trigger.Config{
		BaseURL:   baseURL,
		AuthToken: os.Getenv("CRON_SECRET"),
		Path:      path,
	}
}

func (t *Task) Name() string {
	return t.name
}

// Stats returns the task's counters.
func (t *Task) Stats() TaskStats {
	stats := TaskStats{
		Name:     t.name,
		Runs:     t.runs.Load(),
		Failures: t.failures.Load(),
	}
	if ns := t.lastRun.Load(); ns != 0 {
		stats.LastRun = time.Unix(0, ns)
	}
	return stats
}

// Run executes one poll tick. All failures, including panics, stop at this
// boundary so a bad tick can never kill the scheduler's timers.
func (t *Task) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			t.failures.Add(1)
			sentry.CaptureException(fmt.Errorf("poll task %s panicked: %v", t.name, r))
			t.log.Error("poll task panicked", "task", t.name, "panic", r)
		}
	}()

	runID := uuid.New().String()
	log := t.log.With("task", t.name, "run_id", runID)

	ctx, span := telemetry.Tracer("poller").Start(ctx, "poll:"+t.name,
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("poll.task", t.name),
		attribute.String("poll.run_id", runID),
	)

	t.runs.Add(1)
	t.lastRun.Store(time.Now().UnixNano())

	cfg := t.configFn()
	if cfg.AuthToken == "" {
		log.Warn("skipping poll, CRON_SECRET not set")
		return
	}

	taskAttr := metric.WithAttributes(attribute.String("task", t.name))
	metrics.PollRunsTotal.Add(ctx, 1, taskAttr)

	ctx = httpclient.WithTask(ctx, t.name)
	start := time.Now()
	payload, err := t.client.Invoke(ctx, cfg)
	metrics.PollDuration.Record(ctx, time.Since(start).Seconds(), taskAttr)

	if err != nil {
		t.failures.Add(1)
		metrics.PollFailuresTotal.Add(ctx, 1, taskAttr)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		args := []any{"error", err, "error_type", apperrors.TypeOf(err)}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			args = append(args, "transient", appErr.IsTransient())
		}
		log.Error("poll trigger failed", args...)
		return
	}

	count, msg, args := t.interpret(ctx, payload)
	span.SetAttributes(attribute.Int("poll.count", count))
	if count > 0 {
		log.Info(msg, args...)
	} else {
		log.Debug(msg, args...)
	}
}

func interpretSchedule(ctx context.Context, payload map[string]any) (int, string, []any) {
	executed := intField(payload, "executedCount")
	if executed > 0 {
		metrics.SchedulesExecutedTotal.Add(ctx, int64(executed))
	}
	return executed, "executed due schedules", []any{"executed", executed}
}

func interpretOutlook(ctx context.Context, payload map[string]any) (int, string, []any) {
	total := intField(payload, "total")
	successful := intField(payload, "successful")
	if total > 0 {
		metrics.OutlookWebhooksTotal.Add(ctx, int64(total))
	}
	return total, "processed outlook webhook notifications", []any{"total", total, "successful", successful}
}

// intField reads a numeric payload field. encoding/json decodes JSON numbers
// in a map as float64.
func intField(payload map[string]any, key string) int {
	if v, ok := payload[key].(float64); ok {
		return int(v)
	}
	return 0
}
