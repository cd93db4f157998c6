package metrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("cadence/poller")

	// Poll tick metrics
	PollRunsTotal     metric.Int64Counter
	PollFailuresTotal metric.Int64Counter
	PollDuration      metric.Float64Histogram

	// Trigger outcome metrics
	SchedulesExecutedTotal metric.Int64Counter
	OutlookWebhooksTotal   metric.Int64Counter
)

func Init() error {
	var err error

	PollRunsTotal, err = meter.Int64Counter(
		"poll.runs.total",
		metric.WithDescription("Total number of poll task runs"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	PollFailuresTotal, err = meter.Int64Counter(
		"poll.failures.total",
		metric.WithDescription("Total number of failed poll task runs"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	PollDuration, err = meter.Float64Histogram(
		"poll.duration",
		metric.WithDescription("Duration of a single poll trigger round trip"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30),
	)
	if err != nil {
		return err
	}

	SchedulesExecutedTotal, err = meter.Int64Counter(
		"schedules.executed.total",
		metric.WithDescription("Schedules executed by the app in response to poll triggers"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	OutlookWebhooksTotal, err = meter.Int64Counter(
		"outlook.webhooks.processed.total",
		metric.WithDescription("Outlook webhook notifications processed in response to poll triggers"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	return nil
}
