// Package telemetry provides OpenTelemetry initialization for the cadence
// poller: OTLP/HTTP export of traces, logs and metrics.
//
// Endpoint strings are normalized so that both bare collector hosts and
// vendor endpoints with base paths (Grafana Cloud, Better Stack) work
// unchanged from OTEL_EXPORTER_OTLP_ENDPOINT.
package telemetry
