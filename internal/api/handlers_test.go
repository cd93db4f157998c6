package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mailbridge/cadence/internal/config"
	"github.com/mailbridge/cadence/internal/poller"
	"github.com/mailbridge/cadence/internal/trigger"
)

func newTestServer() (*Server, *poller.Scheduler) {
	cfg := &config.Config{
		Env:            "development",
		ServiceName:    "mailbridge-cadence",
		ServiceVersion: "1.0.0",
		Poller: config.PollerConfig{
			Interval:           time.Hour,
			ScheduleStartDelay: time.Hour,
			OutlookStartDelay:  time.Hour,
		},
	}

	log := slog.New(slog.DiscardHandler)
	client := trigger.NewClient()
	schedule := poller.NewScheduleTask(client, log)
	outlook := poller.NewOutlookTask(client, log)
	scheduler := poller.NewScheduler(schedule, outlook, cfg.Poller, log)

	return NewServer(cfg, scheduler, []*poller.Task{schedule, outlook}), scheduler
}

func TestHandleHealth(t *testing.T) {
	server, _ := newTestServer()

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	server.HandleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got %q", rec.Body.String())
	}
}

func TestHandleStatus(t *testing.T) {
	server, scheduler := newTestServer()
	scheduler.Start()
	defer scheduler.Stop()

	req := httptest.NewRequest("GET", "/status", nil)
	rec := httptest.NewRecorder()
	server.HandleStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode status response: %v", err)
	}

	if resp.Service != "mailbridge-cadence" {
		t.Errorf("Expected service 'mailbridge-cadence', got %q", resp.Service)
	}
	if !resp.Running {
		t.Error("Expected running=true after Start")
	}
	if len(resp.Tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(resp.Tasks))
	}
	if resp.Tasks[0].Name != "schedule" || resp.Tasks[1].Name != "outlook" {
		t.Errorf("Unexpected task names: %s, %s", resp.Tasks[0].Name, resp.Tasks[1].Name)
	}
}

func TestHandleStatusStopped(t *testing.T) {
	server, _ := newTestServer()

	req := httptest.NewRequest("GET", "/status", nil)
	rec := httptest.NewRecorder()
	server.HandleStatus(rec, req)

	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode status response: %v", err)
	}
	if resp.Running {
		t.Error("Expected running=false before Start")
	}
}
