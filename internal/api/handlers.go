package api

import (
	"encoding/json"
	"net/http"

	"github.com/mailbridge/cadence/internal/config"
	"github.com/mailbridge/cadence/internal/poller"
)

// Server exposes the poller's operational endpoints.
type Server struct {
	cfg       *config.Config
	scheduler *poller.Scheduler
	tasks     []*poller.Task
}

func NewServer(cfg *config.Config, scheduler *poller.Scheduler, tasks []*poller.Task) *Server {
	return &Server{
		cfg:       cfg,
		scheduler: scheduler,
		tasks:     tasks,
	}
}

type StatusResponse struct {
	Service string             `json:"service"`
	Version string             `json:"version"`
	Env     string             `json:"env"`
	Running bool               `json:"running"`
	Tasks   []poller.TaskStats `json:"tasks"`
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HandleStatus reports the scheduler state and per-task counters.
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Service: s.cfg.ServiceName,
		Version: s.cfg.ServiceVersion,
		Env:     s.cfg.Env,
		Running: s.scheduler.Running(),
		Tasks:   make([]poller.TaskStats, 0, len(s.tasks)),
	}
	for _, task := range s.tasks {
		resp.Tasks = append(resp.Tasks, task.Stats())
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode status", http.StatusInternalServerError)
	}
}
