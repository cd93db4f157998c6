package trigger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	apperrors "github.com/mailbridge/cadence/internal/errors"
)

func TestInvokeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.URL.Path != "/api/schedules/execute" {
			t.Errorf("Expected path /api/schedules/execute, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-secret" {
			t.Errorf("Expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"executedCount": 3}`))
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.Client())
	payload, err := client.Invoke(context.Background(), Config{
		BaseURL:   server.URL,
		AuthToken: "test-secret",
		Path:      "/api/schedules/execute",
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	count, ok := payload["executedCount"].(float64)
	if !ok || count != 3 {
		t.Errorf("Expected executedCount 3, got %v", payload["executedCount"])
	}
}

func TestInvokeMissingToken(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.Client())
	_, err := client.Invoke(context.Background(), Config{
		BaseURL: server.URL,
		Path:    "/api/schedules/execute",
	})
	if err == nil {
		t.Fatal("Expected error for missing token, got nil")
	}
	if got := apperrors.TypeOf(err); got != apperrors.ErrorTypeConfigMissing {
		t.Errorf("Expected %s, got %s", apperrors.ErrorTypeConfigMissing, got)
	}
	if calls.Load() != 0 {
		t.Errorf("Expected zero HTTP calls with missing token, got %d", calls.Load())
	}
}

func TestInvokeNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.Client())
	_, err := client.Invoke(context.Background(), Config{
		BaseURL:   server.URL,
		AuthToken: "test-secret",
		Path:      "/api/webhooks/poll/outlook",
	})
	if err == nil {
		t.Fatal("Expected error for 500 response, got nil")
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Type != apperrors.ErrorTypeRemote {
		t.Errorf("Expected %s, got %s", apperrors.ErrorTypeRemote, appErr.Type)
	}
	if appErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", appErr.StatusCode)
	}
}

func TestInvokeTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close() // Nothing listening anymore

	client := NewClientWithHTTP(http.DefaultClient)
	_, err := client.Invoke(context.Background(), Config{
		BaseURL:   url,
		AuthToken: "test-secret",
		Path:      "/api/schedules/execute",
	})
	if err == nil {
		t.Fatal("Expected error for unreachable endpoint, got nil")
	}
	if got := apperrors.TypeOf(err); got != apperrors.ErrorTypeTransport {
		t.Errorf("Expected %s, got %s", apperrors.ErrorTypeTransport, got)
	}
}

func TestInvokeMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.Client())
	_, err := client.Invoke(context.Background(), Config{
		BaseURL:   server.URL,
		AuthToken: "test-secret",
		Path:      "/api/schedules/execute",
	})
	if err == nil {
		t.Fatal("Expected error for malformed body, got nil")
	}
	if got := apperrors.TypeOf(err); got != apperrors.ErrorTypeInternal {
		t.Errorf("Expected %s, got %s", apperrors.ErrorTypeInternal, got)
	}
}

func TestConfigURL(t *testing.T) {
	tests := []struct {
		baseURL  string
		path     string
		expected string
	}{
		{"http://localhost:3000", "/api/schedules/execute", "http://localhost:3000/api/schedules/execute"},
		{"http://localhost:3000/", "/api/schedules/execute", "http://localhost:3000/api/schedules/execute"},
		{"https://app.example.com", "/api/webhooks/poll/outlook", "https://app.example.com/api/webhooks/poll/outlook"},
	}

	for _, tt := range tests {
		cfg := Config{BaseURL: tt.baseURL, Path: tt.path}
		if got := cfg.URL(); got != tt.expected {
			t.Errorf("URL() with base %q: expected %q, got %q", tt.baseURL, tt.expected, got)
		}
	}
}
