package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBearerAuth(t *testing.T) {
	secret := "test-secret"

	tests := []struct {
		name           string
		secret         string
		authHeader     string
		expectedStatus int
	}{
		{
			name:           "Missing Authorization header",
			secret:         secret,
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Authorization header format",
			secret:         secret,
			authHeader:     "Bearer",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong token",
			secret:         secret,
			authHeader:     "Bearer wrong-secret",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong scheme",
			secret:         secret,
			authHeader:     "Basic " + secret,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Valid token",
			secret:         secret,
			authHeader:     "Bearer " + secret,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Empty secret passes through",
			secret:         "",
			authHeader:     "",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := BearerAuth(tt.secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/status", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}
