package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health/live", "/health/live"},
		{"/health/ready", "/health/ready"},
		{"/metrics", "/metrics"},
		{"/api/v1/tables", "/api/v1/tables"},
		{"/api/v1/lookup", "/api/v1/lookup"},
		{"/api/v1/tables/teams/rows", "/api/v1/tables/{table}/rows"},
		{"/api/v1/tables/user_details/columns/username/distribution", "/api/v1/tables/{table}/columns/{column}/distribution"},
		{"/api/v1/tables/teams", "other"},
		{"/api/v1/tables/teams/columns/city", "other"},
		{"/favicon.ico", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, ожидалось %q", tt.path, got, tt.want)
			}
		})
	}
}

// TestMetricsMiddleware_PassesThrough проверяет, что статус ответа не меняется.
func TestMetricsMiddleware_PassesThrough(t *testing.T) {
	handler := MetricsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tables/teams/rows", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, ожидался %d", rec.Code, http.StatusTeapot)
	}
}
