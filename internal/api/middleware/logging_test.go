package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// TestRequestID_Generated проверяет генерацию UUID при отсутствии заголовка.
func TestRequestID_Generated(t *testing.T) {
	var inCtx string
	handler := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		inCtx = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tables", nil))

	got := rec.Header().Get(HeaderRequestID)
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("X-Request-ID = %q, ожидался UUID: %v", got, err)
	}
	if inCtx != got {
		t.Errorf("request_id в контексте = %q, в заголовке = %q", inCtx, got)
	}
}

// TestRequestID_Preserved проверяет сохранение входящего идентификатора.
func TestRequestID_Preserved(t *testing.T) {
	handler := RequestID()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "trace-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(HeaderRequestID); got != "trace-42" {
		t.Errorf("X-Request-ID = %q, ожидался trace-42", got)
	}

	// Слишком длинный идентификатор заменяется
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, strings.Repeat("x", maxRequestIDLen+1))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(HeaderRequestID); len(got) > maxRequestIDLen {
		t.Errorf("длинный X-Request-ID не заменён: %d символов", len(got))
	}
}

// TestRequestLogger_Level проверяет уровень записи по статус-коду.
func TestRequestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := RequestID()(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("oops"))
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/lookup", nil))

	out := buf.String()
	for _, want := range []string{"level=ERROR", "status=502", "bytes=4", "request_id="} {
		if !strings.Contains(out, want) {
			t.Errorf("лог %q не содержит %q", out, want)
		}
	}
}
