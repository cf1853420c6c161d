package server

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Divyamm05/chatbot/internal/api/generated"
	"github.com/Divyamm05/chatbot/internal/api/middleware"
	"github.com/Divyamm05/chatbot/internal/api/openapi"
)

const (
	testKeyID  = "test-key-server"
	testIssuer = "https://idp.test/realms/chatbot"
)

// stubAPI — ServerInterface, отвечающий 200 на все операции.
type stubAPI struct{}

func (stubAPI) ok(w http.ResponseWriter) { w.WriteHeader(http.StatusOK) }

func (s stubAPI) HealthLive(w http.ResponseWriter, _ *http.Request)  { s.ok(w) }
func (s stubAPI) HealthReady(w http.ResponseWriter, _ *http.Request) { s.ok(w) }
func (s stubAPI) GetMetrics(w http.ResponseWriter, _ *http.Request)  { s.ok(w) }
func (s stubAPI) ListTables(w http.ResponseWriter, _ *http.Request)  { s.ok(w) }
func (s stubAPI) Lookup(w http.ResponseWriter, _ *http.Request)      { s.ok(w) }

func (s stubAPI) GetTableRows(w http.ResponseWriter, _ *http.Request, _ generated.TableName, _ generated.GetTableRowsParams) {
	s.ok(w)
}

func (s stubAPI) GetDistribution(w http.ResponseWriter, _ *http.Request, _ generated.TableName, _ generated.ColumnName, _ generated.GetDistributionParams) {
	s.ok(w)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestAuth создаёт JWTAuth со статическим JWKS из ключа key.
func newTestAuth(t *testing.T, key *rsa.PrivateKey) *middleware.JWTAuth {
	t.Helper()
	jwks, _ := json.Marshal(map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"kid": testKeyID,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
		}},
	})
	kf, err := keyfunc.NewJWKSetJSON(jwks)
	if err != nil {
		t.Fatalf("keyfunc: %v", err)
	}
	return middleware.NewJWTAuthWithKeyfunc(kf, testIssuer, nil, time.Second, testLogger())
}

// bearer подписывает токен с заданными realm-ролями.
func bearer(t *testing.T, key *rsa.PrivateKey, roles ...string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub":          "user-1",
		"iss":          testIssuer,
		"exp":          jwt.NewNumericDate(time.Now().Add(time.Hour)),
		"realm_access": map[string]any{"roles": roles},
	})
	token.Header["kid"] = testKeyID
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return "Bearer " + signed
}

func TestRouter_Auth(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	router := NewRouter(testLogger(), stubAPI{}, Options{JWTAuth: newTestAuth(t, key)})

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"liveness без токена", http.MethodGet, "/health/live", "", http.StatusOK},
		{"readiness без токена", http.MethodGet, "/health/ready", "", http.StatusOK},
		{"метрики без токена", http.MethodGet, "/metrics", "", http.StatusOK},
		{"API без токена", http.MethodGet, "/api/v1/tables", "", http.StatusUnauthorized},
		{"API с ролью reader", http.MethodGet, "/api/v1/tables", bearer(t, key, "reader"), http.StatusOK},
		{"API без роли", http.MethodPost, "/api/v1/lookup", bearer(t, key, "offline_access"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, ожидался %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestRouter_Validation(t *testing.T) {
	doc, err := openapi.Load()
	if err != nil {
		t.Fatalf("openapi.Load: %v", err)
	}
	validator, err := middleware.OpenAPIValidator(doc)
	if err != nil {
		t.Fatalf("OpenAPIValidator: %v", err)
	}
	router := NewRouter(testLogger(), stubAPI{}, Options{Validator: validator})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lookup", strings.NewReader(`{"table":"teams"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, ожидался 400", rec.Code)
	}
	if rec.Header().Get(middleware.HeaderRequestID) == "" {
		t.Error("X-Request-ID не установлен")
	}
}

func TestRouter_NotFound(t *testing.T) {
	router := NewRouter(testLogger(), stubAPI{}, Options{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v2/anything", nil))
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "NOT_FOUND") {
		t.Errorf("status = %d, тело = %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/tables", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, ожидался 405", rec.Code)
	}
}

func TestWithExclusions(t *testing.T) {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
	}
	h := withExclusions(deny, "/health/")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for path, want := range map[string]int{
		"/health/live":   http.StatusOK,
		"/api/v1/tables": http.StatusTeapot,
		"/healthz":       http.StatusTeapot,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Errorf("%s: status = %d, ожидался %d", path, rec.Code, want)
		}
	}
}
