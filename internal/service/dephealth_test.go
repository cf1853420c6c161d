package service

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewDephealthService_NoDependencies проверяет отказ без зависимостей.
func TestNewDephealthService_NoDependencies(t *testing.T) {
	_, err := NewDephealthServiceWithRegisterer("lookup-service", "chatbot",
		Dependencies{}, 15*time.Second, testLogger(), prometheus.NewRegistry())
	if !errors.Is(err, ErrNoDependencies) {
		t.Fatalf("ожидалась ErrNoDependencies, получено: %v", err)
	}
}

// TestNewDephealthService_JWKS проверяет создание сервиса с HTTP-зависимостью.
func TestNewDephealthService_JWKS(t *testing.T) {
	ds, err := NewDephealthServiceWithRegisterer("lookup-service", "chatbot",
		Dependencies{JWKSURL: "http://127.0.0.1:8080/realms/chatbot/protocol/openid-connect/certs"},
		15*time.Second, testLogger(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewDephealthService ошибка: %v", err)
	}
	if ds == nil {
		t.Fatal("ожидался непустой сервис")
	}
}
