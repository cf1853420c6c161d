// dephealth.go — интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// Lookup Service мониторит:
//   - PostgreSQL — SQL checker через существующий pgxpool (connection pool mode, critical),
//     только при LS_DB_DRIVER=postgres
//   - JWKS endpoint — HTTP checker, только при включённой аутентификации
//
// Файл SQLite локален и не мониторится.
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // регистрация HTTP checker factory
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrNoDependencies — нечего мониторить (SQLite без аутентификации).
var ErrNoDependencies = errors.New("нет внешних зависимостей для мониторинга")

// Dependencies — внешние зависимости сервиса. Пустые поля пропускаются.
type Dependencies struct {
	// PostgresDB — *sql.DB, полученный из pgxpool через stdlib.OpenDBFromPool()
	PostgresDB *sql.DB
	// PostgresURL — URL PostgreSQL (для лейблов метрик, не для подключения)
	PostgresURL string
	// JWKSURL — URL JWKS endpoint
	JWKSURL string
}

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
// Метрики регистрируются в глобальном Prometheus registry.
// Возвращает ErrNoDependencies, если мониторить нечего.
func NewDephealthService(
	serviceID string,
	group string,
	deps Dependencies,
	checkInterval time.Duration,
	logger *slog.Logger,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, deps, checkInterval, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(
	serviceID string,
	group string,
	deps Dependencies,
	checkInterval time.Duration,
	logger *slog.Logger,
	registerer prometheus.Registerer,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, deps, checkInterval, logger,
		dephealth.WithRegisterer(registerer))
}

func newDephealthService(
	serviceID string,
	group string,
	deps Dependencies,
	checkInterval time.Duration,
	logger *slog.Logger,
	extraOpts ...dephealth.Option,
) (*DephealthService, error) {
	opts := []dephealth.Option{dephealth.WithLogger(logger)}
	monitored := 0

	if deps.PostgresDB != nil {
		// Проверка идёт через *sql.DB (адаптер pgxpool) и отражает
		// реальное состояние пула соединений.
		opts = append(opts, dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(deps.PostgresDB)),
			dephealth.FromURL(deps.PostgresURL),
			dephealth.CheckInterval(checkInterval),
			dephealth.Critical(true),
		))
		monitored++
	}

	if deps.JWKSURL != "" {
		healthPath := "/"
		if parsed, err := url.Parse(deps.JWKSURL); err == nil && parsed.Path != "" {
			healthPath = parsed.Path
		}
		opts = append(opts, dephealth.HTTP("jwks",
			dephealth.FromURL(deps.JWKSURL),
			dephealth.WithHTTPHealthPath(healthPath),
			dephealth.CheckInterval(checkInterval),
			dephealth.Critical(false),
		))
		monitored++
	}

	if monitored == 0 {
		return nil, ErrNoDependencies
	}
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(serviceID, group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен")
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ — имя зависимости, значение — true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}
