// Точка входа Lookup Service — поиск строк в таблицах SQL-хранилища.
// Загружает конфигурацию, подключается к SQLite или PostgreSQL, применяет
// миграции, создаёт сервисный слой и API handlers, запускает topologymetrics
// и HTTP-сервер с опциональным JWT middleware и graceful shutdown.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/Divyamm05/chatbot/internal/api/handlers"
	"github.com/Divyamm05/chatbot/internal/api/middleware"
	"github.com/Divyamm05/chatbot/internal/api/openapi"
	"github.com/Divyamm05/chatbot/internal/config"
	"github.com/Divyamm05/chatbot/internal/database"
	"github.com/Divyamm05/chatbot/internal/repository"
	"github.com/Divyamm05/chatbot/internal/server"
	"github.com/Divyamm05/chatbot/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Lookup Service запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("db_driver", cfg.DBDriver),
	)

	// 3. Применение миграций (опционально)
	if cfg.DBMigrate {
		logger.Info("Применение миграций БД...")
		if err := database.Migrate(cfg, logger); err != nil {
			logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// 4. Подключение к хранилищу
	ctx := context.Background()
	store, pgDB, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к хранилищу", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	// 5. Services
	lookupSvc := service.NewLookupService(store, logger)
	catalogSvc := service.NewCatalogService(store, logger)
	chartSvc := service.NewChartService(store,
		service.NewChartCache(cfg.ChartCacheSize, cfg.ChartCacheTTL),
		logger,
	)

	// 6. API handler (реализует generated.ServerInterface)
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(store))
	apiHandler := handlers.NewAPIHandler(healthHandler, lookupSvc, catalogSvc, chartSvc, logger)

	// 7. Валидация запросов по встроенному OpenAPI контракту
	doc, err := openapi.Load()
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI контракта", slog.String("error", err.Error()))
		os.Exit(1)
	}
	validator, err := middleware.OpenAPIValidator(doc)
	if err != nil {
		logger.Error("Ошибка создания OpenAPI валидатора", slog.String("error", err.Error()))
		os.Exit(1)
	}

	opts := server.Options{Validator: validator}

	// 8. JWT middleware (опционально, LS_AUTH_ENABLED=true)
	jwksURL := ""
	if cfg.AuthEnabled {
		jwtAuth, err := middleware.NewJWTAuth(
			cfg.JWTJWKSURL,
			cfg.JWTIssuer,
			cfg.RoleReaderGroups,
			cfg.JWKSClientTimeout,
			cfg.JWKSRefreshInterval,
			cfg.JWTLeeway,
			logger,
		)
		if err != nil {
			logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
			os.Exit(1)
		}
		opts.JWTAuth = jwtAuth
		jwksURL = cfg.JWTJWKSURL
		logger.Info("JWT middleware инициализирован",
			slog.String("jwks_url", cfg.JWTJWKSURL),
			slog.String("issuer", cfg.JWTIssuer),
		)
	} else {
		logger.Warn("JWT-аутентификация отключена (LS_AUTH_ENABLED=false)")
	}

	// 9. topologymetrics — мониторинг зависимостей (PostgreSQL + JWKS)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"lookup-service",
		cfg.DephealthGroup,
		service.Dependencies{
			PostgresDB:  pgDB,
			PostgresURL: postgresURL(cfg),
			JWKSURL:     jwksURL,
		},
		cfg.DephealthCheckInterval,
		logger,
	)
	switch {
	case errors.Is(dephealthErr, service.ErrNoDependencies):
		logger.Info("topologymetrics: нет внешних зависимостей для мониторинга")
	case dephealthErr != nil:
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	default:
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
			healthHandler.WithDependencies(dephealthSvc)
			defer dephealthSvc.Stop()
		}
	}

	// 10. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, opts)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Lookup Service остановлен")
}

// openStore открывает хранилище по LS_DB_DRIVER.
// Для PostgreSQL дополнительно возвращается *sql.DB поверх пула
// для проверок topologymetrics; для SQLite он nil.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Store, *sql.DB, func(), error) {
	if cfg.DBDriver == config.DriverPostgres {
		pool, err := database.Connect(ctx, cfg, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		pgDB := stdlib.OpenDBFromPool(pool)
		closeFn := func() {
			_ = pgDB.Close()
			pool.Close()
		}
		return repository.NewPostgresStore(pool), pgDB, closeFn, nil
	}

	db, err := database.OpenSQLite(ctx, cfg.DBPath, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return repository.NewSQLiteStore(db), nil, func() { _ = db.Close() }, nil
}

// postgresURL — URL PostgreSQL для меток topologymetrics (пусто для SQLite).
func postgresURL(cfg *config.Config) string {
	if cfg.DBDriver != config.DriverPostgres {
		return ""
	}
	return cfg.DatabaseURL()
}
