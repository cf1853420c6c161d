// Пакет server — HTTP-сервер Lookup Service с graceful shutdown.
// Без TLS — TLS termination на API Gateway.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/Divyamm05/chatbot/internal/api/errors"
	"github.com/Divyamm05/chatbot/internal/api/generated"
	"github.com/Divyamm05/chatbot/internal/api/handlers"
	"github.com/Divyamm05/chatbot/internal/api/middleware"
	"github.com/Divyamm05/chatbot/internal/config"
)

// publicPrefixes — пути без аутентификации (пробы Kubernetes и Prometheus).
var publicPrefixes = []string{"/health/", "/metrics"}

// Options — необязательные middleware сервера.
type Options struct {
	// JWTAuth — JWT middleware (nil — аутентификация выключена).
	JWTAuth *middleware.JWTAuth
	// Validator — валидация запросов по OpenAPI (nil — без валидации).
	Validator func(http.Handler) http.Handler
}

// Server — HTTP-сервер Lookup Service.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// handler — реализация generated.ServerInterface (APIHandler).
func New(cfg *config.Config, logger *slog.Logger, handler generated.ServerInterface, opts Options) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(logger, handler, opts),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает chi-роутер со всеми middleware и маршрутами.
func NewRouter(logger *slog.Logger, handler generated.ServerInterface, opts Options) chi.Router {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.RequestID())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// Аутентификация и авторизация: роль reader или scope lookup:read.
	if opts.JWTAuth != nil {
		router.Use(withExclusions(opts.JWTAuth.Middleware(), publicPrefixes...))
		router.Use(withExclusions(
			middleware.RequireRoleOrScope([]string{middleware.RoleReader}, []string{middleware.ScopeLookupRead}),
			publicPrefixes...,
		))
	}

	if opts.Validator != nil {
		router.Use(opts.Validator)
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierrors.NotFound(w, "Маршрут не найден: "+r.URL.Path)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteError(w, http.StatusMethodNotAllowed, apierrors.CodeValidationError,
			"Метод не поддерживается: "+r.Method)
	})

	generated.HandlerWithOptions(handler, generated.ChiServerOptions{
		BaseRouter:       router,
		ErrorHandlerFunc: handlers.ParamErrorHandler,
	})

	return router
}

// withExclusions оборачивает middleware, пропуская указанные пути.
// Запросы к путям, начинающимся с любого из excludePrefixes, проходят без middleware.
func withExclusions(mw func(http.Handler) http.Handler, excludePrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range excludePrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
