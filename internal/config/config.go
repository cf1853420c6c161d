// Пакет config — загрузка и валидация конфигурации Lookup Service
// из переменных окружения (и необязательного .env файла).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Драйверы хранилища.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config содержит все параметры конфигурации Lookup Service.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// --- Хранилище ---

	// Драйвер хранилища: sqlite или postgres
	DBDriver string
	// Путь к файлу SQLite (для sqlite)
	DBPath string
	// Параметры PostgreSQL (для postgres)
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	// Применять встроенные миграции при старте
	DBMigrate bool

	// --- Кэш распределений ---

	// Максимальное количество распределений в LRU-кэше
	ChartCacheSize int
	// Время жизни распределения в кэше
	ChartCacheTTL time.Duration

	// --- JWT ---

	// Включить JWT-аутентификацию для /api/v1
	AuthEnabled bool
	// URL JWKS endpoint
	JWTJWKSURL string
	// Ожидаемый issuer (пусто — не проверяется)
	JWTIssuer string
	// Допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration
	// Интервал обновления JWKS-ключей
	JWKSRefreshInterval time.Duration
	// Таймаут HTTP-клиента JWKS
	JWKSClientTimeout time.Duration
	// Группы IdP, дающие роль reader
	RoleReaderGroups []string

	// --- topologymetrics ---

	DephealthGroup         string
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Перед чтением переменных подгружается .env файл (LS_ENV_FILE),
// уже заданные переменные окружения им не перезаписываются.
//
//nolint:cyclop,funlen // линейный разбор переменных
func Load() (*Config, error) {
	if err := loadEnvFile(getEnvDefault("LS_ENV_FILE", ".env")); err != nil {
		return nil, fmt.Errorf("LS_ENV_FILE: %w", err)
	}

	cfg := &Config{}
	var err error

	// --- Сервер ---

	// LS_PORT — порт HTTP-сервера (по умолчанию 8040)
	cfg.Port, err = getEnvInt("LS_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("LS_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("LS_PORT: значение %d вне диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("LS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LS_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("LS_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LS_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("LS_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LS_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("LS_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LS_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("LS_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LS_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- Хранилище ---

	if err := loadStore(cfg); err != nil {
		return nil, err
	}

	// --- Кэш распределений ---

	cfg.ChartCacheSize, err = getEnvInt("LS_CHART_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("LS_CHART_CACHE_SIZE: %w", err)
	}
	if cfg.ChartCacheSize < 1 {
		return nil, fmt.Errorf("LS_CHART_CACHE_SIZE: значение должно быть > 0")
	}
	cfg.ChartCacheTTL, err = getEnvDurationPositive("LS_CHART_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LS_CHART_CACHE_TTL: %w", err)
	}

	// --- JWT ---

	if err := loadAuth(cfg); err != nil {
		return nil, err
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("LS_DEPHEALTH_GROUP", "chatbot")
	cfg.DephealthCheckInterval, err = getEnvDurationPositive("LS_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LS_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("LS_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LS_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// loadStore заполняет параметры хранилища.
// Для postgres host, name, user и password обязательны.
func loadStore(cfg *Config) error {
	var err error

	cfg.DBDriver = strings.ToLower(getEnvDefault("LS_DB_DRIVER", DriverSQLite))
	switch cfg.DBDriver {
	case DriverSQLite:
		cfg.DBPath = getEnvDefault("LS_DB_PATH", "lookup.db")
	case DriverPostgres:
		if cfg.DBHost, err = getEnvRequired("LS_DB_HOST"); err != nil {
			return err
		}
		if cfg.DBPort, err = getEnvInt("LS_DB_PORT", 5432); err != nil {
			return fmt.Errorf("LS_DB_PORT: %w", err)
		}
		if cfg.DBName, err = getEnvRequired("LS_DB_NAME"); err != nil {
			return err
		}
		if cfg.DBUser, err = getEnvRequired("LS_DB_USER"); err != nil {
			return err
		}
		if cfg.DBPassword, err = getEnvRequired("LS_DB_PASSWORD"); err != nil {
			return err
		}
		cfg.DBSSLMode = getEnvDefault("LS_DB_SSL_MODE", "disable")
		validSSLModes := map[string]bool{
			"disable": true, "require": true, "verify-ca": true, "verify-full": true,
		}
		if !validSSLModes[cfg.DBSSLMode] {
			return fmt.Errorf("LS_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
		}
	default:
		return fmt.Errorf("LS_DB_DRIVER: недопустимый драйвер %q, допустимые: sqlite, postgres", cfg.DBDriver)
	}

	if cfg.DBMigrate, err = getEnvBool("LS_DB_MIGRATE", false); err != nil {
		return fmt.Errorf("LS_DB_MIGRATE: %w", err)
	}
	return nil
}

// loadAuth заполняет параметры JWT. При LS_AUTH_ENABLED=true
// LS_JWT_JWKS_URL обязателен.
func loadAuth(cfg *Config) error {
	var err error

	if cfg.AuthEnabled, err = getEnvBool("LS_AUTH_ENABLED", false); err != nil {
		return fmt.Errorf("LS_AUTH_ENABLED: %w", err)
	}
	if cfg.AuthEnabled {
		if cfg.JWTJWKSURL, err = getEnvRequired("LS_JWT_JWKS_URL"); err != nil {
			return err
		}
	}
	cfg.JWTIssuer = os.Getenv("LS_JWT_ISSUER")

	if cfg.JWTLeeway, err = getEnvDuration("LS_JWT_LEEWAY", 5*time.Second); err != nil {
		return fmt.Errorf("LS_JWT_LEEWAY: %w", err)
	}
	if cfg.JWKSRefreshInterval, err = getEnvDurationPositive("LS_JWKS_REFRESH_INTERVAL", 15*time.Minute); err != nil {
		return fmt.Errorf("LS_JWKS_REFRESH_INTERVAL: %w", err)
	}
	if cfg.JWKSClientTimeout, err = getEnvDurationPositive("LS_JWKS_CLIENT_TIMEOUT", 10*time.Second); err != nil {
		return fmt.Errorf("LS_JWKS_CLIENT_TIMEOUT: %w", err)
	}

	cfg.RoleReaderGroups = parseCSV(getEnvDefault("LS_ROLE_READER_GROUPS", "lookup-readers"))
	return nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL PostgreSQL (для лейблов topologymetrics).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// loadEnvFile подгружает .env файл, если он существует.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvDurationPositive — getEnvDuration с проверкой значения > 0.
func getEnvDurationPositive(key string, defaultVal time.Duration) (time.Duration, error) {
	d, err := getEnvDuration(key, defaultVal)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// parseCSV разбирает строку через запятую, отбрасывая пустые элементы.
func parseCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
