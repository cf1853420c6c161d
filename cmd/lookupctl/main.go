// lookupctl — утилита командной строки Lookup Service.
// Выполняет разовые поиски, просмотр каталога и построение распределений
// над локальным файлом SQLite без запуска HTTP-сервера.
//
// Использование:
//
//	lookupctl --db data.db tables
//	lookupctl --db data.db lookup user_details username alice --exact
//	lookupctl --db data.db rows teams --limit 20
//	lookupctl --db data.db chart teams city --start 1 --end 50 --kind bar
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Divyamm05/chatbot/internal/database"
	"github.com/Divyamm05/chatbot/internal/repository"
)

// Форматы вывода.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// options — глобальные флаги lookupctl.
type options struct {
	dbPath  string
	output  string
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd собирает дерево команд lookupctl.
func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "lookupctl",
		Short:        "Поиск строк в таблицах SQLite",
		Long:         `Разовые запросы к хранилищу Lookup Service: поиск, каталог, страницы строк и распределения.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			switch opts.output {
			case outputText, outputJSON, outputYAML:
				return nil
			default:
				return fmt.Errorf("неизвестный формат вывода %q (text, json, yaml)", opts.output)
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", getEnvDefault("LS_DB_PATH", "lookup.db"), "путь к файлу SQLite")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "формат вывода: text, json, yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "подробный лог в stderr")

	root.AddCommand(
		newLookupCmd(opts),
		newTablesCmd(opts),
		newRowsCmd(opts),
		newChartCmd(opts),
	)

	return root
}

// logger — лог в stderr; без --verbose только ошибки.
func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelError
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// openStore открывает файл SQLite. Вызывающий обязан выполнить close.
func (o *options) openStore(ctx context.Context, logger *slog.Logger) (repository.Store, func(), error) {
	if _, err := os.Stat(o.dbPath); err != nil {
		return nil, nil, fmt.Errorf("файл базы недоступен: %w", err)
	}
	db, err := database.OpenSQLite(ctx, o.dbPath, logger)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewSQLiteStore(db), func() { _ = db.Close() }, nil
}

// render выводит v в формате --output; для text вызывается writeText.
func (o *options) render(w io.Writer, v any, writeText func(io.Writer) error) error {
	switch o.output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(w)
	}
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
