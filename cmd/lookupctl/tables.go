package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Divyamm05/chatbot/internal/domain/model"
	"github.com/Divyamm05/chatbot/internal/service"
)

// rowsView — страница строк для json/yaml вывода.
type rowsView struct {
	Table   string   `json:"table" yaml:"table"`
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
	Limit   int      `json:"limit" yaml:"limit"`
	Offset  int      `json:"offset" yaml:"offset"`
	HasMore bool     `json:"has_more" yaml:"has_more"`
}

func newTablesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "Список таблиц и столбцов",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := opts.logger(cmd)
			store, closeStore, err := opts.openStore(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer closeStore()

			schemas, err := service.NewCatalogService(store, logger).Tables(cmd.Context())
			if err != nil {
				return err
			}

			return opts.render(cmd.OutOrStdout(), schemas, func(w io.Writer) error {
				for _, s := range schemas {
					if _, err := fmt.Fprintf(w, "%s (%s)\n", s.Table, strings.Join(s.Columns, ", ")); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newRowsCmd(opts *options) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "rows <table>",
		Short: "Страница строк таблицы",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd)
			store, closeStore, err := opts.openStore(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer closeStore()

			page, err := service.NewCatalogService(store, logger).Rows(cmd.Context(), args[0], limit, offset)
			if err != nil {
				return err
			}

			view := rowsView{
				Table:   page.Schema.Table,
				Columns: page.Schema.Columns,
				Rows:    make([][]any, 0, len(page.Rows)),
				Limit:   page.Limit,
				Offset:  page.Offset,
				HasMore: page.HasMore,
			}
			for _, row := range page.Rows {
				view.Rows = append(view.Rows, []any(row))
			}

			return opts.render(cmd.OutOrStdout(), view, func(w io.Writer) error {
				return writeRowsText(w, page)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", service.DefaultPageLimit, "количество строк")
	cmd.Flags().IntVar(&offset, "offset", 0, "смещение от начала таблицы")
	return cmd
}

// writeRowsText выводит заголовок со столбцами и строки через запятую.
func writeRowsText(w io.Writer, page *model.Page) error {
	if _, err := fmt.Fprintln(w, strings.Join(page.Schema.Columns, ", ")); err != nil {
		return err
	}
	for _, row := range page.Rows {
		if _, err := fmt.Fprintln(w, model.JoinRow(row)); err != nil {
			return err
		}
	}
	if page.HasMore {
		_, err := fmt.Fprintf(w, "... есть ещё строки (--offset %d)\n", page.Offset+len(page.Rows))
		return err
	}
	return nil
}
