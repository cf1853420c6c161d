package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Divyamm05/chatbot/internal/domain/model"
	"github.com/Divyamm05/chatbot/internal/service"
)

// lookupView — результат поиска для json/yaml вывода.
type lookupView struct {
	Kind       string           `json:"kind" yaml:"kind"`
	Table      string           `json:"table" yaml:"table"`
	Column     string           `json:"column" yaml:"column"`
	Term       string           `json:"term" yaml:"term"`
	ExactMatch bool             `json:"exact_match" yaml:"exact_match"`
	Row        map[string]any   `json:"row,omitempty" yaml:"row,omitempty"`
	Candidates []map[string]any `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	Message    string           `json:"message,omitempty" yaml:"message,omitempty"`
}

func newLookupCmd(opts *options) *cobra.Command {
	var exact bool

	cmd := &cobra.Command{
		Use:   "lookup <table> <column> <term>",
		Short: "Найти строку по значению столбца",
		Long: `Ищет строки таблицы, у которых значение столбца совпадает с term.
По умолчанию — поиск подстроки без учёта регистра; --exact — точное совпадение.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd)
			store, closeStore, err := opts.openStore(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer closeStore()

			result, err := service.NewLookupService(store, logger).Lookup(cmd.Context(), service.LookupRequest{
				Table:      args[0],
				Column:     args[1],
				Term:       args[2],
				ExactMatch: exact,
			})
			if err != nil {
				return err
			}

			return opts.render(cmd.OutOrStdout(), toLookupView(result), func(w io.Writer) error {
				return writeLookupText(w, result)
			})
		},
	}

	cmd.Flags().BoolVar(&exact, "exact", false, "точное совпадение (с учётом регистра)")
	return cmd
}

func toLookupView(result *model.LookupResult) lookupView {
	view := lookupView{
		Kind:       string(result.Kind),
		Table:      result.Table,
		Column:     result.Column,
		Term:       result.Term,
		ExactMatch: result.Exact,
		Message:    result.Message,
	}
	switch result.Kind {
	case model.ResultFound:
		view.Row = result.Row.Map(result.Columns)
	case model.ResultAmbiguous:
		for _, row := range result.Rows {
			view.Candidates = append(view.Candidates, row.Map(result.Columns))
		}
	}
	return view
}

// writeLookupText: найденная строка — "столбец: значение" построчно,
// иначе — сообщение для пользователя.
func writeLookupText(w io.Writer, result *model.LookupResult) error {
	if result.Kind != model.ResultFound {
		_, err := fmt.Fprintln(w, result.Message)
		return err
	}
	values := result.Row.Strings()
	for i, col := range result.Columns {
		if i >= len(values) {
			break
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", col, values[i]); err != nil {
			return err
		}
	}
	return nil
}
