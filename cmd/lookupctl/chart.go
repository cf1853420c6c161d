package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Divyamm05/chatbot/internal/domain/model"
	"github.com/Divyamm05/chatbot/internal/service"
)

// chartView — распределение с описанием диаграммы для json/yaml вывода.
type chartView struct {
	model.Distribution `yaml:",inline"`
	Chart              string `json:"chart" yaml:"chart"`
	Description        string `json:"description" yaml:"description"`
}

func newChartCmd(opts *options) *cobra.Command {
	var (
		start, end int
		kind       string
	)

	cmd := &cobra.Command{
		Use:   "chart <table> <column>",
		Short: "Распределение значений столбца по категориям",
		Long: `Считает количество вхождений каждого значения столбца в строках start..end
(нумерация с 1, включительно) и выводит описание круговой или столбчатой диаграммы.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := service.CheckChart(kind); err != nil {
				return err
			}

			logger := opts.logger(cmd)
			store, closeStore, err := opts.openStore(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer closeStore()

			// Кэш не нужен для разового запуска
			charts := service.NewChartService(store, nil, logger)
			d, err := charts.Distribution(cmd.Context(), args[0], args[1], start, end)
			if err != nil {
				return err
			}
			description, err := service.Describe(kind, d)
			if err != nil {
				return err
			}

			view := chartView{Distribution: *d, Chart: kind, Description: description}
			return opts.render(cmd.OutOrStdout(), view, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Категории: %s\n%s\n", strings.Join(d.Categories(), ", "), description)
				return err
			})
		},
	}

	cmd.Flags().IntVar(&start, "start", 1, "первая строка диапазона (с 1)")
	cmd.Flags().IntVar(&end, "end", service.DefaultPageLimit, "последняя строка диапазона (включительно)")
	cmd.Flags().StringVar(&kind, "kind", service.ChartPie, "тип диаграммы: pie или bar")
	return cmd
}
