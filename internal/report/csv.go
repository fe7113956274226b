// Package report renders month reports as CSV and PDF downloads.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"saveyourmoney/internal/services"
)

// WriteCSV renders the report as rows of [tipo, nome, valor, extra]: the
// three totals first, then one row per category, then one per goal.
func WriteCSV(w io.Writer, rep services.MonthReport) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"tipo", "nome", "valor", "extra"},
		{"total", "Total de gastos", formatValue(rep.TotalExpenses), ""},
		{"total", "Total de entradas", formatValue(rep.TotalIncomes), ""},
		{"total", "Saldo", formatValue(rep.Balance), ""},
	}
	for _, entry := range rep.ByCategory {
		rows = append(rows, []string{"categoria", entry.Name, formatValue(entry.Value), ""})
	}
	for _, goal := range rep.Goals {
		extra := fmt.Sprintf("limite=%s; restante=%s", formatValue(goal.LimitValue), formatValue(goal.Remaining))
		rows = append(rows, []string{"meta", goal.Name, formatValue(goal.Spent), extra})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write report csv: %w", err)
	}
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FileName builds the download name for a report of one competence.
func FileName(month, year int, extension string) string {
	return fmt.Sprintf("relatorio_%02d_%d.%s", month, year, extension)
}
