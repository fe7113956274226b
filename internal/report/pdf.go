package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"saveyourmoney/internal/services"
)

// WritePDF renders the report as a one-document PDF: header, financial
// summary, category analysis sorted by spend, and goal progress.
func WritePDF(w io.Writer, rep services.MonthReport, issuedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	translator := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Relatório mensal %02d/%d", rep.Month, rep.Year), true)
	pdf.SetMargins(18, 16, 18)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 36

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(33, 1, 35)
	pdf.CellFormat(contentWidth, 10, translator("Save Your Money"), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(111, 93, 106)
	pdf.CellFormat(contentWidth, 5, translator(fmt.Sprintf("Período do relatório: %02d/%d", rep.Month, rep.Year)), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentWidth, 5, translator(fmt.Sprintf("Data de emissão: %s", issuedAt.Format("02/01/2006 15:04"))), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	sectionTitle(pdf, translator, "Resumo financeiro")

	indicator := "Saldo positivo"
	if rep.Balance < 0 {
		indicator = "Saldo negativo"
	}
	summary := [][2]string{
		{"Total de entradas", formatCurrencyBR(rep.TotalIncomes)},
		{"Total de saídas", formatCurrencyBR(rep.TotalExpenses)},
		{"Saldo final", formatCurrencyBR(rep.Balance)},
		{"Indicador", indicator},
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(33, 1, 35)
	pdf.SetDrawColor(215, 200, 210)
	for _, row := range summary {
		pdf.CellFormat(contentWidth-45, 8, translator(row[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 8, translator(row[1]), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	sectionTitle(pdf, translator, "Análise por categoria")
	tableHeader(pdf, translator, []headerCell{
		{"Categoria", contentWidth - 80},
		{"Total", 50},
		{"% das saídas", 30},
	})

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(33, 1, 35)
	if len(rep.ByCategory) > 0 && rep.TotalExpenses > 0 {
		sorted := make(services.CategoryBreakdown, len(rep.ByCategory))
		copy(sorted, rep.ByCategory)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })
		for _, entry := range sorted {
			percent := entry.Value / rep.TotalExpenses * 100
			pdf.CellFormat(contentWidth-80, 7, translator(entry.Name), "1", 0, "L", false, 0, "")
			pdf.CellFormat(50, 7, translator(formatCurrencyBR(entry.Value)), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 7, translator(fmt.Sprintf("%.1f%%", percent)), "1", 1, "R", false, 0, "")
		}
	} else {
		pdf.CellFormat(contentWidth-80, 7, translator("Sem saídas no período"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, translator(formatCurrencyBR(0)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, translator("0,0%"), "1", 1, "R", false, 0, "")
	}

	if len(rep.Goals) > 0 {
		pdf.Ln(4)
		sectionTitle(pdf, translator, "Metas do período")
		goalCol := (contentWidth - 70) / 3
		tableHeader(pdf, translator, []headerCell{
			{"Meta", 70},
			{"Limite", goalCol},
			{"Gasto", goalCol},
			{"Restante", goalCol},
		})
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(33, 1, 35)
		for _, goal := range rep.Goals {
			pdf.CellFormat(70, 7, translator(goal.Name), "1", 0, "L", false, 0, "")
			pdf.CellFormat(goalCol, 7, translator(formatCurrencyBR(goal.LimitValue)), "1", 0, "R", false, 0, "")
			pdf.CellFormat(goalCol, 7, translator(formatCurrencyBR(goal.Spent)), "1", 0, "R", false, 0, "")
			pdf.CellFormat(goalCol, 7, translator(formatCurrencyBR(goal.Remaining)), "1", 1, "R", false, 0, "")
		}
	}

	pdf.SetY(-25)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(111, 93, 106)
	documentID := fmt.Sprintf("SYM-%d%02d-%s", rep.Year, rep.Month, issuedAt.Format("20060102150405"))
	pdf.CellFormat(contentWidth/2, 5, translator(fmt.Sprintf("Documento: %s", documentID)), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentWidth/2, 5, translator("Uso pessoal - Save Your Money"), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render report pdf: %w", err)
	}
	return nil
}

type headerCell struct {
	label string
	width float64
}

func sectionTitle(pdf *fpdf.Fpdf, translator func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(108, 4, 60)
	pdf.CellFormat(0, 8, translator(title), "", 1, "L", false, 0, "")
}

func tableHeader(pdf *fpdf.Fpdf, translator func(string) string, cells []headerCell) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(33, 1, 35)
	pdf.SetTextColor(245, 245, 245)
	for i, cell := range cells {
		last := i == len(cells)-1
		ln := 0
		if last {
			ln = 1
		}
		pdf.CellFormat(cell.width, 7, translator(cell.label), "1", ln, "L", true, 0, "")
	}
}

// formatCurrencyBR renders "R$ 1.234,56": dot thousands separator, comma
// decimals.
func formatCurrencyBR(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, decPart, _ := strings.Cut(s, ".")
	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := "R$ " + strings.Join(groups, ".") + "," + decPart
	if negative {
		out = "R$ -" + strings.Join(groups, ".") + "," + decPart
	}
	return out
}
