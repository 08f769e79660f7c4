// Package export renders reports into downloadable documents.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dennisdiepolder/champkpi/internal/types"
	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders rep as a single A4 page
func WritePDF(w io.Writer, rep *types.Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("KPI Report "+rep.EmployeeID, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "KPI Dashboard for Champs")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	who := rep.EmployeeID
	if rep.EmployeeName != "" {
		who = fmt.Sprintf("%s (%s)", rep.EmployeeName, rep.EmployeeID)
	}
	pdf.Cell(0, 8, tr(fmt.Sprintf("Employee: %s", who)))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr(fmt.Sprintf("%s: %s", rep.PeriodKind, rep.Period)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", rep.GeneratedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	if !rep.Found {
		pdf.Cell(0, 8, tr(rep.Message))
		return pdf.Output(w)
	}

	section(pdf, "Performance Metrics")
	table(pdf, []float64{90, 45, 25, 20}, []string{"Description", "Metric", "Value", "Unit"}, func(row func(...string)) {
		for _, m := range rep.Performance {
			row(tr(m.Description), tr(m.Metric), tr(m.Value), tr(m.Unit))
		}
	})

	if len(rep.KPIScores) > 0 {
		section(pdf, "KPI Scores")
		table(pdf, []float64{30, 90, 30}, []string{"Weight", "Metric", "Score"}, func(row func(...string)) {
			for _, s := range rep.KPIScores {
				row(formatNumber(&s.Weight)+"%", tr(s.Metric), formatNumber(s.Score))
			}
		})
	}

	if rep.GrandTotal != nil {
		section(pdf, "Grand Total")
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 7, fmt.Sprintf("%s / %d (%s)", formatNumber(rep.GrandTotal.Value), rep.GrandTotal.Scale, rep.GrandTotal.Tier))
		pdf.Ln(6)
		pdf.Cell(0, 7, tr(rep.GrandTotal.Message))
		pdf.Ln(8)
	}

	if rep.Delta != nil {
		pdf.SetFont("Helvetica", "", 11)
		line := rep.Delta.Message
		if rep.Delta.Value != nil {
			line = fmt.Sprintf("%s vs %s: %s", formatNumber(rep.Delta.Value), rep.Delta.PreviousMonth, rep.Delta.Message)
		}
		pdf.Cell(0, 7, tr(line))
		pdf.Ln(10)
	}

	if len(rep.Targets) > 0 {
		section(pdf, "Targets Committed for Next Month")
		table(pdf, []float64{60, 40}, []string{"Target", "Value"}, func(row func(...string)) {
			for _, t := range rep.Targets {
				row(tr(t.Label), tr(t.Value))
			}
		})
	}

	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 9, title)
	pdf.Ln(10)
}

// table draws a bordered header row followed by the rows fill emits
func table(pdf *gofpdf.Fpdf, widths []float64, header []string, fill func(row func(...string))) {
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	fill(func(cells ...string) {
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	})
	pdf.Ln(4)
}

func formatNumber(v *float64) string {
	if v == nil {
		return types.NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
