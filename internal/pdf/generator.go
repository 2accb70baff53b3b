package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/loboISC/arrendamiento-sub000/internal/model"
)

// Generator renders a printable contract document. All locale formatting
// happens here; the core hands over raw values only.
type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Arial"}
}

func (g *Generator) Render(doc model.ContractDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("Contrato de arrendamiento"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Contrato No. %s", doc.Contract.Number)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Vigencia: %s — %s (%d días)",
		formatDate(doc.Contract.StartDate),
		formatDate(doc.Contract.EndDate),
		doc.DaysTotal,
	)), "", 1, "C", false, 0, "")
	if doc.Extended {
		pdf.SetTextColor(0, 90, 160)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Prórroga vigente: %d días adicionales", doc.ExtraDays)), "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	g.partyBlock(pdf, tr, "Cliente", doc.ClientName)
	pdf.Ln(2)
	g.partyBlock(pdf, tr, "Responsable", doc.Contract.Responsible)
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Partidas"), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	headers := []string{"Clave", "Descripción", "Cant.", "P. unitario", "Garantía", "Importe"}
	colWidths := []float64{24, 72, 14, 24, 24, 24}
	g.tableRow(pdf, tr, headers, colWidths, true)
	for _, item := range doc.Contract.Items {
		row := []string{
			item.Key,
			item.Description,
			fmt.Sprintf("%d", item.Quantity),
			formatAmount(item.UnitPrice),
			formatAmount(item.Guarantee),
			formatAmount(item.LineTotal),
		}
		g.tableRow(pdf, tr, row, colWidths, false)
	}

	fin := doc.Contract.Financials
	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Subtotal: $%s", formatAmount(fin.Subtotal))), "", 1, "R", false, 0, "")
	if fin.Discount.IsPositive() {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Descuento: -$%s", formatAmount(fin.Discount))), "", 1, "R", false, 0, "")
	}
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("IVA: $%s", formatAmount(fin.Tax))), "", 1, "R", false, 0, "")
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Total: $%s", formatAmount(fin.Total))), "", 1, "R", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Garantía en depósito: $%s", formatAmount(fin.GuaranteeAmount))), "", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Estado del contrato: %s", doc.Status.State.Label())), "", 1, "L", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Firmas"), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	g.signatureBlock(pdf, tr, "Cliente", doc.ClientName)
	g.signatureBlock(pdf, tr, "Responsable", doc.Contract.Responsible)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) partyBlock(pdf *gofpdf.Fpdf, tr func(string) string, title, name string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 6, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5, tr(safeValue(name)), "", "L", false)
}

func (g *Generator) tableRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(g.fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i >= 2 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func (g *Generator) signatureBlock(pdf *gofpdf.Fpdf, tr func(string) string, label, name string) {
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("%s: ______________________ /%s/", label, safeValue(name))), "", 1, "L", false, 0, "")
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02/01/2006")
}
