package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/loboISC/arrendamiento-sub000/internal/model"
)

// Generator builds the spreadsheet statement of a contract: a summary sheet
// with header and financials, plus a sheet with the item rows.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(doc model.ContractDocument) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Resumen"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, doc); err != nil {
		return nil, err
	}

	itemsSheet := "Partidas"
	file.NewSheet(itemsSheet)
	if err := g.writeItems(file, itemsSheet, doc); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, doc model.ContractDocument) error {
	fin := doc.Contract.Financials

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Contrato")
	set("B1", doc.Contract.Number)
	set("A2", "Cliente")
	set("B2", doc.ClientName)
	set("A3", "Responsable")
	set("B3", doc.Contract.Responsible)
	set("A4", "Inicio")
	set("B4", formatDate(doc.Contract.StartDate))
	set("A5", "Fin")
	set("B5", formatDate(doc.Contract.EndDate))
	set("A6", "Días totales")
	set("B6", doc.DaysTotal)
	set("A7", "Estado")
	set("B7", doc.Status.State.Label())
	set("A8", "Días restantes")
	set("B8", doc.Status.DaysRemaining)
	if doc.Extended {
		set("A9", "Días de prórroga")
		set("B9", doc.ExtraDays)
	}

	tableRow := 11
	set(fmt.Sprintf("A%d", tableRow), "Subtotal")
	set(fmt.Sprintf("B%d", tableRow), fin.Subtotal.StringFixed(2))
	set(fmt.Sprintf("A%d", tableRow+1), "Descuento")
	set(fmt.Sprintf("B%d", tableRow+1), fin.Discount.StringFixed(2))
	set(fmt.Sprintf("A%d", tableRow+2), "IVA")
	set(fmt.Sprintf("B%d", tableRow+2), fin.Tax.StringFixed(2))
	set(fmt.Sprintf("A%d", tableRow+3), "Total")
	set(fmt.Sprintf("B%d", tableRow+3), fin.Total.StringFixed(2))
	set(fmt.Sprintf("A%d", tableRow+4), "Garantía")
	set(fmt.Sprintf("B%d", tableRow+4), fin.GuaranteeAmount.StringFixed(2))

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "B", 28)
	return nil
}

func (g *Generator) writeItems(file *excelize.File, sheet string, doc model.ContractDocument) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Clave", "Descripción", "Cantidad", "Precio unitario", "Garantía", "Importe"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, item := range doc.Contract.Items {
		row := i + 2
		set(fmt.Sprintf("A%d", row), item.Key)
		set(fmt.Sprintf("B%d", row), item.Description)
		set(fmt.Sprintf("C%d", row), item.Quantity)
		set(fmt.Sprintf("D%d", row), item.UnitPrice.StringFixed(2))
		set(fmt.Sprintf("E%d", row), item.Guarantee.StringFixed(2))
		set(fmt.Sprintf("F%d", row), item.LineTotal.StringFixed(2))
	}

	_ = file.SetColWidth(sheet, "A", "A", 14)
	_ = file.SetColWidth(sheet, "B", "B", 45)
	_ = file.SetColWidth(sheet, "C", "F", 16)
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
