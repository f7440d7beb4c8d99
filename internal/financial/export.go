package financial

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteWorkbook renders the report as an xlsx workbook with one sheet per
// section.
func WriteWorkbook(r *Report, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return err
	}

	summary := [][]any{
		{"Period", fmt.Sprintf("%s to %s", r.From, r.To)},
		{"Total sales", r.Metrics.TotalSales},
		{"Total purchases", r.Metrics.TotalPurchases},
		{"Total expenses", r.Metrics.TotalExpenses},
		{"Gross profit", r.Metrics.GrossProfit},
		{"Net profit", r.Metrics.NetProfit},
		{"Profit margin %", r.Metrics.ProfitMargin},
		{"GST rate %", r.Tax.Rate},
		{"GST amount", r.Tax.Amount},
		{"Sales with GST", r.Tax.TotalWithTax},
	}
	if err := writeRows(f, "Summary", nil, summary); err != nil {
		return err
	}

	daily := make([][]any, 0, len(r.Daily))
	for _, d := range r.Daily {
		daily = append(daily, []any{d.Date, d.Sales, d.Purchases, d.Expenses, d.Profit})
	}
	if err := writeSheet(f, "Daily", []any{"Date", "Sales", "Purchases", "Expenses", "Profit"}, daily); err != nil {
		return err
	}

	vendors := make([][]any, 0, len(r.Vendors))
	for _, v := range r.Vendors {
		vendors = append(vendors, []any{v.VendorName, v.TotalCost, v.EstimatedSales, v.Profit, v.Margin})
	}
	if err := writeSheet(f, "Vendors", []any{"Vendor", "Cost", "Estimated sales", "Profit", "Margin %"}, vendors); err != nil {
		return err
	}

	expenses := make([][]any, 0, len(r.Expenses))
	for _, e := range r.Expenses {
		expenses = append(expenses, []any{string(e.Category), e.Amount, e.Percentage})
	}
	if err := writeSheet(f, "Expenses", []any{"Category", "Amount", "Share %"}, expenses); err != nil {
		return err
	}

	categories := make([][]any, 0, len(r.Categories))
	for _, c := range r.Categories {
		categories = append(categories, []any{c.Category, c.Sales, c.Purchases})
	}
	if err := writeSheet(f, "Categories", []any{"Category", "Sales", "Purchases"}, categories); err != nil {
		return err
	}

	return f.Write(w)
}

func writeSheet(f *excelize.File, name string, header []any, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return writeRows(f, name, header, rows)
}

func writeRows(f *excelize.File, sheet string, header []any, rows [][]any) error {
	n := 1
	if header != nil {
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return err
		}
		n++
	}
	for _, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, n)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
		n++
	}
	return nil
}
