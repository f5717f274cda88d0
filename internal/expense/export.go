package expense

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	SheetExpenses   = "Expenses"
	SheetByCategory = "By Category"

	// built-in excel number format "#,##0.00"
	amountNumFmt = 4
)

var (
	expenseHeader  = []interface{}{"ID", "Date", "Description", "Category", "Amount", "Notes"}
	categoryHeader = []interface{}{"Category", "Expenses", "Total"}
)

// WriteXLSX writes a workbook with one row per expense and a per-category summary sheet.
func WriteXLSX(w io.Writer, expenses []*Expense, spending []CategorySpending) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetExpenses); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetByCategory); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeRow(f, SheetExpenses, 1, expenseHeader); err != nil {
		return err
	}
	for i, e := range expenses {
		notes := ""
		if e.Notes != nil {
			notes = *e.Notes
		}
		row := []interface{}{
			e.ID,
			e.ExpenseDate.Format(DateLayout),
			e.Description,
			e.CategoryName,
			e.Amount.InexactFloat64(),
			notes,
		}
		if err := writeRow(f, SheetExpenses, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, SheetByCategory, 1, categoryHeader); err != nil {
		return err
	}
	for i, s := range spending {
		row := []interface{}{s.CategoryName, s.ExpenseCount, s.Total.InexactFloat64()}
		if err := writeRow(f, SheetByCategory, i+2, row); err != nil {
			return err
		}
	}

	if err := styleSheet(f, SheetExpenses, "F", "E", len(expenses), headerStyle, amountStyle); err != nil {
		return err
	}
	if err := styleSheet(f, SheetByCategory, "C", "C", len(spending), headerStyle, amountStyle); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleSheet(f *excelize.File, sheet, lastCol, amountCol string, rows int, headerStyle, amountStyle int) error {
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}
	return f.SetCellStyle(sheet, fmt.Sprintf("%s2", amountCol), fmt.Sprintf("%s%d", amountCol, rows+1), amountStyle)
}
