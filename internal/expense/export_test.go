package expense_test

import (
	"bytes"
	"time"

	"github.com/frahmantamala/expense-tracker/internal/expense"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var _ = Describe("WriteXLSX", func() {
	It("should write one row per expense and a category summary", func() {
		notes := "with receipt"
		expenses := []*expense.Expense{
			{
				ID:           1,
				Amount:       decimal.RequireFromString("12.5"),
				Description:  "Lunch",
				ExpenseDate:  time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
				CategoryName: "Food",
				Notes:        &notes,
			},
			{
				ID:           2,
				Amount:       decimal.RequireFromString("100"),
				Description:  "Electricity",
				ExpenseDate:  time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
				CategoryName: "Bills",
			},
		}
		spending := []expense.CategorySpending{
			{CategoryName: "Bills", Total: decimal.RequireFromString("100"), ExpenseCount: 1},
			{CategoryName: "Food", Total: decimal.RequireFromString("12.5"), ExpenseCount: 1},
		}

		var buf bytes.Buffer
		Expect(expense.WriteXLSX(&buf, expenses, spending)).To(Succeed())

		book, err := excelize.OpenReader(&buf)
		Expect(err).NotTo(HaveOccurred())
		defer book.Close()

		Expect(book.GetSheetList()).To(Equal([]string{expense.SheetExpenses, expense.SheetByCategory}))

		rows, err := book.GetRows(expense.SheetExpenses, excelize.Options{RawCellValue: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(3))
		Expect(rows[0]).To(Equal([]string{"ID", "Date", "Description", "Category", "Amount", "Notes"}))
		Expect(rows[1]).To(Equal([]string{"1", "2024-06-10", "Lunch", "Food", "12.5", "with receipt"}))
		Expect(rows[2][4]).To(Equal("100"))

		summary, err := book.GetRows(expense.SheetByCategory, excelize.Options{RawCellValue: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(HaveLen(3))
		Expect(summary[2]).To(Equal([]string{"Food", "1", "12.5"}))
	})

	It("should write only headers for an empty ledger", func() {
		var buf bytes.Buffer
		Expect(expense.WriteXLSX(&buf, nil, nil)).To(Succeed())

		book, err := excelize.OpenReader(&buf)
		Expect(err).NotTo(HaveOccurred())
		defer book.Close()

		rows, err := book.GetRows(expense.SheetExpenses)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
	})
})
