package expense_test

import (
	"bytes"

	"github.com/frahmantamala/expense-tracker/internal/expense"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

var _ = Describe("WriteTextReport", func() {
	summary := expense.Summary{TotalExpenses: 3, TotalAmount: decimal.RequireFromString("1234.5")}
	spending := []expense.CategorySpending{
		{CategoryName: "Bills", Total: decimal.RequireFromString("1200"), ExpenseCount: 1},
		{CategoryName: "Food", Total: decimal.RequireFromString("34.5"), ExpenseCount: 2},
	}
	trend := []expense.MonthlyTotal{
		{Year: 2024, Month: 5, Total: decimal.RequireFromString("1200"), ExpenseCount: 1},
		{Year: 2024, Month: 6, Total: decimal.RequireFromString("34.5"), ExpenseCount: 2},
	}

	It("should group thousands for English", func() {
		var buf bytes.Buffer
		Expect(expense.WriteTextReport(&buf, language.English, summary, spending, trend)).To(Succeed())

		out := buf.String()
		Expect(out).To(ContainSubstring("Total:    1,234.50"))
		Expect(out).To(ContainSubstring("Bills"))
		Expect(out).To(ContainSubstring("1,200.00"))
		Expect(out).To(ContainSubstring("2024-05"))
		Expect(out).To(ContainSubstring("2024-06"))
	})

	It("should print totals beyond float precision exactly", func() {
		large := expense.Summary{TotalExpenses: 1, TotalAmount: decimal.RequireFromString("90071992547409.93")}

		var buf bytes.Buffer
		Expect(expense.WriteTextReport(&buf, language.English, large, nil, nil)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Total:    90,071,992,547,409.93"))
	})

	It("should use the locale's separators", func() {
		var buf bytes.Buffer
		Expect(expense.WriteTextReport(&buf, language.German, summary, nil, nil)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("1.234,50"))
	})
})
