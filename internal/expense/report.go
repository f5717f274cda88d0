package expense

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// WriteTextReport renders the summary, per-category spending and monthly trend as a
// plain-text report with numbers grouped for tag.
func WriteTextReport(w io.Writer, tag language.Tag, summary Summary, spending []CategorySpending, trend []MonthlyTotal) error {
	p := message.NewPrinter(tag)
	money := amountFormatter(p)

	if _, err := p.Fprintf(w, "Expenses: %d\nTotal:    %s\n", summary.TotalExpenses, money(summary.TotalAmount)); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "\nBy category"); err != nil {
		return err
	}
	for _, s := range spending {
		if _, err := p.Fprintf(w, "  %-20s %6d %14s\n", s.CategoryName, s.ExpenseCount, money(s.Total)); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "\nMonthly"); err != nil {
		return err
	}
	for _, m := range trend {
		label := time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
		if _, err := p.Fprintf(w, "  %-20s %6d %14s\n", label, m.ExpenseCount, money(m.Total)); err != nil {
			return err
		}
	}
	return nil
}

// amountFormatter prints amounts exactly: the whole part goes through the printer for
// grouping, the cents are appended after the locale's decimal separator. Amounts whose
// cents do not fit in an int64 fall back to the plain fixed-point string.
func amountFormatter(p *message.Printer) func(decimal.Decimal) string {
	separator := "."
	if runes := []rune(p.Sprintf("%.1f", 0.5)); len(runes) == 3 {
		separator = string(runes[1])
	}

	return func(amount decimal.Decimal) string {
		cents := amount.Round(2).Shift(2).BigInt()
		if !cents.IsInt64() {
			return amount.StringFixed(2)
		}
		c := cents.Int64()
		sign := ""
		if c < 0 {
			sign = "-"
			c = -c
		}
		return sign + p.Sprintf("%d", c/100) + separator + fmt.Sprintf("%02d", c%100)
	}
}
