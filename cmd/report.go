package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

var reportLang string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a spending report",
	Long:  `Print totals, spending by category and the monthly trend of the last year`,
	Run: func(cmd *cobra.Command, args []string) {
		tag, err := language.Parse(reportLang)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --lang %q: %v\n", reportLang, err)
			os.Exit(1)
		}

		cfg := mustLoad()
		ctx := context.Background()

		deps, err := initializeDependencies(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
			os.Exit(1)
		}
		defer deps.Close()

		summary, err := deps.Expenses.Summary(ctx)
		if err != nil {
			deps.Logger.Error("failed to load summary", "error", err)
			return
		}
		spending, err := deps.Expenses.SpendingByCategory(ctx)
		if err != nil {
			deps.Logger.Error("failed to load spending by category", "error", err)
			return
		}
		trend, err := deps.Expenses.MonthlyTrend(ctx)
		if err != nil {
			deps.Logger.Error("failed to load monthly trend", "error", err)
			return
		}

		if err := expense.WriteTextReport(os.Stdout, tag, summary, spending, trend); err != nil {
			deps.Logger.Error("failed to write report", "error", err)
		}
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportLang, "lang", "en", "language tag used to format numbers")
	rootCmd.AddCommand(reportCmd)
}
