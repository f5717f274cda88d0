package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/frahmantamala/expense-tracker/internal/seed"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample categories and expenses for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoad()
		ctx := context.Background()

		deps, err := initializeDependencies(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
			os.Exit(1)
		}
		defer deps.Close()

		seeder := &seed.Seeder{
			Categories: deps.Categories,
			Expenses:   deps.Expenses,
			Logger:     deps.Logger,
			Progress:   os.Stderr,
		}

		result, err := seeder.Run(ctx, clearData)
		if err != nil {
			deps.Logger.Error("seeding failed", "error", err)
			deps.Close()
			os.Exit(1)
		}

		if result.Cleared > 0 {
			fmt.Printf("Cleared %d categories and their expenses\n", result.Cleared)
		}
		if result.Skipped {
			fmt.Println("Database already has categories; run with --clear to reseed")
			return
		}
		fmt.Printf("Seeded %d categories and %d expenses\n", result.Categories, result.Expenses)
	},
}
