// Package seed fills an empty store with sample categories and expenses.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/frahmantamala/expense-tracker/internal/category"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
)

const (
	MinExpenses = 15
	MaxExpenses = 20
	// expenses are dated within this many days before today
	DaySpread = 30
)

type CategoryStore interface {
	ListAll(ctx context.Context) ([]*category.Category, error)
	Create(ctx context.Context, dto category.CreateCategoryDTO) (*category.Category, error)
	Delete(ctx context.Context, id int64) error
}

type ExpenseStore interface {
	Create(ctx context.Context, dto expense.CreateExpenseDTO) (*expense.Expense, error)
}

type sampleCategory struct {
	name, description, icon, color string
}

var Categories = []sampleCategory{
	{"Food", "Groceries, restaurants, snacks", "fas fa-utensils", "#FF6B6B"},
	{"Transport", "Public transport, fuel, taxi", "fas fa-car", "#4ECDC4"},
	{"Entertainment", "Movies, concerts, games", "fas fa-film", "#45B7D1"},
	{"Shopping", "Clothes, gifts, online shopping", "fas fa-shopping-bag", "#96CEB4"},
	{"Bills", "Utilities, rent, subscriptions", "fas fa-file-invoice", "#FECA57"},
	{"Health", "Medicine, doctor, gym", "fas fa-medkit", "#FF9FF3"},
}

var Descriptions = []string{
	"Lunch at cafe", "Bus ticket", "Movie night", "New shoes", "Electricity bill", "Pharmacy purchase",
	"Groceries", "Taxi ride", "Concert ticket", "Online shopping", "Water bill", "Doctor visit",
	"Dinner with friends", "Fuel refill", "Streaming subscription", "Gym membership", "Gift for friend",
	"Snack", "Train fare", "Game purchase",
}

type Result struct {
	Categories int
	Expenses   int
	Cleared    int
	Skipped    bool
}

type Seeder struct {
	Categories CategoryStore
	Expenses   ExpenseStore
	Logger     *slog.Logger
	// Progress receives the progress bar; nil hides it.
	Progress io.Writer
	Rand     *rand.Rand
	Now      func() time.Time
}

// Run seeds an empty store. With clear set every category, and through the cascade
// every expense, is removed first. A store that already has categories is left alone.
func (s *Seeder) Run(ctx context.Context, clear bool) (Result, error) {
	var result Result
	rng := s.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if s.Logger == nil {
		s.Logger = logger.L()
	}

	existing, err := s.Categories.ListAll(ctx)
	if err != nil {
		return result, err
	}
	if clear {
		for _, c := range existing {
			if err := s.Categories.Delete(ctx, c.ID); err != nil {
				return result, fmt.Errorf("clear category %d: %w", c.ID, err)
			}
			result.Cleared++
		}
		existing = nil
	}
	if len(existing) > 0 {
		s.Logger.Info("categories already exist, skipping seeding", "count", len(existing))
		result.Skipped = true
		return result, nil
	}

	created := make([]*category.Category, 0, len(Categories))
	for _, c := range Categories {
		description, icon, color := c.description, c.icon, c.color
		cat, err := s.Categories.Create(ctx, category.CreateCategoryDTO{
			Name:        c.name,
			Description: &description,
			Icon:        &icon,
			Color:       &color,
		})
		if err != nil {
			return result, fmt.Errorf("seed category %q: %w", c.name, err)
		}
		created = append(created, cat)
		result.Categories++
	}

	count := MinExpenses + rng.IntN(MaxExpenses-MinExpenses+1)
	bar := s.progressBar(count)
	today := now()
	for i := 0; i < count; i++ {
		cat := created[rng.IntN(len(created))]
		// 5.00 to 500.00 in whole cents
		amount := decimal.New(int64(500+rng.IntN(49501)), -2)
		date := today.AddDate(0, 0, -rng.IntN(DaySpread))

		exp, err := s.Expenses.Create(ctx, expense.CreateExpenseDTO{
			Amount:      amount,
			Description: Descriptions[rng.IntN(len(Descriptions))],
			ExpenseDate: expense.NewDate(date.Year(), date.Month(), date.Day()),
			CategoryID:  cat.ID,
		})
		if err != nil {
			return result, fmt.Errorf("seed expense: %w", err)
		}
		s.Logger.Debug("seeded expense",
			"expense_id", exp.ID,
			"category", cat.Name,
			"amount", exp.Amount.StringFixed(2))
		result.Expenses++
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	s.Logger.Info("seeding finished", "categories", result.Categories, "expenses", result.Expenses)
	return result, nil
}

func (s *Seeder) progressBar(total int) *progressbar.ProgressBar {
	if s.Progress == nil {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(s.Progress),
		progressbar.OptionSetDescription("seeding expenses"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
