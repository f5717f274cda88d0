package postgres

import (
	"context"
	"time"

	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/jmoiron/sqlx"
)

// ReportRepository runs the ledger aggregates as plain SQL through sqlx.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) expense.ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) TotalCents(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total, `SELECT CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT) FROM expenses`)
	return total, err
}

// SpendingByCategory includes categories without expenses with a zero total.
func (r *ReportRepository) SpendingByCategory(ctx context.Context) ([]expenseDatamodel.CategorySpending, error) {
	const query = `
		SELECT
			c.id AS category_id,
			c.name AS category_name,
			c.color AS category_color,
			CAST(COALESCE(SUM(e.amount_cents), 0) AS BIGINT) AS total_cents,
			COUNT(e.id) AS expense_count
		FROM categories c
		LEFT JOIN expenses e ON e.category_id = c.id
		GROUP BY c.id, c.name, c.name_key, c.color
		ORDER BY total_cents DESC, c.name_key ASC, c.id ASC`

	rows := []expenseDatamodel.CategorySpending{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportRepository) AmountsSince(ctx context.Context, since time.Time) ([]expenseDatamodel.DatedAmount, error) {
	query := r.db.Rebind(`
		SELECT expense_date, amount_cents
		FROM expenses
		WHERE expense_date >= ?
		ORDER BY expense_date ASC, id ASC`)

	rows := []expenseDatamodel.DatedAmount{}
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, err
	}
	return rows, nil
}
