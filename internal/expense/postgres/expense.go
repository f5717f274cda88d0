package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExpenseRepository implements the expense.Repository interface using GORM
type ExpenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) expense.Repository {
	return &ExpenseRepository{db: db}
}

// newest first; id breaks ties between expenses of the same day
func (r *ExpenseRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").
		Order("expense_date DESC").
		Order("id DESC")
}

func (r *ExpenseRepository) Create(ctx context.Context, exp *expenseDatamodel.Expense) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(exp).Error
}

// GetByID returns nil when no expense has the id.
func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*expenseDatamodel.Expense, error) {
	var exp expenseDatamodel.Expense
	err := r.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&exp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &exp, nil
}

func (r *ExpenseRepository) List(ctx context.Context, offset, limit int) ([]*expenseDatamodel.Expense, error) {
	var expenses []*expenseDatamodel.Expense
	err := r.query(ctx).Offset(offset).Limit(limit).Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) ListAll(ctx context.Context) ([]*expenseDatamodel.Expense, error) {
	var expenses []*expenseDatamodel.Expense
	err := r.query(ctx).Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*expenseDatamodel.Expense, error) {
	var expenses []*expenseDatamodel.Expense
	err := r.query(ctx).Where("category_id = ?", categoryID).Find(&expenses).Error
	return expenses, err
}

// ListByDateRange includes both bounds.
func (r *ExpenseRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]*expenseDatamodel.Expense, error) {
	var expenses []*expenseDatamodel.Expense
	err := r.query(ctx).
		Where("expense_date >= ? AND expense_date <= ?", start, end).
		Find(&expenses).Error
	return expenses, err
}

// Search matches keyword as a literal, case-insensitive substring of the description.
func (r *ExpenseRepository) Search(ctx context.Context, keyword string, limit int) ([]*expenseDatamodel.Expense, error) {
	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"

	q := r.query(ctx).Where(`LOWER(description) LIKE ? ESCAPE '\'`, pattern)
	if limit > 0 {
		q = q.Limit(limit)
	}

	var expenses []*expenseDatamodel.Expense
	err := q.Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) Update(ctx context.Context, exp *expenseDatamodel.Expense) error {
	result := r.db.WithContext(ctx).
		Model(exp).
		Omit(clause.Associations).
		Select("amount_cents", "description", "expense_date", "category_id", "notes", "updated_at").
		Updates(exp)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return expense.ErrNotFound
	}
	return nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&expenseDatamodel.Expense{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return expense.ErrNotFound
	}
	return nil
}

func (r *ExpenseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{}).Count(&count).Error
	return count, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
