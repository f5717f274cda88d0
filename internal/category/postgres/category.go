package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/expense-tracker/internal/category"
	categoryDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error) {
	var categories []*categoryDatamodel.Category
	err := r.db.WithContext(ctx).Order("name_key ASC").Order("id ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetAllWithExpenseCounts(ctx context.Context) ([]*categoryDatamodel.WithExpenseCount, error) {
	var rows []*categoryDatamodel.WithExpenseCount
	err := r.db.WithContext(ctx).
		Table("categories").
		Select("categories.*, COUNT(expenses.id) AS expense_count").
		Joins("LEFT JOIN expenses ON expenses.category_id = categories.id").
		Group("categories.id").
		Order("categories.name_key ASC").
		Order("categories.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.db.WithContext(ctx).Where("name_key = ?", categoryDatamodel.NormalizeName(name)).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) Create(ctx context.Context, cat *categoryDatamodel.Category) error {
	return translate(r.db.WithContext(ctx).Create(cat).Error)
}

func (r *CategoryRepository) Update(ctx context.Context, cat *categoryDatamodel.Category) error {
	result := r.db.WithContext(ctx).
		Model(cat).
		Select("name", "name_key", "description", "icon", "color", "updated_at").
		Updates(cat)
	if err := translate(result.Error); err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return category.ErrNotFound
	}
	return nil
}

// Delete removes the category's expenses and then the category in one transaction.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("category_id = ?", id).Delete(&expenseDatamodel.Expense{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected

		result = tx.Delete(&categoryDatamodel.Category{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return category.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *CategoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&categoryDatamodel.Category{}).Count(&count).Error
	return count, err
}

func (r *CategoryRepository) CountExpenses(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return category.ErrNameTaken
	}
	return err
}
