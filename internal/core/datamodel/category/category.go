package category

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Category struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;size:100;not null"`
	NameKey     string    `gorm:"column:name_key;size:100;uniqueIndex;not null"`
	Description *string   `gorm:"column:description;size:255"`
	Icon        string    `gorm:"column:icon;size:50;not null"`
	Color       string    `gorm:"column:color;size:7;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Category) TableName() string {
	return "categories"
}

// BeforeSave keeps name_key in step with name so the unique index is case-insensitive.
func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.NameKey = NormalizeName(c.Name)
	return nil
}

// NormalizeName is the comparison key for category names.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}

// WithExpenseCount is the projection of a category row joined with its expense count.
type WithExpenseCount struct {
	Category
	ExpenseCount int64 `gorm:"column:expense_count"`
}
