package expense

import (
	"time"

	categoryDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/category"
)

type Expense struct {
	ID          int64                       `gorm:"primaryKey"`
	AmountCents int64                       `gorm:"column:amount_cents;not null"`
	Description string                      `gorm:"column:description;size:255;not null"`
	ExpenseDate time.Time                   `gorm:"column:expense_date;type:date;not null;index"`
	CategoryID  int64                       `gorm:"column:category_id;not null;index"`
	Category    *categoryDatamodel.Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Notes       *string                     `gorm:"column:notes;size:500"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (Expense) TableName() string {
	return "expenses"
}

// CategorySpending is one row of the per-category aggregate.
type CategorySpending struct {
	CategoryID    int64  `db:"category_id"`
	CategoryName  string `db:"category_name"`
	CategoryColor string `db:"category_color"`
	TotalCents    int64  `db:"total_cents"`
	ExpenseCount  int64  `db:"expense_count"`
}

// DatedAmount is a single expense reduced to its date and amount.
type DatedAmount struct {
	ExpenseDate time.Time `db:"expense_date"`
	AmountCents int64     `db:"amount_cents"`
}
