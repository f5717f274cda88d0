package expense

import (
	"encoding/json"
	"time"

	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageLimit   = 100
	MaxPageLimit       = 100
	DefaultRecentLimit = 10
	MaxRecentLimit     = 50
	TrendWindowDays    = 365
)

type Expense struct {
	ID            int64
	Amount        decimal.Decimal
	Description   string
	ExpenseDate   time.Time
	CategoryID    int64
	CategoryName  string
	CategoryColor string
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MarshalJSON renders the amount with two fractional digits and the date as YYYY-MM-DD.
func (e Expense) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID            int64     `json:"id"`
		Amount        string    `json:"amount"`
		Description   string    `json:"description"`
		ExpenseDate   string    `json:"expense_date"`
		CategoryID    int64     `json:"category_id"`
		CategoryName  string    `json:"category_name,omitempty"`
		CategoryColor string    `json:"category_color,omitempty"`
		Notes         *string   `json:"notes"`
		CreatedAt     time.Time `json:"created_at"`
		UpdatedAt     time.Time `json:"updated_at"`
	}{
		ID:            e.ID,
		Amount:        e.Amount.StringFixed(2),
		Description:   e.Description,
		ExpenseDate:   e.ExpenseDate.Format(DateLayout),
		CategoryID:    e.CategoryID,
		CategoryName:  e.CategoryName,
		CategoryColor: e.CategoryColor,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	})
}

// CategorySpending is the total spent in one category.
type CategorySpending struct {
	CategoryID    int64           `json:"category_id"`
	CategoryName  string          `json:"category_name"`
	CategoryColor string          `json:"category_color"`
	Total         decimal.Decimal `json:"total"`
	ExpenseCount  int64           `json:"expense_count"`
}

// Summary is the ledger-wide count and total.
type Summary struct {
	TotalExpenses int64           `json:"total_expenses"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// MonthlyTotal is the spending of one calendar month.
type MonthlyTotal struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	Total        decimal.Decimal `json:"total"`
	ExpenseCount int64           `json:"expense_count"`
}

// ToCents converts an amount already validated to two decimal places and at most
// validation.MaxAmount.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).IntPart()
}

func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:          e.ID,
		AmountCents: ToCents(e.Amount),
		Description: e.Description,
		ExpenseDate: e.ExpenseDate,
		CategoryID:  e.CategoryID,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	result := &Expense{
		ID:          e.ID,
		Amount:      FromCents(e.AmountCents),
		Description: e.Description,
		ExpenseDate: e.ExpenseDate.UTC(),
		CategoryID:  e.CategoryID,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.Category != nil {
		result.CategoryName = e.Category.Name
		result.CategoryColor = e.Category.Color
	}
	return result
}

func FromDataModelSlice(expenses []*expenseDatamodel.Expense) []*Expense {
	result := make([]*Expense, len(expenses))
	for i, e := range expenses {
		result[i] = FromDataModel(e)
	}
	return result
}

func spendingFromDataModel(rows []expenseDatamodel.CategorySpending) []CategorySpending {
	result := make([]CategorySpending, len(rows))
	for i, row := range rows {
		result[i] = CategorySpending{
			CategoryID:    row.CategoryID,
			CategoryName:  row.CategoryName,
			CategoryColor: row.CategoryColor,
			Total:         FromCents(row.TotalCents),
			ExpenseCount:  row.ExpenseCount,
		}
	}
	return result
}
