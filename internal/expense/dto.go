package expense

import (
	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// CreateExpenseDTO represents the request payload for creating an expense
type CreateExpenseDTO struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ExpenseDate Date            `json:"expense_date"`
	CategoryID  int64           `json:"category_id"`
	Notes       *string         `json:"notes,omitempty"`
}

// Validate checks the shape of the payload. Business rules (category existence,
// positive amount, no future dates) are enforced by the service.
func (dto CreateExpenseDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("amount", dto.Amount).MaxDecimalPlaces(validation.AmountScale).AtMost(validation.MaxAmount)
	v.Field("description", dto.Description).Required().MaxLength(validation.MaxExpenseDescription)
	v.Field("expense_date", dto.ExpenseDate.Time).Required()
	v.OptionalField("notes", dto.Notes).MaxLength(validation.MaxExpenseNotes)
	return v.Validate()
}

// UpdateExpenseDTO carries only the fields to change; nil means absent.
type UpdateExpenseDTO struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	ExpenseDate *Date            `json:"expense_date,omitempty"`
	CategoryID  *int64           `json:"category_id,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
}

func (dto UpdateExpenseDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if dto.Amount != nil {
		v.Field("amount", *dto.Amount).MaxDecimalPlaces(validation.AmountScale).AtMost(validation.MaxAmount)
	}
	v.OptionalField("description", dto.Description).Required().MaxLength(validation.MaxExpenseDescription)
	if dto.ExpenseDate != nil {
		v.Field("expense_date", dto.ExpenseDate.Time).Required()
	}
	v.OptionalField("notes", dto.Notes).MaxLength(validation.MaxExpenseNotes)
	return v.Validate()
}

type ExpenseListResponse struct {
	Expenses []*Expense `json:"expenses"`
	Total    int64      `json:"total"`
	Offset   int        `json:"offset"`
	Limit    int        `json:"limit"`
	Page     int        `json:"page,omitempty"`
	Size     int        `json:"size,omitempty"`
	Pages    int        `json:"pages,omitempty"`
}

type ExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
	Total    int        `json:"total"`
}

type SummaryResponse struct {
	TotalExpenses int64  `json:"total_expenses"`
	TotalAmount   string `json:"total_amount"`
}

type CategorySpendingResponse struct {
	CategoryID    int64  `json:"category_id"`
	CategoryName  string `json:"category_name"`
	CategoryColor string `json:"category_color"`
	Total         string `json:"total"`
	ExpenseCount  int64  `json:"expense_count"`
}

type MonthlyTotalResponse struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	Total        string `json:"total"`
	ExpenseCount int64  `json:"expense_count"`
}

func NewSummaryResponse(s Summary) SummaryResponse {
	return SummaryResponse{TotalExpenses: s.TotalExpenses, TotalAmount: s.TotalAmount.StringFixed(2)}
}

func NewCategorySpendingResponse(rows []CategorySpending) []CategorySpendingResponse {
	result := make([]CategorySpendingResponse, len(rows))
	for i, row := range rows {
		result[i] = CategorySpendingResponse{
			CategoryID:    row.CategoryID,
			CategoryName:  row.CategoryName,
			CategoryColor: row.CategoryColor,
			Total:         row.Total.StringFixed(2),
			ExpenseCount:  row.ExpenseCount,
		}
	}
	return result
}

func NewMonthlyTotalResponse(rows []MonthlyTotal) []MonthlyTotalResponse {
	result := make([]MonthlyTotalResponse, len(rows))
	for i, row := range rows {
		result[i] = MonthlyTotalResponse{
			Year:         row.Year,
			Month:        row.Month,
			Total:        row.Total.StringFixed(2),
			ExpenseCount: row.ExpenseCount,
		}
	}
	return result
}
