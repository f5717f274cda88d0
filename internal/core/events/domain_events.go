package events

import (
	"context"
	"time"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/google/uuid"
)

const (
	EventTypeCategoryCreated = "category.created"
	EventTypeCategoryUpdated = "category.updated"
	EventTypeCategoryDeleted = "category.deleted"
	EventTypeExpenseCreated  = "expense.created"
	EventTypeExpenseUpdated  = "expense.updated"
	EventTypeExpenseDeleted  = "expense.deleted"
)

var AllEventTypes = []string{
	EventTypeCategoryCreated,
	EventTypeCategoryUpdated,
	EventTypeCategoryDeleted,
	EventTypeExpenseCreated,
	EventTypeExpenseUpdated,
	EventTypeExpenseDeleted,
}

func newBaseEvent(ctx context.Context, eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		TraceID:   internal.TraceIDFromContext(ctx),
		Data:      data,
	}
}

type CategoryEvent struct {
	BaseEvent
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
}

func NewCategoryCreatedEvent(ctx context.Context, categoryID int64, name string) *CategoryEvent {
	return newCategoryEvent(ctx, EventTypeCategoryCreated, categoryID, name, nil)
}

func NewCategoryUpdatedEvent(ctx context.Context, categoryID int64, name string) *CategoryEvent {
	return newCategoryEvent(ctx, EventTypeCategoryUpdated, categoryID, name, nil)
}

// NewCategoryDeletedEvent records how many expenses were removed with the category.
func NewCategoryDeletedEvent(ctx context.Context, categoryID int64, name string, removedExpenses int64) *CategoryEvent {
	return newCategoryEvent(ctx, EventTypeCategoryDeleted, categoryID, name, map[string]interface{}{
		"removed_expenses": removedExpenses,
	})
}

func newCategoryEvent(ctx context.Context, eventType string, categoryID int64, name string, extra map[string]interface{}) *CategoryEvent {
	data := map[string]interface{}{
		"category_id": categoryID,
		"name":        name,
	}
	for k, v := range extra {
		data[k] = v
	}
	return &CategoryEvent{
		BaseEvent:  newBaseEvent(ctx, eventType, data),
		CategoryID: categoryID,
		Name:       name,
	}
}

type ExpenseEvent struct {
	BaseEvent
	ExpenseID  int64  `json:"expense_id"`
	CategoryID int64  `json:"category_id"`
	Amount     string `json:"amount"`
}

func NewExpenseCreatedEvent(ctx context.Context, expenseID, categoryID int64, amount string) *ExpenseEvent {
	return newExpenseEvent(ctx, EventTypeExpenseCreated, expenseID, categoryID, amount)
}

func NewExpenseUpdatedEvent(ctx context.Context, expenseID, categoryID int64, amount string) *ExpenseEvent {
	return newExpenseEvent(ctx, EventTypeExpenseUpdated, expenseID, categoryID, amount)
}

func NewExpenseDeletedEvent(ctx context.Context, expenseID, categoryID int64, amount string) *ExpenseEvent {
	return newExpenseEvent(ctx, EventTypeExpenseDeleted, expenseID, categoryID, amount)
}

func newExpenseEvent(ctx context.Context, eventType string, expenseID, categoryID int64, amount string) *ExpenseEvent {
	return &ExpenseEvent{
		BaseEvent: newBaseEvent(ctx, eventType, map[string]interface{}{
			"expense_id":  expenseID,
			"category_id": categoryID,
			"amount":      amount,
		}),
		ExpenseID:  expenseID,
		CategoryID: categoryID,
		Amount:     amount,
	}
}
