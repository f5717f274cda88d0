package expense

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/expense-tracker/internal/transport"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ServiceAPI interface {
	ListAll(ctx context.Context, offset, limit int) ([]*Expense, error)
	GetByID(ctx context.Context, id int64) (*Expense, error)
	Create(ctx context.Context, dto CreateExpenseDTO) (*Expense, error)
	Update(ctx context.Context, id int64, dto UpdateExpenseDTO) (*Expense, error)
	Delete(ctx context.Context, id int64) error
	ListByCategory(ctx context.Context, categoryID int64) ([]*Expense, error)
	Find(ctx context.Context, filter SearchFilter) ([]*Expense, error)
	Export(ctx context.Context, start, end *time.Time) ([]*Expense, error)
	Recent(ctx context.Context, limit int) ([]*Expense, error)
	Count(ctx context.Context) (int64, error)
	Summary(ctx context.Context) (Summary, error)
	SpendingByCategory(ctx context.Context) ([]CategorySpending, error)
	MonthlyTrend(ctx context.Context) ([]MonthlyTotal, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// ListExpenses pages with page/size when either is given, otherwise with offset/limit.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	page, hasPage, err := h.QueryInt(r, "page")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	size, hasSize, err := h.QueryInt(r, "size")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := ExpenseListResponse{}
	if hasPage || hasSize {
		if !hasPage {
			page = 1
		}
		if !hasSize {
			size = DefaultPageSize
		}
		if page < 1 {
			h.WriteError(w, http.StatusBadRequest, "page must be at least 1")
			return
		}
		if size < 1 || size > MaxPageSize {
			h.WriteError(w, http.StatusBadRequest, fmt.Sprintf("size must be between 1 and %d", MaxPageSize))
			return
		}
		resp.Page, resp.Size = page, size
		resp.Offset, resp.Limit = (page-1)*size, size
	} else {
		offset, _, err := h.QueryInt(r, "offset")
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		limit, _, err := h.QueryInt(r, "limit")
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > MaxPageLimit {
			limit = DefaultPageLimit
		}
		resp.Offset, resp.Limit = offset, limit
	}

	expenses, err := h.Service.ListAll(r.Context(), resp.Offset, resp.Limit)
	if err != nil {
		h.Logger.Error("ListExpenses: failed to list expenses", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	total, err := h.Service.Count(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp.Expenses = expenses
	resp.Total = total
	if resp.Size > 0 {
		resp.Pages = int((total + int64(resp.Size) - 1) / int64(resp.Size))
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	found, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var dto CreateExpenseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("CreateExpense: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var dto UpdateExpenseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("UpdateExpense: invalid request body", "error", err, "expense_id", id)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":      id,
		"message": "Expense deleted successfully",
	})
}

func (h *Handler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := h.IDParam(r, "categoryID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := h.Service.ListByCategory(r.Context(), categoryID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ExpensesResponse{Expenses: expenses, Total: len(expenses)})
}

func (h *Handler) SearchExpenses(w http.ResponseWriter, r *http.Request) {
	start, err := h.QueryDate(r, "start_date")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := h.QueryDate(r, "end_date")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := h.Service.Find(r.Context(), SearchFilter{
		Keyword:   strings.TrimSpace(r.URL.Query().Get("keyword")),
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ExpensesResponse{Expenses: expenses, Total: len(expenses)})
}

func (h *Handler) RecentExpenses(w http.ResponseWriter, r *http.Request) {
	limit, hasLimit, err := h.QueryInt(r, "limit")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if hasLimit && (limit < 1 || limit > MaxRecentLimit) {
		h.WriteError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", MaxRecentLimit))
		return
	}

	expenses, err := h.Service.Recent(r.Context(), limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ExpensesResponse{Expenses: expenses, Total: len(expenses)})
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, NewSummaryResponse(summary))
}

func (h *Handler) SpendingByCategory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.SpendingByCategory(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, NewCategorySpendingResponse(rows))
}

func (h *Handler) MonthlyTrend(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.MonthlyTrend(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, NewMonthlyTotalResponse(rows))
}

// ExportExpenses streams an XLSX workbook, optionally limited to a date range.
func (h *Handler) ExportExpenses(w http.ResponseWriter, r *http.Request) {
	start, err := h.QueryDate(r, "start_date")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := h.QueryDate(r, "end_date")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if (start == nil) != (end == nil) {
		h.WriteError(w, http.StatusBadRequest, "start_date and end_date must be given together")
		return
	}

	expenses, err := h.Service.Export(r.Context(), start, end)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	spending, err := h.Service.SpendingByCategory(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, expenses, spending); err != nil {
		h.Logger.Error("ExportExpenses: failed to build workbook", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to export expenses")
		return
	}

	filename := fmt.Sprintf("expenses-%s.xlsx", time.Now().UTC().Format(DateLayout))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("ExportExpenses: failed to write response", "error", err)
	}
}
