package category

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/transport"
)

type ServiceAPI interface {
	ListWithExpenseCounts(ctx context.Context) ([]CategoryWithCount, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	Create(ctx context.Context, dto CreateCategoryDTO) (*Category, error)
	Update(ctx context.Context, id int64, dto UpdateCategoryDTO) (*Category, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	ExpenseCount(ctx context.Context, id int64) (int64, error)
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

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.ListWithExpenseCounts(r.Context())
	if err != nil {
		h.Logger.Error("ListCategories: failed to get categories", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, CategoriesResponse{
		Categories: categories,
		Total:      len(categories),
	})
}

func (h *Handler) GetCategoryStats(w http.ResponseWriter, r *http.Request) {
	total, err := h.Service.Count(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CategoryStatsResponse{TotalCategories: total})
}

func (h *Handler) SearchCategory(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		h.WriteError(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	found, err := h.Service.FindByName(r.Context(), name)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if found == nil {
		h.HandleServiceError(w, internal.NewNotFoundError(
			fmt.Sprintf("Category with name '%s' not found.", name), internal.ErrCodeCategoryNotFound))
		return
	}

	h.writeWithCount(w, r, http.StatusOK, found)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
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

	h.writeWithCount(w, r, http.StatusOK, found)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var dto CreateCategoryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("CreateCategory: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, CategoryWithCount{Category: *created})
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var dto UpdateCategoryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("UpdateCategory: invalid request body", "error", err, "category_id", id)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.writeWithCount(w, r, http.StatusOK, updated)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
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
		"message": "Category deleted successfully",
	})
}

func (h *Handler) writeWithCount(w http.ResponseWriter, r *http.Request, status int, c *Category) {
	count, err := h.Service.ExpenseCount(r.Context(), c.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, status, CategoryWithCount{Category: *c, ExpenseCount: count})
}
