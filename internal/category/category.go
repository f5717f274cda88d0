package category

import (
	"errors"
	"time"

	categoryDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/category"
)

const (
	DefaultIcon  = "fas fa-tag"
	DefaultColor = "#6C757D"
)

var (
	// ErrNameTaken is returned by repositories when the unique name index rejects a write.
	ErrNameTaken = errors.New("category name already taken")
	// ErrNotFound is returned by repositories when the row vanished before a write.
	ErrNotFound = errors.New("category not found")
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryWithCount is a category together with the number of expenses filed under it.
type CategoryWithCount struct {
	Category
	ExpenseCount int64 `json:"expense_count"`
}

func NewCategory(dto CreateCategoryDTO) *Category {
	c := &Category{
		Name:        dto.Name,
		Description: emptyToNil(dto.Description),
		Icon:        DefaultIcon,
		Color:       DefaultColor,
	}
	if dto.Icon != nil && *dto.Icon != "" {
		c.Icon = *dto.Icon
	}
	if dto.Color != nil && *dto.Color != "" {
		c.Color = *dto.Color
	}
	return c
}

// Apply copies the fields present in dto onto c.
func (c *Category) Apply(dto UpdateCategoryDTO) {
	if dto.Name != nil {
		c.Name = *dto.Name
	}
	if dto.Description != nil {
		c.Description = emptyToNil(dto.Description)
	}
	if dto.Icon != nil {
		c.Icon = *dto.Icon
	}
	if dto.Color != nil {
		c.Color = *dto.Color
	}
}

// SameName reports whether name refers to this category under case-insensitive comparison.
func (c *Category) SameName(name string) bool {
	return categoryDatamodel.NormalizeName(c.Name) == categoryDatamodel.NormalizeName(name)
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func ToDataModel(c *Category) *categoryDatamodel.Category {
	return &categoryDatamodel.Category{
		ID:          c.ID,
		Name:        c.Name,
		NameKey:     categoryDatamodel.NormalizeName(c.Name),
		Description: c.Description,
		Icon:        c.Icon,
		Color:       c.Color,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromDataModel(c *categoryDatamodel.Category) *Category {
	return &Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
		Color:       c.Color,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromDataModelSlice(categories []*categoryDatamodel.Category) []*Category {
	result := make([]*Category, len(categories))
	for i, c := range categories {
		result[i] = FromDataModel(c)
	}
	return result
}
