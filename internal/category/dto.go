package category

import (
	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
)

type CreateCategoryDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Color       *string `json:"color,omitempty"`
}

func (dto CreateCategoryDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(validation.MaxCategoryName)
	v.OptionalField("description", dto.Description).MaxLength(validation.MaxCategoryDescription)
	v.OptionalField("icon", dto.Icon).MaxLength(validation.MaxCategoryIcon)
	v.OptionalField("color", dto.Color).HexColor()
	return v.Validate()
}

// UpdateCategoryDTO carries only the fields the caller wants changed; nil means absent.
type UpdateCategoryDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Color       *string `json:"color,omitempty"`
}

func (dto UpdateCategoryDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.OptionalField("name", dto.Name).Required().MaxLength(validation.MaxCategoryName)
	v.OptionalField("description", dto.Description).MaxLength(validation.MaxCategoryDescription)
	v.OptionalField("icon", dto.Icon).MaxLength(validation.MaxCategoryIcon)
	v.OptionalField("color", dto.Color).HexColor()
	return v.Validate()
}

func (dto UpdateCategoryDTO) IsEmpty() bool {
	return dto.Name == nil && dto.Description == nil && dto.Icon == nil && dto.Color == nil
}

type CategoriesResponse struct {
	Categories []CategoryWithCount `json:"categories"`
	Total      int                 `json:"total"`
}

type CategoryStatsResponse struct {
	TotalCategories int64 `json:"total_categories"`
}
