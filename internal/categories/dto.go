package category

import (
	"time"

	"github.com/google/uuid"

	"github.com/sarishop/sarishop-backend/pkg/db/models"
)

// CategoryDTO is the category payload returned to clients. Children is
// populated on tree reads only.
type CategoryDTO struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Description *string       `json:"description,omitempty"`
	Image       *string       `json:"image,omitempty"`
	ParentID    *uuid.UUID    `json:"parent_id,omitempty"`
	IsActive    bool          `json:"is_active"`
	SortOrder   int           `json:"sort_order"`
	SEOTitle    *string       `json:"seo_title,omitempty"`
	SEODesc     *string       `json:"seo_description,omitempty"`
	Children    []CategoryDTO `json:"children,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewCategoryDTO maps a category row to its API payload.
func NewCategoryDTO(cat *models.Category) *CategoryDTO {
	if cat == nil {
		return nil
	}
	return &CategoryDTO{
		ID:          cat.ID,
		Name:        cat.Name,
		Slug:        cat.Slug,
		Description: cat.Description,
		Image:       cat.Image,
		ParentID:    cat.ParentID,
		IsActive:    cat.IsActive,
		SortOrder:   cat.SortOrder,
		SEOTitle:    cat.SEOTitle,
		SEODesc:     cat.SEODesc,
		CreatedAt:   cat.CreatedAt,
		UpdatedAt:   cat.UpdatedAt,
	}
}

// NewCategoryDTOs maps a flat list of rows.
func NewCategoryDTOs(cats []models.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(cats))
	for i := range cats {
		out = append(out, *NewCategoryDTO(&cats[i]))
	}
	return out
}
