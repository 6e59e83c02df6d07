package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sarishop/sarishop-backend/pkg/db/models"
)

// ProductDTO is the product payload returned to clients.
type ProductDTO struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Description    *string          `json:"description,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	CategoryID     *uuid.UUID       `json:"category_id,omitempty"`
	CategoryName   *string          `json:"category_name,omitempty"`
	Images         []string         `json:"images"`
	Stock          int              `json:"stock"`
	SKU            *string          `json:"sku,omitempty"`
	IsActive       bool             `json:"is_active"`
	IsFeatured     bool             `json:"is_featured"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewProductDTO maps a product row to its API payload.
func NewProductDTO(prod *models.Product) *ProductDTO {
	if prod == nil {
		return nil
	}
	images := prod.Images
	if images == nil {
		images = []string{}
	}
	dto := &ProductDTO{
		ID:             prod.ID,
		Name:           prod.Name,
		Slug:           prod.Slug,
		Description:    prod.Description,
		Price:          prod.Price,
		CompareAtPrice: prod.CompareAtPrice,
		CategoryID:     prod.CategoryID,
		Images:         images,
		Stock:          prod.Stock,
		SKU:            prod.SKU,
		IsActive:       prod.IsActive,
		IsFeatured:     prod.IsFeatured,
		CreatedAt:      prod.CreatedAt,
		UpdatedAt:      prod.UpdatedAt,
	}
	if prod.Category != nil {
		dto.CategoryName = &prod.Category.Name
	}
	return dto
}

// NewProductDTOs maps a list of product rows.
func NewProductDTOs(prods []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(prods))
	for i := range prods {
		out = append(out, *NewProductDTO(&prods[i]))
	}
	return out
}
