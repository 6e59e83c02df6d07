package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sarishop/sarishop-backend/api/responses"
	"github.com/sarishop/sarishop-backend/api/validators"
	productsvc "github.com/sarishop/sarishop-backend/internal/products"
	pkgerrors "github.com/sarishop/sarishop-backend/pkg/errors"
	"github.com/sarishop/sarishop-backend/pkg/logger"
)

// ListProducts pages through the catalog. The storefront sees active products
// only; the admin listing includes everything.
func ListProducts(svc productsvc.Service, adminView bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := productsvc.ListFilter{
			Query:      strings.TrimSpace(r.URL.Query().Get("q")),
			ActiveOnly: !adminView,
		}
		if raw := r.URL.Query().Get("category_id"); raw != "" {
			categoryID, err := parseOptionalUUID(&raw, "category_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filter.CategoryID = categoryID
		}
		if raw := r.URL.Query().Get("featured"); raw != "" {
			featured := raw == "true"
			filter.Featured = &featured
		}

		products, err := svc.ListProducts(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

// GetProduct returns a single product by id.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

type createProductRequest struct {
	Name           string   `json:"name" validate:"required,max=200"`
	Description    *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price          string   `json:"price" validate:"required"`
	CompareAtPrice *string  `json:"compare_at_price,omitempty"`
	CategoryID     *string  `json:"category_id,omitempty"`
	Images         []string `json:"images,omitempty"`
	Stock          int      `json:"stock" validate:"min=0"`
	SKU            *string  `json:"sku,omitempty" validate:"omitempty,max=100"`
	IsActive       *bool    `json:"is_active,omitempty"`
	IsFeatured     bool     `json:"is_featured,omitempty"`
}

type updateProductRequest struct {
	Name           *string   `json:"name,omitempty" validate:"omitempty,max=200"`
	Description    *string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price          *string   `json:"price,omitempty"`
	CompareAtPrice *string   `json:"compare_at_price,omitempty"`
	CategoryID     *string   `json:"category_id,omitempty"`
	ClearCategory  bool      `json:"clear_category,omitempty"`
	Images         *[]string `json:"images,omitempty"`
	Stock          *int      `json:"stock,omitempty" validate:"omitempty,min=0"`
	SKU            *string   `json:"sku,omitempty" validate:"omitempty,max=100"`
	IsActive       *bool     `json:"is_active,omitempty"`
	IsFeatured     *bool     `json:"is_featured,omitempty"`
}

// AdminCreateProduct adds a product to the catalog.
func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := parseMoney(payload.Price, "price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := productsvc.CreateProductInput{
			Name:        payload.Name,
			Description: payload.Description,
			Price:       *price,
			Images:      payload.Images,
			Stock:       payload.Stock,
			SKU:         payload.SKU,
			IsActive:    payload.IsActive,
			IsFeatured:  payload.IsFeatured,
		}
		if payload.CompareAtPrice != nil {
			compareAt, err := parseMoney(*payload.CompareAtPrice, "compare_at_price")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.CompareAtPrice = compareAt
		}
		categoryID, err := parseOptionalUUID(payload.CategoryID, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.CategoryID = categoryID

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct mutates a product.
func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := productsvc.UpdateProductInput{
			Name:        payload.Name,
			Description: payload.Description,
			Images:      payload.Images,
			Stock:       payload.Stock,
			SKU:         payload.SKU,
			IsActive:    payload.IsActive,
			IsFeatured:  payload.IsFeatured,
		}
		if payload.Price != nil {
			price, err := parseMoney(*payload.Price, "price")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Price = price
		}
		if payload.CompareAtPrice != nil {
			compareAt, err := parseMoney(*payload.CompareAtPrice, "compare_at_price")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.CompareAtPrice = compareAt
		}
		if payload.ClearCategory {
			input.CategoryIDSet = true
		} else if payload.CategoryID != nil {
			categoryID, err := parseOptionalUUID(payload.CategoryID, "category_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.CategoryID = categoryID
			input.CategoryIDSet = true
		}

		product, err := svc.UpdateProduct(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes a product from the catalog.
func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminLowStockProducts lists products at or below the stock threshold.
func AdminLowStockProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		threshold, err := validators.ParseQueryInt(r, "threshold", 10, 0, 100000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.ListLowStock(r.Context(), threshold)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

func parseMoney(raw, field string) (*decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount").WithDetails(map[string]any{"field": field})
	}
	if value.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative").WithDetails(map[string]any{"field": field})
	}
	return &value, nil
}
