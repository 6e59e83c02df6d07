package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sarishop/sarishop-backend/pkg/db/models"
	pkgerrors "github.com/sarishop/sarishop-backend/pkg/errors"
	"github.com/sarishop/sarishop-backend/pkg/pagination"
	"github.com/sarishop/sarishop-backend/pkg/slug"
)

// Service exposes product catalog operations.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, filter ListFilter, page pagination.Params) (*pagination.Page[ProductDTO], error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListLowStock(ctx context.Context, threshold int) ([]ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name           string
	Description    *string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	CategoryID     *uuid.UUID
	Images         []string
	Stock          int
	SKU            *string
	IsActive       *bool
	IsFeatured     bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	CompareAtPrice *decimal.Decimal
	CategoryID     *uuid.UUID
	CategoryIDSet  bool
	Images         *[]string
	Stock          *int
	SKU            *string
	IsActive       *bool
	IsFeatured     *bool
}

type categoryLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type service struct {
	repo       *Repository
	categories categoryLoader
}

// NewService constructs a product service instance.
func NewService(repo *Repository, categories categoryLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category loader required")
	}
	return &service{repo: repo, categories: categories}, nil
}

// GetProduct loads one product by ID.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	prod, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(prod), nil
}

// ListProducts pages through the catalog.
func (s *service) ListProducts(ctx context.Context, filter ListFilter, page pagination.Params) (*pagination.Page[ProductDTO], error) {
	page = page.Normalize()
	prods, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	result := pagination.NewPage(NewProductDTOs(prods), total, page)
	return &result, nil
}

// CreateProduct inserts a new product, deriving its slug from the name.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.CategoryID != nil {
		if err := s.ensureCategoryExists(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	prod := &models.Product{
		Name:           name,
		Slug:           slug.Make(name),
		Description:    input.Description,
		Price:          input.Price,
		CompareAtPrice: input.CompareAtPrice,
		CategoryID:     input.CategoryID,
		Images:         input.Images,
		Stock:          input.Stock,
		SKU:            input.SKU,
		IsActive:       isActive,
		IsFeatured:     input.IsFeatured,
	}
	created, err := s.repo.Create(ctx, prod)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return s.GetProduct(ctx, created.ID)
}

// UpdateProduct applies a partial update; renames re-derive the slug.
func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	prod, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		prod.Name = name
		prod.Slug = slug.Make(name)
	}
	if input.Description != nil {
		prod.Description = input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		prod.Price = *input.Price
	}
	if input.CompareAtPrice != nil {
		prod.CompareAtPrice = input.CompareAtPrice
	}
	if input.CategoryIDSet {
		if input.CategoryID != nil {
			if err := s.ensureCategoryExists(ctx, *input.CategoryID); err != nil {
				return nil, err
			}
		}
		prod.CategoryID = input.CategoryID
	}
	if input.Images != nil {
		prod.Images = *input.Images
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		prod.Stock = *input.Stock
	}
	if input.SKU != nil {
		prod.SKU = input.SKU
	}
	if input.IsActive != nil {
		prod.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		prod.IsFeatured = *input.IsFeatured
	}

	prod.Category = nil
	if _, err := s.repo.Update(ctx, prod); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product from the catalog.
func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

// ListLowStock returns active products at or below the threshold.
func (s *service) ListLowStock(ctx context.Context, threshold int) ([]ProductDTO, error) {
	if threshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "threshold cannot be negative")
	}
	prods, err := s.repo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list low stock")
	}
	return NewProductDTOs(prods), nil
}

func (s *service) ensureCategoryExists(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
	}
	return nil
}

func (s *service) findProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	prod, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return prod, nil
}
