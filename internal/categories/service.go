package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sarishop/sarishop-backend/pkg/db"
	"github.com/sarishop/sarishop-backend/pkg/db/models"
	pkgerrors "github.com/sarishop/sarishop-backend/pkg/errors"
	"github.com/sarishop/sarishop-backend/pkg/pagination"
	"github.com/sarishop/sarishop-backend/pkg/slug"
)

// Service exposes category tree management operations.
type Service interface {
	List(ctx context.Context, filter ListFilter, page pagination.Params) (*pagination.Page[CategoryDTO], error)
	ListTree(ctx context.Context, activeOnly bool) ([]CategoryDTO, error)
	ListFlat(ctx context.Context, activeOnly bool) ([]CategoryDTO, error)
	Search(ctx context.Context, query string) ([]CategoryDTO, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// CreateCategoryInput holds the validated payload to create a category.
type CreateCategoryInput struct {
	Name        string
	Description *string
	Image       *string
	ParentID    *uuid.UUID
	IsActive    *bool
	SortOrder   int
	SEOTitle    *string
	SEODesc     *string
}

// UpdateCategoryInput holds optional mutation values for a category. A nil
// field leaves the column untouched; ParentID uses the set flag so the parent
// can be cleared explicitly.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	Image       *string
	ParentID    *uuid.UUID
	ParentIDSet bool
	IsActive    *bool
	SortOrder   *int
	SEOTitle    *string
	SEODesc     *string
}

type productCounter interface {
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

type service struct {
	repo     *Repository
	products productCounter
}

// NewService constructs a category service instance.
func NewService(repo *Repository, products productCounter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product counter required")
	}
	return &service{repo: repo, products: products}, nil
}

// List returns a page of categories matching the filter.
func (s *service) List(ctx context.Context, filter ListFilter, page pagination.Params) (*pagination.Page[CategoryDTO], error) {
	cats, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	result := pagination.NewPage(NewCategoryDTOs(cats), total, page)
	return &result, nil
}

// ListTree returns the category forest.
func (s *service) ListTree(ctx context.Context, activeOnly bool) ([]CategoryDTO, error) {
	cats, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	return BuildTree(cats, activeOnly), nil
}

// ListFlat returns categories as a flat, display-ordered list.
func (s *service) ListFlat(ctx context.Context, activeOnly bool) ([]CategoryDTO, error) {
	cats, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	if activeOnly {
		visible := cats[:0]
		for _, cat := range cats {
			if cat.IsActive {
				visible = append(visible, cat)
			}
		}
		cats = visible
	}
	return NewCategoryDTOs(cats), nil
}

// Search returns categories matching the query by name.
func (s *service) Search(ctx context.Context, query string) ([]CategoryDTO, error) {
	if strings.TrimSpace(query) == "" {
		return s.ListFlat(ctx, false)
	}
	cats, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: search categories")
	}
	return NewCategoryDTOs(cats), nil
}

// GetCategory loads one category by ID.
func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	cat, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewCategoryDTO(cat), nil
}

// CreateCategory inserts a new category, deriving its slug from the name.
func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if len(name) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must be at least 2 characters")
	}

	if err := s.ensureNameAvailable(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}
	if input.ParentID != nil {
		if _, err := s.findParent(ctx, *input.ParentID); err != nil {
			return nil, err
		}
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	cat := &models.Category{
		Name:        name,
		Slug:        slug.Make(name),
		Description: input.Description,
		Image:       input.Image,
		ParentID:    input.ParentID,
		IsActive:    isActive,
		SortOrder:   input.SortOrder,
		SEOTitle:    input.SEOTitle,
		SEODesc:     input.SEODesc,
	}
	created, err := s.repo.Create(ctx, cat)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateName, "a category with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert category")
	}
	return NewCategoryDTO(created), nil
}

// UpdateCategory applies a partial update. Renames re-derive the slug; parent
// changes are checked against self-reference and ancestry cycles.
func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error) {
	cat, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < 2 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must be at least 2 characters")
		}
		if name != cat.Name {
			if err := s.ensureNameAvailable(ctx, name, id); err != nil {
				return nil, err
			}
			cat.Name = name
			cat.Slug = slug.Make(name)
		}
	}
	if input.Description != nil {
		cat.Description = input.Description
	}
	if input.Image != nil {
		cat.Image = input.Image
	}
	if input.IsActive != nil {
		cat.IsActive = *input.IsActive
	}
	if input.SortOrder != nil {
		cat.SortOrder = *input.SortOrder
	}
	if input.SEOTitle != nil {
		cat.SEOTitle = input.SEOTitle
	}
	if input.SEODesc != nil {
		cat.SEODesc = input.SEODesc
	}
	if input.ParentIDSet {
		if err := s.validateParentChange(ctx, id, input.ParentID); err != nil {
			return nil, err
		}
		cat.ParentID = input.ParentID
	}

	updated, err := s.repo.Update(ctx, cat)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateName, "a category with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update category")
	}
	return NewCategoryDTO(updated), nil
}

// ToggleActive flips the category's visibility flag.
func (s *service) ToggleActive(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	cat, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	cat.IsActive = !cat.IsActive
	updated, err := s.repo.Update(ctx, cat)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: toggle category status")
	}
	return NewCategoryDTO(updated), nil
}

// DeleteCategory removes a category once it has no children and no products.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findCategory(ctx, id); err != nil {
		return err
	}

	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count children")
	}
	if children > 0 {
		return pkgerrors.New(pkgerrors.CodeHasChildren, "category has subcategories; move or delete them first")
	}

	inUse, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count products in category")
	}
	if inUse > 0 {
		return pkgerrors.New(pkgerrors.CodeCategoryInUse, "category has products assigned; reassign them first")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete category")
	}
	return nil
}

// validateParentChange rejects self-parenting and any parent that would make
// the category its own ancestor. The upward walk is bounded by the total
// category count so a corrupt chain cannot loop forever.
func (s *service) validateParentChange(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return pkgerrors.New(pkgerrors.CodeSelfParent, "category cannot be its own parent")
	}

	parent, err := s.findParent(ctx, *parentID)
	if err != nil {
		return err
	}

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count categories")
	}

	current := parent
	for steps := int64(0); current.ParentID != nil; steps++ {
		if steps >= total {
			return pkgerrors.New(pkgerrors.CodeIntegrity, "category ancestry exceeds category count; data is corrupt")
		}
		if *current.ParentID == id {
			return pkgerrors.New(pkgerrors.CodeCircularReference, "category cannot be moved under its own descendant")
		}
		next, err := s.repo.FindByID(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeIntegrity, "category ancestry references a missing category")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load ancestor")
		}
		current = next
	}
	return nil
}

func (s *service) ensureNameAvailable(ctx context.Context, name string, selfID uuid.UUID) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lookup category name")
	}
	if existing.ID == selfID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeDuplicateName, "a category with this name already exists")
}

func (s *service) findCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	cat, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
	}
	return cat, nil
}

func (s *service) findParent(ctx context.Context, parentID uuid.UUID) (*models.Category, error) {
	parent, err := s.repo.FindByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeParentNotFound, "parent category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load parent category")
	}
	return parent, nil
}
