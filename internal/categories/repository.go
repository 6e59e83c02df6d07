package category

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sarishop/sarishop-backend/pkg/db/models"
	"github.com/sarishop/sarishop-backend/pkg/pagination"
)

// ListFilter narrows category listings. RootOnly wins over ParentID and
// selects top-level categories.
type ListFilter struct {
	Search   string
	ParentID *uuid.UUID
	RootOnly bool
	IsActive *bool
}

// Repository provides category persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a single category.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var cat models.Category
	if err := r.db.WithContext(ctx).First(&cat, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// FindByName loads a category by its exact name.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var cat models.Category
	if err := r.db.WithContext(ctx).First(&cat, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// ListAll returns every category ordered for display.
func (r *Repository) ListAll(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.db.WithContext(ctx).
		Order("sort_order asc, name asc").
		Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

// List returns a display-ordered page of categories matching the filter,
// with the unpaged match count.
func (r *Repository) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.Category, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Category{})
	if q := strings.TrimSpace(filter.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(name) LIKE ? OR lower(coalesce(description, '')) LIKE ?", like, like)
	}
	if filter.RootOnly {
		query = query.Where("parent_id IS NULL")
	} else if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cats []models.Category
	if err := query.
		Order("sort_order asc, name asc").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&cats).Error; err != nil {
		return nil, 0, err
	}
	return cats, total, nil
}

// Search returns categories whose name or description contains the query,
// case-insensitive.
func (r *Repository) Search(ctx context.Context, query string) ([]models.Category, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var cats []models.Category
	if err := r.db.WithContext(ctx).
		Where("lower(name) LIKE ? OR lower(coalesce(description, '')) LIKE ?", like, like).
		Order("sort_order asc, name asc").
		Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

// Create inserts a new category row.
func (r *Repository) Create(ctx context.Context, cat *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(cat).Error; err != nil {
		return nil, err
	}
	return cat, nil
}

// Update saves the full category row.
func (r *Repository) Update(ctx context.Context, cat *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Save(cat).Error; err != nil {
		return nil, err
	}
	return cat, nil
}

// Delete removes a category by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
}

// CountChildren reports how many categories name the given ID as parent.
func (r *Repository) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("parent_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountAll returns the total number of categories.
func (r *Repository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
