package shop

import (
	"context"

	"gorm.io/gorm"

	"github.com/sarishop/sarishop-backend/pkg/db/models"
)

// Repository provides shop settings persistence. The table holds a single
// row.
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

// FindFirst loads the settings row.
func (r *Repository) FindFirst(ctx context.Context) (*models.ShopSettings, error) {
	var settings models.ShopSettings
	if err := r.db.WithContext(ctx).
		Order("created_at asc").
		First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// Create inserts a settings row.
func (r *Repository) Create(ctx context.Context, settings *models.ShopSettings) (*models.ShopSettings, error) {
	if err := r.db.WithContext(ctx).Create(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// Update saves the full settings row.
func (r *Repository) Update(ctx context.Context, settings *models.ShopSettings) (*models.ShopSettings, error) {
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}
