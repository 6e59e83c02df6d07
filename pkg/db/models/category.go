package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node in the storefront category tree. ParentID is nil for
// top-level categories.
type Category struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"column:name;not null;uniqueIndex"`
	Slug        string     `gorm:"column:slug;not null"`
	Description *string    `gorm:"column:description"`
	Image       *string    `gorm:"column:image"`
	ParentID    *uuid.UUID `gorm:"column:parent_id;type:uuid;index"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	SortOrder   int        `gorm:"column:sort_order;not null;default:0"`
	SEOTitle    *string    `gorm:"column:seo_title"`
	SEODesc     *string    `gorm:"column:seo_description"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
