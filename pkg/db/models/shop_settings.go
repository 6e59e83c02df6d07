package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sarishop/sarishop-backend/pkg/enums"
	"github.com/sarishop/sarishop-backend/pkg/types"
)

// ShopSettings is the singleton storefront configuration row. Reads create it
// with defaults when missing.
type ShopSettings struct {
	ID                    uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopName              string           `gorm:"column:shop_name;not null;default:'Sari Shop'"`
	Description           *string          `gorm:"column:description"`
	Logo                  *string          `gorm:"column:logo"`
	Favicon               *string          `gorm:"column:favicon"`
	Currency              enums.Currency   `gorm:"column:currency;type:text;not null;default:'USD'"`
	TaxRate               decimal.Decimal  `gorm:"column:tax_rate;type:numeric(5,2);not null;default:0"`
	ShippingCost          decimal.Decimal  `gorm:"column:shipping_cost;type:numeric(12,2);not null;default:0"`
	FreeShippingThreshold *decimal.Decimal `gorm:"column:free_shipping_threshold;type:numeric(12,2)"`
	MaintenanceMode       bool             `gorm:"column:maintenance_mode;not null;default:false"`
	Contact               *types.Contact   `gorm:"column:contact;type:jsonb;serializer:json"`
	Social                *types.Social    `gorm:"column:social;type:jsonb;serializer:json"`
	Theme                 *types.Theme     `gorm:"column:theme;type:jsonb;serializer:json"`
	CreatedAt             time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
