package shop

import (
	"time"

	"github.com/shopspring/decimal"

	order "github.com/sarishop/sarishop-backend/internal/orders"
	product "github.com/sarishop/sarishop-backend/internal/products"
	"github.com/sarishop/sarishop-backend/pkg/db/models"
	"github.com/sarishop/sarishop-backend/pkg/types"
)

// SettingsDTO is the storefront configuration payload.
type SettingsDTO struct {
	ShopName              string           `json:"shop_name"`
	Description           *string          `json:"description,omitempty"`
	Logo                  *string          `json:"logo,omitempty"`
	Favicon               *string          `json:"favicon,omitempty"`
	Currency              string           `json:"currency"`
	TaxRate               decimal.Decimal  `json:"tax_rate"`
	ShippingCost          decimal.Decimal  `json:"shipping_cost"`
	FreeShippingThreshold *decimal.Decimal `json:"free_shipping_threshold,omitempty"`
	MaintenanceMode       bool             `json:"maintenance_mode"`
	Contact               *types.Contact   `json:"contact,omitempty"`
	Social                *types.Social    `json:"social,omitempty"`
	Theme                 *types.Theme     `json:"theme,omitempty"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// StatsDTO is the admin dashboard snapshot.
type StatsDTO struct {
	TotalProducts    int64                `json:"total_products"`
	TotalOrders      int64                `json:"total_orders"`
	TotalCustomers   int64                `json:"total_customers"`
	TotalRevenue     decimal.Decimal      `json:"total_revenue"`
	OrdersByStatus   map[string]int64     `json:"orders_by_status"`
	RecentOrders     []order.OrderDTO     `json:"recent_orders"`
	LowStockProducts []product.ProductDTO `json:"low_stock_products"`
}

// NewSettingsDTO maps the settings row to its API payload.
func NewSettingsDTO(settings *models.ShopSettings) *SettingsDTO {
	if settings == nil {
		return nil
	}
	return &SettingsDTO{
		ShopName:              settings.ShopName,
		Description:           settings.Description,
		Logo:                  settings.Logo,
		Favicon:               settings.Favicon,
		Currency:              settings.Currency.String(),
		TaxRate:               settings.TaxRate,
		ShippingCost:          settings.ShippingCost,
		FreeShippingThreshold: settings.FreeShippingThreshold,
		MaintenanceMode:       settings.MaintenanceMode,
		Contact:               settings.Contact,
		Social:                settings.Social,
		Theme:                 settings.Theme,
		UpdatedAt:             settings.UpdatedAt,
	}
}
