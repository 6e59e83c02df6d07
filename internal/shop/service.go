package shop

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	order "github.com/sarishop/sarishop-backend/internal/orders"
	product "github.com/sarishop/sarishop-backend/internal/products"
	"github.com/sarishop/sarishop-backend/pkg/db/models"
	"github.com/sarishop/sarishop-backend/pkg/enums"
	pkgerrors "github.com/sarishop/sarishop-backend/pkg/errors"
	"github.com/sarishop/sarishop-backend/pkg/types"
)

const (
	defaultShopName    = "Sari Shop"
	defaultDescription = "Your one-stop destination for beautiful saris"

	defaultPrimaryColor   = "#6366f1"
	defaultSecondaryColor = "#f59e0b"
	defaultAccentColor    = "#10b981"

	lowStockThreshold = 10
	recentOrderLimit  = 5
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Service exposes storefront configuration and the admin dashboard.
type Service interface {
	GetSettings(ctx context.Context) (*SettingsDTO, error)
	Settings(ctx context.Context) (*models.ShopSettings, error)
	UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*SettingsDTO, error)
	SetLogo(ctx context.Context, url string) (*SettingsDTO, error)
	SetFavicon(ctx context.Context, url string) (*SettingsDTO, error)
	UpdateTheme(ctx context.Context, input ThemeInput) (*SettingsDTO, error)
	SetMaintenanceMode(ctx context.Context, enabled bool) (*SettingsDTO, error)
	Stats(ctx context.Context) (*StatsDTO, error)
}

// UpdateSettingsInput holds optional mutation values for the shop settings.
type UpdateSettingsInput struct {
	ShopName              *string
	Description           *string
	Currency              *string
	TaxRate               *decimal.Decimal
	ShippingCost          *decimal.Decimal
	FreeShippingThreshold *decimal.Decimal
	Contact               *types.Contact
	Social                *types.Social
}

// ThemeInput carries optional hex colors.
type ThemeInput struct {
	PrimaryColor   *string
	SecondaryColor *string
	AccentColor    *string
}

type customerCounter interface {
	CountByRole(ctx context.Context, role enums.Role) (int64, error)
}

type service struct {
	repo      *Repository
	orders    *order.Repository
	products  *product.Repository
	customers customerCounter
}

// NewService constructs a shop service instance.
func NewService(repo *Repository, orders *order.Repository, products *product.Repository, customers customerCounter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer counter required")
	}
	return &service{repo: repo, orders: orders, products: products, customers: customers}, nil
}

// GetSettings returns the storefront configuration for clients.
func (s *service) GetSettings(ctx context.Context) (*SettingsDTO, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return NewSettingsDTO(settings), nil
}

// Settings loads the settings row, creating it with defaults on first read.
func (s *service) Settings(ctx context.Context) (*models.ShopSettings, error) {
	settings, err := s.repo.FindFirst(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load shop settings")
	}

	created, err := s.repo.Create(ctx, defaultSettings())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: seed shop settings")
	}
	return created, nil
}

// UpdateSettings applies a partial update to the general settings.
func (s *service) UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*SettingsDTO, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	if input.ShopName != nil {
		name := strings.TrimSpace(*input.ShopName)
		if name == "" || len(name) > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name must be between 1 and 100 characters")
		}
		settings.ShopName = name
	}
	if input.Description != nil {
		if len(*input.Description) > 500 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "description must be at most 500 characters")
		}
		settings.Description = input.Description
	}
	if input.Currency != nil {
		currency, err := enums.ParseCurrency(*input.Currency)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
		}
		settings.Currency = currency
	}
	if input.TaxRate != nil {
		if input.TaxRate.IsNegative() || input.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax rate must be between 0 and 100")
		}
		settings.TaxRate = *input.TaxRate
	}
	if input.ShippingCost != nil {
		if input.ShippingCost.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping cost cannot be negative")
		}
		settings.ShippingCost = *input.ShippingCost
	}
	if input.FreeShippingThreshold != nil {
		if input.FreeShippingThreshold.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "free shipping threshold cannot be negative")
		}
		settings.FreeShippingThreshold = input.FreeShippingThreshold
	}
	if input.Contact != nil {
		settings.Contact = input.Contact
	}
	if input.Social != nil {
		settings.Social = input.Social
	}

	return s.save(ctx, settings)
}

// SetLogo replaces the logo URL.
func (s *service) SetLogo(ctx context.Context, url string) (*SettingsDTO, error) {
	if strings.TrimSpace(url) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logo url is required")
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	settings.Logo = &url
	return s.save(ctx, settings)
}

// SetFavicon replaces the favicon URL.
func (s *service) SetFavicon(ctx context.Context, url string) (*SettingsDTO, error) {
	if strings.TrimSpace(url) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "favicon url is required")
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	settings.Favicon = &url
	return s.save(ctx, settings)
}

// UpdateTheme changes individual theme colors, keeping the rest.
func (s *service) UpdateTheme(ctx context.Context, input ThemeInput) (*SettingsDTO, error) {
	for _, color := range []*string{input.PrimaryColor, input.SecondaryColor, input.AccentColor} {
		if color != nil && !hexColorPattern.MatchString(*color) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "colors must be 6-digit hex values")
		}
	}

	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	theme := settings.Theme
	if theme == nil {
		theme = defaultTheme()
	}
	if input.PrimaryColor != nil {
		theme.PrimaryColor = *input.PrimaryColor
	}
	if input.SecondaryColor != nil {
		theme.SecondaryColor = *input.SecondaryColor
	}
	if input.AccentColor != nil {
		theme.AccentColor = *input.AccentColor
	}
	settings.Theme = theme
	return s.save(ctx, settings)
}

// SetMaintenanceMode flips the storefront maintenance flag.
func (s *service) SetMaintenanceMode(ctx context.Context, enabled bool) (*SettingsDTO, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	settings.MaintenanceMode = enabled
	return s.save(ctx, settings)
}

// Stats assembles the admin dashboard snapshot.
func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	totalProducts, err := s.products.CountAll(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count products")
	}

	byStatus, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count orders")
	}
	var totalOrders int64
	ordersByStatus := make(map[string]int64, len(byStatus))
	for status, count := range byStatus {
		totalOrders += count
		ordersByStatus[status.String()] = count
	}

	totalCustomers, err := s.customers.CountByRole(ctx, enums.RoleCustomer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count customers")
	}

	revenue, err := s.orders.TotalRevenue(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum revenue")
	}

	recent, err := s.orders.ListRecent(ctx, recentOrderLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: recent orders")
	}

	lowStock, err := s.products.ListLowStock(ctx, lowStockThreshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: low stock products")
	}

	return &StatsDTO{
		TotalProducts:    totalProducts,
		TotalOrders:      totalOrders,
		TotalCustomers:   totalCustomers,
		TotalRevenue:     revenue,
		OrdersByStatus:   ordersByStatus,
		RecentOrders:     order.NewOrderDTOs(recent),
		LowStockProducts: product.NewProductDTOs(lowStock),
	}, nil
}

func (s *service) save(ctx context.Context, settings *models.ShopSettings) (*SettingsDTO, error) {
	updated, err := s.repo.Update(ctx, settings)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save shop settings")
	}
	return NewSettingsDTO(updated), nil
}

func defaultSettings() *models.ShopSettings {
	description := defaultDescription
	return &models.ShopSettings{
		ShopName:     defaultShopName,
		Description:  &description,
		Currency:     enums.CurrencyUSD,
		TaxRate:      decimal.Zero,
		ShippingCost: decimal.Zero,
		Theme:        defaultTheme(),
	}
}

func defaultTheme() *types.Theme {
	return &types.Theme{
		PrimaryColor:   defaultPrimaryColor,
		SecondaryColor: defaultSecondaryColor,
		AccentColor:    defaultAccentColor,
	}
}
