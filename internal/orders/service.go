package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	product "github.com/sarishop/sarishop-backend/internal/products"
	"github.com/sarishop/sarishop-backend/pkg/db"
	"github.com/sarishop/sarishop-backend/pkg/db/models"
	"github.com/sarishop/sarishop-backend/pkg/enums"
	pkgerrors "github.com/sarishop/sarishop-backend/pkg/errors"
	"github.com/sarishop/sarishop-backend/pkg/pagination"
	"github.com/sarishop/sarishop-backend/pkg/types"
)

// Service exposes order lifecycle operations.
type Service interface {
	CreateOrder(ctx context.Context, customerID uuid.UUID, input CreateOrderInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, customerID, orderID uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, customerID uuid.UUID, page pagination.Params) (*pagination.Page[OrderDTO], error)
	CancelOrder(ctx context.Context, customerID, orderID uuid.UUID) (*OrderDTO, error)

	AdminGetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	AdminListOrders(ctx context.Context, filter ListFilter, page pagination.Params) (*pagination.Page[OrderDTO], error)
	AdminSetStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
}

// CreateOrderInput holds the validated payload to place an order.
type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress types.Address
	BillingAddress  *types.Address
	Notes           *string
}

// OrderItemInput references a product and quantity at checkout.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type settingsReader interface {
	Settings(ctx context.Context) (*models.ShopSettings, error)
}

type service struct {
	repo     *Repository
	products *product.Repository
	settings settingsReader
	dbClient *db.Client
}

// NewService constructs an order service instance.
func NewService(repo *Repository, products *product.Repository, settings settingsReader, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings reader required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, products: products, settings: settings, dbClient: dbClient}, nil
}

// CreateOrder prices the requested items, reserves stock, and persists the
// order atomically. Totals come from the current shop settings.
func (s *service) CreateOrder(ctx context.Context, customerID uuid.UUID, input CreateOrderInput) (*OrderDTO, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "shipping address")
	}
	if input.BillingAddress != nil {
		if err := input.BillingAddress.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "billing address")
		}
	}

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, err
	}

	billing := input.BillingAddress
	if billing == nil {
		shipping := input.ShippingAddress
		billing = &shipping
	}

	var createdID uuid.UUID
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.repo.WithTx(tx)
		txProducts := s.products.WithTx(tx)

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, line := range input.Items {
			prod, err := txProducts.FindByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
			}
			if !prod.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, "product "+prod.Name+" is not available")
			}

			affected, err := txProducts.AdjustStock(ctx, prod.ID, -line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reserve stock")
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for "+prod.Name)
			}

			lineTotal := prod.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			items = append(items, models.OrderItem{
				ProductID:   prod.ID,
				ProductName: prod.Name,
				UnitPrice:   prod.Price,
				Quantity:    line.Quantity,
				LineTotal:   lineTotal,
			})
		}

		tax := subtotal.Mul(settings.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
		shippingCost := settings.ShippingCost
		if settings.FreeShippingThreshold != nil && subtotal.GreaterThanOrEqual(*settings.FreeShippingThreshold) {
			shippingCost = decimal.Zero
		}

		shipping := input.ShippingAddress
		order := &models.Order{
			OrderNumber:     newOrderNumber(),
			CustomerID:      customerID,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusPending,
			Currency:        settings.Currency,
			Subtotal:        subtotal,
			Tax:             tax,
			ShippingCost:    shippingCost,
			Total:           subtotal.Add(tax).Add(shippingCost),
			ShippingAddress: &shipping,
			BillingAddress:  billing,
			Notes:           input.Notes,
			Items:           items,
		}
		created, err := txOrders.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		createdID = created.ID
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	return s.loadDTO(ctx, createdID)
}

// GetOrder loads an order owned by the customer.
func (s *service) GetOrder(ctx context.Context, customerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return NewOrderDTO(order), nil
}

// ListOrders pages through the customer's own orders.
func (s *service) ListOrders(ctx context.Context, customerID uuid.UUID, page pagination.Params) (*pagination.Page[OrderDTO], error) {
	page = page.Normalize()
	orders, total, err := s.repo.List(ctx, ListFilter{CustomerID: &customerID}, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	result := pagination.NewPage(NewOrderDTOs(orders), total, page)
	return &result, nil
}

// CancelOrder lets a customer back out while the order is still pending and
// unpaid. Reserved stock goes back on the shelf.
func (s *service) CancelOrder(ctx context.Context, customerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.Status != enums.OrderStatusPending || order.PaymentStatus != enums.PaymentStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")
	}

	if err := s.cancelAndRestock(ctx, order); err != nil {
		return nil, err
	}
	return s.loadDTO(ctx, orderID)
}

// AdminGetOrder loads any order.
func (s *service) AdminGetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

// AdminListOrders pages through all orders with optional filters.
func (s *service) AdminListOrders(ctx context.Context, filter ListFilter, page pagination.Params) (*pagination.Page[OrderDTO], error) {
	page = page.Normalize()
	orders, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	result := pagination.NewPage(NewOrderDTOs(orders), total, page)
	return &result, nil
}

// AdminSetStatus moves an order along the fulfillment lifecycle. Setting the
// current status again is a no-op; cancelling restocks the items.
func (s *service) AdminSetStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(order.Status, status); err != nil {
		return nil, err
	}
	if order.Status == status {
		return NewOrderDTO(order), nil
	}

	if status == enums.OrderStatusCancelled {
		if err := s.cancelAndRestock(ctx, order); err != nil {
			return nil, err
		}
		return s.loadDTO(ctx, orderID)
	}

	order.Status = status
	if _, err := s.repo.Update(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
	}
	return s.loadDTO(ctx, orderID)
}

func (s *service) cancelAndRestock(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.repo.WithTx(tx)
		txProducts := s.products.WithTx(tx)

		order.Status = enums.OrderStatusCancelled
		order.CancelledAt = &now
		if _, err := txOrders.Update(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: cancel order")
		}
		for _, item := range order.Items {
			if _, err := txProducts.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: restock product")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	return nil
}

func (s *service) loadDTO(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

func (s *service) findOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return order, nil
}

func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
