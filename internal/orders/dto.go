package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sarishop/sarishop-backend/pkg/db/models"
	"github.com/sarishop/sarishop-backend/pkg/types"
)

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID              uuid.UUID        `json:"id"`
	OrderNumber     string           `json:"order_number"`
	CustomerID      uuid.UUID        `json:"customer_id"`
	Status          string           `json:"status"`
	PaymentStatus   string           `json:"payment_status"`
	Currency        string           `json:"currency"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	Tax             decimal.Decimal  `json:"tax"`
	ShippingCost    decimal.Decimal  `json:"shipping_cost"`
	Total           decimal.Decimal  `json:"total"`
	ShippingAddress *types.Address   `json:"shipping_address,omitempty"`
	BillingAddress  *types.Address   `json:"billing_address,omitempty"`
	PaymentIntentID *string          `json:"payment_intent_id,omitempty"`
	RefundID        *string          `json:"refund_id,omitempty"`
	RefundAmount    *decimal.Decimal `json:"refund_amount,omitempty"`
	RefundReason    *string          `json:"refund_reason,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	Items           []OrderItemDTO   `json:"items"`
	PaidAt          *time.Time       `json:"paid_at,omitempty"`
	CancelledAt     *time.Time       `json:"cancelled_at,omitempty"`
	RefundedAt      *time.Time       `json:"refunded_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// OrderItemDTO is a priced order line.
type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// NewOrderDTO maps an order row and its items to the API payload.
func NewOrderDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		})
	}
	return &OrderDTO{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerID:      order.CustomerID,
		Status:          order.Status.String(),
		PaymentStatus:   order.PaymentStatus.String(),
		Currency:        order.Currency.String(),
		Subtotal:        order.Subtotal,
		Tax:             order.Tax,
		ShippingCost:    order.ShippingCost,
		Total:           order.Total,
		ShippingAddress: order.ShippingAddress,
		BillingAddress:  order.BillingAddress,
		PaymentIntentID: order.PaymentIntentID,
		RefundID:        order.RefundID,
		RefundAmount:    order.RefundAmount,
		RefundReason:    order.RefundReason,
		Notes:           order.Notes,
		Items:           items,
		PaidAt:          order.PaidAt,
		CancelledAt:     order.CancelledAt,
		RefundedAt:      order.RefundedAt,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

// NewOrderDTOs maps a list of order rows.
func NewOrderDTOs(orders []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, *NewOrderDTO(&orders[i]))
	}
	return out
}
