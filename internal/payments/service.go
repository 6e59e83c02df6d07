package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	order "github.com/sarishop/sarishop-backend/internal/orders"
	"github.com/sarishop/sarishop-backend/pkg/db/models"
	"github.com/sarishop/sarishop-backend/pkg/enums"
	pkgerrors "github.com/sarishop/sarishop-backend/pkg/errors"
	"github.com/sarishop/sarishop-backend/pkg/logger"
)

// Gateway is the payment provider surface the service needs. Satisfied by
// pkg/stripe.Client.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, currency string) (*stripe.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	CreateRefund(ctx context.Context, intentID string, amountCents *int64, reason string) (*stripe.Refund, error)
}

// Service exposes the payment side of the order lifecycle.
type Service interface {
	CreateIntent(ctx context.Context, customerID, orderID uuid.UUID) (*IntentDTO, error)
	ConfirmPayment(ctx context.Context, customerID, orderID uuid.UUID, intentID string) (*order.OrderDTO, error)
	Refund(ctx context.Context, input RefundInput) (*order.OrderDTO, error)
}

// RefundInput holds the admin refund request. A nil amount refunds in full.
type RefundInput struct {
	OrderID uuid.UUID
	Amount  *decimal.Decimal
	Reason  string
}

// IntentDTO carries what the storefront needs to collect payment.
type IntentDTO struct {
	PaymentIntentID string          `json:"payment_intent_id"`
	ClientSecret    string          `json:"client_secret"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
}

const defaultRefundReason = "requested_by_customer"

type service struct {
	orders  *order.Repository
	gateway Gateway
	logger  *logger.Logger
}

// NewService constructs a payment service instance.
func NewService(orders *order.Repository, gateway Gateway, logg *logger.Logger) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{orders: orders, gateway: gateway, logger: logg}, nil
}

// CreateIntent mints a payment intent for the order total, or returns the
// intent already attached to the order so retries never double-charge.
func (s *service) CreateIntent(ctx context.Context, customerID, orderID uuid.UUID) (*IntentDTO, error) {
	ord, err := s.findCustomerOrder(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if ord.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	if ord.Status == enums.OrderStatusCancelled || ord.Status == enums.OrderStatusRefunded {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer payable")
	}

	if ord.PaymentIntentID != nil {
		intent, err := s.gateway.GetPaymentIntent(ctx, *ord.PaymentIntentID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeGatewayError, err, "stripe: retrieve intent")
		}
		return newIntentDTO(intent, ord), nil
	}

	amountCents := ord.Total.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
	intent, err := s.gateway.CreatePaymentIntent(ctx, amountCents, ord.Currency.Lower())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGatewayError, err, "stripe: create intent")
	}

	affected, err := s.orders.AttachPaymentIntent(ctx, ord.ID, intent.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: attach intent")
	}
	if affected == 0 {
		// A concurrent request attached a different intent first.
		s.logger.Warn(s.logger.WithPaymentIntentID(ctx, intent.ID), "payment intent lost attach race, abandoning")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already has a payment in progress")
	}
	return newIntentDTO(intent, ord), nil
}

// ConfirmPayment checks the intent's status with the gateway and marks the
// order paid. The gateway is the source of truth; the client's word is never
// trusted. Replays against a paid order converge without error.
func (s *service) ConfirmPayment(ctx context.Context, customerID, orderID uuid.UUID, intentID string) (*order.OrderDTO, error) {
	ord, err := s.findCustomerOrder(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if ord.PaymentIntentID != nil && *ord.PaymentIntentID != intentID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment intent does not belong to this order")
	}

	intent, err := s.gateway.GetPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGatewayError, err, "stripe: retrieve intent")
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, pkgerrors.New(pkgerrors.CodePaymentNotSucceeded, "payment has not succeeded").
			WithDetails(map[string]any{"intent_status": string(intent.Status)})
	}

	if _, err := s.orders.MarkPaid(ctx, ord.ID, intentID, time.Now().UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark order paid")
	}
	return s.loadDTO(ctx, ord.ID)
}

// Refund pushes a refund through the gateway and records it on the order.
// Refunding an already-refunded order is a no-op returning the current state.
func (s *service) Refund(ctx context.Context, input RefundInput) (*order.OrderDTO, error) {
	ord, err := s.findOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if ord.PaymentStatus == enums.PaymentStatusRefunded {
		return order.NewOrderDTO(ord), nil
	}
	if ord.PaymentStatus != enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only paid orders can be refunded")
	}
	if ord.PaymentIntentID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeIntegrity, "paid order has no payment intent")
	}

	amount := ord.Total
	var amountCents *int64
	if input.Amount != nil {
		if input.Amount.IsNegative() || input.Amount.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
		}
		if input.Amount.GreaterThan(ord.Total) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount exceeds order total")
		}
		amount = *input.Amount
		cents := amount.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
		amountCents = &cents
	}
	reason := input.Reason
	if reason == "" {
		reason = defaultRefundReason
	}

	refund, err := s.gateway.CreateRefund(ctx, *ord.PaymentIntentID, amountCents, reason)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGatewayError, err, "stripe: create refund")
	}

	if _, err := s.orders.MarkRefunded(ctx, ord.ID, refund.ID, amount, reason, time.Now().UTC()); err != nil {
		// Money moved at the gateway but the order row did not follow.
		s.logger.Error(s.logger.WithOrderID(ctx, ord.ID.String()), "refund applied at gateway but order update failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeReconciliation, err, "record refund")
	}
	return s.loadDTO(ctx, ord.ID)
}

func newIntentDTO(intent *stripe.PaymentIntent, ord *models.Order) *IntentDTO {
	return &IntentDTO{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          ord.Total,
		Currency:        ord.Currency.String(),
	}
}

func (s *service) findCustomerOrder(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	ord, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return ord, nil
}

func (s *service) findOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	ord, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return ord, nil
}

func (s *service) loadDTO(ctx context.Context, orderID uuid.UUID) (*order.OrderDTO, error) {
	ord, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return order.NewOrderDTO(ord), nil
}
