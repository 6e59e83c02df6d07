package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	order "github.com/sarishop/sarishop-backend/internal/orders"
	product "github.com/sarishop/sarishop-backend/internal/products"
	"github.com/sarishop/sarishop-backend/pkg/db"
	pkgerrors "github.com/sarishop/sarishop-backend/pkg/errors"
	"github.com/sarishop/sarishop-backend/pkg/logger"
)

// Service applies Stripe payment events to orders. Events for intents this
// shop never issued are acknowledged and dropped so Stripe stops retrying.
type Service struct {
	orders   *order.Repository
	products *product.Repository
	db       *db.Client
	logger   *logger.Logger
}

// NewService constructs the webhook service.
func NewService(orders *order.Repository, products *product.Repository, dbClient *db.Client, logg *logger.Logger) (*Service, error) {
	if orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order repo required")
	}
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product repo required")
	}
	if dbClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "db client required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{orders: orders, products: products, db: dbClient, logger: logg}, nil
}

// HandleEvent dispatches a verified Stripe event. Unhandled event types are
// ignored.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		intent, err := decodeIntent(event)
		if err != nil {
			return err
		}
		return s.applySucceeded(ctx, intent)
	case stripe.EventTypePaymentIntentPaymentFailed:
		intent, err := decodeIntent(event)
		if err != nil {
			return err
		}
		return s.applyFailed(ctx, intent)
	default:
		return nil
	}
}

func (s *Service) applySucceeded(ctx context.Context, intent *stripe.PaymentIntent) error {
	ctx = s.logger.WithPaymentIntentID(ctx, intent.ID)

	ord, err := s.orders.FindByPaymentIntentID(ctx, intent.ID)
	if err != nil {
		if isNotFound(err) {
			s.logger.Warn(ctx, "stripe event references unknown payment intent, ignoring")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order by intent")
	}

	affected, err := s.orders.MarkPaid(ctx, ord.ID, intent.ID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark order paid")
	}
	if affected == 0 {
		s.logger.Info(ctx, "order already paid, event converged")
	}
	return nil
}

// applyFailed cancels the order and releases its reserved stock. The
// conditional update inside the transaction keeps replays and late failures
// after a success from restocking twice.
func (s *Service) applyFailed(ctx context.Context, intent *stripe.PaymentIntent) error {
	ctx = s.logger.WithPaymentIntentID(ctx, intent.ID)

	ord, err := s.orders.FindByPaymentIntentID(ctx, intent.ID)
	if err != nil {
		if isNotFound(err) {
			s.logger.Warn(ctx, "payment failure event references unknown payment intent, ignoring")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order by intent")
	}

	now := time.Now().UTC()
	var affected int64
	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.orders.WithTx(tx)
		txProducts := s.products.WithTx(tx)

		n, err := txOrders.MarkFailedByIntent(ctx, intent.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark payment failed")
		}
		affected = n
		if n == 0 {
			return nil
		}
		for _, item := range ord.Items {
			if _, err := txProducts.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: restock product")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply payment failure")
	}
	if affected == 0 {
		s.logger.Info(ctx, "order already settled, failure event ignored")
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func decodeIntent(event *stripe.Event) (*stripe.PaymentIntent, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}
	if intent.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing")
	}
	return &intent, nil
}
