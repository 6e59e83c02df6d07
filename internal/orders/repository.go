package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sarishop/sarishop-backend/pkg/db/models"
	"github.com/sarishop/sarishop-backend/pkg/enums"
	"github.com/sarishop/sarishop-backend/pkg/pagination"
)

// ListFilter narrows admin order listings.
type ListFilter struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	CustomerID    *uuid.UUID
}

// Repository provides order persistence.
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

// Create inserts the order and its items in one go.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByPaymentIntentID loads the order carrying the Stripe intent, if any.
func (r *Repository) FindByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "payment_intent_id = ?", intentID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns a page of orders matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.
		Preload("Items").
		Order("created_at desc").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Update saves the full order row.
func (r *Repository) Update(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// AttachPaymentIntent stores the intent on the order only while the column is
// empty or already carries the same intent. Returns rows affected so callers
// can detect a competing intent.
func (r *Repository) AttachPaymentIntent(ctx context.Context, orderID uuid.UUID, intentID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND (payment_intent_id IS NULL OR payment_intent_id = ?)", orderID, intentID).
		Update("payment_intent_id", intentID)
	return res.RowsAffected, res.Error
}

// MarkPaid moves the order to paid/confirmed. The update converges: replays
// against an already-paid order touch nothing.
func (r *Repository) MarkPaid(ctx context.Context, orderID uuid.UUID, intentID string, paidAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status <> ?", orderID, enums.PaymentStatusPaid).
		Updates(map[string]any{
			"payment_status":    enums.PaymentStatusPaid,
			"status":            enums.OrderStatusConfirmed,
			"payment_intent_id": intentID,
			"paid_at":           paidAt,
		})
	return res.RowsAffected, res.Error
}

// MarkFailedByIntent moves the order to cancelled/failed unless the payment
// already settled. Replays and late failures after success touch nothing.
func (r *Repository) MarkFailedByIntent(ctx context.Context, intentID string, failedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("payment_intent_id = ? AND payment_status = ?", intentID, enums.PaymentStatusPending).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusFailed,
			"status":         enums.OrderStatusCancelled,
			"cancelled_at":   failedAt,
		})
	return res.RowsAffected, res.Error
}

// MarkRefunded records the refund outcome on the order.
func (r *Repository) MarkRefunded(ctx context.Context, orderID uuid.UUID, refundID string, amount decimal.Decimal, reason string, refundedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status <> ?", orderID, enums.PaymentStatusRefunded).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusRefunded,
			"status":         enums.OrderStatusRefunded,
			"refund_id":      refundID,
			"refund_amount":  amount,
			"refund_reason":  reason,
			"refunded_at":    refundedAt,
		})
	return res.RowsAffected, res.Error
}

// CountByStatus groups order counts for the admin dashboard.
func (r *Repository) CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	type row struct {
		Status enums.OrderStatus
		Total  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[enums.OrderStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}

// TotalRevenue sums the total of every delivered order.
func (r *Repository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var out struct {
		Revenue decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("coalesce(sum(total), 0) as revenue").
		Where("status = ?", enums.OrderStatusDelivered).
		Scan(&out).Error; err != nil {
		return decimal.Zero, err
	}
	return out.Revenue, nil
}

// TotalSpentByCustomer sums the total of a customer's delivered orders.
func (r *Repository) TotalSpentByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	var out struct {
		Spent decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("coalesce(sum(total), 0) as spent").
		Where("customer_id = ? AND status = ?", customerID, enums.OrderStatusDelivered).
		Scan(&out).Error; err != nil {
		return decimal.Zero, err
	}
	return out.Spent, nil
}

// ListRecent returns the newest orders for the admin dashboard.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at desc").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
