package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	order "github.com/sarishop/sarishop-backend/internal/orders"
	product "github.com/sarishop/sarishop-backend/internal/products"
	"github.com/sarishop/sarishop-backend/pkg/db"
	"github.com/sarishop/sarishop-backend/pkg/db/models"
	"github.com/sarishop/sarishop-backend/pkg/enums"
	"github.com/sarishop/sarishop-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, tx *gorm.DB) *Service {
	t.Helper()
	svc, err := NewService(order.NewRepository(tx), product.NewRepository(tx), db.NewFromConn(tx), testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedProduct(t *testing.T, tx *gorm.DB, stock int) *models.Product {
	t.Helper()
	prod := &models.Product{
		ID:    uuid.New(),
		Name:  fmt.Sprintf("Hook Sari %s", uuid.NewString()[:8]),
		Slug:  fmt.Sprintf("hook-sari-%s", uuid.NewString()[:8]),
		Price: decimal.NewFromInt(40),
		Stock: stock,
	}
	if err := tx.Create(prod).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return prod
}

func seedOrderItem(t *testing.T, tx *gorm.DB, ord *models.Order, prod *models.Product, qty int) {
	t.Helper()
	item := &models.OrderItem{
		ID:          uuid.New(),
		OrderID:     ord.ID,
		ProductID:   prod.ID,
		ProductName: prod.Name,
		UnitPrice:   prod.Price,
		Quantity:    qty,
		LineTotal:   prod.Price.Mul(decimal.NewFromInt(int64(qty))),
	}
	if err := tx.Create(item).Error; err != nil {
		t.Fatalf("create order item: %v", err)
	}
}

func seedOrderWithIntent(t *testing.T, tx *gorm.DB, intentID string) *models.Order {
	t.Helper()
	customer := &models.Customer{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("hook_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "Hook",
		LastName:     "Tester",
		Role:         enums.RoleCustomer,
		IsActive:     true,
	}
	if err := tx.Create(customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	ord := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     fmt.Sprintf("ORD-TEST-%s", uuid.NewString()[:8]),
		CustomerID:      customer.ID,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		Currency:        enums.CurrencyUSD,
		Subtotal:        decimal.NewFromInt(40),
		Total:           decimal.NewFromInt(40),
		PaymentIntentID: &intentID,
	}
	if err := tx.Create(ord).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return ord
}

func intentEvent(t *testing.T, eventType stripe.EventType, intentID string) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"id": intentID, "object": "payment_intent"})
	if err != nil {
		t.Fatalf("marshal intent: %v", err)
	}
	return &stripe.Event{
		ID:   "evt_" + uuid.NewString(),
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleEventPaymentSucceeded(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	svc := newTestService(t, tx)
	ctx := context.Background()

	intentID := "pi_hook_" + uuid.NewString()[:8]
	ord := seedOrderWithIntent(t, tx, intentID)

	event := intentEvent(t, stripe.EventTypePaymentIntentSucceeded, intentID)
	if err := svc.HandleEvent(ctx, event); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	var reloaded models.Order
	if err := tx.First(&reloaded, "id = ?", ord.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("payment status = %s, want paid", reloaded.PaymentStatus)
	}
	if reloaded.Status != enums.OrderStatusConfirmed {
		t.Fatalf("status = %s, want confirmed", reloaded.Status)
	}
	if reloaded.PaidAt == nil {
		t.Fatal("expected paid_at set")
	}

	// Redelivery converges without touching paid_at.
	firstPaidAt := *reloaded.PaidAt
	if err := svc.HandleEvent(ctx, event); err != nil {
		t.Fatalf("handle redelivery: %v", err)
	}
	if err := tx.First(&reloaded, "id = ?", ord.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if !reloaded.PaidAt.Equal(firstPaidAt) {
		t.Fatalf("paid_at moved on redelivery: %v then %v", firstPaidAt, reloaded.PaidAt)
	}
}

func TestHandleEventPaymentFailed(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	svc := newTestService(t, tx)
	ctx := context.Background()

	intentID := "pi_hook_" + uuid.NewString()[:8]
	ord := seedOrderWithIntent(t, tx, intentID)
	prod := seedProduct(t, tx, 3)
	seedOrderItem(t, tx, ord, prod, 2)

	if err := svc.HandleEvent(ctx, intentEvent(t, stripe.EventTypePaymentIntentPaymentFailed, intentID)); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	var reloaded models.Order
	if err := tx.First(&reloaded, "id = ?", ord.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.PaymentStatus != enums.PaymentStatusFailed {
		t.Fatalf("payment status = %s, want failed", reloaded.PaymentStatus)
	}
	if reloaded.Status != enums.OrderStatusCancelled {
		t.Fatalf("status = %s, want cancelled", reloaded.Status)
	}
	if reloaded.CancelledAt == nil {
		t.Fatal("cancelled_at not recorded")
	}

	var restocked models.Product
	if err := tx.First(&restocked, "id = ?", prod.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if restocked.Stock != 5 {
		t.Fatalf("stock = %d, want 5 after restock", restocked.Stock)
	}

	// Redelivery converges without restocking again.
	if err := svc.HandleEvent(ctx, intentEvent(t, stripe.EventTypePaymentIntentPaymentFailed, intentID)); err != nil {
		t.Fatalf("redelivered failure event: %v", err)
	}
	if err := tx.First(&restocked, "id = ?", prod.ID).Error; err != nil {
		t.Fatalf("reload product after redelivery: %v", err)
	}
	if restocked.Stock != 5 {
		t.Fatalf("stock = %d after redelivery, want 5", restocked.Stock)
	}

	// A late failure event never downgrades a paid order.
	paidIntent := "pi_hook_" + uuid.NewString()[:8]
	paidOrd := seedOrderWithIntent(t, tx, paidIntent)
	if err := svc.HandleEvent(ctx, intentEvent(t, stripe.EventTypePaymentIntentSucceeded, paidIntent)); err != nil {
		t.Fatalf("pay order: %v", err)
	}
	if err := svc.HandleEvent(ctx, intentEvent(t, stripe.EventTypePaymentIntentPaymentFailed, paidIntent)); err != nil {
		t.Fatalf("late failure event: %v", err)
	}
	if err := tx.First(&reloaded, "id = ?", paidOrd.ID).Error; err != nil {
		t.Fatalf("reload paid order: %v", err)
	}
	if reloaded.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("paid order downgraded to %s", reloaded.PaymentStatus)
	}
	if reloaded.Status == enums.OrderStatusCancelled {
		t.Fatal("paid order cancelled by late failure event")
	}
}

func TestHandleEventUnknownIntentIsAcked(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	svc := newTestService(t, tx)
	event := intentEvent(t, stripe.EventTypePaymentIntentSucceeded, "pi_nobody_knows")
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected unknown intent acked, got %v", err)
	}
}

func TestHandleEventIgnoresOtherTypes(t *testing.T) {
	svc := &Service{orders: nil, logger: testLogger()}
	event := &stripe.Event{
		Type: stripe.EventTypeInvoicePaid,
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected unrelated event ignored, got %v", err)
	}
}
