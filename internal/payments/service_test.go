package payment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	order "github.com/sarishop/sarishop-backend/internal/orders"
	"github.com/sarishop/sarishop-backend/pkg/db/models"
	"github.com/sarishop/sarishop-backend/pkg/enums"
	pkgerrors "github.com/sarishop/sarishop-backend/pkg/errors"
	"github.com/sarishop/sarishop-backend/pkg/logger"
	"github.com/sarishop/sarishop-backend/pkg/types"
)

type stubGateway struct {
	intents       map[string]*stripe.PaymentIntent
	created       []int64
	refunds       []string
	refundErr     error
	createErr     error
	nextIntentSeq int
}

func newStubGateway() *stubGateway {
	return &stubGateway{intents: map[string]*stripe.PaymentIntent{}}
}

func (g *stubGateway) CreatePaymentIntent(_ context.Context, amountCents int64, currency string) (*stripe.PaymentIntent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.nextIntentSeq++
	intent := &stripe.PaymentIntent{
		ID:           fmt.Sprintf("pi_test_%d", g.nextIntentSeq),
		ClientSecret: fmt.Sprintf("pi_test_%d_secret", g.nextIntentSeq),
		Amount:       amountCents,
		Currency:     stripe.Currency(currency),
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
	}
	g.intents[intent.ID] = intent
	g.created = append(g.created, amountCents)
	return intent, nil
}

func (g *stubGateway) GetPaymentIntent(_ context.Context, id string) (*stripe.PaymentIntent, error) {
	intent, ok := g.intents[id]
	if !ok {
		return nil, errors.New("no such payment_intent")
	}
	return intent, nil
}

func (g *stubGateway) CreateRefund(_ context.Context, intentID string, _ *int64, _ string) (*stripe.Refund, error) {
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refunds = append(g.refunds, intentID)
	return &stripe.Refund{ID: "re_test_1", PaymentIntent: &stripe.PaymentIntent{ID: intentID}}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, tx *gorm.DB, gateway Gateway) Service {
	t.Helper()
	svc, err := NewService(order.NewRepository(tx), gateway, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedOrder(t *testing.T, tx *gorm.DB, total int64) (*models.Customer, *models.Order) {
	t.Helper()
	customer := &models.Customer{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("payer_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "Pay",
		LastName:     "Er",
		Role:         enums.RoleCustomer,
		IsActive:     true,
	}
	if err := tx.Create(customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	ord := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   fmt.Sprintf("ORD-TEST-%s", uuid.NewString()[:8]),
		CustomerID:    customer.ID,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		Currency:      enums.CurrencyUSD,
		Subtotal:      decimal.NewFromInt(total),
		Total:         decimal.NewFromInt(total),
		ShippingAddress: &types.Address{
			Line1: "12 Weaver Lane", City: "Chennai", State: "TN", PostalCode: "600001", Country: "IN",
		},
	}
	if err := tx.Create(ord).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return customer, ord
}

func TestCreateIntentIsIdempotentPerOrder(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	gateway := newStubGateway()
	svc := newTestService(t, tx, gateway)
	ctx := context.Background()

	customer, ord := seedOrder(t, tx, 108)

	first, err := svc.CreateIntent(ctx, customer.ID, ord.ID)
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if len(gateway.created) != 1 || gateway.created[0] != 10800 {
		t.Fatalf("expected one intent for 10800 cents, got %v", gateway.created)
	}

	second, err := svc.CreateIntent(ctx, customer.ID, ord.ID)
	if err != nil {
		t.Fatalf("repeat create intent: %v", err)
	}
	if second.PaymentIntentID != first.PaymentIntentID {
		t.Fatalf("expected intent reuse, got %s then %s", first.PaymentIntentID, second.PaymentIntentID)
	}
	if len(gateway.created) != 1 {
		t.Fatalf("expected no second gateway create, got %d", len(gateway.created))
	}
}

func TestConfirmPaymentTrustsGatewayOnly(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	gateway := newStubGateway()
	svc := newTestService(t, tx, gateway)
	ctx := context.Background()

	customer, ord := seedOrder(t, tx, 50)

	intentDTO, err := svc.CreateIntent(ctx, customer.ID, ord.ID)
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}

	_, err = svc.ConfirmPayment(ctx, customer.ID, ord.ID, intentDTO.PaymentIntentID)
	if err == nil {
		t.Fatal("expected unpaid intent rejected")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePaymentNotSucceeded {
		t.Fatalf("expected payment not succeeded code, got %v", err)
	}

	gateway.intents[intentDTO.PaymentIntentID].Status = stripe.PaymentIntentStatusSucceeded
	dto, err := svc.ConfirmPayment(ctx, customer.ID, ord.ID, intentDTO.PaymentIntentID)
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	if dto.PaymentStatus != enums.PaymentStatusPaid.String() || dto.Status != enums.OrderStatusConfirmed.String() {
		t.Fatalf("unexpected statuses after confirm: %s/%s", dto.Status, dto.PaymentStatus)
	}
	if dto.PaidAt == nil {
		t.Fatal("expected paid_at set")
	}

	// Replay converges without error.
	again, err := svc.ConfirmPayment(ctx, customer.ID, ord.ID, intentDTO.PaymentIntentID)
	if err != nil {
		t.Fatalf("confirm replay: %v", err)
	}
	if !again.PaidAt.Equal(*dto.PaidAt) {
		t.Fatalf("expected paid_at unchanged, got %v then %v", dto.PaidAt, again.PaidAt)
	}
}

func TestConfirmPaymentRejectsForeignIntent(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	gateway := newStubGateway()
	svc := newTestService(t, tx, gateway)
	ctx := context.Background()

	customer, ord := seedOrder(t, tx, 50)
	if _, err := svc.CreateIntent(ctx, customer.ID, ord.ID); err != nil {
		t.Fatalf("create intent: %v", err)
	}

	other, _ := gateway.CreatePaymentIntent(ctx, 999, "usd")
	other.Status = stripe.PaymentIntentStatusSucceeded
	if _, err := svc.ConfirmPayment(ctx, customer.ID, ord.ID, other.ID); err == nil {
		t.Fatal("expected foreign intent rejected")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
}

func TestRefundFlows(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	gateway := newStubGateway()
	svc := newTestService(t, tx, gateway)
	ctx := context.Background()

	customer, ord := seedOrder(t, tx, 80)

	// Unpaid orders cannot be refunded.
	if _, err := svc.Refund(ctx, RefundInput{OrderID: ord.ID}); err == nil {
		t.Fatal("expected unpaid refund rejected")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict code, got %v", err)
	}

	intentDTO, err := svc.CreateIntent(ctx, customer.ID, ord.ID)
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	gateway.intents[intentDTO.PaymentIntentID].Status = stripe.PaymentIntentStatusSucceeded
	if _, err := svc.ConfirmPayment(ctx, customer.ID, ord.ID, intentDTO.PaymentIntentID); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}

	over := decimal.NewFromInt(999)
	if _, err := svc.Refund(ctx, RefundInput{OrderID: ord.ID, Amount: &over}); err == nil {
		t.Fatal("expected over-refund rejected")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}

	dto, err := svc.Refund(ctx, RefundInput{OrderID: ord.ID, Reason: "damaged in transit"})
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if dto.PaymentStatus != enums.PaymentStatusRefunded.String() || dto.Status != enums.OrderStatusRefunded.String() {
		t.Fatalf("unexpected statuses after refund: %s/%s", dto.Status, dto.PaymentStatus)
	}
	if dto.RefundAmount == nil || !dto.RefundAmount.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected full refund amount, got %v", dto.RefundAmount)
	}
	if len(gateway.refunds) != 1 {
		t.Fatalf("expected one gateway refund, got %d", len(gateway.refunds))
	}

	// Second refund is a converging no-op.
	again, err := svc.Refund(ctx, RefundInput{OrderID: ord.ID})
	if err != nil {
		t.Fatalf("refund replay: %v", err)
	}
	if again.PaymentStatus != enums.PaymentStatusRefunded.String() {
		t.Fatalf("unexpected replay status %s", again.PaymentStatus)
	}
	if len(gateway.refunds) != 1 {
		t.Fatalf("expected no second gateway refund, got %d", len(gateway.refunds))
	}
}

func TestRefundGatewayFailureSurfaces(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	gateway := newStubGateway()
	svc := newTestService(t, tx, gateway)
	ctx := context.Background()

	customer, ord := seedOrder(t, tx, 80)
	intentDTO, err := svc.CreateIntent(ctx, customer.ID, ord.ID)
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	gateway.intents[intentDTO.PaymentIntentID].Status = stripe.PaymentIntentStatusSucceeded
	if _, err := svc.ConfirmPayment(ctx, customer.ID, ord.ID, intentDTO.PaymentIntentID); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}

	gateway.refundErr = errors.New("stripe is down")
	_, err = svc.Refund(ctx, RefundInput{OrderID: ord.ID})
	if err == nil {
		t.Fatal("expected gateway error surfaced")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeGatewayError {
		t.Fatalf("expected gateway error code, got %v", err)
	}
}
