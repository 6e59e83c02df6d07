package customer

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	order "github.com/sarishop/sarishop-backend/internal/orders"
	"github.com/sarishop/sarishop-backend/pkg/config"
	"github.com/sarishop/sarishop-backend/pkg/db"
	"github.com/sarishop/sarishop-backend/pkg/db/models"
	"github.com/sarishop/sarishop-backend/pkg/enums"
	pkgerrors "github.com/sarishop/sarishop-backend/pkg/errors"
	"github.com/sarishop/sarishop-backend/pkg/pagination"
	"github.com/sarishop/sarishop-backend/pkg/types"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-key-with-enough-entropy",
		Issuer:            "sarishop-test",
		ExpirationMinutes: 15,
	}
}

// Light Argon2id parameters keep the suite fast.
func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T, tx *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(
		NewRepository(tx),
		order.NewRepository(tx),
		db.NewFromConn(tx),
		testJWTConfig(),
		testPasswordConfig(),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func beginTestTx(t *testing.T) *gorm.DB {
	t.Helper()
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})
	return tx
}

func TestRegisterAndLogin(t *testing.T) {
	tx := beginTestTx(t)
	svc := newTestService(t, tx)
	ctx := context.Background()

	email := fmt.Sprintf("meera.%s@example.com", uuid.NewString())
	resp, err := svc.Register(ctx, RegisterInput{
		Email:     " " + email + " ",
		Password:  "correct-horse",
		FirstName: "Meera",
		LastName:  "Nair",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected an access token")
	}
	if resp.Customer.Email != email {
		t.Fatalf("expected normalized email %q, got %q", email, resp.Customer.Email)
	}
	if resp.Customer.Role != enums.RoleCustomer.String() {
		t.Fatalf("expected customer role, got %s", resp.Customer.Role)
	}

	if _, err := svc.Register(ctx, RegisterInput{
		Email:     email,
		Password:  "another-pass",
		FirstName: "Meera",
		LastName:  "Nair",
	}); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}

	login, err := svc.Login(ctx, email, "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.Customer.ID != resp.Customer.ID {
		t.Fatal("login returned a different account")
	}

	if _, err := svc.Login(ctx, email, "wrong-pass"); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "whatever"); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on unknown email, got %v", err)
	}
}

func TestLoginDeactivatedAccount(t *testing.T) {
	tx := beginTestTx(t)
	svc := newTestService(t, tx)
	ctx := context.Background()

	email := fmt.Sprintf("asha.%s@example.com", uuid.NewString())
	resp, err := svc.Register(ctx, RegisterInput{
		Email:     email,
		Password:  "secret-pass",
		FirstName: "Asha",
		LastName:  "Pillai",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.AdminSetActive(ctx, resp.Customer.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := svc.Login(ctx, email, "secret-pass"); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for deactivated account, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	tx := beginTestTx(t)
	svc := newTestService(t, tx)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterInput{
		Email:     fmt.Sprintf("devi.%s@example.com", uuid.NewString()),
		Password:  "secret-pass",
		FirstName: "Devi",
		LastName:  "Menon",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	phone := "+91 98765 43210"
	first := "Devika"
	updated, err := svc.UpdateProfile(ctx, resp.Customer.ID, UpdateProfileInput{
		FirstName: &first,
		Phone:     &phone,
		Address: &types.Address{
			Line1:      "12 Temple Road",
			City:       "Kochi",
			State:      "Kerala",
			PostalCode: "682001",
			Country:    "India",
		},
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FirstName != "Devika" {
		t.Fatalf("expected first name update, got %q", updated.FirstName)
	}
	if updated.Phone == nil || *updated.Phone != phone {
		t.Fatal("expected phone update")
	}
	if updated.LastName != "Menon" {
		t.Fatal("unset fields must not change")
	}

	empty := "   "
	if _, err := svc.UpdateProfile(ctx, resp.Customer.ID, UpdateProfileInput{FirstName: &empty}); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
}

func TestAdminCustomerSurface(t *testing.T) {
	tx := beginTestTx(t)
	svc := newTestService(t, tx)
	ctx := context.Background()

	marker := uuid.NewString()
	resp, err := svc.Register(ctx, RegisterInput{
		Email:     fmt.Sprintf("lakshmi.%s@example.com", marker),
		Password:  "secret-pass",
		FirstName: "Lakshmi",
		LastName:  "Iyer",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Admin accounts stay out of the customer listing.
	admin := &models.Customer{
		Email:        fmt.Sprintf("admin.%s@example.com", marker),
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		FirstName:    "Site",
		LastName:     "Admin",
		Role:         enums.RoleAdmin,
		IsActive:     true,
	}
	if err := tx.Create(admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	page, err := svc.AdminListCustomers(ctx, marker, pagination.Params{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if page.TotalCount != 1 {
		t.Fatalf("expected 1 matching customer, got %d", page.TotalCount)
	}
	if page.Items[0].ID != resp.Customer.ID {
		t.Fatal("expected the registered customer in the listing")
	}

	delivered := &models.Order{
		OrderNumber: fmt.Sprintf("ORD-TEST-%s", marker[:8]),
		CustomerID:  resp.Customer.ID,
		Status:      enums.OrderStatusDelivered,
		Subtotal:    decimal.NewFromInt(90),
		Total:       decimal.NewFromInt(100),
		Currency:    enums.CurrencyUSD,
		ShippingAddress: &types.Address{
			Line1:      "12 Temple Road",
			City:       "Kochi",
			State:      "Kerala",
			PostalCode: "682001",
			Country:    "India",
		},
	}
	if err := tx.Create(delivered).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}

	detail, err := svc.AdminGetCustomer(ctx, resp.Customer.ID)
	if err != nil {
		t.Fatalf("get customer detail: %v", err)
	}
	if detail.TotalOrders != 1 {
		t.Fatalf("expected 1 order, got %d", detail.TotalOrders)
	}
	if !detail.TotalSpent.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected total spent 100, got %s", detail.TotalSpent)
	}
	if len(detail.RecentOrders) != 1 {
		t.Fatalf("expected 1 recent order, got %d", len(detail.RecentOrders))
	}

	if _, err := svc.AdminGetCustomer(ctx, admin.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected admin account hidden from customer surface, got %v", err)
	}
}
