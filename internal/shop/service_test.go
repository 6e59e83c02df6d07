package shop

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	order "github.com/sarishop/sarishop-backend/internal/orders"
	product "github.com/sarishop/sarishop-backend/internal/products"
	"github.com/sarishop/sarishop-backend/pkg/enums"
	pkgerrors "github.com/sarishop/sarishop-backend/pkg/errors"
)

type stubCustomerCounter struct {
	total int64
}

func (s *stubCustomerCounter) CountByRole(context.Context, enums.Role) (int64, error) {
	return s.total, nil
}

func newTestService(t *testing.T, tx *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(tx), order.NewRepository(tx), product.NewRepository(tx), &stubCustomerCounter{total: 7})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSettingsGetOrCreateDefaults(t *testing.T) {
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

	dto, err := svc.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if dto.ShopName != defaultShopName {
		t.Fatalf("shop name = %q, want default", dto.ShopName)
	}
	if dto.Currency != enums.CurrencyUSD.String() {
		t.Fatalf("currency = %q, want USD", dto.Currency)
	}
	if dto.Theme == nil || dto.Theme.PrimaryColor != defaultPrimaryColor {
		t.Fatalf("expected default theme, got %+v", dto.Theme)
	}

	// Second read reuses the singleton row.
	again, err := svc.GetSettings(ctx)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again.ShopName != dto.ShopName {
		t.Fatalf("expected same settings, got %+v", again)
	}
}

func TestUpdateSettingsAllowList(t *testing.T) {
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

	name := "Sari Emporium"
	rate := decimal.NewFromInt(8)
	dto, err := svc.UpdateSettings(ctx, UpdateSettingsInput{ShopName: &name, TaxRate: &rate})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if dto.ShopName != name || !dto.TaxRate.Equal(rate) {
		t.Fatalf("unexpected settings: %+v", dto)
	}

	bad := decimal.NewFromInt(150)
	if _, err := svc.UpdateSettings(ctx, UpdateSettingsInput{TaxRate: &bad}); err == nil {
		t.Fatal("expected tax rate over 100 rejected")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestUpdateThemeValidatesHex(t *testing.T) {
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

	primary := "#112233"
	dto, err := svc.UpdateTheme(ctx, ThemeInput{PrimaryColor: &primary})
	if err != nil {
		t.Fatalf("update theme: %v", err)
	}
	if dto.Theme.PrimaryColor != primary {
		t.Fatalf("primary = %q", dto.Theme.PrimaryColor)
	}
	if dto.Theme.SecondaryColor != defaultSecondaryColor {
		t.Fatalf("secondary should keep default, got %q", dto.Theme.SecondaryColor)
	}

	invalid := "red"
	if _, err := svc.UpdateTheme(ctx, ThemeInput{AccentColor: &invalid}); err == nil {
		t.Fatal("expected invalid color rejected")
	}
}

func TestMaintenanceModeToggle(t *testing.T) {
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

	dto, err := svc.SetMaintenanceMode(ctx, true)
	if err != nil {
		t.Fatalf("enable maintenance: %v", err)
	}
	if !dto.MaintenanceMode {
		t.Fatal("expected maintenance mode on")
	}
	dto, err = svc.SetMaintenanceMode(ctx, false)
	if err != nil {
		t.Fatalf("disable maintenance: %v", err)
	}
	if dto.MaintenanceMode {
		t.Fatal("expected maintenance mode off")
	}
}

func TestStatsCountsCustomers(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	svc := newTestService(t, tx)
	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalCustomers != 7 {
		t.Fatalf("customers = %d, want stub value", stats.TotalCustomers)
	}
	if stats.RecentOrders == nil || stats.LowStockProducts == nil {
		t.Fatal("expected non-nil slices in stats")
	}
}
