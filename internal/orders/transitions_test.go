package order

import (
	"testing"

	"github.com/sarishop/sarishop-backend/pkg/enums"
	pkgerrors "github.com/sarishop/sarishop-backend/pkg/errors"
)

func TestValidateTransition(t *testing.T) {
	allowed := []struct{ from, to enums.OrderStatus }{
		{enums.OrderStatusPending, enums.OrderStatusConfirmed},
		{enums.OrderStatusPending, enums.OrderStatusCancelled},
		{enums.OrderStatusConfirmed, enums.OrderStatusShipped},
		{enums.OrderStatusProcessing, enums.OrderStatusDelivered},
		{enums.OrderStatusShipped, enums.OrderStatusDelivered},
		{enums.OrderStatusShipped, enums.OrderStatusShipped},
	}
	for _, tc := range allowed {
		if err := ValidateTransition(tc.from, tc.to); err != nil {
			t.Errorf("expected %s -> %s allowed, got %v", tc.from, tc.to, err)
		}
	}

	rejected := []struct{ from, to enums.OrderStatus }{
		{enums.OrderStatusDelivered, enums.OrderStatusPending},
		{enums.OrderStatusCancelled, enums.OrderStatusConfirmed},
		{enums.OrderStatusRefunded, enums.OrderStatusShipped},
		{enums.OrderStatusShipped, enums.OrderStatusPending},
		{enums.OrderStatusPending, enums.OrderStatusRefunded},
		{enums.OrderStatusPending, enums.OrderStatusShipped},
		{enums.OrderStatusPending, enums.OrderStatusDelivered},
	}
	for _, tc := range rejected {
		err := ValidateTransition(tc.from, tc.to)
		if err == nil {
			t.Errorf("expected %s -> %s rejected", tc.from, tc.to)
			continue
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Errorf("expected state conflict for %s -> %s, got %v", tc.from, tc.to, err)
		}
	}

	if err := ValidateTransition(enums.OrderStatusPending, enums.OrderStatus("mystery")); err == nil {
		t.Error("expected unknown status rejected")
	}
}
