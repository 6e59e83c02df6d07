package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	order "github.com/sarishop/sarishop-backend/internal/orders"
	"github.com/sarishop/sarishop-backend/pkg/db/models"
	"github.com/sarishop/sarishop-backend/pkg/types"
)

// CustomerDTO is the account payload returned to clients. The password hash
// never leaves the service.
type CustomerDTO struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Phone     *string        `json:"phone,omitempty"`
	Role      string         `json:"role"`
	Address   *types.Address `json:"address,omitempty"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CustomerDetailDTO augments the account with its order history summary.
type CustomerDetailDTO struct {
	CustomerDTO
	TotalOrders  int64            `json:"total_orders"`
	TotalSpent   decimal.Decimal  `json:"total_spent"`
	RecentOrders []order.OrderDTO `json:"recent_orders"`
}

// AuthResponse carries the minted token and the account it belongs to.
type AuthResponse struct {
	Token    string      `json:"token"`
	Customer CustomerDTO `json:"customer"`
}

// NewCustomerDTO maps a customer row to its API payload.
func NewCustomerDTO(customer *models.Customer) *CustomerDTO {
	if customer == nil {
		return nil
	}
	return &CustomerDTO{
		ID:        customer.ID,
		Email:     customer.Email,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Phone:     customer.Phone,
		Role:      customer.Role.String(),
		Address:   customer.Address,
		IsActive:  customer.IsActive,
		CreatedAt: customer.CreatedAt,
		UpdatedAt: customer.UpdatedAt,
	}
}

// NewCustomerDTOs maps a list of customer rows.
func NewCustomerDTOs(customers []models.Customer) []CustomerDTO {
	out := make([]CustomerDTO, 0, len(customers))
	for i := range customers {
		out = append(out, *NewCustomerDTO(&customers[i]))
	}
	return out
}
