package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sarishop/sarishop-backend/pkg/enums"
	"github.com/sarishop/sarishop-backend/pkg/types"
)

// Customer is a registered shopper or admin account.
type Customer struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	FirstName    string         `gorm:"column:first_name;not null"`
	LastName     string         `gorm:"column:last_name;not null"`
	Phone        *string        `gorm:"column:phone"`
	Role         enums.Role     `gorm:"column:role;type:text;not null;default:'customer'"`
	Address      *types.Address `gorm:"column:address;type:jsonb;serializer:json"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
