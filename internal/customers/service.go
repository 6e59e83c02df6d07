package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	order "github.com/sarishop/sarishop-backend/internal/orders"
	pkgauth "github.com/sarishop/sarishop-backend/pkg/auth"
	"github.com/sarishop/sarishop-backend/pkg/config"
	"github.com/sarishop/sarishop-backend/pkg/db"
	"github.com/sarishop/sarishop-backend/pkg/db/models"
	"github.com/sarishop/sarishop-backend/pkg/enums"
	pkgerrors "github.com/sarishop/sarishop-backend/pkg/errors"
	"github.com/sarishop/sarishop-backend/pkg/pagination"
	"github.com/sarishop/sarishop-backend/pkg/security"
	"github.com/sarishop/sarishop-backend/pkg/types"
)

const invalidCredentialsMessage = "invalid credentials"

// Service exposes account and admin customer management operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	GetProfile(ctx context.Context, customerID uuid.UUID) (*CustomerDTO, error)
	UpdateProfile(ctx context.Context, customerID uuid.UUID, input UpdateProfileInput) (*CustomerDTO, error)

	AdminListCustomers(ctx context.Context, search string, page pagination.Params) (*pagination.Page[CustomerDTO], error)
	AdminGetCustomer(ctx context.Context, customerID uuid.UUID) (*CustomerDetailDTO, error)
	AdminUpdateCustomer(ctx context.Context, customerID uuid.UUID, input UpdateProfileInput) (*CustomerDTO, error)
	AdminSetActive(ctx context.Context, customerID uuid.UUID, active bool) (*CustomerDTO, error)
}

// RegisterInput holds the validated payload to open an account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
	Address   *types.Address
}

// UpdateProfileInput holds optional mutation values for an account.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *types.Address
}

type service struct {
	repo        *Repository
	orders      *order.Repository
	dbClient    *db.Client
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// NewService constructs a customer service instance.
func NewService(repo *Repository, orders *order.Repository, dbClient *db.Client, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:        repo,
		orders:      orders,
		dbClient:    dbClient,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
	}, nil
}

// Register opens a customer account and signs the caller in.
func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}
	if input.Address != nil {
		if err := input.Address.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "address")
		}
	}

	passwordHash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.Customer
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check email")
		}

		customer := &models.Customer{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    firstName,
			LastName:     lastName,
			Phone:        input.Phone,
			Role:         enums.RoleCustomer,
			Address:      input.Address,
			IsActive:     true,
		}
		created, err = txRepo.Create(ctx, customer)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create customer")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register customer")
	}

	return s.authResponse(created)
}

// Login verifies credentials and mints an access token.
func (s *service) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	customer, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}

	ok, err := security.VerifyPassword(password, customer.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if !customer.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	return s.authResponse(customer)
}

// GetProfile loads the caller's own account.
func (s *service) GetProfile(ctx context.Context, customerID uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.findCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return NewCustomerDTO(customer), nil
}

// UpdateProfile applies a partial update to the caller's own account.
func (s *service) UpdateProfile(ctx context.Context, customerID uuid.UUID, input UpdateProfileInput) (*CustomerDTO, error) {
	customer, err := s.findCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := applyProfileUpdate(customer, input); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, customer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update customer")
	}
	return NewCustomerDTO(updated), nil
}

// AdminListCustomers pages through customer accounts with optional search.
func (s *service) AdminListCustomers(ctx context.Context, search string, page pagination.Params) (*pagination.Page[CustomerDTO], error) {
	page = page.Normalize()
	customers, total, err := s.repo.ListCustomers(ctx, search, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list customers")
	}
	result := pagination.NewPage(NewCustomerDTOs(customers), total, page)
	return &result, nil
}

// AdminGetCustomer loads an account with its order history summary.
func (s *service) AdminGetCustomer(ctx context.Context, customerID uuid.UUID) (*CustomerDetailDTO, error) {
	customer, err := s.findCustomerAccount(ctx, customerID)
	if err != nil {
		return nil, err
	}

	recent, total, err := s.orders.List(ctx, order.ListFilter{CustomerID: &customerID}, pagination.Params{Page: 1, PageSize: 10})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: customer orders")
	}
	spent, err := s.orders.TotalSpentByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: customer spend")
	}

	return &CustomerDetailDTO{
		CustomerDTO:  *NewCustomerDTO(customer),
		TotalOrders:  total,
		TotalSpent:   spent,
		RecentOrders: order.NewOrderDTOs(recent),
	}, nil
}

// AdminUpdateCustomer applies a partial update to a customer account.
func (s *service) AdminUpdateCustomer(ctx context.Context, customerID uuid.UUID, input UpdateProfileInput) (*CustomerDTO, error) {
	customer, err := s.findCustomerAccount(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := applyProfileUpdate(customer, input); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, customer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update customer")
	}
	return NewCustomerDTO(updated), nil
}

// AdminSetActive toggles whether the account can sign in.
func (s *service) AdminSetActive(ctx context.Context, customerID uuid.UUID, active bool) (*CustomerDTO, error) {
	customer, err := s.findCustomerAccount(ctx, customerID)
	if err != nil {
		return nil, err
	}
	customer.IsActive = active
	updated, err := s.repo.Update(ctx, customer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update customer")
	}
	return NewCustomerDTO(updated), nil
}

func applyProfileUpdate(customer *models.Customer, input UpdateProfileInput) error {
	if input.FirstName != nil {
		name := strings.TrimSpace(*input.FirstName)
		if name == "" || len(name) > 50 {
			return pkgerrors.New(pkgerrors.CodeValidation, "first name must be between 1 and 50 characters")
		}
		customer.FirstName = name
	}
	if input.LastName != nil {
		name := strings.TrimSpace(*input.LastName)
		if name == "" || len(name) > 50 {
			return pkgerrors.New(pkgerrors.CodeValidation, "last name must be between 1 and 50 characters")
		}
		customer.LastName = name
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}
	if input.Address != nil {
		if err := input.Address.Validate(); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "address")
		}
		customer.Address = input.Address
	}
	return nil
}

func (s *service) authResponse(customer *models.Customer) (*AuthResponse, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		CustomerID: customer.ID,
		Role:       customer.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &AuthResponse{Token: token, Customer: *NewCustomerDTO(customer)}, nil
}

func (s *service) findCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}
	return customer, nil
}

// findCustomerAccount is the admin variant: only customer-role accounts are
// visible through the admin customer endpoints.
func (s *service) findCustomerAccount(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	customer, err := s.findCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer.Role != enums.RoleCustomer {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return customer, nil
}
