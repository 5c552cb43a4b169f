package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bedtex/dispatch-backend/pkg/db"
	"github.com/bedtex/dispatch-backend/pkg/db/models"
	pkgerrors "github.com/bedtex/dispatch-backend/pkg/errors"
)

// Service exposes customer master-data operations.
type Service interface {
	Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error)
	Update(ctx context.Context, customerID uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error)
	Delete(ctx context.Context, customerID uuid.UUID) error
	Get(ctx context.Context, customerID uuid.UUID) (*CustomerDTO, error)
	Search(ctx context.Context, query string) ([]CustomerDTO, error)
}

// CreateCustomerInput holds the validated payload to create a customer.
type CreateCustomerInput struct {
	Code            string
	Name            string
	Address         string
	Phone           string
	Note            string
	DebtLimit       decimal.Decimal
	BypassDebtCheck bool
}

// UpdateCustomerInput holds optional mutation values. Code is immutable once
// assigned so it is not part of the update surface.
type UpdateCustomerInput struct {
	Name            *string
	Address         *string
	Phone           *string
	Note            *string
	DebtLimit       *decimal.Decimal
	DebtBalance     *decimal.Decimal
	BypassDebtCheck *bool
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer code is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if input.DebtLimit.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debt limit cannot be negative")
	}

	if _, err := s.repo.FindByCode(ctx, code); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("customer code %q already exists", code))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking customer code")
	}

	customer := &models.Customer{
		ID:              uuid.New(),
		Code:            code,
		Name:            name,
		Address:         strings.TrimSpace(input.Address),
		Phone:           strings.TrimSpace(input.Phone),
		Note:            input.Note,
		DebtLimit:       input.DebtLimit,
		DebtBalance:     decimal.Zero,
		BypassDebtCheck: input.BypassDebtCheck,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		if db.IsUniqueViolation(err, "ux_customers_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("customer code %q already exists", code))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating customer")
	}
	return NewCustomerDTO(customer), nil
}

func (s *service) Update(ctx context.Context, customerID uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error) {
	customer, err := s.loadCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name cannot be blank")
		}
		customer.Name = name
	}
	if input.Address != nil {
		customer.Address = strings.TrimSpace(*input.Address)
	}
	if input.Phone != nil {
		customer.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Note != nil {
		customer.Note = *input.Note
	}
	if input.DebtLimit != nil {
		if input.DebtLimit.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "debt limit cannot be negative")
		}
		customer.DebtLimit = *input.DebtLimit
	}
	if input.DebtBalance != nil {
		customer.DebtBalance = *input.DebtBalance
	}
	if input.BypassDebtCheck != nil {
		customer.BypassDebtCheck = *input.BypassDebtCheck
	}

	if err := s.repo.Save(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating customer")
	}
	return NewCustomerDTO(customer), nil
}

func (s *service) Delete(ctx context.Context, customerID uuid.UUID) error {
	if _, err := s.loadCustomer(ctx, customerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, customerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting customer")
	}
	return nil
}

func (s *service) Get(ctx context.Context, customerID uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.loadCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return NewCustomerDTO(customer), nil
}

func (s *service) Search(ctx context.Context, query string) ([]CustomerDTO, error) {
	rows, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "searching customers")
	}
	return NewCustomerListDTO(rows), nil
}

func (s *service) loadCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("customer %s not found", customerID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading customer")
	}
	return customer, nil
}
