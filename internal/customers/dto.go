package customers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bedtex/dispatch-backend/pkg/db/models"
)

type CustomerDTO struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Address         string          `json:"address,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	Note            string          `json:"note,omitempty"`
	DebtLimit       decimal.Decimal `json:"debt_limit"`
	DebtBalance     decimal.Decimal `json:"debt_balance"`
	BypassDebtCheck bool            `json:"bypass_debt_check"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func NewCustomerDTO(customer *models.Customer) *CustomerDTO {
	if customer == nil {
		return nil
	}
	return &CustomerDTO{
		ID:              customer.ID,
		Code:            customer.Code,
		Name:            customer.Name,
		Address:         customer.Address,
		Phone:           customer.Phone,
		Note:            customer.Note,
		DebtLimit:       customer.DebtLimit,
		DebtBalance:     customer.DebtBalance,
		BypassDebtCheck: customer.BypassDebtCheck,
		CreatedAt:       customer.CreatedAt,
		UpdatedAt:       customer.UpdatedAt,
	}
}

func NewCustomerListDTO(rows []models.Customer) []CustomerDTO {
	out := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewCustomerDTO(&rows[i]))
	}
	return out
}
