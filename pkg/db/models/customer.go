package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bedtex/dispatch-backend/pkg/types"
)

// Customer is a live customer record. Orders never reference it directly;
// they embed a snapshot taken at order-creation time.
type Customer struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code            string          `gorm:"column:code;not null;uniqueIndex:ux_customers_code"`
	Name            string          `gorm:"column:name;not null"`
	Address         string          `gorm:"column:address"`
	Phone           string          `gorm:"column:phone"`
	Note            string          `gorm:"column:note"`
	DebtLimit       decimal.Decimal `gorm:"column:debt_limit;type:numeric(14,2);not null;default:0"`
	DebtBalance     decimal.Decimal `gorm:"column:debt_balance;type:numeric(14,2);not null;default:0"`
	BypassDebtCheck bool            `gorm:"column:bypass_debt_check;not null;default:false"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Snapshot produces the immutable description embedded into new orders.
func (c Customer) Snapshot() types.CustomerSnapshot {
	return types.CustomerSnapshot{
		Code:    c.Code,
		Name:    c.Name,
		Address: c.Address,
		Phone:   c.Phone,
		Note:    c.Note,
	}
}
