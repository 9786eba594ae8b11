package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/pkg/enums"
)

// FinancialAccount holds an organization's balance. The platform revenue
// account has no organization.
type FinancialAccount struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrganizationID *uuid.UUID        `gorm:"column:organization_id;type:uuid"`
	AccountType    enums.AccountType `gorm:"column:account_type;type:text;not null"`
	Balance        decimal.Decimal   `gorm:"column:balance;type:numeric(14,2);not null;default:0"`
	Currency       string            `gorm:"column:currency;type:text;not null;default:'ETB'"`
	IsActive       bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *FinancialAccount) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
