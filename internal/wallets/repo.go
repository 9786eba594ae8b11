package wallets

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/internal/repo"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
)

// Repository manages financial account persistence. Balance writes must run
// inside the transaction that records the matching journal entry.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, account *models.FinancialAccount) error
	FindByOrgAndType(ctx context.Context, orgID uuid.UUID, accountType enums.AccountType) (*models.FinancialAccount, error)
	FindByOrgAndTypeForUpdate(ctx context.Context, orgID uuid.UUID, accountType enums.AccountType) (*models.FinancialAccount, error)
	FindPlatformForUpdate(ctx context.Context) (*models.FinancialAccount, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.FinancialAccount, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
}

type repository struct {
	repo.Base
}

// NewRepository returns a wallet repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, account *models.FinancialAccount) error {
	return r.DB(ctx).Create(account).Error
}

func (r *repository) FindByOrgAndType(ctx context.Context, orgID uuid.UUID, accountType enums.AccountType) (*models.FinancialAccount, error) {
	return r.findByOrgAndType(r.DB(ctx), orgID, accountType)
}

func (r *repository) FindByOrgAndTypeForUpdate(ctx context.Context, orgID uuid.UUID, accountType enums.AccountType) (*models.FinancialAccount, error) {
	return r.findByOrgAndType(r.Locked(ctx), orgID, accountType)
}

func (r *repository) findByOrgAndType(db *gorm.DB, orgID uuid.UUID, accountType enums.AccountType) (*models.FinancialAccount, error) {
	var account models.FinancialAccount
	err := db.Where("organization_id = ? AND account_type = ? AND is_active = ?", orgID, accountType, true).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// FindPlatformForUpdate locks the platform revenue account.
func (r *repository) FindPlatformForUpdate(ctx context.Context) (*models.FinancialAccount, error) {
	var account models.FinancialAccount
	err := r.Locked(ctx).
		Where("organization_id IS NULL AND account_type = ? AND is_active = ?", enums.AccountTypePlatformRevenue, true).
		Order("created_at ASC").
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.FinancialAccount, error) {
	var accounts []models.FinancialAccount
	if err := r.DB(ctx).
		Where("organization_id = ?", orgID).
		Order("account_type ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	res := r.DB(ctx).Model(&models.FinancialAccount{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"balance":    balance,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
