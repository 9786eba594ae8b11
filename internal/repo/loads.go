package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
)

// LoadRepository is the load persistence shared by the settlement core and
// the load lifecycle.
type LoadRepository interface {
	WithTx(tx *gorm.DB) LoadRepository
	Create(ctx context.Context, load *models.Load) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Load, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Load, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListSettlementBacklog(ctx context.Context, verifiedBefore time.Time, limit int) ([]uuid.UUID, error)
}

type loadRepository struct {
	Base
}

// NewLoadRepository binds a load repository to db.
func NewLoadRepository(db *gorm.DB) LoadRepository {
	return &loadRepository{Base: NewBase(db)}
}

func (r *loadRepository) WithTx(tx *gorm.DB) LoadRepository {
	if tx == nil {
		return r
	}
	return &loadRepository{Base: NewBase(tx)}
}

func (r *loadRepository) Create(ctx context.Context, load *models.Load) error {
	return r.DB(ctx).Create(load).Error
}

func (r *loadRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Load, error) {
	var load models.Load
	if err := r.DB(ctx).Where("id = ?", id).First(&load).Error; err != nil {
		return nil, err
	}
	return &load, nil
}

func (r *loadRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Load, error) {
	var load models.Load
	if err := r.Locked(ctx).Where("id = ?", id).First(&load).Error; err != nil {
		return nil, err
	}
	return &load, nil
}

func (r *loadRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := r.DB(ctx).Model(&models.Load{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListSettlementBacklog returns completed, POD-verified, undisputed loads that
// still have a pending party fee, oldest verification first.
func (r *loadRepository) ListSettlementBacklog(ctx context.Context, verifiedBefore time.Time, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 100
	}
	var ids []uuid.UUID
	err := r.DB(ctx).
		Model(&models.Load{}).
		Where("status = ?", enums.LoadStatusCompleted).
		Where("pod_verified = ?", true).
		Where("pod_verified_at < ?", verifiedBefore).
		Where("settlement_status <> ?", enums.SettlementStatusDispute).
		Where("shipper_fee_status = ? OR carrier_fee_status = ?", enums.FeeStatusPending, enums.FeeStatusPending).
		Order("pod_verified_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
