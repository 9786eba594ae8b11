package corridors

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/internal/repo"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	"github.com/angelmondragon/freightlink-backend/pkg/pagination"
)

// ListFilter narrows the admin corridor listing.
type ListFilter struct {
	OriginRegion      *enums.Region
	DestinationRegion *enums.Region
	IsActive          *bool
}

// Repository manages corridor persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, corridor *models.Corridor) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Corridor, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Corridor, error)
	FindActiveRoute(ctx context.Context, origin, destination enums.Region) (*models.Corridor, error)
	FindActiveReverse(ctx context.Context, origin, destination enums.Region) (*models.Corridor, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Corridor, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a corridor repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, corridor *models.Corridor) error {
	return r.DB(ctx).Create(corridor).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Corridor, error) {
	var corridor models.Corridor
	if err := r.DB(ctx).Where("id = ?", id).First(&corridor).Error; err != nil {
		return nil, err
	}
	return &corridor, nil
}

func (r *repository) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Corridor, error) {
	var corridor models.Corridor
	if err := r.DB(ctx).Where("id = ? AND is_active = ?", id, true).First(&corridor).Error; err != nil {
		return nil, err
	}
	return &corridor, nil
}

// FindActiveRoute returns the oldest active corridor for the exact pair.
func (r *repository) FindActiveRoute(ctx context.Context, origin, destination enums.Region) (*models.Corridor, error) {
	var corridor models.Corridor
	err := r.DB(ctx).
		Where("origin_region = ? AND destination_region = ? AND is_active = ?", origin, destination, true).
		Order("created_at ASC, id ASC").
		First(&corridor).Error
	if err != nil {
		return nil, err
	}
	return &corridor, nil
}

// FindActiveReverse returns the oldest active bidirectional corridor priced
// from destination to origin.
func (r *repository) FindActiveReverse(ctx context.Context, origin, destination enums.Region) (*models.Corridor, error) {
	var corridor models.Corridor
	err := r.DB(ctx).
		Where("origin_region = ? AND destination_region = ? AND is_active = ?", destination, origin, true).
		Where("direction = ?", enums.CorridorDirectionBidirectional).
		Order("created_at ASC, id ASC").
		First(&corridor).Error
	if err != nil {
		return nil, err
	}
	return &corridor, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	res := r.DB(ctx).Model(&models.Corridor{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List pages corridors newest first.
func (r *repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Corridor, error) {
	q := r.DB(ctx).Model(&models.Corridor{})
	if filter.OriginRegion != nil {
		q = q.Where("origin_region = ?", *filter.OriginRegion)
	}
	if filter.DestinationRegion != nil {
		q = q.Where("destination_region = ?", *filter.DestinationRegion)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Corridor
	if err := q.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
