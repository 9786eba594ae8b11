package journal

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/internal/repo"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
)

// Repository manages persistence for journal entries. Entries are append-only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.JournalEntry) error
	ListByLoad(ctx context.Context, loadID uuid.UUID) ([]models.JournalEntry, error)
	ListAmountsByLoadAndType(ctx context.Context, loadID uuid.UUID, entryType enums.JournalEntryType) ([]models.JournalEntry, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a journal repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// Create inserts the entry and then its lines.
func (r *repository) Create(ctx context.Context, entry *models.JournalEntry) error {
	db := r.DB(ctx)
	if err := db.Omit("Lines").Create(entry).Error; err != nil {
		return err
	}
	for i := range entry.Lines {
		entry.Lines[i].JournalEntryID = entry.ID
		if err := db.Create(&entry.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) ListByLoad(ctx context.Context, loadID uuid.UUID) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	if err := r.DB(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("direction DESC")
		}).
		Where("load_id = ?", loadID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListAmountsByLoadAndType(ctx context.Context, loadID uuid.UUID, entryType enums.JournalEntryType) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	if err := r.DB(ctx).
		Select("id", "amount").
		Where("load_id = ? AND entry_type = ?", loadID, entryType).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
