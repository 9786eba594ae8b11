package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/pkg/enums"
)

// JournalEntry is an immutable record of a balance mutation. Lines carry the
// per-account debit and credit.
type JournalEntry struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	EntryType       enums.JournalEntryType `gorm:"column:entry_type;type:text;not null"`
	LoadID          *uuid.UUID             `gorm:"column:load_id;type:uuid"`
	Party           *enums.Party           `gorm:"column:party;type:text"`
	Amount          decimal.Decimal        `gorm:"column:amount;type:numeric(14,2);not null"`
	Currency        string                 `gorm:"column:currency;type:text;not null"`
	Description     string                 `gorm:"column:description;not null"`
	Metadata        *string                `gorm:"column:metadata;type:jsonb"`
	CreatedByUserID *uuid.UUID             `gorm:"column:created_by_user_id;type:uuid"`
	Lines           []JournalLine          `gorm:"foreignKey:JournalEntryID"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
}

func (j *JournalEntry) BeforeCreate(*gorm.DB) error {
	ensureID(&j.ID)
	return nil
}

// JournalLine is one side of a journal entry against a single account.
type JournalLine struct {
	ID             uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey"`
	JournalEntryID uuid.UUID                  `gorm:"column:journal_entry_id;type:uuid;not null"`
	AccountID      uuid.UUID                  `gorm:"column:account_id;type:uuid;not null"`
	Direction      enums.JournalLineDirection `gorm:"column:direction;type:text;not null"`
	Amount         decimal.Decimal            `gorm:"column:amount;type:numeric(14,2);not null"`
	BalanceAfter   decimal.Decimal            `gorm:"column:balance_after;type:numeric(14,2);not null"`
	CreatedAt      time.Time                  `gorm:"column:created_at;autoCreateTime"`
}

func (l *JournalLine) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
