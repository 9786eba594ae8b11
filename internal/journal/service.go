package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
)

// Service records and reads journal entries.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.JournalEntry, error)
	ListByLoad(ctx context.Context, loadID uuid.UUID) ([]models.JournalEntry, error)
	SumByLoadAndType(ctx context.Context, loadID uuid.UUID, entryType enums.JournalEntryType) (decimal.Decimal, error)
}

// LineInput is one side of an entry.
type LineInput struct {
	AccountID    uuid.UUID
	Direction    enums.JournalLineDirection
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
}

// RecordInput captures the immutable data a journal entry requires.
type RecordInput struct {
	EntryType       enums.JournalEntryType
	LoadID          *uuid.UUID
	Party           *enums.Party
	Amount          decimal.Decimal
	Currency        string
	Description     string
	Metadata        map[string]any
	CreatedByUserID *uuid.UUID
	Lines           []LineInput
}

type service struct {
	repo Repository
}

// NewService wires a journal service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("journal repository required")
	}
	return &service{repo: repo}, nil
}

// Record validates the entry and writes it inside tx so it commits with the
// balance mutation it describes.
func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.JournalEntry, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "journal entries require a transaction")
	}
	if err := validate(input); err != nil {
		return nil, err
	}

	entry := &models.JournalEntry{
		EntryType:       input.EntryType,
		LoadID:          input.LoadID,
		Party:           input.Party,
		Amount:          input.Amount,
		Currency:        input.Currency,
		Description:     strings.TrimSpace(input.Description),
		CreatedByUserID: input.CreatedByUserID,
	}
	if len(input.Metadata) > 0 {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid journal metadata")
		}
		metadata := string(raw)
		entry.Metadata = &metadata
	}
	for _, line := range input.Lines {
		entry.Lines = append(entry.Lines, models.JournalLine{
			AccountID:    line.AccountID,
			Direction:    line.Direction,
			Amount:       line.Amount,
			BalanceAfter: line.BalanceAfter,
		})
	}

	if err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record journal entry")
	}
	return entry, nil
}

func validate(input RecordInput) error {
	if !input.EntryType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid journal entry type %q", input.EntryType))
	}
	if input.EntryType != enums.JournalEntryWalletDeposit && (input.LoadID == nil || *input.LoadID == uuid.Nil) {
		return pkgerrors.New(pkgerrors.CodeValidation, "load id is required")
	}
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if strings.TrimSpace(input.Currency) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "currency is required")
	}
	if len(input.Lines) != 2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "journal entry needs exactly one debit and one credit line")
	}
	var debits, credits int
	for _, line := range input.Lines {
		if line.AccountID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "line account id is required")
		}
		if !line.Amount.Equal(input.Amount) {
			return pkgerrors.New(pkgerrors.CodeValidation, "line amounts must equal the entry amount")
		}
		switch line.Direction {
		case enums.JournalLineDebit:
			debits++
		case enums.JournalLineCredit:
			credits++
		default:
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid line direction %q", line.Direction))
		}
	}
	if debits != 1 || credits != 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "journal entry needs exactly one debit and one credit line")
	}
	if input.Lines[0].AccountID == input.Lines[1].AccountID {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit and credit must hit different accounts")
	}
	return nil
}

func (s *service) ListByLoad(ctx context.Context, loadID uuid.UUID) ([]models.JournalEntry, error) {
	if loadID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "load id is required")
	}
	entries, err := s.repo.ListByLoad(ctx, loadID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list journal entries")
	}
	return entries, nil
}

// SumByLoadAndType totals the amounts of one entry type recorded for a load.
func (s *service) SumByLoadAndType(ctx context.Context, loadID uuid.UUID, entryType enums.JournalEntryType) (decimal.Decimal, error) {
	if !entryType.IsValid() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid journal entry type %q", entryType))
	}
	entries, err := s.repo.ListAmountsByLoadAndType(ctx, loadID, entryType)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum journal entries")
	}
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Amount)
	}
	return total, nil
}
