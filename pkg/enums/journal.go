package enums

import "fmt"

// JournalEntryType classifies an immutable journal entry.
type JournalEntryType string

const (
	JournalEntryServiceFeeDeduction JournalEntryType = "SERVICE_FEE_DEDUCTION"
	JournalEntryServiceFeeRefund    JournalEntryType = "SERVICE_FEE_REFUND"
	JournalEntryWalletDeposit       JournalEntryType = "WALLET_DEPOSIT"
)

var validJournalEntryTypes = []JournalEntryType{
	JournalEntryServiceFeeDeduction,
	JournalEntryServiceFeeRefund,
	JournalEntryWalletDeposit,
}

func (j JournalEntryType) IsValid() bool {
	for _, candidate := range validJournalEntryTypes {
		if candidate == j {
			return true
		}
	}
	return false
}

func ParseJournalEntryType(value string) (JournalEntryType, error) {
	for _, candidate := range validJournalEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid journal entry type %q", value)
}

// JournalLineDirection is the side of a journal line.
type JournalLineDirection string

const (
	JournalLineDebit  JournalLineDirection = "DEBIT"
	JournalLineCredit JournalLineDirection = "CREDIT"
)

func (d JournalLineDirection) IsValid() bool {
	return d == JournalLineDebit || d == JournalLineCredit
}
