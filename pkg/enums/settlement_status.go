package enums

import "fmt"

// SettlementStatus is the financial status of a load.
type SettlementStatus string

const (
	SettlementStatusPending SettlementStatus = "PENDING"
	SettlementStatusPaid    SettlementStatus = "PAID"
	SettlementStatusDispute SettlementStatus = "DISPUTE"
)

var validSettlementStatuses = []SettlementStatus{
	SettlementStatusPending,
	SettlementStatusPaid,
	SettlementStatusDispute,
}

func (s SettlementStatus) String() string {
	return string(s)
}

func (s SettlementStatus) IsValid() bool {
	for _, candidate := range validSettlementStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseSettlementStatus(value string) (SettlementStatus, error) {
	for _, candidate := range validSettlementStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid settlement status %q", value)
}
