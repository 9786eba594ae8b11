package enums

import "fmt"

// FeeStatus tracks one party's service fee on a load.
type FeeStatus string

const (
	FeeStatusPending  FeeStatus = "PENDING"
	FeeStatusDeducted FeeStatus = "DEDUCTED"
	FeeStatusWaived   FeeStatus = "WAIVED"
	FeeStatusRefunded FeeStatus = "REFUNDED"
)

var validFeeStatuses = []FeeStatus{
	FeeStatusPending,
	FeeStatusDeducted,
	FeeStatusWaived,
	FeeStatusRefunded,
}

// String implements fmt.Stringer.
func (f FeeStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FeeStatus.
func (f FeeStatus) IsValid() bool {
	for _, candidate := range validFeeStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// IsSettled reports whether the fee has left PENDING.
func (f FeeStatus) IsSettled() bool {
	return f != FeeStatusPending && f != ""
}

// ParseFeeStatus converts raw input into a FeeStatus.
func ParseFeeStatus(value string) (FeeStatus, error) {
	for _, candidate := range validFeeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fee status %q", value)
}
