package enums

import "fmt"

// AccountType classifies a financial account.
type AccountType string

const (
	AccountTypeShipperWallet   AccountType = "SHIPPER_WALLET"
	AccountTypeCarrierWallet   AccountType = "CARRIER_WALLET"
	AccountTypePlatformRevenue AccountType = "PLATFORM_REVENUE"
)

var validAccountTypes = []AccountType{
	AccountTypeShipperWallet,
	AccountTypeCarrierWallet,
	AccountTypePlatformRevenue,
}

func (a AccountType) String() string {
	return string(a)
}

func (a AccountType) IsValid() bool {
	for _, candidate := range validAccountTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

func ParseAccountType(value string) (AccountType, error) {
	for _, candidate := range validAccountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account type %q", value)
}
