package enums

// Party identifies which side of a trip pays a service fee.
type Party string

const (
	PartyShipper Party = "shipper"
	PartyCarrier Party = "carrier"
)

// Parties lists the fee-paying parties in settlement order.
var Parties = []Party{PartyShipper, PartyCarrier}

func (p Party) String() string {
	return string(p)
}

func (p Party) IsValid() bool {
	return p == PartyShipper || p == PartyCarrier
}

// WalletType returns the account type the party pays from.
func (p Party) WalletType() AccountType {
	if p == PartyCarrier {
		return AccountTypeCarrierWallet
	}
	return AccountTypeShipperWallet
}
