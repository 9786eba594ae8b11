package enums

import "fmt"

// OrganizationType distinguishes shippers, carriers and the platform operator.
type OrganizationType string

const (
	OrganizationTypeShipper  OrganizationType = "SHIPPER"
	OrganizationTypeCarrier  OrganizationType = "CARRIER"
	OrganizationTypePlatform OrganizationType = "PLATFORM"
)

var validOrganizationTypes = []OrganizationType{
	OrganizationTypeShipper,
	OrganizationTypeCarrier,
	OrganizationTypePlatform,
}

func (o OrganizationType) IsValid() bool {
	for _, candidate := range validOrganizationTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

func ParseOrganizationType(value string) (OrganizationType, error) {
	for _, candidate := range validOrganizationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid organization type %q", value)
}
