package enums

import (
	"fmt"
	"strings"
)

// Region is one of the fixed administrative regions corridors are priced on.
type Region string

const (
	RegionAddisAbaba       Region = "Addis Ababa"
	RegionAfar             Region = "Afar"
	RegionAmhara           Region = "Amhara"
	RegionBenishangulGumuz Region = "Benishangul-Gumuz"
	RegionCentralEthiopia  Region = "Central Ethiopia"
	RegionDireDawa         Region = "Dire Dawa"
	RegionGambela          Region = "Gambela"
	RegionHarari           Region = "Harari"
	RegionOromia           Region = "Oromia"
	RegionSidama           Region = "Sidama"
	RegionSomali           Region = "Somali"
	RegionSouthEthiopia    Region = "South Ethiopia"
	RegionSouthWest        Region = "South West Ethiopia"
	RegionTigray           Region = "Tigray"
	RegionDjibouti         Region = "Djibouti"
)

var validRegions = []Region{
	RegionAddisAbaba,
	RegionAfar,
	RegionAmhara,
	RegionBenishangulGumuz,
	RegionCentralEthiopia,
	RegionDireDawa,
	RegionGambela,
	RegionHarari,
	RegionOromia,
	RegionSidama,
	RegionSomali,
	RegionSouthEthiopia,
	RegionSouthWest,
	RegionTigray,
	RegionDjibouti,
}

var regionByCity = map[string]Region{
	"Addis Ababa":  RegionAddisAbaba,
	"Semera":       RegionAfar,
	"Galafi":       RegionAfar,
	"Awash":        RegionAfar,
	"Bahir Dar":    RegionAmhara,
	"Gondar":       RegionAmhara,
	"Dessie":       RegionAmhara,
	"Kombolcha":    RegionAmhara,
	"Debre Birhan": RegionAmhara,
	"Debre Markos": RegionAmhara,
	"Assosa":       RegionBenishangulGumuz,
	"Hosaena":      RegionCentralEthiopia,
	"Butajira":     RegionCentralEthiopia,
	"Dire Dawa":    RegionDireDawa,
	"Gambela":      RegionGambela,
	"Harar":        RegionHarari,
	"Adama":        RegionOromia,
	"Bishoftu":     RegionOromia,
	"Modjo":        RegionOromia,
	"Jimma":        RegionOromia,
	"Nekemte":      RegionOromia,
	"Shashemene":   RegionOromia,
	"Hawassa":      RegionSidama,
	"Jigjiga":      RegionSomali,
	"Dewele":       RegionSomali,
	"Arba Minch":   RegionSouthEthiopia,
	"Wolaita Sodo": RegionSouthEthiopia,
	"Bonga":        RegionSouthWest,
	"Mizan Teferi": RegionSouthWest,
	"Mekelle":      RegionTigray,
	"Adigrat":      RegionTigray,
	"Shire":        RegionTigray,
	"Djibouti":     RegionDjibouti,
}

func (r Region) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Region. Matching is case-sensitive.
func (r Region) IsValid() bool {
	for _, candidate := range validRegions {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRegion converts raw input into a Region.
func ParseRegion(value string) (Region, error) {
	for _, candidate := range validRegions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid region %q", value)
}

// RegionForCity looks up the region a city belongs to.
func RegionForCity(city string) (Region, bool) {
	region, ok := regionByCity[strings.TrimSpace(city)]
	return region, ok
}

// ResolveRegion prefers an explicit region and falls back to the city table.
// It returns false when neither yields a known region.
func ResolveRegion(explicit *string, city string) (Region, bool) {
	if explicit != nil {
		if value := strings.TrimSpace(*explicit); value != "" {
			region := Region(value)
			return region, region.IsValid()
		}
	}
	return RegionForCity(city)
}
