package enums

import "fmt"

// CorridorDirection controls whether a corridor also prices the reverse trip.
type CorridorDirection string

const (
	CorridorDirectionOneWay        CorridorDirection = "ONE_WAY"
	CorridorDirectionRoundTrip     CorridorDirection = "ROUND_TRIP"
	CorridorDirectionBidirectional CorridorDirection = "BIDIRECTIONAL"
)

var validCorridorDirections = []CorridorDirection{
	CorridorDirectionOneWay,
	CorridorDirectionRoundTrip,
	CorridorDirectionBidirectional,
}

func (d CorridorDirection) String() string {
	return string(d)
}

func (d CorridorDirection) IsValid() bool {
	for _, candidate := range validCorridorDirections {
		if candidate == d {
			return true
		}
	}
	return false
}

// MatchesReverse reports whether a destination→origin lookup may use this corridor.
func (d CorridorDirection) MatchesReverse() bool {
	return d == CorridorDirectionBidirectional
}

func ParseCorridorDirection(value string) (CorridorDirection, error) {
	for _, candidate := range validCorridorDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid corridor direction %q", value)
}
