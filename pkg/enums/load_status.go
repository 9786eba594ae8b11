package enums

import "fmt"

// LoadStatus tracks the lifecycle of a load from posting to completion.
type LoadStatus string

const (
	LoadStatusPosted        LoadStatus = "POSTED"
	LoadStatusAssigned      LoadStatus = "ASSIGNED"
	LoadStatusPickupPending LoadStatus = "PICKUP_PENDING"
	LoadStatusInTransit     LoadStatus = "IN_TRANSIT"
	LoadStatusDelivered     LoadStatus = "DELIVERED"
	LoadStatusCompleted     LoadStatus = "COMPLETED"
	LoadStatusCancelled     LoadStatus = "CANCELLED"
	LoadStatusException     LoadStatus = "EXCEPTION"
)

var validLoadStatuses = []LoadStatus{
	LoadStatusPosted,
	LoadStatusAssigned,
	LoadStatusPickupPending,
	LoadStatusInTransit,
	LoadStatusDelivered,
	LoadStatusCompleted,
	LoadStatusCancelled,
	LoadStatusException,
}

var loadTransitions = map[LoadStatus][]LoadStatus{
	LoadStatusPosted:        {LoadStatusAssigned, LoadStatusCancelled},
	LoadStatusAssigned:      {LoadStatusPickupPending, LoadStatusCancelled},
	LoadStatusPickupPending: {LoadStatusInTransit, LoadStatusCancelled},
	LoadStatusInTransit:     {LoadStatusDelivered, LoadStatusException},
	LoadStatusException:     {LoadStatusInTransit, LoadStatusCancelled},
	LoadStatusDelivered:     {LoadStatusCompleted},
}

// String implements fmt.Stringer.
func (s LoadStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LoadStatus.
func (s LoadStatus) IsValid() bool {
	for _, candidate := range validLoadStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s LoadStatus) IsTerminal() bool {
	return len(loadTransitions[s]) == 0
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s LoadStatus) CanTransitionTo(next LoadStatus) bool {
	for _, candidate := range loadTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseLoadStatus converts raw input into a LoadStatus.
func ParseLoadStatus(value string) (LoadStatus, error) {
	for _, candidate := range validLoadStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid load status %q", value)
}
