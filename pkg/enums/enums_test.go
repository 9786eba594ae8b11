package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStatusTransitions(t *testing.T) {
	assert.True(t, LoadStatusPosted.CanTransitionTo(LoadStatusAssigned))
	assert.True(t, LoadStatusInTransit.CanTransitionTo(LoadStatusException))
	assert.True(t, LoadStatusException.CanTransitionTo(LoadStatusInTransit))
	assert.True(t, LoadStatusDelivered.CanTransitionTo(LoadStatusCompleted))

	assert.False(t, LoadStatusPosted.CanTransitionTo(LoadStatusDelivered))
	assert.False(t, LoadStatusDelivered.CanTransitionTo(LoadStatusCancelled))
	assert.False(t, LoadStatusCompleted.CanTransitionTo(LoadStatusPosted))

	assert.True(t, LoadStatusCompleted.IsTerminal())
	assert.True(t, LoadStatusCancelled.IsTerminal())
	assert.False(t, LoadStatusInTransit.IsTerminal())
}

func TestResolveRegion(t *testing.T) {
	explicit := "Oromia"
	region, ok := ResolveRegion(&explicit, "Mekelle")
	require.True(t, ok)
	assert.Equal(t, RegionOromia, region)

	region, ok = ResolveRegion(nil, " Mekelle ")
	require.True(t, ok)
	assert.Equal(t, RegionTigray, region)

	blank := "  "
	region, ok = ResolveRegion(&blank, "Adama")
	require.True(t, ok)
	assert.Equal(t, RegionOromia, region)

	lower := "oromia"
	_, ok = ResolveRegion(&lower, "Adama")
	assert.False(t, ok, "region matching is case-sensitive")

	_, ok = ResolveRegion(nil, "Atlantis")
	assert.False(t, ok)
}

func TestFeeStatusIsSettled(t *testing.T) {
	assert.False(t, FeeStatusPending.IsSettled())
	assert.False(t, FeeStatus("").IsSettled())
	assert.True(t, FeeStatusDeducted.IsSettled())
	assert.True(t, FeeStatusWaived.IsSettled())
	assert.True(t, FeeStatusRefunded.IsSettled())
}

func TestParseHelpers(t *testing.T) {
	_, err := ParseRegion("Narnia")
	assert.Error(t, err)

	dir, err := ParseCorridorDirection("BIDIRECTIONAL")
	require.NoError(t, err)
	assert.True(t, dir.MatchesReverse())
	assert.False(t, CorridorDirectionOneWay.MatchesReverse())

	role, err := ParseRole("SUPER_ADMIN")
	require.NoError(t, err)
	assert.True(t, role.IsAdmin())
	assert.False(t, RoleCarrier.IsAdmin())
}
