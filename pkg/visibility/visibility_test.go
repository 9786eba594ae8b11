package visibility

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	"github.com/angelmondragon/freightlink-backend/pkg/errors"
)

func TestEnsureLoadParticipant(t *testing.T) {
	shipper := uuid.New()
	carrier := uuid.New()
	stranger := uuid.New()
	load := &models.Load{ShipperOrganizationID: shipper, CarrierOrganizationID: &carrier}

	t.Run("missing load", func(t *testing.T) {
		_, err := EnsureLoadParticipant(LoadVisibilityInput{Role: enums.RoleAdmin})
		require.Equal(t, errors.CodeNotFound, errors.As(err).Code())
	})
	t.Run("admin sees everything", func(t *testing.T) {
		side, err := EnsureLoadParticipant(LoadVisibilityInput{Load: load, Role: enums.RoleSuperAdmin})
		require.NoError(t, err)
		require.Equal(t, SideAdmin, side)
	})
	t.Run("shipper", func(t *testing.T) {
		side, err := EnsureLoadParticipant(LoadVisibilityInput{Load: load, Role: enums.RoleShipper, OrganizationID: &shipper})
		require.NoError(t, err)
		require.Equal(t, SideShipper, side)
	})
	t.Run("carrier", func(t *testing.T) {
		side, err := EnsureLoadParticipant(LoadVisibilityInput{Load: load, Role: enums.RoleCarrier, OrganizationID: &carrier})
		require.NoError(t, err)
		require.Equal(t, SideCarrier, side)
	})
	t.Run("stranger gets not found", func(t *testing.T) {
		_, err := EnsureLoadParticipant(LoadVisibilityInput{Load: load, Role: enums.RoleCarrier, OrganizationID: &stranger})
		require.Equal(t, errors.CodeNotFound, errors.As(err).Code())
	})
	t.Run("no organization", func(t *testing.T) {
		_, err := EnsureLoadParticipant(LoadVisibilityInput{Load: load, Role: enums.RoleShipper})
		require.Equal(t, errors.CodeForbidden, errors.As(err).Code())
	})
}

func TestEnsureShipperOrAdmin(t *testing.T) {
	shipper := uuid.New()
	carrier := uuid.New()
	load := &models.Load{ShipperOrganizationID: shipper, CarrierOrganizationID: &carrier}

	require.NoError(t, EnsureShipperOrAdmin(LoadVisibilityInput{Load: load, Role: enums.RoleShipper, OrganizationID: &shipper}))
	require.NoError(t, EnsureShipperOrAdmin(LoadVisibilityInput{Load: load, Role: enums.RoleAdmin}))

	err := EnsureShipperOrAdmin(LoadVisibilityInput{Load: load, Role: enums.RoleCarrier, OrganizationID: &carrier})
	require.Equal(t, errors.CodeForbidden, errors.As(err).Code())
}
