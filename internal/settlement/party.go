package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freightlink-backend/internal/fees"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
)

func payerOrganization(load *models.Load, party enums.Party) (uuid.UUID, bool) {
	if party == enums.PartyCarrier {
		if load.CarrierOrganizationID == nil || *load.CarrierOrganizationID == uuid.Nil {
			return uuid.Nil, false
		}
		return *load.CarrierOrganizationID, true
	}
	return load.ShipperOrganizationID, load.ShipperOrganizationID != uuid.Nil
}

// partyUpdates builds the column updates for a fee status change.
func partyUpdates(party enums.Party, status enums.FeeStatus, fee decimal.Decimal, now time.Time) map[string]any {
	prefix := party.String()
	updates := map[string]any{
		prefix + "_fee_status": status,
	}
	switch status {
	case enums.FeeStatusDeducted, enums.FeeStatusWaived:
		updates[prefix+"_service_fee"] = fee
		if status == enums.FeeStatusDeducted {
			updates[prefix+"_fee_deducted_at"] = now
		}
	case enums.FeeStatusRefunded:
		updates[prefix+"_fee_refunded_at"] = now
	}
	return updates
}

func applyPartyStatus(load *models.Load, party enums.Party, status enums.FeeStatus, fee decimal.Decimal) {
	if party == enums.PartyCarrier {
		load.CarrierFeeStatus = status
		if status != enums.FeeStatusRefunded {
			load.CarrierServiceFee = fee
		}
		return
	}
	load.ShipperFeeStatus = status
	if status != enums.FeeStatusRefunded {
		load.ShipperServiceFee = fee
	}
}

func partyFee(load *models.Load, party enums.Party) decimal.Decimal {
	if party == enums.PartyCarrier {
		return load.CarrierServiceFee
	}
	return load.ShipperServiceFee
}

// deductedTotal is the platform fee currently held for the load.
func deductedTotal(load *models.Load) decimal.Decimal {
	total := decimal.Zero
	for _, party := range enums.Parties {
		if load.FeeStatusFor(party) == enums.FeeStatusDeducted {
			total = total.Add(partyFee(load, party))
		}
	}
	return total
}

func partyTitle(party enums.Party) string {
	if party == enums.PartyCarrier {
		return "Carrier"
	}
	return "Shipper"
}

func chargeMetadata(load *models.Load, corridor *models.Corridor) map[string]any {
	metadata := map[string]any{
		"pickup_city":   load.PickupCity,
		"delivery_city": load.DeliveryCity,
	}
	if corridor != nil {
		metadata["corridor_id"] = corridor.ID.String()
		metadata["corridor_name"] = corridor.Name
		metadata["distance_km"] = fees.TripDistanceKm(load, corridor).String()
	}
	return metadata
}
