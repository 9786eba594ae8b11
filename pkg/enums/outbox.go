package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column of outbox_events.
type OutboxAggregateType string

const (
	AggregateLoad     OutboxAggregateType = "load"
	AggregateCorridor OutboxAggregateType = "corridor"
	AggregateAccount  OutboxAggregateType = "financial_account"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateLoad,
	AggregateCorridor,
	AggregateAccount,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column of outbox_events.
type OutboxEventType string

const (
	EventLoadAssigned           OutboxEventType = "load_assigned"
	EventLoadStatusChanged      OutboxEventType = "load_status_changed"
	EventPODSubmitted           OutboxEventType = "pod_submitted"
	EventPODVerified            OutboxEventType = "pod_verified"
	EventCorridorAssigned       OutboxEventType = "corridor_assigned"
	EventServiceFeeDeducted     OutboxEventType = "service_fee_deducted"
	EventServiceFeesWaived      OutboxEventType = "service_fees_waived"
	EventServiceFeeRefunded     OutboxEventType = "service_fee_refunded"
	EventSettlementPaid         OutboxEventType = "settlement_paid"
	EventSettlementDisputed     OutboxEventType = "settlement_disputed"
	EventSettlementResolved     OutboxEventType = "settlement_resolved"
	EventCorridorCreated        OutboxEventType = "corridor_created"
	EventCorridorUpdated        OutboxEventType = "corridor_updated"
	EventInsufficientWalletFund OutboxEventType = "insufficient_wallet_funds"
)

var validOutboxEventTypes = []OutboxEventType{
	EventLoadAssigned,
	EventLoadStatusChanged,
	EventPODSubmitted,
	EventPODVerified,
	EventCorridorAssigned,
	EventServiceFeeDeducted,
	EventServiceFeesWaived,
	EventServiceFeeRefunded,
	EventSettlementPaid,
	EventSettlementDisputed,
	EventSettlementResolved,
	EventCorridorCreated,
	EventCorridorUpdated,
	EventInsufficientWalletFund,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
