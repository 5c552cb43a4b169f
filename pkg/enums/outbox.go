package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column in outbox_events.
type OutboxAggregateType string

const (
	AggregateOrder    OutboxAggregateType = "order"
	AggregateVehicle  OutboxAggregateType = "vehicle"
	AggregateShortage OutboxAggregateType = "shortage"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateVehicle,
	AggregateShortage,
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

// OutboxEventType maps to the event_type column in outbox_events.
type OutboxEventType string

const (
	EventOrderCreated     OutboxEventType = "order_created"
	EventOrderUpdated     OutboxEventType = "order_updated"
	EventOrderDeleted     OutboxEventType = "order_deleted"
	EventVehicleAssigned  OutboxEventType = "vehicle_assigned"
	EventItemConfirmed    OutboxEventType = "item_confirmed"
	EventShortageIgnored  OutboxEventType = "shortage_ignored"
	EventVehicleCompleted OutboxEventType = "vehicle_completed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderUpdated,
	EventOrderDeleted,
	EventVehicleAssigned,
	EventItemConfirmed,
	EventShortageIgnored,
	EventVehicleCompleted,
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
