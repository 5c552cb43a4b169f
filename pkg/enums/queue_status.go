package enums

import "fmt"

// QueueStatus filters the warehouse item queue by confirmation presence.
type QueueStatus string

const (
	QueueStatusConfirmed   QueueStatus = "confirmed"
	QueueStatusUnconfirmed QueueStatus = "unconfirmed"
	QueueStatusAll         QueueStatus = "all"
)

var validQueueStatuses = []QueueStatus{
	QueueStatusConfirmed,
	QueueStatusUnconfirmed,
	QueueStatusAll,
}

// String implements fmt.Stringer.
func (q QueueStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QueueStatus.
func (q QueueStatus) IsValid() bool {
	for _, candidate := range validQueueStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQueueStatus converts raw input into a QueueStatus.
func ParseQueueStatus(value string) (QueueStatus, error) {
	for _, candidate := range validQueueStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid queue status %q", value)
}
