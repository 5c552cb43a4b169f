package types

import (
	"strings"
	"time"
)

// Confirmation is one acknowledgment mark on an order item. The value is
// free-form text: warehouse staff record quantities or scheduled time strings,
// the dispatch leader records the quantity actually loaded. Re-confirming
// overwrites both fields; no history is kept.
type Confirmation struct {
	Value       *string    `gorm:"column:value" json:"value"`
	ConfirmedAt *time.Time `gorm:"column:at" json:"confirmed_at"`
}

// IsSet reports whether the confirmation carries a non-empty value.
func (c Confirmation) IsSet() bool {
	return c.Value != nil && strings.TrimSpace(*c.Value) != ""
}

// Set overwrites the confirmation with the given value at the given time.
func (c *Confirmation) Set(value string, at time.Time) {
	c.Value = &value
	c.ConfirmedAt = &at
}
