package reconciliation

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bedtex/dispatch-backend/pkg/db/models"
)

// TryParseQuantity interprets a free-form confirmation value as a quantity.
// Leader confirmations are untyped text: usually a number, occasionally a
// clock time or a note. Anything that does not parse is excluded from
// reconciliation rather than treated as zero. Comma decimal separators are
// accepted since the warehouse screens produce both styles.
func TryParseQuantity(value string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, false
	}
	trimmed = strings.ReplaceAll(trimmed, ",", ".")
	qty, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, false
	}
	return qty, true
}

// ComputeDeficit derives the signed difference between the leader-confirmed
// quantity and the requested quantity. The second return is false when the
// item has no parseable leader confirmation and must be excluded.
// Negative = shortage, positive = surplus, zero = balanced.
func ComputeDeficit(item models.OrderItem) (decimal.Decimal, bool) {
	if item.LeaderConfirm.Value == nil {
		return decimal.Zero, false
	}
	confirmed, ok := TryParseQuantity(*item.LeaderConfirm.Value)
	if !ok {
		return decimal.Zero, false
	}
	return confirmed.Sub(item.Quantity), true
}

// RemainingShortage floors the uncompensated part of a shortage at zero.
func RemainingShortage(deficit, compensated decimal.Decimal) decimal.Decimal {
	remaining := deficit.Abs().Sub(compensated)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}
