package reconciliation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bedtex/dispatch-backend/pkg/db/models"
	"github.com/bedtex/dispatch-backend/pkg/types"
)

func TestTryParseQuantity(t *testing.T) {
	cases := []struct {
		value string
		want  string
		ok    bool
	}{
		{"7", "7", true},
		{" 12.5 ", "12.5", true},
		{"3,25", "3.25", true},
		{"0", "0", true},
		{"-2", "-2", true},
		{"", "", false},
		{"   ", "", false},
		{"loaded at 14:30", "", false},
		{"7 pcs", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			got, ok := TryParseQuantity(tc.value)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				want, err := decimal.NewFromString(tc.want)
				require.NoError(t, err)
				assert.True(t, got.Equal(want), "got %s want %s", got, want)
			}
		})
	}
}

func TestComputeDeficit(t *testing.T) {
	item := func(requested int64, leaderValue *string) models.OrderItem {
		return models.OrderItem{
			Quantity:      decimal.NewFromInt(requested),
			LeaderConfirm: types.Confirmation{Value: leaderValue},
		}
	}
	str := func(s string) *string { return &s }

	t.Run("shortage", func(t *testing.T) {
		deficit, ok := ComputeDeficit(item(10, str("7")))
		require.True(t, ok)
		assert.True(t, deficit.Equal(decimal.NewFromInt(-3)))
	})

	t.Run("surplus", func(t *testing.T) {
		deficit, ok := ComputeDeficit(item(10, str("12")))
		require.True(t, ok)
		assert.True(t, deficit.Equal(decimal.NewFromInt(2)))
	})

	t.Run("balanced", func(t *testing.T) {
		deficit, ok := ComputeDeficit(item(10, str("10")))
		require.True(t, ok)
		assert.True(t, deficit.IsZero())
	})

	t.Run("noLeaderConfirm", func(t *testing.T) {
		_, ok := ComputeDeficit(item(10, nil))
		assert.False(t, ok)
	})

	t.Run("unparseableExcludedNotZero", func(t *testing.T) {
		_, ok := ComputeDeficit(item(10, str("before noon")))
		assert.False(t, ok)
	})
}

func TestRemainingShortage(t *testing.T) {
	d := decimal.NewFromInt

	assert.True(t, RemainingShortage(d(-3), d(0)).Equal(d(3)))
	assert.True(t, RemainingShortage(d(-3), d(2)).Equal(d(1)))
	assert.True(t, RemainingShortage(d(-3), d(3)).IsZero())
	// Never negative, even when over-compensated.
	assert.True(t, RemainingShortage(d(-3), d(5)).IsZero())
}
