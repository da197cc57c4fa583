package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartSnapshotRecompute(t *testing.T) {
	t.Run("totals derived from lines", func(t *testing.T) {
		snap := &CartSnapshot{
			UserID: "user-1",
			Items: []CartItem{
				{ProductID: "silver-needle", Quantity: 2, UnitOriginalPrice: 1000, UnitActualPrice: 900},
				{ProductID: "shou-mei", Quantity: 1, UnitOriginalPrice: 450, UnitActualPrice: 450},
			},
		}
		snap.Recompute()

		assert.Equal(t, int64(2450), snap.SubtotalOriginal)
		assert.Equal(t, int64(2250), snap.SubtotalDiscounted)
		assert.Equal(t, int64(200), snap.TotalSavings)
	})

	t.Run("empty cart zeroes totals", func(t *testing.T) {
		snap := &CartSnapshot{
			SubtotalOriginal:   999,
			SubtotalDiscounted: 999,
			TotalSavings:       999,
		}
		snap.Recompute()

		assert.Zero(t, snap.SubtotalOriginal)
		assert.Zero(t, snap.SubtotalDiscounted)
		assert.Zero(t, snap.TotalSavings)
		assert.True(t, snap.IsEmpty())
	})

	t.Run("savings never negative", func(t *testing.T) {
		snap := &CartSnapshot{
			Items: []CartItem{
				{ProductID: "p1", Quantity: 1, UnitOriginalPrice: 100, UnitActualPrice: 300},
			},
		}
		snap.Recompute()

		assert.Equal(t, int64(0), snap.TotalSavings)
	})
}

func TestCartSnapshotFindItem(t *testing.T) {
	snap := &CartSnapshot{
		Items: []CartItem{
			{ProductID: "p1", VariantID: "v1"},
			{ProductID: "p1", VariantID: "v2"},
			{ProductID: "p2"},
		},
	}

	assert.Equal(t, 1, snap.FindItem("p1", "v2"))
	assert.Equal(t, 2, snap.FindItem("p2", ""))
	assert.Equal(t, -1, snap.FindItem("p3", ""))
	assert.Equal(t, -1, snap.FindItem("p1", "v9"))
}

func TestCartSnapshotItemCount(t *testing.T) {
	snap := &CartSnapshot{
		Items: []CartItem{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p2", Quantity: 1},
		},
	}
	assert.Equal(t, 4, snap.ItemCount())
	assert.Zero(t, EmptySnapshot("u").ItemCount())
}
