package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightTable(t *testing.T) {
	table := NewWeightTable([]WeightEntry{
		{Category: "chat", Disposition: "", Points: 1.0},
		{Category: "chat", Disposition: "escalated", Points: 2.5},
		{Category: "refund", Disposition: "", Points: 3.0},
		{Category: "refund", Disposition: "approved", Points: 4.0},
	})

	t.Run("exact match wins", func(t *testing.T) {
		assert.Equal(t, 2.5, table.WeightOf("chat", "escalated"))
		assert.Equal(t, 4.0, table.WeightOf("refund", "approved"))
	})

	t.Run("unknown disposition falls back to category default", func(t *testing.T) {
		assert.Equal(t, 1.0, table.WeightOf("chat", "no-such-disposition"))
		assert.Equal(t, 3.0, table.WeightOf("refund", "denied"))
	})

	t.Run("missing disposition uses category default", func(t *testing.T) {
		assert.Equal(t, 3.0, table.WeightOf("refund", ""))
	})

	t.Run("unknown category uses universal fallback", func(t *testing.T) {
		assert.Equal(t, fallbackWeight, table.WeightOf("hold", "released"))
		assert.Equal(t, fallbackWeight, table.WeightOf("hold", ""))
	})

	t.Run("empty table never fails", func(t *testing.T) {
		empty := NewWeightTable(nil)
		assert.Equal(t, fallbackWeight, empty.WeightOf("anything", "at-all"))
	})

	t.Run("later entries overwrite earlier ones", func(t *testing.T) {
		dup := NewWeightTable([]WeightEntry{
			{Category: "chat", Disposition: "resolved", Points: 1.0},
			{Category: "chat", Disposition: "resolved", Points: 7.0},
		})
		assert.Equal(t, 7.0, dup.WeightOf("chat", "resolved"))
	})
}
