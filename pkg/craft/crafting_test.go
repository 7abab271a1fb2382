package craft_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitas-games/craftworks/internal/errors"
	"github.com/gravitas-games/craftworks/pkg/craft"
)

func TestCraftingLifecycle(t *testing.T) {
	c := &craft.Crafting{RecipeIndex: 1, Duration: 2 * time.Second}

	assert.Equal(t, craft.StatePending, c.State)
	assert.False(t, c.IsFinished())
	assert.Equal(t, 0.0, c.Progress())

	c.Process(500 * time.Millisecond)
	assert.Equal(t, craft.StateProcessing, c.State)
	assert.InDelta(t, 0.25, c.Progress(), 1e-9)

	c.Process(-time.Second)
	assert.Equal(t, 500*time.Millisecond, c.Time)

	c.Process(2 * time.Second)
	assert.True(t, c.IsFinished())
	assert.Equal(t, craft.StateFinished, c.State)
	assert.Equal(t, 1.0, c.Progress())

	c.Process(time.Second)
	assert.Equal(t, 2500*time.Millisecond, c.Time)
}

func TestCraftingZeroDurationIsFinished(t *testing.T) {
	c := &craft.Crafting{}

	assert.True(t, c.IsFinished())
	assert.Equal(t, 1.0, c.Progress())
}

func TestCraftingDataRoundTrip(t *testing.T) {
	c := &craft.Crafting{RecipeIndex: 3, Time: 1500 * time.Millisecond}

	b, err := json.Marshal(c.ToData())
	require.NoError(t, err)

	var data []any
	require.NoError(t, json.Unmarshal(b, &data))

	restored := &craft.Crafting{}
	require.NoError(t, restored.FromData(data))
	assert.Equal(t, 3, restored.RecipeIndex)
	assert.Equal(t, 1500*time.Millisecond, restored.Time)
	assert.False(t, restored.IngredientsTaken())
}

func TestCraftingFromDataErrors(t *testing.T) {
	tests := []struct {
		name string
		data []any
	}{
		{name: "too short", data: []any{1}},
		{name: "fractional index", data: []any{1.5, 0.0}},
		{name: "negative index", data: []any{-1, 0.0}},
		{name: "non numeric time", data: []any{1, "soon"}},
		{name: "negative time", data: []any{1, -2.0}},
		{name: "non bool flag", data: []any{1, 0.0, "yes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &craft.Crafting{}
			assert.True(t, errors.IsInvalidArgument(c.FromData(tt.data)))
		})
	}
}

func TestCraftingFromDataWithoutFlag(t *testing.T) {
	c := &craft.Crafting{}

	require.NoError(t, c.FromData([]any{2, 1}))
	assert.Equal(t, 2, c.RecipeIndex)
	assert.Equal(t, time.Second, c.Time)
	assert.False(t, c.IngredientsTaken())
}
