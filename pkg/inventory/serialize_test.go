package inventory_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitas-games/craftworks/internal/errors"
	"github.com/gravitas-games/craftworks/pkg/inventory"
)

func TestJSONRoundTrip(t *testing.T) {
	reg := newTestRegistry()
	inv := inventory.New("bag", reg, inventory.WithStacks(
		inventory.Stack{Item: wood, Amount: 7},
		inventory.Stack{Item: stone, Amount: 3, Properties: inventory.Properties{"quality": "fine"}},
		inventory.Stack{},
	))

	b, err := json.Marshal(inv)
	require.NoError(t, err)

	restored := inventory.New("copy", reg)
	rec := record(restored)
	require.NoError(t, json.Unmarshal(b, restored))

	assert.Equal(t, inv.Stacks(), restored.Stacks())
	assert.Equal(t, 1, rec.count(inventory.EventInventoryChanged))
}

func TestSerializeInMemory(t *testing.T) {
	reg := newTestRegistry()
	inv := inventory.New("bag", reg, inventory.WithStacks(inventory.Stack{Item: wood, Amount: 2}))

	data, err := inv.Serialize()
	require.NoError(t, err)
	require.Contains(t, data, inventory.KeyItems)

	restored := inventory.New("copy", reg, inventory.WithSlots(3))
	require.NoError(t, restored.Deserialize(data))
	assert.Equal(t, []inventory.Stack{{Item: wood, Amount: 2}}, restored.Stacks())
}

func TestRoundTripKeepsNumericProperties(t *testing.T) {
	reg := newTestRegistry()
	props := inventory.Properties{"quality": 3, "stats": map[string]any{"hp": 10}}

	tests := []struct {
		name    string
		restore func(t *testing.T, src, dst *inventory.Inventory)
	}{
		{
			name: "in memory",
			restore: func(t *testing.T, src, dst *inventory.Inventory) {
				data, err := src.Serialize()
				require.NoError(t, err)
				require.NoError(t, dst.Deserialize(data))
			},
		},
		{
			name: "json",
			restore: func(t *testing.T, src, dst *inventory.Inventory) {
				b, err := json.Marshal(src)
				require.NoError(t, err)
				require.NoError(t, json.Unmarshal(b, dst))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := inventory.New("bag", reg)
			inv.Add(wood, 4, props, false)

			restored := inventory.New("copy", reg)
			tt.restore(t, inv, restored)

			st, ok := restored.StackAt(0)
			require.True(t, ok)
			assert.Equal(t, 3, st.Properties["quality"])
			assert.Equal(t, map[string]any{"hp": 10}, st.Properties["stats"])

			assert.Equal(t, 0, restored.Add(wood, 2, props, false))
			assert.Equal(t, 1, restored.Size())
			assert.Equal(t, 6, restored.AmountOfItem(wood))
		})
	}
}

func TestDeserializeErrors(t *testing.T) {
	reg := newTestRegistry()

	tests := []struct {
		name  string
		data  map[string]any
		check func(error) bool
	}{
		{
			name:  "missing items",
			data:  map[string]any{"stacks": []any{}},
			check: errors.IsInvalidArgument,
		},
		{
			name:  "items not an array",
			data:  map[string]any{"items": "wood"},
			check: errors.IsInvalidArgument,
		},
		{
			name:  "unknown item",
			data:  map[string]any{"items": []any{map[string]any{"item": "ghost", "amount": 1}}},
			check: errors.IsNotFound,
		},
		{
			name:  "fractional amount",
			data:  map[string]any{"items": []any{map[string]any{"item": "wood", "amount": 1.5}}},
			check: errors.IsInvalidArgument,
		},
		{
			name:  "properties not an object",
			data:  map[string]any{"items": []any{map[string]any{"item": "wood", "amount": 1, "properties": "shiny"}}},
			check: errors.IsInvalidArgument,
		},
		{
			name:  "element not an object",
			data:  map[string]any{"items": []any{"wood"}},
			check: errors.IsInvalidArgument,
		},
		{
			name:  "negative amount",
			data:  map[string]any{"items": []any{map[string]any{"item": "wood", "amount": -1}}},
			check: errors.IsInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := inventory.New("bag", reg, inventory.WithStacks(inventory.Stack{Item: wood, Amount: 1}))

			err := inv.Deserialize(tt.data)

			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
			assert.Equal(t, 1, inv.Amount())
		})
	}
}

func TestSerializeWithoutDatabase(t *testing.T) {
	inv := inventory.New("bag", nil)

	_, err := inv.Serialize()
	assert.True(t, errors.IsFailedPrecondition(err))

	err = inv.Deserialize(map[string]any{"items": []any{}})
	assert.True(t, errors.IsFailedPrecondition(err))
}

func TestUnmarshalJSONRejectsNonObject(t *testing.T) {
	inv := inventory.New("bag", newTestRegistry())

	err := json.Unmarshal([]byte(`[1,2]`), inv)
	assert.True(t, errors.IsInvalidArgument(err))
}
