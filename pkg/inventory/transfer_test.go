package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gravitas-games/craftworks/pkg/inventory"
	inventorymocks "github.com/gravitas-games/craftworks/pkg/inventory/mocks"
)

func TestTransferWholeStackIntoEmptySlot(t *testing.T) {
	reg := newTestRegistry()
	src := inventory.New("src", reg, inventory.WithStacks(inventory.Stack{Item: wood, Amount: 7}))
	dst := inventory.New("dst", reg, inventory.WithSlots(1))

	moved := src.Transfer(0, dst, 0, -1)

	assert.Equal(t, 7, moved)
	assert.Equal(t, 0, src.Size())
	assert.Equal(t, []inventory.Stack{{Item: wood, Amount: 7}}, dst.Stacks())
}

func TestTransferCappedByHeadroom(t *testing.T) {
	reg := newTestRegistry()
	src := inventory.New("src", reg, inventory.WithStacks(inventory.Stack{Item: wood, Amount: 7}))
	dst := inventory.New("dst", reg, inventory.WithStacks(inventory.Stack{Item: wood, Amount: 6}))

	moved := src.Transfer(0, dst, 0, -1)

	assert.Equal(t, 4, moved)
	assert.Equal(t, 3, src.AmountOfItem(wood))
	assert.Equal(t, 10, dst.AmountOfItem(wood))
}

func TestTransferRollsBackOnItemMismatch(t *testing.T) {
	reg := newTestRegistry()
	src := inventory.New("src", reg, inventory.WithStacks(inventory.Stack{Item: wood, Amount: 7}))
	dst := inventory.New("dst", reg, inventory.WithStacks(inventory.Stack{Item: stone, Amount: 5}))

	moved := src.Transfer(0, dst, 0, 5)

	assert.Equal(t, 0, moved)
	assert.Equal(t, []inventory.Stack{{Item: wood, Amount: 7}}, src.Stacks())
	assert.Equal(t, []inventory.Stack{{Item: stone, Amount: 5}}, dst.Stacks())
}

func TestTransferConservesTotal(t *testing.T) {
	reg := newTestRegistry()
	for amount := -1; amount <= 12; amount++ {
		src := inventory.New("src", reg, inventory.WithStacks(inventory.Stack{Item: wood, Amount: 7}))
		dst := inventory.New("dst", reg, inventory.WithStacks(inventory.Stack{Item: wood, Amount: 6}))

		moved := src.Transfer(0, dst, 0, amount)

		assert.GreaterOrEqual(t, moved, 0, "amount=%d", amount)
		assert.LessOrEqual(t, moved, 4, "amount=%d", amount)
		assert.Equal(t, 13, src.AmountOfItem(wood)+dst.AmountOfItem(wood), "amount=%d", amount)
	}
}

func TestTransferCarriesProperties(t *testing.T) {
	reg := newTestRegistry()
	props := inventory.Properties{"fresh": true}
	src := inventory.New("src", reg, inventory.WithStacks(inventory.Stack{Item: apple, Amount: 2, Properties: props}))
	dst := inventory.New("dst", reg, inventory.WithSlots(1))

	require.Equal(t, 2, src.Transfer(0, dst, 0, -1))

	st, ok := dst.StackAt(0)
	require.True(t, ok)
	assert.Equal(t, props, st.Properties)
}

func TestTransferWithinOneInventory(t *testing.T) {
	reg := newTestRegistry()

	t.Run("partial", func(t *testing.T) {
		inv := inventory.New("bag", reg, inventory.WithStacks(inventory.Stack{Item: wood, Amount: 7}, inventory.Stack{}))

		assert.Equal(t, 3, inv.Transfer(0, inv, 1, 3))
		assert.Equal(t, []inventory.Stack{{Item: wood, Amount: 4}, {Item: wood, Amount: 3}}, inv.Stacks())
	})

	t.Run("whole stack shifts destination", func(t *testing.T) {
		inv := inventory.New("bag", reg, inventory.WithStacks(inventory.Stack{Item: wood, Amount: 7}, inventory.Stack{}))

		assert.Equal(t, 7, inv.Transfer(0, inv, 1, -1))
		assert.Equal(t, []inventory.Stack{{Item: wood, Amount: 7}}, inv.Stacks())
	})

	t.Run("same slot", func(t *testing.T) {
		inv := inventory.New("bag", reg, inventory.WithStacks(inventory.Stack{Item: wood, Amount: 7}))

		assert.Equal(t, 0, inv.Transfer(0, inv, 0, -1))
		assert.Equal(t, 7, inv.Amount())
	})
}

func TestTransferRejectsInvalidArguments(t *testing.T) {
	reg := newTestRegistry()
	src := inventory.New("src", reg, inventory.WithStacks(inventory.Stack{Item: wood, Amount: 7}))
	dst := inventory.New("dst", reg, inventory.WithSlots(1))
	foreign := inventory.New("foreign", newTestRegistry(), inventory.WithSlots(1))

	assert.Equal(t, 0, src.Transfer(1, dst, 0, 1))
	assert.Equal(t, 0, src.Transfer(0, nil, 0, 1))
	assert.Equal(t, 0, src.Transfer(0, dst, 1, 1))
	assert.Equal(t, 0, src.Transfer(0, dst, 0, -2))
	assert.Equal(t, 0, src.Transfer(0, dst, 0, 0))
	assert.Equal(t, 0, src.Transfer(0, foreign, 0, 1))

	assert.Equal(t, 7, src.Amount())
	assert.True(t, dst.IsEmpty())
	assert.True(t, foreign.IsEmpty())
}

func TestTransferUnresolvableDestination(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := inventorymocks.NewMockDatabase(ctrl)
	db.EXPECT().Item(inventory.ItemID("ghost")).Return(nil)

	src := inventory.New("src", db, inventory.WithStacks(inventory.Stack{Item: wood, Amount: 3}))
	dst := inventory.New("dst", db, inventory.WithStacks(inventory.Stack{Item: "ghost", Amount: 1}))

	assert.Equal(t, 0, src.Transfer(0, dst, 0, 1))
	assert.Equal(t, 3, src.Amount())
}

func TestIsFullSkipsUnresolvableStacks(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := inventorymocks.NewMockDatabase(ctrl)
	db.EXPECT().Item(gomock.Any()).Return(nil).Times(2)

	inv := inventory.New("bag", db, inventory.WithStacks(
		inventory.Stack{Item: "ghost", Amount: 1},
		inventory.Stack{Item: "phantom", Amount: 4},
	))

	assert.True(t, inv.IsFull())
}
