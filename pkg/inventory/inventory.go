package inventory

import (
	"log/slog"

	"github.com/gravitas-games/craftworks/internal/errors"
	"github.com/gravitas-games/craftworks/internal/events"
)

// Inventory is an ordered, index-addressed sequence of stacks backed by a
// shared item Database. Stack indices shift on insertion and removal, so
// callers should hold indices only for the duration of one operation.
type Inventory struct {
	name       string
	slotAmount int
	db         Database
	stacks     []Stack
	bus        *events.Bus[Event]
	logger     *slog.Logger
}

// Option configures inventory construction.
type Option func(*Inventory)

// WithSlots seeds the inventory with n empty stacks and records n as the
// advisory slot amount.
func WithSlots(n int) Option {
	return func(inv *Inventory) {
		if n < 0 {
			return
		}
		inv.slotAmount = n
		inv.stacks = make([]Stack, n)
	}
}

// WithStacks seeds the inventory with copies of stacks.
func WithStacks(stacks ...Stack) Option {
	return func(inv *Inventory) {
		for _, st := range stacks {
			st.Properties = st.Properties.Clone()
			inv.stacks = append(inv.stacks, st)
		}
	}
}

// WithLogger sets the logger used to report contract violations.
func WithLogger(logger *slog.Logger) Option {
	return func(inv *Inventory) {
		if logger != nil {
			inv.logger = logger
		}
	}
}

// New creates an inventory named name that resolves items through db.
func New(name string, db Database, opts ...Option) *Inventory {
	inv := &Inventory{
		name:   name,
		db:     db,
		stacks: make([]Stack, 0),
		bus:    events.NewBus[Event](),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(inv)
		}
	}
	return inv
}

// Name returns the inventory label.
func (inv *Inventory) Name() string { return inv.name }

// SetName replaces the inventory label.
func (inv *Inventory) SetName(name string) { inv.name = name }

// SlotAmount returns the advisory capacity hint.
func (inv *Inventory) SlotAmount() int { return inv.slotAmount }

// SetSlotAmount replaces the advisory capacity hint. It does not resize the
// stack sequence.
func (inv *Inventory) SetSlotAmount(n int) { inv.slotAmount = n }

// Database returns the attached item database.
func (inv *Inventory) Database() Database { return inv.db }

// Subscribe registers a handler for inventory events.
func (inv *Inventory) Subscribe(handler func(Event)) events.SubscriptionID {
	return inv.bus.Subscribe(handler)
}

// Unsubscribe removes a handler registered with Subscribe.
func (inv *Inventory) Unsubscribe(id events.SubscriptionID) {
	inv.bus.Unsubscribe(id)
}

// Stacks returns a copy of the stack sequence.
func (inv *Inventory) Stacks() []Stack {
	out := make([]Stack, len(inv.stacks))
	for i, st := range inv.stacks {
		st.Properties = st.Properties.Clone()
		out[i] = st
	}
	return out
}

// StackAt returns a copy of the stack at index.
func (inv *Inventory) StackAt(index int) (Stack, bool) {
	if !inv.validIndex(index) {
		return Stack{}, false
	}
	st := inv.stacks[index]
	st.Properties = st.Properties.Clone()
	return st, true
}

func (inv *Inventory) validIndex(index int) bool {
	return index >= 0 && index < len(inv.stacks)
}

func (inv *Inventory) violation(op, msg string, args ...any) {
	inv.logger.Warn(msg, append([]any{"op", op, "inventory", inv.name}, args...)...)
}

// Size returns the number of stacks, not the number of items.
func (inv *Inventory) Size() int {
	return len(inv.stacks)
}

// Amount returns the sum of every stack's quantity.
func (inv *Inventory) Amount() int {
	total := 0
	for _, st := range inv.stacks {
		total += st.Amount
	}
	return total
}

// IsEmpty reports whether the inventory holds no items.
func (inv *Inventory) IsEmpty() bool {
	return inv.Amount() == 0
}

// IsFull reports whether every stack with a resolvable definition is at its
// max stack.
func (inv *Inventory) IsFull() bool {
	for _, st := range inv.stacks {
		def := inv.definition(st.Item)
		if def != nil && st.Amount < def.MaxStack {
			return false
		}
	}
	return true
}

func (inv *Inventory) definition(id ItemID) *Definition {
	if inv.db == nil || id == "" {
		return nil
	}
	return inv.db.Item(id)
}

// Contains reports whether the inventory holds at least amount of item
// across all stacks.
func (inv *Inventory) Contains(item ItemID, amount int) bool {
	if amount < 0 {
		inv.violation("contains", "amount is negative", "amount", amount)
		return false
	}
	total := 0
	for _, st := range inv.stacks {
		if st.Contains(item, 1) {
			total += st.Amount
			if total >= amount {
				return true
			}
		}
	}
	return total >= amount
}

// ContainsAt reports whether the stack at index holds at least amount of item.
func (inv *Inventory) ContainsAt(index int, item ItemID, amount int) bool {
	if !inv.validIndex(index) {
		inv.violation("contains_at", "stack index out of bounds", "index", index, "size", inv.Size())
		return false
	}
	if amount < 0 {
		inv.violation("contains_at", "amount is negative", "amount", amount)
		return false
	}
	st := inv.stacks[index]
	return st.Contains(item, 1) && st.Amount >= amount
}

// ContainsCategory reports whether the inventory holds at least amount of
// items belonging to category.
func (inv *Inventory) ContainsCategory(category string, amount int) bool {
	if category == "" {
		inv.violation("contains_category", "category is empty")
		return false
	}
	if amount < 0 {
		inv.violation("contains_category", "amount is negative", "amount", amount)
		return false
	}
	total := 0
	for _, st := range inv.stacks {
		if inv.stackInCategory(st, category) {
			total += st.Amount
			if total >= amount {
				return true
			}
		}
	}
	return total >= amount
}

// StackIndexWithCategory returns the index of the first stack holding an item
// of category, or -1.
func (inv *Inventory) StackIndexWithCategory(category string) int {
	if category == "" {
		inv.violation("stack_index_with_category", "category is empty")
		return -1
	}
	for i, st := range inv.stacks {
		if inv.stackInCategory(st, category) {
			return i
		}
	}
	return -1
}

// AmountOfItem returns the total quantity of item.
func (inv *Inventory) AmountOfItem(item ItemID) int {
	total := 0
	for _, st := range inv.stacks {
		if st.Contains(item, 1) {
			total += st.Amount
		}
	}
	return total
}

// AmountOfCategory returns the total quantity of items in category.
func (inv *Inventory) AmountOfCategory(category string) int {
	if category == "" {
		inv.violation("amount_of_category", "category is empty")
		return 0
	}
	total := 0
	for _, st := range inv.stacks {
		if inv.stackInCategory(st, category) {
			total += st.Amount
		}
	}
	return total
}

func (inv *Inventory) stackInCategory(st Stack, category string) bool {
	if st.IsEmpty() {
		return false
	}
	return inv.definition(st.Item).IsInCategory(category)
}

// AddToStack adds to a detached stack using this inventory's database and
// returns the unabsorbed remainder. Unknown items are not absorbed.
func (inv *Inventory) AddToStack(stack *Stack, item ItemID, amount int, props Properties) int {
	if stack == nil {
		inv.violation("add_to_stack", "stack is nil")
		return amount
	}
	if amount < 0 {
		inv.violation("add_to_stack", "amount is negative", "amount", amount)
		return amount
	}
	def := inv.definition(item)
	if def == nil {
		inv.violation("add_to_stack", "item definition not found", "item", item)
		return amount
	}
	return stack.add(def, item, amount, props)
}

// RemoveFromStack removes from a detached stack and returns the remainder
// that could not be removed.
func (inv *Inventory) RemoveFromStack(stack *Stack, item ItemID, amount int) int {
	if stack == nil {
		inv.violation("remove_from_stack", "stack is nil")
		return amount
	}
	return stack.remove(item, amount)
}

// Add distributes amount of item over the existing stacks left to right. When
// they are saturated a single new stack is appended and filled; anything left
// after that is returned, or dropped when dropExcess is set (in which case 0
// is returned).
func (inv *Inventory) Add(item ItemID, amount int, props Properties, dropExcess bool) int {
	if amount < 0 {
		inv.violation("add", "amount is negative", "amount", amount)
		return rejected(amount, dropExcess)
	}
	if inv.definition(item) == nil {
		inv.violation("add", "item definition not found", "item", item)
		return rejected(amount, dropExcess)
	}

	remaining := amount
	oldAmount := inv.Amount()

	for i := 0; i < len(inv.stacks) && remaining > 0; i++ {
		previous := remaining
		remaining = inv.addToStackAt(i, item, remaining, props)
		if remaining > previous {
			errors.Invariant("add: remainder grew from %d to %d at stack %d", previous, remaining, i)
		}
	}

	if remaining > 0 {
		inv.insertStack(len(inv.stacks))
		previous := remaining
		remaining = inv.addToStackAt(len(inv.stacks)-1, item, remaining, props)
		if remaining > previous {
			errors.Invariant("add: remainder grew from %d to %d in new stack", previous, remaining)
		}
	}

	inv.callEvents(oldAmount)

	added := amount - remaining
	if added < 0 || added > amount {
		errors.Invariant("add: stored %d of %d", added, amount)
	}
	if added > 0 {
		inv.emit(Event{Type: EventItemAdded, Item: item, Amount: added})
	}

	if dropExcess {
		if remaining > 0 {
			inv.Drop(item, remaining, props)
		}
		return 0
	}
	return remaining
}

// rejected is what Add reports for input it refused. With dropExcess the
// caller is always told nothing was left over.
func rejected(amount int, dropExcess bool) int {
	if dropExcess {
		return 0
	}
	return amount
}

// AddAt adds to the single stack at index and returns the unabsorbed
// remainder.
func (inv *Inventory) AddAt(index int, item ItemID, amount int, props Properties) int {
	if !inv.validIndex(index) {
		inv.violation("add_at", "stack index out of bounds", "index", index, "size", inv.Size())
		return amount
	}
	if amount < 0 {
		inv.violation("add_at", "amount is negative", "amount", amount)
		return amount
	}

	oldAmount := inv.Amount()
	remaining := inv.addToStackAt(index, item, amount, props)
	inv.callEvents(oldAmount)

	if added := amount - remaining; added > 0 {
		inv.emit(Event{Type: EventItemAdded, Item: item, Amount: added})
	}
	return remaining
}

// Remove takes amount of item from matching stacks left to right, deleting
// each stack it drains. It returns the amount that could not be removed.
func (inv *Inventory) Remove(item ItemID, amount int) int {
	if amount < 0 {
		inv.violation("remove", "amount is negative", "amount", amount)
		return amount
	}

	remaining := amount
	oldAmount := inv.Amount()
	for i := 0; i < len(inv.stacks) && remaining > 0; i++ {
		before := inv.stacks[i].Amount
		remaining = inv.removeFromStackAt(i, item, remaining)
		if before > 0 && inv.stacks[i].Amount == 0 {
			inv.removeStackAt(i)
			i--
		}
	}
	inv.callEvents(oldAmount)

	if removed := amount - remaining; removed > 0 {
		inv.emit(Event{Type: EventItemRemoved, Item: item, Amount: removed})
	}
	return remaining
}

// RemoveAt removes from the stack at index, deleting it when drained.
func (inv *Inventory) RemoveAt(index int, item ItemID, amount int) int {
	if !inv.validIndex(index) {
		inv.violation("remove_at", "stack index out of bounds", "index", index, "size", inv.Size())
		return amount
	}
	if amount < 0 {
		inv.violation("remove_at", "amount is negative", "amount", amount)
		return amount
	}

	oldAmount := inv.Amount()
	before := inv.stacks[index].Amount
	remaining := inv.removeFromStackAt(index, item, amount)
	if before > 0 && inv.stacks[index].Amount == 0 {
		inv.removeStackAt(index)
	}
	inv.callEvents(oldAmount)

	if removed := amount - remaining; removed > 0 {
		inv.emit(Event{Type: EventItemRemoved, Item: item, Amount: removed})
	}
	return remaining
}

// Transfer moves up to amount units (-1 for the whole stack) from the stack at
// from into dst's stack at dstIndex. The move is capped by the destination's
// headroom; whatever the destination does not absorb goes back to the source,
// so the combined total never changes. It returns the amount moved.
func (inv *Inventory) Transfer(from int, dst *Inventory, dstIndex int, amount int) int {
	if !inv.validIndex(from) {
		inv.violation("transfer", "stack index out of bounds", "index", from, "size", inv.Size())
		return 0
	}
	if dst == nil {
		inv.violation("transfer", "destination inventory is nil")
		return 0
	}
	if inv.db == nil || dst.db == nil {
		inv.violation("transfer", "inventory database is nil")
		return 0
	}
	if inv.db != dst.db {
		inv.violation("transfer", "inventories do not share a database", "destination", dst.name)
		return 0
	}
	if !dst.validIndex(dstIndex) {
		inv.violation("transfer", "destination stack index out of bounds", "index", dstIndex, "size", dst.Size())
		return 0
	}
	if amount < -1 {
		inv.violation("transfer", "amount is negative", "amount", amount)
		return 0
	}
	if dst == inv && from == dstIndex {
		return 0
	}

	source := inv.stacks[from]
	if source.IsEmpty() {
		return 0
	}
	item := source.Item
	props := source.Properties.Clone()

	toMove := amount
	if toMove == -1 {
		toMove = source.Amount
	}

	target := dst.stacks[dstIndex]
	defItem := target.Item
	if target.IsEmpty() {
		defItem = item
	}
	def := inv.definition(defItem)
	if def == nil {
		inv.violation("transfer", "destination item definition not found", "item", defItem)
		return 0
	}
	if headroom := def.MaxStack - target.Amount; headroom > -1 {
		toMove = min(toMove, headroom)
	}
	if toMove <= 0 {
		return 0
	}

	sizeBefore := inv.Size()
	notRemoved := inv.RemoveAt(from, item, toMove)
	moved := toMove - notRemoved
	if moved == 0 {
		return 0
	}
	sourceDeleted := inv.Size() < sizeBefore
	if dst == inv && sourceDeleted && dstIndex > from {
		dstIndex--
	}

	notTransferred := dst.AddAt(dstIndex, item, moved, props)
	if notTransferred == 0 {
		return moved
	}
	if notTransferred > moved {
		errors.Invariant("transfer: destination returned %d of %d", notTransferred, moved)
	}

	if sourceDeleted {
		inv.insertStack(from)
	}
	if left := inv.AddAt(from, item, notTransferred, props); left != 0 {
		errors.Invariant("transfer: rollback lost %d units of %s", left, item)
	}
	return moved - notTransferred
}

// SetStackContent overwrites the stack at index.
func (inv *Inventory) SetStackContent(index int, item ItemID, amount int, props Properties) {
	if !inv.validIndex(index) {
		inv.violation("set_stack_content", "stack index out of bounds", "index", index, "size", inv.Size())
		return
	}
	if amount < 0 {
		inv.violation("set_stack_content", "amount is negative", "amount", amount)
		return
	}
	oldAmount := inv.Amount()
	inv.stacks[index] = Stack{Item: item, Amount: amount, Properties: props.Clone()}
	inv.emitStack(EventUpdatedStack, index)
	inv.callEvents(oldAmount)
}

// UpdateStack re-announces the stack at index to subscribers.
func (inv *Inventory) UpdateStack(index int) {
	inv.emitStack(EventUpdatedStack, index)
	inv.callEvents(inv.Amount())
}

func (inv *Inventory) addToStackAt(index int, item ItemID, amount int, props Properties) int {
	if amount < 0 {
		inv.violation("add_to_stack", "amount is negative", "amount", amount)
		return amount
	}
	if !inv.validIndex(index) {
		inv.violation("add_to_stack", "stack index out of bounds", "index", index, "size", inv.Size())
		return amount
	}
	remaining := inv.AddToStack(&inv.stacks[index], item, amount, props)
	if remaining == amount {
		return amount
	}
	inv.emitStack(EventUpdatedStack, index)
	return remaining
}

func (inv *Inventory) removeFromStackAt(index int, item ItemID, amount int) int {
	if !inv.validIndex(index) {
		inv.violation("remove_from_stack", "stack index out of bounds", "index", index, "size", inv.Size())
		return amount
	}
	remaining := inv.stacks[index].remove(item, amount)
	if remaining == amount {
		return amount
	}
	inv.emitStack(EventUpdatedStack, index)
	return remaining
}

// insertStack inserts an empty stack at index; index == Size() appends.
func (inv *Inventory) insertStack(index int) {
	if index < 0 || index > len(inv.stacks) {
		inv.violation("insert_stack", "stack index out of bounds", "index", index, "size", inv.Size())
		return
	}
	inv.stacks = append(inv.stacks, Stack{})
	copy(inv.stacks[index+1:], inv.stacks[index:])
	inv.stacks[index] = Stack{}
	inv.emitStack(EventStackAdded, index)
}

// removeStackAt deletes the stack at index, shifting later stacks left.
func (inv *Inventory) removeStackAt(index int) {
	if !inv.validIndex(index) {
		inv.violation("remove_stack_at", "stack index out of bounds", "index", index, "size", inv.Size())
		return
	}
	inv.stacks = append(inv.stacks[:index], inv.stacks[index+1:]...)
	inv.emitStack(EventStackRemoved, index)
}
