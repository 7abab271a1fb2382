package inventory

// EventType represents the type of inventory event.
type EventType int

const (
	// EventInventoryChanged is emitted when the total amount changed.
	EventInventoryChanged EventType = iota
	// EventStackAdded is emitted when a stack is inserted at StackIndex.
	EventStackAdded
	// EventStackRemoved is emitted when the stack at StackIndex is deleted.
	EventStackRemoved
	// EventItemAdded carries the item and amount stored by one call.
	EventItemAdded
	// EventItemRemoved carries the item and amount removed by one call.
	EventItemRemoved
	// EventFilled is emitted after a change leaves every stack at max stack.
	EventFilled
	// EventEmptied is emitted after a change leaves the inventory empty.
	EventEmptied
	// EventUpdatedStack is emitted when the contents of StackIndex changed.
	EventUpdatedStack
	// EventRequestDropObj asks the world to spawn one dropped unit.
	EventRequestDropObj
)

// String returns the signal name of the event type.
func (t EventType) String() string {
	switch t {
	case EventInventoryChanged:
		return "inventory_changed"
	case EventStackAdded:
		return "stack_added"
	case EventStackRemoved:
		return "stack_removed"
	case EventItemAdded:
		return "item_added"
	case EventItemRemoved:
		return "item_removed"
	case EventFilled:
		return "filled"
	case EventEmptied:
		return "emptied"
	case EventUpdatedStack:
		return "updated_stack"
	case EventRequestDropObj:
		return "request_drop_obj"
	default:
		return "unknown"
	}
}

// Event is delivered synchronously to inventory subscribers. Only the fields
// relevant to Type are set.
type Event struct {
	Type       EventType
	Inventory  *Inventory
	StackIndex int
	Item       ItemID
	Amount     int
	DropPath   string
	Properties Properties
}

func (inv *Inventory) emit(e Event) {
	e.Inventory = inv
	inv.bus.Publish(e)
}

func (inv *Inventory) emitStack(t EventType, index int) {
	inv.emit(Event{Type: t, StackIndex: index})
}

// callEvents fires the changed family when the total amount differs from
// oldAmount.
func (inv *Inventory) callEvents(oldAmount int) {
	if inv.Amount() == oldAmount {
		return
	}
	inv.emit(Event{Type: EventInventoryChanged})
	if inv.IsEmpty() {
		inv.emit(Event{Type: EventEmptied})
	}
	if inv.IsFull() {
		inv.emit(Event{Type: EventFilled})
	}
}
