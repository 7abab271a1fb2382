package inventory

// MaxDropRequests bounds the number of drop requests one Drop call emits.
const MaxDropRequests = 1000

// Drop emits one request_drop_obj event per unit, up to MaxDropRequests, when
// the item's definition carries a dropped_item spawn descriptor. It reports
// whether the item is droppable, not whether every unit was requested.
func (inv *Inventory) Drop(item ItemID, amount int, props Properties) bool {
	if inv.db == nil {
		inv.violation("drop", "inventory database is nil")
		return false
	}
	def := inv.db.Item(item)
	if def == nil {
		inv.violation("drop", "item definition not found", "item", item)
		return false
	}
	path, ok := def.DropPath()
	if !ok {
		return false
	}
	for i := 0; i < amount && i < MaxDropRequests; i++ {
		inv.emit(Event{
			Type:       EventRequestDropObj,
			DropPath:   path,
			Item:       item,
			Properties: props.Clone(),
		})
	}
	return true
}

// DropFromInventory removes up to amount from the stack at index and drops
// exactly what was removed. A nil props drops with the stack's own properties.
func (inv *Inventory) DropFromInventory(index int, amount int, props Properties) {
	if !inv.validIndex(index) {
		inv.violation("drop_from_inventory", "stack index out of bounds", "index", index, "size", inv.Size())
		return
	}
	st := inv.stacks[index]
	if props == nil {
		props = st.Properties.Clone()
	}
	notRemoved := inv.RemoveAt(index, st.Item, amount)
	removed := amount - notRemoved
	if removed <= 0 {
		return
	}
	inv.Drop(st.Item, removed, props)
}
