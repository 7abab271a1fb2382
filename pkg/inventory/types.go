// Package inventory implements item stacks and the inventory stack engine:
// distribution of items over stacks, removal, transfer between inventories,
// category queries and drop requests.
//
// An Inventory is not safe for concurrent use. Callers serialize access, which
// the host's single tick goroutine does implicitly.
package inventory

import (
	"encoding/json"
	"maps"
	"reflect"
	"slices"
)

// ItemID represents an application-defined identifier for an item.
// The empty ItemID means "no item".
type ItemID string

// Properties is an open, data-driven property bag attached to stacks and
// item definitions.
type Properties map[string]any

// Equal reports whether two property bags hold the same keys and deeply equal
// values. A nil bag equals an empty one. Numbers compare by value, so 3 and
// 3.0 are equal whatever their Go types.
func (p Properties) Equal(other Properties) bool {
	if len(p) != len(other) {
		return false
	}
	for k, v := range p {
		ov, ok := other[k]
		if !ok || !valueEqual(v, ov) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if x, ok := numberValue(a); ok {
		y, ok := numberValue(b)
		return ok && x == y
	}
	if am, ok := asMap(a); ok {
		bm, ok := asMap(b)
		return ok && Properties(am).Equal(Properties(bm))
	}
	if as, ok := a.([]any); ok {
		bs, ok := b.([]any)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !valueEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Properties:
		return m, true
	}
	return nil, false
}

func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Clone returns a shallow copy of the bag.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// PropertyDroppedItem is the definition property holding the spawn descriptor
// used by drop requests.
const PropertyDroppedItem = "dropped_item"

// Stack is a slot holding one item type and a quantity.
type Stack struct {
	Item       ItemID     `json:"item"`
	Amount     int        `json:"amount"`
	Properties Properties `json:"properties,omitempty"`
}

// IsEmpty reports whether the stack holds nothing. A stack with an item id but
// zero amount is empty.
func (s Stack) IsEmpty() bool {
	return s.Item == "" || s.Amount == 0
}

// Contains reports whether the stack holds at least amount of item.
func (s Stack) Contains(item ItemID, amount int) bool {
	return s.Item != "" && s.Item == item && s.Amount >= amount
}

// add absorbs as much of amount as the definition's max stack allows and
// returns the unabsorbed remainder.
func (s *Stack) add(def *Definition, item ItemID, amount int, props Properties) int {
	if amount <= 0 || def == nil {
		return amount
	}
	if !s.IsEmpty() && (s.Item != item || !s.Properties.Equal(props)) {
		return amount
	}
	toAdd := min(amount, def.MaxStack-s.Amount)
	if toAdd <= 0 {
		return amount
	}
	s.Amount += toAdd
	s.Item = item
	s.Properties = props.Clone()
	return amount - toAdd
}

// remove takes up to amount of item and returns what could not be removed.
func (s *Stack) remove(item ItemID, amount int) int {
	if s.Item == "" || amount <= 0 || s.Item != item {
		return amount
	}
	toRemove := min(amount, s.Amount)
	s.Amount -= toRemove
	return amount - toRemove
}

// Definition describes an item type as resolved by a Database.
type Definition struct {
	ID         ItemID     `json:"id" yaml:"id"`
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`
	MaxStack   int        `json:"max_stack" yaml:"max_stack"`
	Categories []string   `json:"categories,omitempty" yaml:"categories,omitempty"`
	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// IsInCategory reports whether the item belongs to category.
func (d *Definition) IsInCategory(category string) bool {
	return d != nil && slices.Contains(d.Categories, category)
}

// DropPath returns the spawn descriptor for dropped units of this item.
func (d *Definition) DropPath() (string, bool) {
	if d == nil {
		return "", false
	}
	raw, ok := d.Properties[PropertyDroppedItem]
	if !ok {
		return "", false
	}
	path, ok := raw.(string)
	return path, ok && path != ""
}

//go:generate mockgen -destination=mocks/database.go -package=inventorymocks github.com/gravitas-games/craftworks/pkg/inventory Database

// Database resolves item definitions and converts stack sequences to and from
// generic data. Inventories only read from it; many inventories may share one.
type Database interface {
	// Item returns the definition for id, or nil when unknown.
	Item(id ItemID) *Definition
	// SerializeStacks converts stacks to a generic array.
	SerializeStacks(stacks []Stack) []any
	// DeserializeStacks rebuilds stacks from data produced by SerializeStacks,
	// including after a JSON round trip.
	DeserializeStacks(data []any) ([]Stack, error)
}
