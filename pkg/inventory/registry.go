package inventory

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"sync"

	"github.com/gravitas-games/craftworks/internal/errors"
)

// Registry is the in-memory Database. It stores item definitions keyed by
// ItemID and indexes them by category.
type Registry struct {
	mu         sync.RWMutex
	items      map[ItemID]*Definition
	byCategory map[string][]ItemID
}

var _ Database = (*Registry)(nil)

// NewRegistry constructs a registry and optionally seeds it with definitions.
// Invalid seed definitions are skipped.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{
		items:      make(map[ItemID]*Definition, len(defs)),
		byCategory: make(map[string][]ItemID),
	}
	for _, d := range defs {
		_ = r.Register(d)
	}
	return r
}

// Register inserts or replaces a definition. The ID must be non-empty and the
// max stack positive.
func (r *Registry) Register(def Definition) error {
	if def.ID == "" {
		return errors.InvalidArgument("item definition missing id")
	}
	if def.MaxStack <= 0 {
		return errors.InvalidArgumentf("item %s: max_stack must be positive, got %d", def.ID, def.MaxStack)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items == nil {
		r.items = make(map[ItemID]*Definition)
	}
	if r.byCategory == nil {
		r.byCategory = make(map[string][]ItemID)
	}

	if existing, ok := r.items[def.ID]; ok {
		r.removeIndices(existing)
	}

	stored := def
	stored.Categories = append([]string(nil), def.Categories...)
	stored.Properties = def.Properties.Clone()
	r.items[def.ID] = &stored
	for _, c := range stored.Categories {
		r.byCategory[c] = append(r.byCategory[c], def.ID)
	}
	return nil
}

// removeIndices drops a definition from the category index (caller must hold lock).
func (r *Registry) removeIndices(def *Definition) {
	for _, c := range def.Categories {
		ids := r.byCategory[c]
		out := ids[:0]
		for _, id := range ids {
			if id != def.ID {
				out = append(out, id)
			}
		}
		if len(out) == 0 {
			delete(r.byCategory, c)
		} else {
			r.byCategory[c] = out
		}
	}
}

// Item returns the definition for id, or nil when unknown.
func (r *Registry) Item(id ItemID) *Definition {
	if r == nil || id == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items[id]
}

// ItemsInCategory returns the ids of every item in category, sorted.
func (r *Registry) ItemsInCategory(category string) []ItemID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := append([]ItemID(nil), r.byCategory[category]...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Count returns the number of registered definitions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Export copies registry contents into a slice sorted by ItemID.
func (r *Registry) Export() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.items) == 0 {
		return nil
	}
	out := make([]Definition, 0, len(r.items))
	for _, d := range r.items {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SerializeStacks encodes stacks as an array of {"item", "amount",
// "properties"} maps.
func (r *Registry) SerializeStacks(stacks []Stack) []any {
	out := make([]any, 0, len(stacks))
	for _, st := range stacks {
		entry := map[string]any{
			"item":   string(st.Item),
			"amount": st.Amount,
		}
		if len(st.Properties) > 0 {
			entry["properties"] = map[string]any(st.Properties.Clone())
		}
		out = append(out, entry)
	}
	return out
}

// DeserializeStacks decodes the output of SerializeStacks, either as
// returned or after a JSON round trip. Non-empty stacks must reference
// registered items.
func (r *Registry) DeserializeStacks(data []any) ([]Stack, error) {
	stacks := make([]Stack, 0, len(data))
	for i, raw := range data {
		st, err := decodeStack(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "stack %d", i)
		}
		if st.Amount < 0 {
			return nil, errors.InvalidArgumentf("stack %d: negative amount %d", i, st.Amount)
		}
		if st.Item != "" && r.Item(st.Item) == nil {
			return nil, errors.NotFoundf("stack %d: item not found in registry: %s", i, st.Item)
		}
		stacks = append(stacks, st)
	}
	return stacks, nil
}

// decodeStack reads one serialized element. Maps are read field by field so
// property values keep their types; anything else is re-encoded through JSON.
func decodeStack(raw any) (Stack, error) {
	switch v := raw.(type) {
	case Stack:
		v.Properties = normalizeProperties(v.Properties)
		return v, nil
	case map[string]any:
		return stackFromMap(v)
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return Stack{}, errors.WrapWithCode(err, errors.CodeInvalidArgument, "stack cannot be encoded")
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return Stack{}, errors.WrapWithCode(err, errors.CodeInvalidArgument, "stack has invalid shape")
	}
	return stackFromMap(m)
}

func stackFromMap(m map[string]any) (Stack, error) {
	var st Stack
	switch item := m["item"].(type) {
	case nil:
	case string:
		st.Item = ItemID(item)
	case ItemID:
		st.Item = item
	default:
		return Stack{}, errors.InvalidArgumentf("item must be a string, got %T", item)
	}

	if raw, ok := m["amount"]; ok && raw != nil {
		amount, ok := wholeNumber(raw)
		if !ok {
			return Stack{}, errors.InvalidArgumentf("amount must be a whole number, got %v", raw)
		}
		st.Amount = amount
	}

	switch props := m["properties"].(type) {
	case nil:
	case map[string]any:
		st.Properties = normalizeProperties(props)
	case Properties:
		st.Properties = normalizeProperties(props)
	default:
		return Stack{}, errors.InvalidArgumentf("properties must be an object, got %T", props)
	}
	return st, nil
}

// wholeNumber converts decoded numeric values to int, rejecting fractions.
func wholeNumber(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

// normalizeProperties deep-copies a bag, turning json.Number values back into
// int when whole and float64 otherwise.
func normalizeProperties(p map[string]any) Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		return map[string]any(normalizeProperties(x))
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalizeValue(e)
		}
		return out
	}
	return v
}
