package inventory

import (
	"bytes"
	"encoding/json"

	"github.com/gravitas-games/craftworks/internal/errors"
)

// KeyItems is the field holding the serialized stack array.
const KeyItems = "items"

// Serialize returns {"items": <database-serialized stacks>}.
func (inv *Inventory) Serialize() (map[string]any, error) {
	if inv.db == nil {
		return nil, errors.New(errors.CodeFailedPrecondition, "inventory database is nil")
	}
	return map[string]any{
		KeyItems: inv.db.SerializeStacks(inv.stacks),
	}, nil
}

// Deserialize replaces the stack sequence with data produced by Serialize.
// The data must contain an "items" array.
func (inv *Inventory) Deserialize(data map[string]any) error {
	if inv.db == nil {
		return errors.New(errors.CodeFailedPrecondition, "inventory database is nil")
	}
	raw, ok := data[KeyItems]
	if !ok {
		return errors.InvalidArgument("data to deserialize does not contain the 'items' field")
	}
	items, ok := raw.([]any)
	if !ok {
		return errors.InvalidArgumentf("'items' field must be an array, got %T", raw)
	}
	stacks, err := inv.db.DeserializeStacks(items)
	if err != nil {
		return errors.Wrapf(err, "deserialize inventory %s", inv.name)
	}

	oldAmount := inv.Amount()
	inv.stacks = stacks
	inv.callEvents(oldAmount)
	return nil
}

// MarshalJSON encodes the inventory in its Serialize form.
func (inv *Inventory) MarshalJSON() ([]byte, error) {
	data, err := inv.Serialize()
	if err != nil {
		return nil, err
	}
	return json.Marshal(data)
}

// UnmarshalJSON restores stacks from MarshalJSON output. The database must
// already be attached, so decode into an inventory built with New.
func (inv *Inventory) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "inventory snapshot is not a JSON object")
	}
	return inv.Deserialize(data)
}
