package craft

import (
	"encoding/json"

	"github.com/gravitas-games/craftworks/internal/errors"
)

// KeyCraftings is the field holding the serialized job list.
const KeyCraftings = "craftings"

// Serialize returns {"craftings": [[recipe_index, seconds, ingredients_taken], ...]}.
func (s *Station) Serialize() map[string]any {
	jobs := make([]any, 0, len(s.craftings))
	for _, c := range s.craftings {
		jobs = append(jobs, c.ToData())
	}
	return map[string]any{KeyCraftings: jobs}
}

// Deserialize replaces the job list with data produced by Serialize. Durations
// come from the recipe book scaled by the station type, and job ids are
// regenerated.
func (s *Station) Deserialize(data map[string]any) error {
	raw, ok := data[KeyCraftings]
	if !ok {
		return errors.InvalidArgument("data to deserialize does not contain the 'craftings' field")
	}
	entries, ok := raw.([]any)
	if !ok {
		return errors.InvalidArgumentf("'craftings' field must be an array, got %T", raw)
	}
	if s.limit >= 0 && len(entries) > s.limit {
		return errors.ResourceExhaustedf("station %s: %d craftings exceed limit %d", s.id, len(entries), s.limit)
	}

	craftings := make([]*Crafting, 0, len(entries))
	for i, entry := range entries {
		fields, ok := entry.([]any)
		if !ok {
			return errors.InvalidArgumentf("crafting %d must be an array, got %T", i, entry)
		}
		c := &Crafting{}
		if err := c.FromData(fields); err != nil {
			return errors.Wrapf(err, "crafting %d", i)
		}
		recipe := s.book.Recipe(c.RecipeIndex)
		if recipe == nil {
			return errors.NotFoundf("crafting %d: recipe %d not found", i, c.RecipeIndex)
		}
		c.ID = s.ids.Generate()
		c.Duration = s.typ.duration(recipe.Duration)
		switch {
		case c.IsFinished():
			c.State = StateFinished
		case c.Time > 0:
			c.State = StateProcessing
		default:
			c.State = StatePending
		}
		craftings = append(craftings, c)
	}

	s.craftings = craftings
	return nil
}

// MarshalJSON encodes the station job list in its Serialize form.
func (s *Station) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Serialize())
}

// UnmarshalJSON restores the job list from MarshalJSON output into a station
// built with New.
func (s *Station) UnmarshalJSON(b []byte) error {
	var data map[string]any
	if err := json.Unmarshal(b, &data); err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "station snapshot is not a JSON object")
	}
	return s.Deserialize(data)
}
