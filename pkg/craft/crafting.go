package craft

import (
	"math"
	"time"

	"github.com/gravitas-games/craftworks/internal/errors"
)

// State represents the lifecycle position of a crafting job.
type State int

const (
	// StatePending is a job that has not been advanced yet.
	StatePending State = iota
	// StateProcessing is a job accumulating elapsed time.
	StateProcessing
	// StateFinished is a job whose elapsed time reached its duration.
	StateFinished
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateProcessing:
		return "Processing"
	case StateFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// Crafting is an in-progress recipe execution tracked by elapsed time.
type Crafting struct {
	ID          string
	RecipeIndex int
	Time        time.Duration
	Duration    time.Duration
	State       State

	ingredientsTaken bool
}

// IngredientsTaken reports whether ingredients were deducted when the job
// started.
func (c *Crafting) IngredientsTaken() bool {
	return c.ingredientsTaken
}

// IsFinished reports whether elapsed time reached the recipe duration.
func (c *Crafting) IsFinished() bool {
	return c.Time >= c.Duration
}

// Process advances the job by delta.
func (c *Crafting) Process(delta time.Duration) {
	if c.State == StateFinished {
		return
	}
	c.State = StateProcessing
	if delta > 0 {
		c.Time += delta
	}
	if c.IsFinished() {
		c.State = StateFinished
	}
}

// Progress returns elapsed time as a fraction of the duration in [0, 1].
func (c *Crafting) Progress() float64 {
	if c.Duration <= 0 {
		return 1
	}
	return math.Min(1, float64(c.Time)/float64(c.Duration))
}

// ToData encodes the job as [recipe_index, elapsed_seconds, ingredients_taken].
func (c *Crafting) ToData() []any {
	return []any{c.RecipeIndex, c.Time.Seconds(), c.ingredientsTaken}
}

// FromData restores RecipeIndex, Time and the ingredient flag from ToData
// output, including after a JSON round trip.
func (c *Crafting) FromData(data []any) error {
	if len(data) < 2 {
		return errors.InvalidArgumentf("crafting data needs at least 2 elements, got %d", len(data))
	}
	index, ok := number(data[0])
	if !ok || index != math.Trunc(index) || index < 0 {
		return errors.InvalidArgumentf("crafting recipe index must be a non-negative integer, got %v", data[0])
	}
	seconds, ok := number(data[1])
	if !ok || seconds < 0 {
		return errors.InvalidArgumentf("crafting time must be a non-negative number, got %v", data[1])
	}
	taken := false
	if len(data) > 2 {
		b, ok := data[2].(bool)
		if !ok {
			return errors.InvalidArgumentf("crafting ingredients flag must be a bool, got %T", data[2])
		}
		taken = b
	}

	c.RecipeIndex = int(index)
	c.Time = time.Duration(seconds * float64(time.Second))
	c.ingredientsTaken = taken
	return nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
