package craft

import (
	"math"
	"time"

	"github.com/gravitas-games/craftworks/internal/errors"
)

// StationType is the policy shared by a station and the recipes it may
// craft. A station without a type crafts recipes without a station type.
//
// The multipliers scale every recipe crafted at stations of this type. Zero
// means 1, so a type declared with only an id changes nothing.
type StationType struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// InputCost scales consumed ingredients, rounding up to at least 1.
	// Required items are never scaled.
	InputCost float64 `json:"input_cost,omitempty" yaml:"input_cost,omitempty"`
	// OutputYield scales products, rounding down.
	OutputYield float64 `json:"output_yield,omitempty" yaml:"output_yield,omitempty"`
	// TimeSpeed scales job duration; 0.5 crafts twice as fast.
	TimeSpeed float64 `json:"time_speed,omitempty" yaml:"time_speed,omitempty"`
}

// Validate rejects negative or non-finite multipliers.
func (t *StationType) Validate() error {
	if t == nil {
		return nil
	}
	for name, m := range map[string]float64{
		"input_cost":   t.InputCost,
		"output_yield": t.OutputYield,
		"time_speed":   t.TimeSpeed,
	} {
		if m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return errors.InvalidArgumentf("station type %s: %s must be a non-negative number, got %v", t.ID, name, m)
		}
	}
	return nil
}

func (t *StationType) id() string {
	if t == nil {
		return ""
	}
	return t.ID
}

func factor(m float64) float64 {
	if m == 0 {
		return 1
	}
	return m
}

// ingredients returns the consumed amounts after InputCost.
func (t *StationType) ingredients(items []ItemAmount) []ItemAmount {
	if t == nil || factor(t.InputCost) == 1 || len(items) == 0 {
		return items
	}
	out := make([]ItemAmount, len(items))
	for i, ia := range items {
		out[i] = ia
		out[i].Amount = max(1, int(math.Ceil(float64(ia.Amount)*t.InputCost)))
	}
	return out
}

// products returns the produced amounts after OutputYield.
func (t *StationType) products(items []ItemAmount) []ItemAmount {
	if t == nil || factor(t.OutputYield) == 1 || len(items) == 0 {
		return items
	}
	out := make([]ItemAmount, 0, len(items))
	for _, ia := range items {
		ia.Amount = int(math.Floor(float64(ia.Amount) * t.OutputYield))
		if ia.Amount > 0 {
			out = append(out, ia)
		}
	}
	return out
}

// duration returns the job duration after TimeSpeed.
func (t *StationType) duration(d time.Duration) time.Duration {
	if t == nil || factor(t.TimeSpeed) == 1 || d <= 0 {
		return d
	}
	return time.Duration(math.Round(float64(d) * t.TimeSpeed))
}
