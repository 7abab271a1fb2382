package craft

// EventType represents the type of station event.
type EventType int

const (
	// EventCraftingAdded is emitted when a job is appended at CraftingIndex.
	EventCraftingAdded EventType = iota
	// EventCraftingRemoved is emitted when the job at CraftingIndex is removed.
	EventCraftingRemoved
	// EventCrafted is emitted after a job deposited its products.
	EventCrafted
	// EventCraftingCancelled is emitted after a job was cancelled.
	EventCraftingCancelled
)

// String returns the signal name of the event type.
func (t EventType) String() string {
	switch t {
	case EventCraftingAdded:
		return "crafting_added"
	case EventCraftingRemoved:
		return "crafting_removed"
	case EventCrafted:
		return "crafted"
	case EventCraftingCancelled:
		return "crafting_cancelled"
	default:
		return "unknown"
	}
}

// Event is delivered synchronously to station subscribers.
type Event struct {
	Type          EventType
	Station       *Station
	CraftingIndex int
	RecipeIndex   int
}

func (s *Station) emit(e Event) {
	e.Station = s
	s.bus.Publish(e)
}
