package craft

import (
	"sync"
	"time"

	"github.com/gravitas-games/craftworks/internal/errors"
	"github.com/gravitas-games/craftworks/pkg/inventory"
)

// ItemAmount pairs an item with a quantity.
type ItemAmount struct {
	Item   inventory.ItemID `json:"item" yaml:"item"`
	Amount int              `json:"amount" yaml:"amount"`
}

// Recipe defines the transformation performed by a crafting job.
type Recipe struct {
	// Index is the position in the RecipeBook, assigned on registration.
	Index       int    `json:"index" yaml:"-"`
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	StationType string `json:"station_type,omitempty" yaml:"station_type,omitempty"`
	// Ingredients are removed from the station inputs.
	Ingredients []ItemAmount `json:"ingredients,omitempty" yaml:"ingredients,omitempty"`
	// RequiredItems must be present in the inputs but are never consumed (tools).
	RequiredItems []ItemAmount  `json:"required_items,omitempty" yaml:"required_items,omitempty"`
	Products      []ItemAmount  `json:"products,omitempty" yaml:"products,omitempty"`
	Duration      time.Duration `json:"duration" yaml:"-"`
}

// requirements sums ingredients and required items per item id. ingredients
// replaces r.Ingredients so station types can scale the consumed amounts.
func (r *Recipe) requirements(ingredients []ItemAmount) map[inventory.ItemID]int {
	need := make(map[inventory.ItemID]int, len(ingredients)+len(r.RequiredItems))
	for _, ia := range ingredients {
		need[ia.Item] += ia.Amount
	}
	for _, ia := range r.RequiredItems {
		need[ia.Item] += ia.Amount
	}
	return need
}

// RecipeBook stores recipes addressed by index, with lookups by id, station
// type and product.
type RecipeBook struct {
	mu            sync.RWMutex
	recipes       []*Recipe
	byID          map[string]int
	byStationType map[string][]int
	byProduct     map[inventory.ItemID][]int
}

// NewRecipeBook creates an empty recipe book.
func NewRecipeBook() *RecipeBook {
	return &RecipeBook{
		byID:          make(map[string]int),
		byStationType: make(map[string][]int),
		byProduct:     make(map[inventory.ItemID][]int),
	}
}

// Register validates recipe, appends it and returns its index.
func (b *RecipeBook) Register(recipe Recipe) (int, error) {
	if recipe.ID == "" {
		return -1, errors.InvalidArgument("recipe ID cannot be empty")
	}
	if recipe.Duration < 0 {
		return -1, errors.InvalidArgumentf("recipe %s: duration cannot be negative", recipe.ID)
	}
	if err := validateAmounts(recipe.ID, "ingredient", recipe.Ingredients); err != nil {
		return -1, err
	}
	if err := validateAmounts(recipe.ID, "required item", recipe.RequiredItems); err != nil {
		return -1, err
	}
	if err := validateAmounts(recipe.ID, "product", recipe.Products); err != nil {
		return -1, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.byID[recipe.ID]; exists {
		return -1, errors.AlreadyExistsf("recipe %s already registered", recipe.ID)
	}

	stored := recipe
	stored.Index = len(b.recipes)
	stored.Ingredients = append([]ItemAmount(nil), recipe.Ingredients...)
	stored.RequiredItems = append([]ItemAmount(nil), recipe.RequiredItems...)
	stored.Products = append([]ItemAmount(nil), recipe.Products...)

	b.recipes = append(b.recipes, &stored)
	b.byID[stored.ID] = stored.Index
	b.byStationType[stored.StationType] = append(b.byStationType[stored.StationType], stored.Index)
	for _, p := range stored.Products {
		b.byProduct[p.Item] = append(b.byProduct[p.Item], stored.Index)
	}
	return stored.Index, nil
}

func validateAmounts(recipeID, kind string, items []ItemAmount) error {
	for i, ia := range items {
		if ia.Item == "" {
			return errors.InvalidArgumentf("recipe %s: %s %d: item ID cannot be empty", recipeID, kind, i)
		}
		if ia.Amount <= 0 {
			return errors.InvalidArgumentf("recipe %s: %s %d: amount must be positive", recipeID, kind, i)
		}
	}
	return nil
}

// Recipe returns the recipe at index, or nil.
func (b *RecipeBook) Recipe(index int) *Recipe {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if index < 0 || index >= len(b.recipes) {
		return nil
	}
	return b.recipes[index]
}

// Lookup returns the index of the recipe with id.
func (b *RecipeBook) Lookup(id string) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	index, ok := b.byID[id]
	return index, ok
}

// ForStationType returns the indices of recipes crafted at stationType, in
// registration order.
func (b *RecipeBook) ForStationType(stationType string) []int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]int(nil), b.byStationType[stationType]...)
}

// ByProduct returns the indices of recipes producing item.
func (b *RecipeBook) ByProduct(item inventory.ItemID) []int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]int(nil), b.byProduct[item]...)
}

// All returns every recipe in index order.
func (b *RecipeBook) All() []*Recipe {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]*Recipe(nil), b.recipes...)
}

// Count returns the number of recipes.
func (b *RecipeBook) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.recipes)
}
