// Package craft implements craft stations: timed crafting jobs that consume
// ingredients from input inventories and deposit products into output
// inventories.
package craft

import (
	"log/slog"
	"slices"
	"time"

	"github.com/gravitas-games/craftworks/internal/errors"
	"github.com/gravitas-games/craftworks/internal/events"
	"github.com/gravitas-games/craftworks/internal/idgen"
	"github.com/gravitas-games/craftworks/pkg/inventory"
)

// Unlimited disables the crafting limit.
const Unlimited = -1

// ProcessingMode selects how concurrent jobs share station time.
type ProcessingMode int

const (
	// Parallel advances every job up to the crafting limit.
	Parallel ProcessingMode = iota
	// Sequential advances only the earliest job.
	Sequential
)

// String returns the configuration name of the mode.
func (m ProcessingMode) String() string {
	switch m {
	case Parallel:
		return "parallel"
	case Sequential:
		return "sequential"
	default:
		return "unknown"
	}
}

// ParseProcessingMode maps a configuration name to a mode. The empty string
// selects Parallel.
func ParseProcessingMode(s string) (ProcessingMode, error) {
	switch s {
	case "", "parallel":
		return Parallel, nil
	case "sequential":
		return Sequential, nil
	default:
		return Parallel, errors.InvalidArgumentf("unknown processing mode %q", s)
	}
}

// Station runs crafting jobs against externally owned inventories. It is not
// safe for concurrent use.
type Station struct {
	id      string
	book    *RecipeBook
	typ     *StationType
	inputs  []*inventory.Inventory
	outputs []*inventory.Inventory
	subs    map[*inventory.Inventory]events.SubscriptionID

	craftings []*Crafting

	limit                           int
	mode                            ProcessingMode
	onlyRemoveIngredientsAfterCraft bool
	autoCraft                       bool
	canProcessCraftings             bool
	canFinishCraftings              bool
	canAddInputInventory            bool
	validRecipes                    []int

	// busy counts station-originated inventory mutations in flight; input
	// events raised while it is non-zero do not trigger auto craft.
	busy int

	bus    *events.Bus[Event]
	ids    idgen.Generator
	logger *slog.Logger
}

// Option configures station construction.
type Option func(*Station)

// WithType sets the station type policy.
func WithType(t *StationType) Option {
	return func(s *Station) { s.typ = t }
}

// WithInputs sets the input inventories in priority order.
func WithInputs(invs ...*inventory.Inventory) Option {
	return func(s *Station) {
		for _, inv := range invs {
			if inv != nil && !slices.Contains(s.inputs, inv) {
				s.inputs = append(s.inputs, inv)
			}
		}
	}
}

// WithOutputs sets the output inventories in priority order. Without outputs
// products go to the inputs.
func WithOutputs(invs ...*inventory.Inventory) Option {
	return func(s *Station) {
		for _, inv := range invs {
			if inv != nil {
				s.outputs = append(s.outputs, inv)
			}
		}
	}
}

// WithLimit caps the number of concurrent jobs; Unlimited removes the cap.
func WithLimit(n int) Option {
	return func(s *Station) { s.limit = n }
}

// WithProcessingMode selects Parallel or Sequential processing.
func WithProcessingMode(m ProcessingMode) Option {
	return func(s *Station) { s.mode = m }
}

// WithOnlyRemoveIngredientsAfterCraft defers ingredient deduction to job
// completion.
func WithOnlyRemoveIngredientsAfterCraft(v bool) Option {
	return func(s *Station) { s.onlyRemoveIngredientsAfterCraft = v }
}

// WithAutoCraft enables automatic job starts on input changes.
func WithAutoCraft(v bool) Option {
	return func(s *Station) { s.autoCraft = v }
}

// WithValidRecipes restricts the station to the given recipe indices.
func WithValidRecipes(indices ...int) Option {
	return func(s *Station) { s.validRecipes = append([]int(nil), indices...) }
}

// WithLogger sets the logger used to report contract violations.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Station) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator sets the generator for crafting job ids.
func WithIDGenerator(g idgen.Generator) Option {
	return func(s *Station) {
		if g != nil {
			s.ids = g
		}
	}
}

// New creates a station named id that resolves recipes through book.
func New(id string, book *RecipeBook, opts ...Option) *Station {
	s := &Station{
		id:                   id,
		book:                 book,
		subs:                 make(map[*inventory.Inventory]events.SubscriptionID),
		limit:                Unlimited,
		mode:                 Parallel,
		canProcessCraftings:  true,
		canFinishCraftings:   true,
		canAddInputInventory: true,
		bus:                  events.NewBus[Event](),
		ids:                  idgen.NewUUID(""),
		logger:               slog.Default(),
	}
	if s.book == nil {
		s.book = NewRecipeBook()
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	for _, inv := range s.inputs {
		s.watch(inv)
	}
	return s
}

// ID returns the station identifier.
func (s *Station) ID() string { return s.id }

// Type returns the station type, or nil.
func (s *Station) Type() *StationType { return s.typ }

// SetType replaces the station type.
func (s *Station) SetType(t *StationType) { s.typ = t }

// RecipeBook returns the recipe source.
func (s *Station) RecipeBook() *RecipeBook { return s.book }

// Limit returns the crafting limit; Unlimited means no cap.
func (s *Station) Limit() int { return s.limit }

// SetLimit replaces the crafting limit. Running jobs are not cancelled.
func (s *Station) SetLimit(n int) { s.limit = n }

// ProcessingMode returns the processing mode.
func (s *Station) ProcessingMode() ProcessingMode { return s.mode }

// SetProcessingMode replaces the processing mode.
func (s *Station) SetProcessingMode(m ProcessingMode) { s.mode = m }

// OnlyRemoveIngredientsAfterCraft reports whether deduction is deferred.
func (s *Station) OnlyRemoveIngredientsAfterCraft() bool { return s.onlyRemoveIngredientsAfterCraft }

// SetOnlyRemoveIngredientsAfterCraft toggles deferred deduction for new jobs.
func (s *Station) SetOnlyRemoveIngredientsAfterCraft(v bool) { s.onlyRemoveIngredientsAfterCraft = v }

// AutoCraft reports whether auto craft is enabled.
func (s *Station) AutoCraft() bool { return s.autoCraft }

// SetAutoCraft toggles auto craft. Enabling it evaluates the inputs at once.
func (s *Station) SetAutoCraft(v bool) {
	s.autoCraft = v
	s.checkAutoCrafts()
}

// CanProcessCraftings reports whether Process advances jobs.
func (s *Station) CanProcessCraftings() bool { return s.canProcessCraftings }

// SetCanProcessCraftings pauses or resumes job processing.
func (s *Station) SetCanProcessCraftings(v bool) { s.canProcessCraftings = v }

// CanFinishCraftings reports whether Process finishes completed jobs.
func (s *Station) CanFinishCraftings() bool { return s.canFinishCraftings }

// SetCanFinishCraftings holds or releases completed jobs.
func (s *Station) SetCanFinishCraftings(v bool) { s.canFinishCraftings = v }

// CanAddInputInventory reports whether AddInputInventory is accepted.
func (s *Station) CanAddInputInventory() bool { return s.canAddInputInventory }

// SetCanAddInputInventory toggles AddInputInventory.
func (s *Station) SetCanAddInputInventory(v bool) { s.canAddInputInventory = v }

// ValidRecipes returns the recipe allow-list; empty allows every recipe of
// the station type.
func (s *Station) ValidRecipes() []int { return append([]int(nil), s.validRecipes...) }

// SetValidRecipes replaces the recipe allow-list.
func (s *Station) SetValidRecipes(indices ...int) { s.validRecipes = append([]int(nil), indices...) }

// Subscribe registers a handler for station events.
func (s *Station) Subscribe(handler func(Event)) events.SubscriptionID {
	return s.bus.Subscribe(handler)
}

// Unsubscribe removes a handler registered with Subscribe.
func (s *Station) Unsubscribe(id events.SubscriptionID) {
	s.bus.Unsubscribe(id)
}

func (s *Station) violation(op, msg string, args ...any) {
	s.logger.Warn(msg, append([]any{"op", op, "station", s.id}, args...)...)
}

// Craftings returns copies of the active jobs in order.
func (s *Station) Craftings() []Crafting {
	out := make([]Crafting, len(s.craftings))
	for i, c := range s.craftings {
		out[i] = *c
	}
	return out
}

// IsCrafting reports whether any job is active.
func (s *Station) IsCrafting() bool {
	return len(s.craftings) > 0
}

// CraftingCount returns the number of active jobs.
func (s *Station) CraftingCount() int {
	return len(s.craftings)
}

func (s *Station) atCapacity() bool {
	return s.limit >= 0 && len(s.craftings) >= s.limit
}

func (s *Station) validCrafting(index int) bool {
	return index >= 0 && index < len(s.craftings)
}

// Process advances active jobs by delta and, when finishing is enabled,
// finishes every job that completed.
func (s *Station) Process(delta time.Duration) {
	if !s.canProcessCraftings {
		return
	}
	switch s.mode {
	case Sequential:
		if len(s.craftings) > 0 {
			s.craftings[0].Process(delta)
		}
	default:
		n := len(s.craftings)
		if s.limit >= 0 && s.limit < n {
			n = s.limit
		}
		for _, c := range s.craftings[:n] {
			c.Process(delta)
		}
	}

	if !s.canFinishCraftings {
		return
	}
	var finished []*Crafting
	for _, c := range s.craftings {
		if c.IsFinished() {
			finished = append(finished, c)
		}
	}
	for _, c := range finished {
		if i := slices.Index(s.craftings, c); i >= 0 {
			s.FinishCrafting(i)
		}
	}
}

// AddCrafting appends a job for recipeIndex without checking or deducting
// ingredients, and returns its index.
func (s *Station) AddCrafting(recipeIndex int) (int, error) {
	recipe := s.book.Recipe(recipeIndex)
	if recipe == nil {
		return -1, errors.NotFoundf("recipe %d not found", recipeIndex)
	}
	if s.atCapacity() {
		return -1, errors.ResourceExhaustedf("station %s reached its limit of %d craftings", s.id, s.limit)
	}
	s.addCrafting(recipe, false)
	return len(s.craftings) - 1, nil
}

func (s *Station) addCrafting(recipe *Recipe, ingredientsTaken bool) *Crafting {
	c := &Crafting{
		ID:               s.ids.Generate(),
		RecipeIndex:      recipe.Index,
		Duration:         s.typ.duration(recipe.Duration),
		State:            StatePending,
		ingredientsTaken: ingredientsTaken,
	}
	s.craftings = append(s.craftings, c)
	s.emit(Event{Type: EventCraftingAdded, CraftingIndex: len(s.craftings) - 1, RecipeIndex: recipe.Index})
	return c
}

// RemoveCrafting drops the job at index without refunding or producing.
func (s *Station) RemoveCrafting(index int) {
	if !s.validCrafting(index) {
		s.violation("remove_crafting", "crafting index out of bounds", "index", index, "count", len(s.craftings))
		return
	}
	c := s.craftings[index]
	s.craftings = slices.Delete(s.craftings, index, index+1)
	s.emit(Event{Type: EventCraftingRemoved, CraftingIndex: index, RecipeIndex: c.RecipeIndex})
}

// FinishCrafting completes the job at index: deferred ingredients are
// deducted, products are deposited into the outputs and crafted is emitted.
// A deferred job whose ingredients are gone is dropped without output.
func (s *Station) FinishCrafting(index int) {
	if !s.validCrafting(index) {
		s.violation("finish_crafting", "crafting index out of bounds", "index", index, "count", len(s.craftings))
		return
	}
	c := s.craftings[index]
	recipe := s.book.Recipe(c.RecipeIndex)
	if recipe == nil {
		s.violation("finish_crafting", "recipe not found", "recipe", c.RecipeIndex)
		s.RemoveCrafting(index)
		return
	}

	if !c.ingredientsTaken {
		if !s.ContainsIngredients(recipe) {
			s.violation("finish_crafting", "ingredients no longer available", "recipe", recipe.ID, "crafting", c.ID)
			s.RemoveCrafting(index)
			s.checkAutoCrafts()
			return
		}
		s.useItems(recipe)
		c.ingredientsTaken = true
	}

	c.State = StateFinished
	s.RemoveCrafting(index)
	s.deposit("finish_crafting", s.productTargets(), s.typ.products(recipe.Products))
	s.emit(Event{Type: EventCrafted, CraftingIndex: index, RecipeIndex: recipe.Index})
	s.checkAutoCrafts()
}

// allows reports whether the station type and allow-list admit recipe.
func (s *Station) allows(recipe *Recipe) bool {
	if recipe.StationType != s.typ.id() {
		return false
	}
	if len(s.validRecipes) > 0 && !slices.Contains(s.validRecipes, recipe.Index) {
		return false
	}
	return true
}

// CanCraft reports whether recipe is allowed here and its ingredients and
// required items are present in the inputs. Capacity is not considered.
func (s *Station) CanCraft(recipe *Recipe) bool {
	if recipe == nil {
		return false
	}
	return s.allows(recipe) && s.ContainsIngredients(recipe)
}

// ContainsIngredients reports whether the inputs jointly hold every
// ingredient and required item of recipe.
func (s *Station) ContainsIngredients(recipe *Recipe) bool {
	if recipe == nil {
		return false
	}
	for item, amount := range recipe.requirements(s.typ.ingredients(recipe.Ingredients)) {
		total := 0
		for _, inv := range s.inputs {
			total += inv.AmountOfItem(item)
		}
		if total < amount {
			return false
		}
	}
	return true
}

// Craft starts a job for recipeIndex. Ingredients are deducted at once unless
// deduction is deferred to completion.
func (s *Station) Craft(recipeIndex int) error {
	recipe := s.book.Recipe(recipeIndex)
	if recipe == nil {
		return errors.NotFoundf("recipe %d not found", recipeIndex)
	}
	if s.atCapacity() {
		return errors.ResourceExhaustedf("station %s reached its limit of %d craftings", s.id, s.limit)
	}
	if !s.allows(recipe) {
		return errors.FailedPreconditionf("recipe %s is not valid for station %s", recipe.ID, s.id)
	}
	if !s.ContainsIngredients(recipe) {
		return errors.FailedPreconditionf("station %s is missing ingredients for recipe %s", s.id, recipe.ID)
	}

	taken := false
	if !s.onlyRemoveIngredientsAfterCraft {
		s.useItems(recipe)
		taken = true
	}
	s.addCrafting(recipe, taken)
	return nil
}

// CancelCraft aborts the job at index and refunds ingredients that were
// deducted when it started.
func (s *Station) CancelCraft(index int) {
	if !s.validCrafting(index) {
		s.violation("cancel_craft", "crafting index out of bounds", "index", index, "count", len(s.craftings))
		return
	}
	c := s.craftings[index]
	s.RemoveCrafting(index)
	if recipe := s.book.Recipe(c.RecipeIndex); recipe != nil && c.ingredientsTaken {
		s.deposit("cancel_craft", s.inputs, s.typ.ingredients(recipe.Ingredients))
	}
	s.emit(Event{Type: EventCraftingCancelled, CraftingIndex: index, RecipeIndex: c.RecipeIndex})
	s.checkAutoCrafts()
}

// useItems removes recipe ingredients from the inputs in order. Callers check
// ContainsIngredients first.
func (s *Station) useItems(recipe *Recipe) {
	s.busy++
	defer func() { s.busy-- }()

	for _, ia := range s.typ.ingredients(recipe.Ingredients) {
		remaining := ia.Amount
		for _, inv := range s.inputs {
			if remaining == 0 {
				break
			}
			remaining = inv.Remove(ia.Item, remaining)
		}
		if remaining != 0 {
			errors.Invariant("station %s: %d of %s missing after ingredient check", s.id, remaining, ia.Item)
		}
	}
}

// productTargets returns the outputs, or the inputs when no output is set.
func (s *Station) productTargets() []*inventory.Inventory {
	if len(s.outputs) > 0 {
		return s.outputs
	}
	return s.inputs
}

// deposit adds items to targets in order; the last target drops whatever it
// cannot hold.
func (s *Station) deposit(op string, targets []*inventory.Inventory, items []ItemAmount) {
	if len(items) == 0 {
		return
	}
	if len(targets) == 0 {
		s.violation(op, "no inventory to deposit into", "items", len(items))
		return
	}

	s.busy++
	defer func() { s.busy-- }()

	for _, ia := range items {
		remaining := ia.Amount
		for i, inv := range targets {
			remaining = inv.Add(ia.Item, remaining, nil, i == len(targets)-1)
			if remaining == 0 {
				break
			}
		}
	}
}

// InputInventory returns the input at index, or nil.
func (s *Station) InputInventory(index int) *inventory.Inventory {
	if index < 0 || index >= len(s.inputs) {
		s.violation("input_inventory", "input index out of bounds", "index", index, "count", len(s.inputs))
		return nil
	}
	return s.inputs[index]
}

// OutputInventory returns the output at index. Without outputs it resolves
// against the inputs.
func (s *Station) OutputInventory(index int) *inventory.Inventory {
	targets := s.productTargets()
	if index < 0 || index >= len(targets) {
		s.violation("output_inventory", "output index out of bounds", "index", index, "count", len(targets))
		return nil
	}
	return targets[index]
}

// Inputs returns the input inventories in order.
func (s *Station) Inputs() []*inventory.Inventory {
	return append([]*inventory.Inventory(nil), s.inputs...)
}

// Outputs returns the configured output inventories in order.
func (s *Station) Outputs() []*inventory.Inventory {
	return append([]*inventory.Inventory(nil), s.outputs...)
}

// AddInputInventory appends inv to the inputs. It reports false when adding
// inputs is disabled or inv is nil or already an input.
func (s *Station) AddInputInventory(inv *inventory.Inventory) bool {
	if !s.canAddInputInventory {
		return false
	}
	if inv == nil {
		s.violation("add_input_inventory", "inventory is nil")
		return false
	}
	if slices.Contains(s.inputs, inv) {
		return false
	}
	s.inputs = append(s.inputs, inv)
	s.watch(inv)
	s.checkAutoCrafts()
	return true
}

// RemoveInputInventory detaches inv from the inputs.
func (s *Station) RemoveInputInventory(inv *inventory.Inventory) bool {
	i := slices.Index(s.inputs, inv)
	if i < 0 {
		return false
	}
	s.inputs = slices.Delete(s.inputs, i, i+1)
	if id, ok := s.subs[inv]; ok {
		inv.Unsubscribe(id)
		delete(s.subs, inv)
	}
	return true
}

// Close detaches the station from its input inventories.
func (s *Station) Close() {
	for inv, id := range s.subs {
		inv.Unsubscribe(id)
	}
	clear(s.subs)
}

func (s *Station) watch(inv *inventory.Inventory) {
	if _, ok := s.subs[inv]; ok {
		return
	}
	s.subs[inv] = inv.Subscribe(func(e inventory.Event) {
		switch e.Type {
		case inventory.EventItemAdded, inventory.EventItemRemoved:
			s.checkAutoCrafts()
		}
	})
}

// autoRecipes returns the candidate recipes for auto craft in priority order.
func (s *Station) autoRecipes() []int {
	if len(s.validRecipes) > 0 {
		return s.validRecipes
	}
	return s.book.ForStationType(s.typ.id())
}

// checkAutoCrafts starts the first affordable candidate recipe when auto
// craft is on and capacity allows. At most one job starts per evaluation.
func (s *Station) checkAutoCrafts() {
	if !s.autoCraft || s.busy > 0 || s.atCapacity() {
		return
	}
	for _, index := range s.autoRecipes() {
		recipe := s.book.Recipe(index)
		if !s.CanCraft(recipe) {
			continue
		}
		if err := s.Craft(index); err != nil {
			s.logger.Debug("auto craft rejected", "station", s.id, "recipe", recipe.ID, "error", err)
			continue
		}
		return
	}
}
