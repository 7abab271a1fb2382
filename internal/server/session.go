package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gravitas-games/craftworks/internal/catalog"
	"github.com/gravitas-games/craftworks/internal/config"
	"github.com/gravitas-games/craftworks/internal/errors"
	"github.com/gravitas-games/craftworks/internal/store"
	"github.com/gravitas-games/craftworks/pkg/craft"
	"github.com/gravitas-games/craftworks/pkg/inventory"
)

// Session owns the configured inventories and stations and advances them on
// every tick. All access to the world goes through the session mutex.
type Session struct {
	ID        string
	CreatedAt time.Time

	catalog *catalog.Catalog
	logger  *slog.Logger

	inventories    map[string]*inventory.Inventory
	inventoryOrder []string
	stations       map[string]*craft.Station
	stationOrder   []string

	mu      sync.Mutex
	tick    int64
	crafted int64
}

// SessionStatus is the snapshot served on /status
type SessionStatus struct {
	State       string `json:"state"`
	ServerTick  int64  `json:"server_tick"`
	Uptime      int64  `json:"uptime"` // seconds
	Inventories int    `json:"inventories"`
	Stations    int    `json:"stations"`
	Craftings   int    `json:"craftings"`
	Crafted     int64  `json:"crafted"`
}

// NewSession builds inventories and stations from cfg, resolving item, station
// type and recipe references against cat.
func NewSession(id string, cfg *config.Config, cat *catalog.Catalog, logger *slog.Logger) (*Session, error) {
	if cfg == nil || cat == nil {
		return nil, errors.InvalidArgument("session requires a config and a catalog")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		ID:          id,
		CreatedAt:   time.Now(),
		catalog:     cat,
		logger:      logger.With("session", id),
		inventories: make(map[string]*inventory.Inventory, len(cfg.Inventories)),
		stations:    make(map[string]*craft.Station, len(cfg.Stations)),
	}

	for _, ic := range cfg.Inventories {
		inv := inventory.New(ic.Name, cat.Items,
			inventory.WithSlots(ic.SlotAmount),
			inventory.WithLogger(s.logger),
		)
		s.inventories[ic.Name] = inv
		s.inventoryOrder = append(s.inventoryOrder, ic.Name)
	}

	for _, sc := range cfg.Stations {
		st, err := s.buildStation(sc)
		if err != nil {
			return nil, errors.Wrapf(err, "station %s", sc.ID)
		}
		s.stations[sc.ID] = st
		s.stationOrder = append(s.stationOrder, sc.ID)
	}

	s.logger.Info("session created",
		"inventories", len(s.inventories),
		"stations", len(s.stations),
		"recipes", cat.Recipes.Count(),
	)
	return s, nil
}

func (s *Session) buildStation(sc config.StationConfig) (*craft.Station, error) {
	var typ *craft.StationType
	if sc.Type != "" {
		typ = s.catalog.StationType(sc.Type)
		if typ == nil {
			return nil, errors.NotFoundf("station type %s not declared in catalog", sc.Type)
		}
	}

	mode, err := craft.ParseProcessingMode(sc.ProcessingMode)
	if err != nil {
		return nil, err
	}

	limit := craft.Unlimited
	if sc.Limit != nil {
		limit = *sc.Limit
	}

	valid := make([]int, 0, len(sc.ValidRecipes))
	for _, recipeID := range sc.ValidRecipes {
		idx, ok := s.catalog.Recipes.Lookup(recipeID)
		if !ok {
			return nil, errors.NotFoundf("recipe %s not found", recipeID)
		}
		valid = append(valid, idx)
	}

	st := craft.New(sc.ID, s.catalog.Recipes,
		craft.WithType(typ),
		craft.WithInputs(s.lookupInventories(sc.Inputs)...),
		craft.WithOutputs(s.lookupInventories(sc.Outputs)...),
		craft.WithLimit(limit),
		craft.WithProcessingMode(mode),
		craft.WithOnlyRemoveIngredientsAfterCraft(sc.OnlyRemoveIngredientsAfterCraft),
		craft.WithValidRecipes(valid...),
		craft.WithLogger(s.logger),
		craft.WithAutoCraft(sc.AutoCraft),
	)
	st.Subscribe(func(e craft.Event) {
		if e.Type != craft.EventCrafted {
			return
		}
		s.crafted++
		recipe := s.catalog.Recipes.Recipe(e.RecipeIndex)
		if recipe != nil {
			s.logger.Debug("crafted", "station", e.Station.ID(), "recipe", recipe.ID)
		}
	})
	return st, nil
}

func (s *Session) lookupInventories(names []string) []*inventory.Inventory {
	invs := make([]*inventory.Inventory, 0, len(names))
	for _, name := range names {
		if inv, ok := s.inventories[name]; ok {
			invs = append(invs, inv)
		}
	}
	return invs
}

// Inventory returns the named inventory, or nil.
func (s *Session) Inventory(name string) *inventory.Inventory {
	return s.inventories[name]
}

// Station returns the station with id, or nil.
func (s *Session) Station(id string) *craft.Station {
	return s.stations[id]
}

// Inventories returns the inventories in declaration order.
func (s *Session) Inventories() []*inventory.Inventory {
	out := make([]*inventory.Inventory, 0, len(s.inventoryOrder))
	for _, name := range s.inventoryOrder {
		out = append(out, s.inventories[name])
	}
	return out
}

// Stations returns the stations in declaration order.
func (s *Session) Stations() []*craft.Station {
	out := make([]*craft.Station, 0, len(s.stationOrder))
	for _, id := range s.stationOrder {
		out = append(out, s.stations[id])
	}
	return out
}

// Do runs fn with the session locked. Use it for mutations made outside
// the tick loop.
func (s *Session) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Tick advances every station by delta in declaration order.
func (s *Session) Tick(delta time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.stationOrder {
		s.stations[id].Process(delta)
	}
	s.tick++
}

// Status returns the current session status
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := SessionStatus{
		State:       "running",
		ServerTick:  s.tick,
		Uptime:      int64(time.Since(s.CreatedAt).Seconds()),
		Inventories: len(s.inventories),
		Stations:    len(s.stations),
		Crafted:     s.crafted,
	}
	for _, st := range s.stations {
		status.Craftings += st.CraftingCount()
	}
	return status
}

// Save writes every inventory and station snapshot.
func (s *Session) Save(ctx context.Context, st *store.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return st.SaveAll(ctx, s.Inventories(), s.Stations())
}

// Restore loads whatever snapshots exist. Auto craft is held off until every
// snapshot is in place so restored inventories do not start duplicate jobs.
func (s *Session) Restore(ctx context.Context, st *store.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var auto []*craft.Station
	for _, station := range s.Stations() {
		if station.AutoCraft() {
			station.SetAutoCraft(false)
			auto = append(auto, station)
		}
	}
	defer func() {
		for _, station := range auto {
			station.SetAutoCraft(true)
		}
	}()

	var invs, stations int
	for _, inv := range s.Inventories() {
		found, err := st.LoadInventory(ctx, inv)
		if err != nil {
			return err
		}
		if found {
			invs++
		}
	}
	for _, station := range s.Stations() {
		found, err := st.LoadStation(ctx, station)
		if err != nil {
			return err
		}
		if found {
			stations++
		}
	}

	s.logger.InfoContext(ctx, "session restored", "inventories", invs, "stations", stations)
	return nil
}

// Close detaches stations from their inventories.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.stations {
		st.Close()
	}
}
