package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/gravitas-games/craftworks/internal/errors"
	"github.com/gravitas-games/craftworks/internal/store"
	"github.com/gravitas-games/craftworks/pkg/craft"
	"github.com/gravitas-games/craftworks/pkg/inventory"
)

type StoreTestSuite struct {
	suite.Suite

	mr     *miniredis.Miniredis
	client *redis.Client
	store  *store.Store
	db     *inventory.Registry
	book   *craft.RecipeBook
	ctx    context.Context
}

func (s *StoreTestSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.ctx = context.Background()

	var err error
	s.store, err = store.New(&store.Config{Client: s.client, KeyPrefix: "test:"})
	s.Require().NoError(err)

	s.db = inventory.NewRegistry(
		inventory.Definition{ID: "wood", MaxStack: 10},
		inventory.Definition{ID: "plank", MaxStack: 20},
	)
	s.book = craft.NewRecipeBook()
	_, err = s.book.Register(craft.Recipe{
		ID:          "planks",
		Ingredients: []craft.ItemAmount{{Item: "wood", Amount: 2}},
		Products:    []craft.ItemAmount{{Item: "plank", Amount: 4}},
		Duration:    2 * time.Second,
	})
	s.Require().NoError(err)
}

func (s *StoreTestSuite) TearDownTest() {
	s.Require().NoError(s.client.Close())
}

func (s *StoreTestSuite) TestNewValidatesConfig() {
	_, err := store.New(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = store.New(&store.Config{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *StoreTestSuite) TestKeys() {
	s.Equal("test:inventory:bag", s.store.InventoryKey("bag"))
	s.Equal("test:station:bench", s.store.StationKey("bench"))
}

func (s *StoreTestSuite) TestInventoryRoundTrip() {
	inv := inventory.New("bag", s.db)
	inv.Add("wood", 15, nil, false)
	inv.Add("plank", 3, inventory.Properties{"quality": "fine"}, false)

	s.Require().NoError(s.store.SaveInventory(s.ctx, inv))
	s.True(s.mr.Exists("test:inventory:bag"))

	restored := inventory.New("bag", s.db)
	found, err := s.store.LoadInventory(s.ctx, restored)
	s.Require().NoError(err)
	s.True(found)

	s.Equal(18, restored.Amount())
	s.Equal(15, restored.AmountOfItem("wood"))
	st, ok := restored.StackAt(2)
	s.Require().True(ok)
	s.Equal(inventory.ItemID("plank"), st.Item)
	s.Equal("fine", st.Properties["quality"])
}

func (s *StoreTestSuite) TestLoadMissingInventory() {
	inv := inventory.New("bag", s.db)
	inv.Add("wood", 1, nil, false)

	found, err := s.store.LoadInventory(s.ctx, inv)
	s.Require().NoError(err)
	s.False(found)
	s.Equal(1, inv.Amount())
}

func (s *StoreTestSuite) TestLoadCorruptInventory() {
	s.mr.Set("test:inventory:bag", "not json")

	_, err := s.store.LoadInventory(s.ctx, inventory.New("bag", s.db))
	s.Error(err)
}

func (s *StoreTestSuite) TestStationRoundTrip() {
	in := inventory.New("in", s.db)
	in.Add("wood", 4, nil, false)
	st := craft.New("bench", s.book, craft.WithInputs(in))
	s.Require().NoError(st.Craft(0))
	st.Process(500 * time.Millisecond)

	s.Require().NoError(s.store.SaveStation(s.ctx, st))

	restored := craft.New("bench", s.book, craft.WithInputs(inventory.New("in", s.db)))
	found, err := s.store.LoadStation(s.ctx, restored)
	s.Require().NoError(err)
	s.True(found)

	jobs := restored.Craftings()
	s.Require().Len(jobs, 1)
	s.Equal(0, jobs[0].RecipeIndex)
	s.Equal(500*time.Millisecond, jobs[0].Time)
	s.True(jobs[0].IngredientsTaken())
}

func (s *StoreTestSuite) TestLoadMissingStation() {
	found, err := s.store.LoadStation(s.ctx, craft.New("bench", s.book))
	s.Require().NoError(err)
	s.False(found)
}

func (s *StoreTestSuite) TestNilArguments() {
	s.True(errors.IsInvalidArgument(s.store.SaveInventory(s.ctx, nil)))
	s.True(errors.IsInvalidArgument(s.store.SaveStation(s.ctx, nil)))
	_, err := s.store.LoadInventory(s.ctx, nil)
	s.True(errors.IsInvalidArgument(err))
	_, err = s.store.LoadStation(s.ctx, nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *StoreTestSuite) TestSaveAllAndDelete() {
	bag := inventory.New("bag", s.db)
	bag.Add("wood", 2, nil, false)
	chest := inventory.New("chest", s.db)
	bench := craft.New("bench", s.book)

	s.Require().NoError(s.store.SaveAll(s.ctx,
		[]*inventory.Inventory{bag, chest},
		[]*craft.Station{bench},
	))
	s.True(s.mr.Exists("test:inventory:bag"))
	s.True(s.mr.Exists("test:inventory:chest"))
	s.True(s.mr.Exists("test:station:bench"))

	s.Require().NoError(s.store.Delete(s.ctx, []string{"bag"}, []string{"bench"}))
	s.False(s.mr.Exists("test:inventory:bag"))
	s.True(s.mr.Exists("test:inventory:chest"))
	s.False(s.mr.Exists("test:station:bench"))

	s.NoError(s.store.Delete(s.ctx, nil, nil))
}

func (s *StoreTestSuite) TestUnavailableRedis() {
	s.mr.Close()

	err := s.store.SaveInventory(s.ctx, inventory.New("bag", s.db))
	s.Error(err)
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := store.Dial(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}

func TestDialUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := store.Dial(ctx, addr, "", 0)
	assert.Equal(t, errors.CodeUnavailable, errors.GetCode(err))
}
