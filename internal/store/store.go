// Package store snapshots inventories and craft station job lists to Redis.
package store

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"github.com/gravitas-games/craftworks/internal/errors"
	"github.com/gravitas-games/craftworks/pkg/craft"
	"github.com/gravitas-games/craftworks/pkg/inventory"
)

const (
	inventoryKeyPrefix = "inventory:"
	stationKeyPrefix   = "station:"
)

// Config contains configuration for the Redis store.
type Config struct {
	Client    redis.Cmdable
	KeyPrefix string
}

// Validate validates the Config.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// Store persists snapshots under <prefix>inventory:<name> and
// <prefix>station:<id>. Snapshots never expire.
type Store struct {
	client redis.Cmdable
	prefix string
}

// New creates a store.
func New(cfg *Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{client: cfg.Client, prefix: cfg.KeyPrefix}, nil
}

// Dial connects to Redis and verifies the connection with PING.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to connect to redis")
	}
	return client, nil
}

// InventoryKey returns the key holding the inventory snapshot.
func (s *Store) InventoryKey(name string) string {
	return s.prefix + inventoryKeyPrefix + name
}

// StationKey returns the key holding the station snapshot.
func (s *Store) StationKey(id string) string {
	return s.prefix + stationKeyPrefix + id
}

// SaveInventory writes the inventory's serialized stacks.
func (s *Store) SaveInventory(ctx context.Context, inv *inventory.Inventory) error {
	if inv == nil {
		return errors.InvalidArgument("inventory cannot be nil")
	}
	data, err := json.Marshal(inv)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal inventory %s", inv.Name())
	}
	if err := s.client.Set(ctx, s.InventoryKey(inv.Name()), data, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to save inventory %s", inv.Name())
	}
	return nil
}

// LoadInventory restores inv from its snapshot. It reports false when no
// snapshot exists, leaving inv untouched.
func (s *Store) LoadInventory(ctx context.Context, inv *inventory.Inventory) (bool, error) {
	if inv == nil {
		return false, errors.InvalidArgument("inventory cannot be nil")
	}
	data, err := s.client.Get(ctx, s.InventoryKey(inv.Name())).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to load inventory %s", inv.Name())
	}
	if err := json.Unmarshal(data, inv); err != nil {
		return false, errors.Wrapf(err, "failed to restore inventory %s", inv.Name())
	}
	return true, nil
}

// SaveStation writes the station's job list.
func (s *Store) SaveStation(ctx context.Context, st *craft.Station) error {
	if st == nil {
		return errors.InvalidArgument("station cannot be nil")
	}
	data, err := json.Marshal(st)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal station %s", st.ID())
	}
	if err := s.client.Set(ctx, s.StationKey(st.ID()), data, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to save station %s", st.ID())
	}
	return nil
}

// LoadStation restores the station's job list from its snapshot. It reports
// false when no snapshot exists.
func (s *Store) LoadStation(ctx context.Context, st *craft.Station) (bool, error) {
	if st == nil {
		return false, errors.InvalidArgument("station cannot be nil")
	}
	data, err := s.client.Get(ctx, s.StationKey(st.ID())).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to load station %s", st.ID())
	}
	if err := json.Unmarshal(data, st); err != nil {
		return false, errors.Wrapf(err, "failed to restore station %s", st.ID())
	}
	return true, nil
}

// SaveAll writes every snapshot in one transaction.
func (s *Store) SaveAll(ctx context.Context, invs []*inventory.Inventory, stations []*craft.Station) error {
	pipe := s.client.TxPipeline()
	for _, inv := range invs {
		data, err := json.Marshal(inv)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal inventory %s", inv.Name())
		}
		pipe.Set(ctx, s.InventoryKey(inv.Name()), data, 0)
	}
	for _, st := range stations {
		data, err := json.Marshal(st)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal station %s", st.ID())
		}
		pipe.Set(ctx, s.StationKey(st.ID()), data, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "failed to save snapshots")
	}
	slog.DebugContext(ctx, "snapshots saved", "inventories", len(invs), "stations", len(stations))
	return nil
}

// Delete removes the snapshots of the named inventories and stations.
func (s *Store) Delete(ctx context.Context, inventoryNames, stationIDs []string) error {
	keys := make([]string, 0, len(inventoryNames)+len(stationIDs))
	for _, name := range inventoryNames {
		keys = append(keys, s.InventoryKey(name))
	}
	for _, id := range stationIDs {
		keys = append(keys, s.StationKey(id))
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete snapshots")
	}
	return nil
}
