package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/craftworks/internal/errors"
)

// Config holds all server configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Redis       RedisConfig       `yaml:"redis"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Logging     LoggingConfig     `yaml:"logging"`
	Inventories []InventoryConfig `yaml:"inventories"`
	Stations    []StationConfig   `yaml:"stations"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TickRate int    `yaml:"tick_rate"` // Hz
}

// RedisConfig holds Redis connection settings. An empty address disables
// persistence.
type RedisConfig struct {
	Address      string        `yaml:"address"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	KeyPrefix    string        `yaml:"key_prefix"`
	SaveInterval time.Duration `yaml:"save_interval"`
}

// CatalogConfig locates the item and recipe catalog
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig selects the log level and output format
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// InventoryConfig declares a named inventory
type InventoryConfig struct {
	Name       string `yaml:"name"`
	SlotAmount int    `yaml:"slot_amount"`
}

// StationConfig declares a craft station wired to inventories by name
type StationConfig struct {
	ID                              string   `yaml:"id"`
	Type                            string   `yaml:"type"`
	Inputs                          []string `yaml:"inputs"`
	Outputs                         []string `yaml:"outputs"`
	Limit                           *int     `yaml:"limit"` // nil or -1 = unlimited
	ProcessingMode                  string   `yaml:"processing_mode"`
	OnlyRemoveIngredientsAfterCraft bool     `yaml:"only_remove_ingredients_after_craft"`
	AutoCraft                       bool     `yaml:"auto_craft"`
	ValidRecipes                    []string `yaml:"valid_recipes"` // recipe ids
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeNotFound, "failed to read config file")
	}
	return Parse(data)
}

// Parse decodes configuration, applies defaults and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse config file")
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.TickRate == 0 {
		c.Server.TickRate = 20
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "craftworks:"
	}
	if c.Redis.SaveInterval == 0 {
		c.Redis.SaveInterval = 30 * time.Second
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "configs/catalog.yaml"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// TickInterval returns the duration of one tick
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Server.TickRate)
}

// Validate checks ranges and cross references between inventories and
// stations
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.InvalidArgumentf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.TickRate < 0 {
		return errors.InvalidArgumentf("server.tick_rate must be positive, got %d", c.Server.TickRate)
	}
	if c.Redis.SaveInterval < 0 {
		return errors.InvalidArgumentf("redis.save_interval cannot be negative, got %s", c.Redis.SaveInterval)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return errors.InvalidArgumentf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	names := make(map[string]struct{}, len(c.Inventories))
	for i, inv := range c.Inventories {
		if inv.Name == "" {
			return errors.InvalidArgumentf("inventories[%d]: name is required", i)
		}
		if inv.SlotAmount < 0 {
			return errors.InvalidArgumentf("inventory %s: slot_amount cannot be negative", inv.Name)
		}
		if _, dup := names[inv.Name]; dup {
			return errors.AlreadyExistsf("inventory %s declared twice", inv.Name)
		}
		names[inv.Name] = struct{}{}
	}

	ids := make(map[string]struct{}, len(c.Stations))
	for i, st := range c.Stations {
		if st.ID == "" {
			return errors.InvalidArgumentf("stations[%d]: id is required", i)
		}
		if _, dup := ids[st.ID]; dup {
			return errors.AlreadyExistsf("station %s declared twice", st.ID)
		}
		ids[st.ID] = struct{}{}

		if st.Limit != nil && *st.Limit < -1 {
			return errors.InvalidArgumentf("station %s: limit must be -1 or greater, got %d", st.ID, *st.Limit)
		}
		switch st.ProcessingMode {
		case "", "parallel", "sequential":
		default:
			return errors.InvalidArgumentf("station %s: unknown processing_mode %q", st.ID, st.ProcessingMode)
		}
		for _, name := range append(append([]string(nil), st.Inputs...), st.Outputs...) {
			if _, ok := names[name]; !ok {
				return errors.NotFoundf("station %s: inventory %s not declared", st.ID, name)
			}
		}
	}
	return nil
}
