// Package catalog loads item, station type and recipe definitions from a YAML
// document into the registries the engine consumes.
package catalog

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/craftworks/internal/errors"
	"github.com/gravitas-games/craftworks/pkg/craft"
	"github.com/gravitas-games/craftworks/pkg/inventory"
)

// File is the on-disk catalog document.
type File struct {
	Items        []ItemDocument        `yaml:"items" json:"items" jsonschema:"title=Items,description=Item definitions resolved by inventories."`
	StationTypes []StationTypeDocument `yaml:"station_types,omitempty" json:"station_types,omitempty" jsonschema:"title=Station Types,description=Policy tags shared by stations and recipes."`
	Recipes      []RecipeDocument      `yaml:"recipes,omitempty" json:"recipes,omitempty" jsonschema:"title=Recipes,description=Recipes in index order."`
}

// ItemDocument is a single item entry.
type ItemDocument struct {
	ID         string         `yaml:"id" json:"id" jsonschema:"title=Item ID,minLength=1,required"`
	Name       string         `yaml:"name,omitempty" json:"name,omitempty" jsonschema:"description=Display name"`
	MaxStack   int            `yaml:"max_stack" json:"max_stack" jsonschema:"title=Max Stack,minimum=1,required"`
	Categories []string       `yaml:"categories,omitempty" json:"categories,omitempty" jsonschema:"description=Category tags used by category queries"`
	Properties map[string]any `yaml:"properties,omitempty" json:"properties,omitempty" jsonschema:"description=Open property bag; dropped_item holds the spawn descriptor for drops"`
}

// StationTypeDocument is a single station type entry.
type StationTypeDocument struct {
	ID          string  `yaml:"id" json:"id" jsonschema:"title=Station Type ID,minLength=1,required"`
	Name        string  `yaml:"name,omitempty" json:"name,omitempty"`
	InputCost   float64 `yaml:"input_cost,omitempty" json:"input_cost,omitempty" jsonschema:"minimum=0,description=Multiplier on consumed ingredients; 0 means 1"`
	OutputYield float64 `yaml:"output_yield,omitempty" json:"output_yield,omitempty" jsonschema:"minimum=0,description=Multiplier on products; 0 means 1"`
	TimeSpeed   float64 `yaml:"time_speed,omitempty" json:"time_speed,omitempty" jsonschema:"minimum=0,description=Multiplier on recipe duration; 0 means 1"`
}

// ItemAmountDocument pairs an item id with a quantity.
type ItemAmountDocument struct {
	Item   string `yaml:"item" json:"item" jsonschema:"minLength=1,required"`
	Amount int    `yaml:"amount" json:"amount" jsonschema:"minimum=1,required"`
}

// RecipeDocument is a single recipe entry. Duration uses Go duration syntax
// such as "1.5s" or "2m".
type RecipeDocument struct {
	ID            string               `yaml:"id" json:"id" jsonschema:"title=Recipe ID,minLength=1,required"`
	Name          string               `yaml:"name,omitempty" json:"name,omitempty"`
	StationType   string               `yaml:"station_type,omitempty" json:"station_type,omitempty" jsonschema:"description=Station type id; empty for stations without a type"`
	Ingredients   []ItemAmountDocument `yaml:"ingredients,omitempty" json:"ingredients,omitempty" jsonschema:"description=Consumed from the station inputs"`
	RequiredItems []ItemAmountDocument `yaml:"required_items,omitempty" json:"required_items,omitempty" jsonschema:"description=Checked in the station inputs but never consumed"`
	Products      []ItemAmountDocument `yaml:"products,omitempty" json:"products,omitempty" jsonschema:"description=Deposited into the station outputs"`
	Duration      string               `yaml:"duration,omitempty" json:"duration,omitempty" jsonschema:"description=Go duration string; empty means instant,example=2s"`
}

// Catalog holds the resolved registries.
type Catalog struct {
	Items        *inventory.Registry
	Recipes      *craft.RecipeBook
	StationTypes map[string]*craft.StationType
}

// StationType returns the station type with id, or nil. The empty id is the
// untyped station and also yields nil.
func (c *Catalog) StationType(id string) *craft.StationType {
	if c == nil || id == "" {
		return nil
	}
	return c.StationTypes[id]
}

// Load reads and resolves a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeNotFound, "failed to read catalog file")
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", path)
	}
	return cat, nil
}

// Parse decodes and resolves a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse catalog")
	}
	return f.Build()
}

// Build validates the document and resolves it. Every item referenced by a
// recipe must be defined, and every recipe station type must be declared.
func (f *File) Build() (*Catalog, error) {
	cat := &Catalog{
		Items:        inventory.NewRegistry(),
		Recipes:      craft.NewRecipeBook(),
		StationTypes: make(map[string]*craft.StationType, len(f.StationTypes)),
	}

	for i, doc := range f.Items {
		id := inventory.ItemID(doc.ID)
		if doc.ID != "" && cat.Items.Item(id) != nil {
			return nil, errors.AlreadyExistsf("item %d: duplicate id %s", i, doc.ID)
		}
		err := cat.Items.Register(inventory.Definition{
			ID:         id,
			Name:       doc.Name,
			MaxStack:   doc.MaxStack,
			Categories: doc.Categories,
			Properties: inventory.Properties(doc.Properties),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
	}

	for i, doc := range f.StationTypes {
		if doc.ID == "" {
			return nil, errors.InvalidArgumentf("station type %d: id cannot be empty", i)
		}
		if _, exists := cat.StationTypes[doc.ID]; exists {
			return nil, errors.AlreadyExistsf("station type %d: duplicate id %s", i, doc.ID)
		}
		typ := &craft.StationType{
			ID:          doc.ID,
			Name:        doc.Name,
			InputCost:   doc.InputCost,
			OutputYield: doc.OutputYield,
			TimeSpeed:   doc.TimeSpeed,
		}
		if err := typ.Validate(); err != nil {
			return nil, errors.Wrapf(err, "station type %d", i)
		}
		cat.StationTypes[doc.ID] = typ
	}

	for i, doc := range f.Recipes {
		recipe, err := cat.recipe(doc)
		if err != nil {
			return nil, errors.Wrapf(err, "recipe %d", i)
		}
		if _, err := cat.Recipes.Register(recipe); err != nil {
			return nil, errors.Wrapf(err, "recipe %d", i)
		}
	}

	return cat, nil
}

func (c *Catalog) recipe(doc RecipeDocument) (craft.Recipe, error) {
	if doc.StationType != "" && c.StationTypes[doc.StationType] == nil {
		return craft.Recipe{}, errors.NotFoundf("%s: station type %s not declared", doc.ID, doc.StationType)
	}

	var duration time.Duration
	if doc.Duration != "" {
		d, err := time.ParseDuration(doc.Duration)
		if err != nil {
			return craft.Recipe{}, errors.WrapWithCode(err, errors.CodeInvalidArgument, doc.ID+": invalid duration")
		}
		duration = d
	}

	ingredients, err := c.amounts(doc.ID, doc.Ingredients)
	if err != nil {
		return craft.Recipe{}, err
	}
	required, err := c.amounts(doc.ID, doc.RequiredItems)
	if err != nil {
		return craft.Recipe{}, err
	}
	products, err := c.amounts(doc.ID, doc.Products)
	if err != nil {
		return craft.Recipe{}, err
	}

	return craft.Recipe{
		ID:            doc.ID,
		Name:          doc.Name,
		StationType:   doc.StationType,
		Ingredients:   ingredients,
		RequiredItems: required,
		Products:      products,
		Duration:      duration,
	}, nil
}

func (c *Catalog) amounts(recipeID string, docs []ItemAmountDocument) ([]craft.ItemAmount, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]craft.ItemAmount, 0, len(docs))
	for _, d := range docs {
		id := inventory.ItemID(d.Item)
		if c.Items.Item(id) == nil {
			return nil, errors.NotFoundf("%s: item %s not defined", recipeID, d.Item)
		}
		out = append(out, craft.ItemAmount{Item: id, Amount: d.Amount})
	}
	return out, nil
}
