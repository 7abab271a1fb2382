package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/gravitas-games/craftworks/internal/errors"
)

// Schema reflects the catalog document into a JSON Schema for editor tooling.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(File))
	schema.Title = "Craftworks Catalog"
	schema.Description = "Validates item, station type and recipe definitions loaded by craftd"
	return schema
}

// WriteSchema writes the schema to outPath, replacing any existing file.
func WriteSchema(outPath string) error {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal schema")
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.Wrap(err, "create schema directory")
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return errors.Wrap(err, "write temp schema")
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return errors.Wrap(err, "replace schema")
	}

	return nil
}
