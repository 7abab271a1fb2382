package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		configPath = ""
		schemaOut = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, stations string) string {
	t.Helper()
	catalogPath, err := filepath.Abs("../../configs/catalog.yaml")
	require.NoError(t, err)

	doc := "catalog:\n  path: " + catalogPath + "\n" +
		"inventories:\n  - name: in\n  - name: out\n" + stations
	path := filepath.Join(t.TempDir(), "craftd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, "stations:\n  - id: bench\n    type: workbench\n    inputs: [in]\n    outputs: [out]\n")

	out, err := execute(t, "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 4 items, 2 recipes, 1 station types, 2 inventories, 1 stations")
}

func TestValidateUnknownRecipe(t *testing.T) {
	path := writeConfig(t, "stations:\n  - id: bench\n    valid_recipes: [bread]\n")

	_, err := execute(t, "validate", "--config", path)
	assert.Error(t, err)
}

func TestValidateConfigFromEnv(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("CONFIG_PATH", path)

	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "0 stations")
}

func TestSchemaStdout(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Craftworks Catalog", doc["title"])
}

func TestSchemaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema", "catalog.json")

	out, err := execute(t, "schema", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "schema written to")
	assert.FileExists(t, path)
}
