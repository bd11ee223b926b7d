package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meikuraledutech/botdag"
	"github.com/meikuraledutech/botdag/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"models": {"gpt": {"name": "GPT", "fields": [{"name": "temperature", "type": "number"}]}},
		"builtin_ai": {"summarise": {"name": "Summarise"}}
	}`), 0o600))

	c, err := catalog.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"builtin_ai", "models"}, c.Types())

	comp, ok := c.Get("models", "gpt")
	require.True(t, ok)
	assert.Equal(t, "gpt", comp.ID)
	assert.Equal(t, "models", comp.Type)
	assert.Equal(t, "number", comp.Fields[0].Kind())

	list, ok := c.List("builtin_ai")
	require.True(t, ok)
	assert.Contains(t, list, "summarise")

	_, ok = c.List("memory")
	assert.False(t, ok)
	_, ok = c.Get("models", "claude")
	assert.False(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := catalog.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[`), 0o600))
	_, err = catalog.Load(path)
	assert.Error(t, err)
}

func TestAdd_Replaces(t *testing.T) {
	t.Parallel()

	c := catalog.New()
	c.Add(botdag.Component{ID: "x", Type: "models", Name: "old"})
	c.Add(botdag.Component{ID: "x", Type: "models", Name: "new"})

	comp, ok := c.Get("models", "x")
	require.True(t, ok)
	assert.Equal(t, "new", comp.Name)
}
