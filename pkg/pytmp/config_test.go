package pytmp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pytmp.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
max_recursion_depth = 100
output_dir = "gen"
entry = "main"
`), 0644))

	config, err := LoadProjectConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 100, config.MaxRecursionDepth)
	assert.Equal(t, "gen", config.OutputDir)
	assert.Equal(t, "main", config.Entry)
}

func TestLoadProjectConfigRejectsNegativeDepth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pytmp.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_recursion_depth = -1\n"), 0644))

	_, err := LoadProjectConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_recursion_depth")
}

func TestFindProjectConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pytmp.toml"), []byte(`output_dir = "gen"`), 0644))

	path, config, err := FindProjectConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "pytmp.toml"), path)
	require.NotNil(t, config)

	// Relative output_dir resolves against the config's own directory,
	// not the directory the search started from.
	assert.Equal(t, filepath.Join(root, "gen"), config.OutputDir)
}

func TestFindProjectConfigAbsent(t *testing.T) {
	path, config, err := FindProjectConfig(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Nil(t, config)
}
