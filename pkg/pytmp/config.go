package pytmp

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultMaxRecursionDepth bounds compile-time function expansion when
// no other limit is configured.
const DefaultMaxRecursionDepth = 500

// ProjectConfig represents a pytmp.toml file.
type ProjectConfig struct {
	// MaxRecursionDepth bounds compile-time expansion.
	MaxRecursionDepth int `toml:"max_recursion_depth,omitempty"`

	// OutputDir receives generated headers. Relative paths resolve
	// against the directory containing pytmp.toml.
	OutputDir string `toml:"output_dir,omitempty"`

	// Entry names the default entry point function.
	Entry string `toml:"entry,omitempty"`
}

// LoadProjectConfig loads a pytmp.toml file from the given path.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	var config ProjectConfig
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if config.MaxRecursionDepth < 0 {
		return nil, fmt.Errorf("parsing %s: max_recursion_depth must be positive", path)
	}
	return &config, nil
}

// FindProjectConfig searches for a pytmp.toml file starting from dir and
// walking up to parent directories. Returns the path to pytmp.toml and
// the parsed config, or ("", nil, nil) if not found.
func FindProjectConfig(dir string) (string, *ProjectConfig, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, "pytmp.toml")
		if _, err := os.Stat(path); err == nil {
			config, err := LoadProjectConfig(path)
			if err != nil {
				return "", nil, err
			}
			if config.OutputDir != "" && !filepath.IsAbs(config.OutputDir) {
				config.OutputDir = filepath.Join(dir, config.OutputDir)
			}
			return path, config, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}
