package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	toml "github.com/pelletier/go-toml/v2"
)

// Load reads a manifest from path. Files ending in .hcl are parsed as HCL;
// anything else is TOML.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		if err := hclsimple.Decode(filepath.Base(path), b, nil, &cfg); err != nil {
			return Config{}, fmt.Errorf("manifest %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("manifest %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("manifest %s: %w", path, err)
	}
	return cfg, nil
}
