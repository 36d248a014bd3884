package manifest

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// DefaultDefinitionPrefix is where module definitions are served unless the
// config says otherwise.
const DefaultDefinitionPrefix = "/api/definition"

// Config is the top-level bridge manifest.
type Config struct {
	Server  *ServerSpec  `toml:"server" hcl:"server,block"`
	Modules []ModuleSpec `toml:"module" hcl:"module,block"`
}

// ServerSpec holds settings shared by every module.
type ServerSpec struct {
	DefinitionPrefix   string   `toml:"definition_prefix" hcl:"definition_prefix,optional"`
	DisableDefinitions bool     `toml:"disable_definitions" hcl:"disable_definitions,optional"`
	OnlyListed         bool     `toml:"only_listed" hcl:"only_listed,optional"`        // serve only modules named below
	LogBodyPaths       []string `toml:"log_body_paths" hcl:"log_body_paths,optional"` // access-log JSON bodies for these paths
}

// Default returns the config used when no manifest file exists: every
// registered module, both methods, definitions enabled.
func Default() Config {
	c := Config{}
	_ = c.Validate()
	return c
}

// Validate normalizes c in place and reports the first problem found.
func (c *Config) Validate() error {
	if c.Server == nil {
		c.Server = &ServerSpec{}
	}
	if err := c.Server.normalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return c.validateModules()
}

// Module returns the spec for the named module. ok is false when the module is
// not listed, in which case the returned spec holds the defaults.
func (c *Config) Module(name string) (spec ModuleSpec, ok bool) {
	for _, m := range c.Modules {
		if m.Name == name {
			return m, true
		}
	}
	spec = ModuleSpec{Name: name}
	_ = spec.normalize()
	return spec, false
}

// Serves reports whether the named module should get routes.
func (c *Config) Serves(name string) bool {
	spec, ok := c.Module(name)
	if !ok {
		return c.Server == nil || !c.Server.OnlyListed
	}
	return !spec.Disabled
}

func (s *ServerSpec) normalize() error {
	p := strings.TrimSpace(s.DefinitionPrefix)
	if p == "" {
		p = DefaultDefinitionPrefix
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)
	if p == "/" {
		return errors.New("definition_prefix must not be the root path")
	}
	s.DefinitionPrefix = p

	paths := s.LogBodyPaths[:0]
	for _, lp := range s.LogBodyPaths {
		if lp = strings.TrimSpace(lp); lp != "" {
			paths = append(paths, lp)
		}
	}
	s.LogBodyPaths = paths
	return nil
}
