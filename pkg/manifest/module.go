package manifest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/joeydtaylor/steeze-bridge/pkg/module"
)

// ModuleSpec tunes how one module is exposed.
type ModuleSpec struct {
	Name           string   `toml:"name" hcl:"name,label"`
	Methods        []string `toml:"methods" hcl:"methods,optional"` // subset of GET, POST
	TimeoutMS      int      `toml:"timeout_ms" hcl:"timeout_ms,optional"`
	Disabled       bool     `toml:"disabled" hcl:"disabled,optional"`
	HideDefinition bool     `toml:"hide_definition" hcl:"hide_definition,optional"`
}

// Allows reports whether calls through the given HTTP method are routed.
func (m ModuleSpec) Allows(method string) bool {
	for _, x := range m.Methods {
		if x == method {
			return true
		}
	}
	return false
}

// normalize method names and apply defaults
func (m *ModuleSpec) normalize() error {
	m.Name = strings.TrimSpace(m.Name)
	if err := module.ValidName(m.Name); err != nil {
		return err
	}
	if len(m.Methods) == 0 {
		m.Methods = []string{http.MethodGet, http.MethodPost}
	}
	seen := map[string]bool{}
	methods := make([]string, 0, len(m.Methods))
	for _, x := range m.Methods {
		x = strings.ToUpper(strings.TrimSpace(x))
		if !seen[x] {
			seen[x] = true
			methods = append(methods, x)
		}
	}
	m.Methods = methods
	return nil
}

func (m *ModuleSpec) validate() error {
	for _, x := range m.Methods {
		switch x {
		case http.MethodGet, http.MethodPost:
		default:
			return fmt.Errorf("method %q not supported", x)
		}
	}
	if m.TimeoutMS < 0 {
		return errors.New("timeout_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateModules() error {
	seen := map[string]int{}
	for i := range c.Modules {
		if err := c.Modules[i].normalize(); err != nil {
			return fmt.Errorf("module %d: %w", i, err)
		}
		name := c.Modules[i].Name
		if j, dup := seen[name]; dup {
			return fmt.Errorf("module %d (%s): already declared as module %d", i, name, j)
		}
		seen[name] = i
		if err := c.Modules[i].validate(); err != nil {
			return fmt.Errorf("module %d (%s): %w", i, name, err)
		}
	}
	return nil
}
