// Package module groups exported functions under a module name and keeps the
// process-wide set of modules the server exposes.
package module

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/joeydtaylor/steeze-bridge/pkg/signature"
)

// ErrDuplicate is reported when a module or export name is registered twice.
var ErrDuplicate = errors.New("module: duplicate name")

// Module is a named set of exported functions.
type Module struct {
	name    string
	exports []*signature.Func
	index   map[string]*signature.Func
}

// Definition maps each export name to its ordered parameter names.
type Definition map[string]signature.Signature

// New returns an empty module. It panics if name is not a valid path segment.
func New(name string) *Module {
	if err := ValidName(name); err != nil {
		panic(fmt.Sprintf("module: %v", err))
	}
	return &Module{name: name, index: map[string]*signature.Func{}}
}

// Export adds fn under name with the given parameter names and returns m so
// calls can be chained. It panics if the descriptor is invalid or name is
// already exported.
func (m *Module) Export(name string, fn any, params ...string) *Module {
	if err := ValidName(name); err != nil {
		panic(fmt.Sprintf("module %s: %v", m.name, err))
	}
	if _, ok := m.index[name]; ok {
		panic(fmt.Sprintf("module %s: %v: export %q", m.name, ErrDuplicate, name))
	}
	f := signature.Must(name, fn, params...)
	m.exports = append(m.exports, f)
	m.index[name] = f
	return m
}

// Name returns the module name used as the first route segment.
func (m *Module) Name() string { return m.name }

// Exports returns the exported functions in the order they were added.
func (m *Module) Exports() []*signature.Func {
	out := make([]*signature.Func, len(m.exports))
	copy(out, m.exports)
	return out
}

// Lookup returns the export with the given name.
func (m *Module) Lookup(name string) (*signature.Func, bool) {
	f, ok := m.index[name]
	return f, ok
}

// Definition returns the manifest of m, built from the same descriptors the
// server binds requests with.
func (m *Module) Definition() Definition {
	def := make(Definition, len(m.exports))
	for _, f := range m.exports {
		def[f.Name()] = f.Signature()
	}
	return def
}

// ValidName reports whether s can be used as a module or export name, which
// must be a single non-empty URL path segment.
func ValidName(s string) error {
	switch {
	case strings.TrimSpace(s) == "":
		return errors.New("name required")
	case strings.ContainsAny(s, "/?#{}*"):
		return fmt.Errorf("name %q contains a reserved character", s)
	case s == "." || s == "..":
		return fmt.Errorf("name %q is not a path segment", s)
	}
	return nil
}

var (
	mu       sync.RWMutex
	registry = map[string]*Module{}
)

// Register makes m available to the server under its name.
func Register(m *Module) error {
	if m == nil {
		return errors.New("module: nil module")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[m.name]; dup {
		return fmt.Errorf("%w: module %q", ErrDuplicate, m.name)
	}
	registry[m.name] = m
	return nil
}

// MustRegister is like Register but panics on error. It is meant for package
// init functions.
func MustRegister(m *Module) {
	if err := Register(m); err != nil {
		panic(err)
	}
}

// Lookup retrieves a registered module by name.
func Lookup(name string) (*Module, bool) {
	mu.RLock()
	defer mu.RUnlock()
	m, ok := registry[name]
	return m, ok
}

// All returns every registered module sorted by name.
func All() []*Module {
	mu.RLock()
	out := make([]*Module, 0, len(registry))
	for _, m := range registry {
		out = append(out, m)
	}
	mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
