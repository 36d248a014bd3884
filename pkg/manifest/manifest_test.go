package manifest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/joeydtaylor/steeze-bridge/pkg/manifest"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

const tomlManifest = `
[server]
definition_prefix = "api/definition/"
log_body_paths = ["/util/strcat", " "]

[[module]]
name = "util"

[[module]]
name = "math"
methods = ["get"]
timeout_ms = 250
hide_definition = true
`

const hclManifest = `
server {
  definition_prefix = "/defs"
  only_listed       = true
}

module "util" {
  methods = ["POST"]
}

module "math" {
  disabled = true
}
`

func TestLoadTOML(t *testing.T) {
	cfg, err := manifest.Load(writeFile(t, "bridge.toml", tomlManifest))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := manifest.Config{
		Server: &manifest.ServerSpec{
			DefinitionPrefix: "/api/definition",
			LogBodyPaths:     []string{"/util/strcat"},
		},
		Modules: []manifest.ModuleSpec{
			{Name: "util", Methods: []string{"GET", "POST"}},
			{Name: "math", Methods: []string{"GET"}, TimeoutMS: 250, HideDefinition: true},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load (-want, +got):\n%s", diff)
	}

	if !cfg.Serves("util") || !cfg.Serves("unlisted") {
		t.Error("Serves: listed and unlisted modules should be served")
	}
	spec, ok := cfg.Module("math")
	if !ok || spec.Allows("POST") || !spec.Allows("GET") {
		t.Errorf("Module(math): got %+v, %v", spec, ok)
	}
}

func TestLoadHCL(t *testing.T) {
	cfg, err := manifest.Load(writeFile(t, "bridge.hcl", hclManifest))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Server.DefinitionPrefix; got != "/defs" {
		t.Errorf("DefinitionPrefix: got %q, want /defs", got)
	}
	if cfg.Serves("math") {
		t.Error("Serves(math): disabled module is served")
	}
	if cfg.Serves("other") {
		t.Error("Serves(other): unlisted module served with only_listed")
	}
	spec, _ := cfg.Module("util")
	if diff := cmp.Diff([]string{"POST"}, spec.Methods); diff != "" {
		t.Errorf("util methods (-want, +got):\n%s", diff)
	}
}

func TestDefault(t *testing.T) {
	cfg := manifest.Default()
	if got := cfg.Server.DefinitionPrefix; got != manifest.DefaultDefinitionPrefix {
		t.Errorf("DefinitionPrefix: got %q", got)
	}
	spec, ok := cfg.Module("anything")
	if ok {
		t.Error("Module(anything): reported as listed")
	}
	if !spec.Allows("GET") || !spec.Allows("POST") {
		t.Errorf("default methods: got %v", spec.Methods)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"RootPrefix", "[server]\ndefinition_prefix = \"/\"\n", "root path"},
		{"NoName", "[[module]]\nmethods = [\"GET\"]\n", "name required"},
		{"BadName", "[[module]]\nname = \"a/b\"\n", "reserved character"},
		{"Dup", "[[module]]\nname = \"a\"\n[[module]]\nname = \"a\"\n", "already declared"},
		{"Method", "[[module]]\nname = \"a\"\nmethods = [\"PUT\"]\n", "not supported"},
		{"Timeout", "[[module]]\nname = \"a\"\ntimeout_ms = -1\n", "timeout_ms"},
		{"Syntax", "[[module]\n", "manifest"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := manifest.Load(writeFile(t, "bridge.toml", tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Load: got %v, want error containing %q", err, tc.want)
			}
		})
	}

	if _, err := manifest.Load(filepath.Join(t.TempDir(), "missing.toml")); !os.IsNotExist(err) {
		t.Errorf("Load missing: got %v, want not-exist", err)
	}
}
