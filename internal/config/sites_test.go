package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSiteRegistryDefaults(t *testing.T) {
	registry, err := LoadSiteRegistry("")
	if err != nil {
		t.Fatalf("LoadSiteRegistry() error = %v", err)
	}
	if _, ok := registry.Get("ilmtal"); !ok {
		t.Fatalf("expected built-in ilmtal site")
	}
	if _, ok := registry.Get("schwand"); !ok {
		t.Fatalf("expected built-in schwand site")
	}
}

func TestLoadSiteRegistryFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.yaml")
	contents := `sites:
  - key: nordwerk
    name: Pyrolyse Nordwerk
    tokens: [nordwerk, nw]
    profile: dual-reactor
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write sites file: %v", err)
	}

	registry, err := LoadSiteRegistry(path)
	if err != nil {
		t.Fatalf("LoadSiteRegistry() error = %v", err)
	}
	site, ok := registry.ResolveUploadSite("nw_export_2024.csv")
	if !ok || site.Key != "nordwerk" {
		t.Fatalf("resolve = %+v, %v", site, ok)
	}
	// the override replaces the built-in table entirely
	if _, ok := registry.Get("ilmtal"); ok {
		t.Fatalf("built-in site should not survive an override file")
	}
}

func TestLoadSiteRegistryRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.yaml")
	if err := os.WriteFile(path, []byte("sites:\n  - key: broken\n"), 0o600); err != nil {
		t.Fatalf("write sites file: %v", err)
	}
	if _, err := LoadSiteRegistry(path); err == nil {
		t.Fatalf("expected validation error for site without tokens")
	}
}

func TestLoadSiteRegistryMissingFile(t *testing.T) {
	if _, err := LoadSiteRegistry(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
