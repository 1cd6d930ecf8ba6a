package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSiteConfigs(t *testing.T) {
	dir := t.TempDir()
	site := `id: test-broker
name: Test Broker
website: https://www.testbroker.example.com
selector_groups:
  - card: ".card"
    fields:
      title: ".t"
      price: ".p"
`
	if err := os.WriteFile(filepath.Join(dir, "test-broker.yaml"), []byte(site), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	// Non-yaml files are ignored
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	// Files without a site id are skipped rather than registered under ""
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: No Id Broker\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	t.Setenv("SITES_DIR", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.Sites) != 1 {
		t.Fatalf("expected 1 site, got %d", len(cfg.Sites))
	}
	if _, ok := cfg.Sites[""]; ok {
		t.Fatalf("id-less site must not register under the empty key")
	}

	s := cfg.Sites["test-broker"]
	if s == nil {
		t.Fatalf("site not keyed by id: %v", cfg.Sites)
	}
	if s.Name != "Test Broker" || s.Website != "https://www.testbroker.example.com" {
		t.Fatalf("unexpected site: %+v", s)
	}
	if len(s.SelectorGroups) != 1 || s.SelectorGroups[0].Card != ".card" {
		t.Fatalf("unexpected selector groups: %+v", s.SelectorGroups)
	}
	if s.SelectorGroups[0].Fields["title"] != ".t" {
		t.Fatalf("unexpected field selectors: %+v", s.SelectorGroups[0].Fields)
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("SITES_DIR", t.TempDir())
	t.Setenv("SYNC_WORKERS", "")
	t.Setenv("GRAPH_DB_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.SyncWorkers != 4 {
		t.Fatalf("expected default workers 4, got %d", cfg.SyncWorkers)
	}
	if cfg.GraphDBPath != "graph.db" {
		t.Fatalf("expected default graph path, got %q", cfg.GraphDBPath)
	}

	t.Setenv("SYNC_WORKERS", "8")
	t.Setenv("POLL_INTERVAL", "10s")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.SyncWorkers != 8 {
		t.Fatalf("expected 8 workers, got %d", cfg.SyncWorkers)
	}
	if cfg.PollInterval.Seconds() != 10 {
		t.Fatalf("expected 10s poll interval, got %s", cfg.PollInterval)
	}
}
