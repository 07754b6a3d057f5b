package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_ReadsEnv(t *testing.T) {
	t.Setenv("STREAMPLAN_ADDR", "0.0.0.0:9000")
	t.Setenv("STREAMPLAN_CACHE_SIZE", "12")

	cfg := Default()
	if cfg.Addr != "0.0.0.0:9000" {
		t.Fatalf("addr: want %q, got %q", "0.0.0.0:9000", cfg.Addr)
	}
	if cfg.Cache.Size != 12 {
		t.Fatalf("cache size: want %d, got %d", 12, cfg.Cache.Size)
	}
	if cfg.Solver.RarityThreshold != 4 || cfg.Solver.DominanceOrder != "price" {
		t.Fatalf("solver defaults: got %+v", cfg.Solver)
	}
}

func TestLoad_YAMLOverridesAndExpandsEnv(t *testing.T) {
	t.Setenv("STREAMPLAN_TEST_DSN", "postgres://planner@db/streamplan")

	dir := t.TempDir()
	path := filepath.Join(dir, "streamplan.yaml")
	yml := `
addr: ":8081"
catalog:
  source: sql
  driver: postgres
  dsn: ${STREAMPLAN_TEST_DSN}
solver:
  timeout: 2s
  dominance_order: catalog
  max_concurrent: 8
cors:
  allowed_origins: ["https://example.org"]
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8081" {
		t.Fatalf("addr: want %q, got %q", ":8081", cfg.Addr)
	}
	if cfg.Catalog.DSN != "postgres://planner@db/streamplan" {
		t.Fatalf("dsn: got %q", cfg.Catalog.DSN)
	}
	if cfg.Solver.Timeout != 2*time.Second {
		t.Fatalf("timeout: want %v, got %v", 2*time.Second, cfg.Solver.Timeout)
	}
	if cfg.Solver.MaxExpansions != 2_000_000 {
		t.Fatalf("max expansions default: got %d", cfg.Solver.MaxExpansions)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 {
		t.Fatalf("cors: got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_RejectsUnknownSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("catalog:\n  source: ftp\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Catalog.Source != SourceCSV {
		t.Fatalf("source: want %q, got %q", SourceCSV, cfg.Catalog.Source)
	}
}
