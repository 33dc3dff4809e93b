package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaultsWhenNothingElseSet(t *testing.T) {
	cfg, err := Load("", Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBURI != "./kampus-data" || cfg.GraphName != "kampus" || cfg.Verbose {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kampus.json")
	if err := os.WriteFile(path, []byte(`{"db_uri": "/data/from-file", "graph": "filegraph"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBURI != "/data/from-file" || cfg.GraphName != "filegraph" {
		t.Fatalf("expected file values, got %+v", cfg)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kampus.json")
	if err := os.WriteFile(path, []byte(`{"db_uri": "/data/from-file"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("KAMPUS_DB_URI", "/data/from-env")

	cfg, err := Load(path, Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBURI != "/data/from-env" {
		t.Fatalf("expected env to win over file, got %q", cfg.DBURI)
	}
}

func TestLoadFlagOverridesEverything(t *testing.T) {
	t.Setenv("KAMPUS_DB_URI", "/data/from-env")

	cfg, err := Load("", Overrides{DBURI: "/data/from-flag", DBURISet: true})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBURI != "/data/from-flag" {
		t.Fatalf("expected flag to win over env, got %q", cfg.DBURI)
	}
}

func TestLoadMissingConfigFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"), Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBURI != "./kampus-data" {
		t.Fatalf("expected defaults when config file is absent, got %+v", cfg)
	}
}
