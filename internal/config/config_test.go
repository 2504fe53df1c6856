package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("database.driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Importer.BatchSize != 25 {
		t.Errorf("importer.batch_size = %d, want 25", cfg.Importer.BatchSize)
	}
	if cfg.Importer.MaxInsertErrors != 5 {
		t.Errorf("importer.max_insert_errors = %d, want 5", cfg.Importer.MaxInsertErrors)
	}
	if cfg.Importer.MaxPerSource != 1000 {
		t.Errorf("importer.max_per_source = %d, want 1000", cfg.Importer.MaxPerSource)
	}
	if cfg.Recovery.StuckAfter != time.Hour {
		t.Errorf("recovery.stuck_after = %v, want 1h", cfg.Recovery.StuckAfter)
	}
	if cfg.Storage.Bucket != "trail-imports" {
		t.Errorf("storage.bucket = %q, want trail-imports", cfg.Storage.Bucket)
	}
	if cfg.Sources.Dump.Enabled {
		t.Error("sources.dump.enabled should default to false")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
  mode: release
database:
  driver: postgres
  host: db.internal
  name: trails_prod
importer:
  batch_size: 50
recovery:
  stuck_after: 30m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Mode != "release" {
		t.Errorf("server.mode = %q, want release", cfg.Server.Mode)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("database.driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Importer.BatchSize != 50 {
		t.Errorf("importer.batch_size = %d, want 50", cfg.Importer.BatchSize)
	}
	if cfg.Recovery.StuckAfter != 30*time.Minute {
		t.Errorf("recovery.stuck_after = %v, want 30m", cfg.Recovery.StuckAfter)
	}
	// Unset keys keep their defaults
	if cfg.Importer.MaxPerSource != 1000 {
		t.Errorf("importer.max_per_source = %d, want default 1000", cfg.Importer.MaxPerSource)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_HOST", "env-host")
	t.Setenv("NPS_API_KEY", "test-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Host != "env-host" {
		t.Errorf("database.host = %q, want env-host", cfg.Database.Host)
	}
	if cfg.Sources.NPS.APIKey != "test-key" {
		t.Errorf("sources.nps.api_key = %q, want test-key", cfg.Sources.NPS.APIKey)
	}
}

func TestDatabaseDSN(t *testing.T) {
	pg := &DatabaseConfig{
		Driver:   "postgres",
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Name:     "greentrails",
		SSLMode:  "disable",
	}
	want := "host=localhost port=5432 user=postgres password=secret dbname=greentrails sslmode=disable"
	if got := pg.DSN(); got != want {
		t.Errorf("postgres dsn = %q, want %q", got, want)
	}

	lite := &DatabaseConfig{Driver: "sqlite", Path: "./data/trails.db"}
	if got := lite.DSN(); got != "./data/trails.db" {
		t.Errorf("sqlite dsn = %q, want path", got)
	}
}
