package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_PATH", "")
	t.Setenv("WORKER_COUNT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: got %q want %q", cfg.Port, "8080")
	}
	if cfg.StoragePath != "./storage" {
		t.Fatalf("StoragePath mismatch: got %q", cfg.StoragePath)
	}
	if cfg.DiffusionBaseURL != "http://localhost:7860" {
		t.Fatalf("DiffusionBaseURL mismatch: got %q", cfg.DiffusionBaseURL)
	}
	if cfg.WorkerCount != 1 {
		t.Fatalf("WorkerCount mismatch: got %d want 1", cfg.WorkerCount)
	}
	if cfg.QueueDepth != 16 {
		t.Fatalf("QueueDepth mismatch: got %d want 16", cfg.QueueDepth)
	}
	if cfg.GenerationTimeout != 600*time.Second {
		t.Fatalf("GenerationTimeout mismatch: got %v", cfg.GenerationTimeout)
	}
}

func TestLoadConfigHonorsExplicitValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("PORT", "1919")
	t.Setenv("STORAGE_PATH", "/srv/artifacts")
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("JOB_QUEUE_DEPTH", "64")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("DatabaseURL mismatch: got %q", cfg.DatabaseURL)
	}
	if cfg.Port != "1919" {
		t.Fatalf("Port mismatch: got %q", cfg.Port)
	}
	if cfg.StoragePath != "/srv/artifacts" {
		t.Fatalf("StoragePath mismatch: got %q", cfg.StoragePath)
	}
	if cfg.WorkerCount != 4 || cfg.QueueDepth != 64 {
		t.Fatalf("pool sizing mismatch: %d/%d", cfg.WorkerCount, cfg.QueueDepth)
	}
}

func TestLoadConfigRejectsBadPoolSizing(t *testing.T) {
	t.Setenv("WORKER_COUNT", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for WORKER_COUNT=0")
	}
}
