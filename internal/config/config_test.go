package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPipelineDefaults(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "")
	t.Setenv("CHUNK_OVERLAP", "")
	t.Setenv("CHUNK_WORKERS", "")
	t.Setenv("RAG_TOP_K", "")
	t.Setenv("MAX_CONTEXT_CHARS", "")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChunkSize != 1500 {
		t.Fatalf("expected default chunk size 1500, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 200 {
		t.Fatalf("expected default chunk overlap 200, got %d", cfg.ChunkOverlap)
	}
	if cfg.ChunkWorkers != 2 {
		t.Fatalf("expected default chunk workers 2, got %d", cfg.ChunkWorkers)
	}
	if cfg.RAGTopK != 5 {
		t.Fatalf("expected default top k 5, got %d", cfg.RAGTopK)
	}
	if cfg.MaxContextChars != 8000 {
		t.Fatalf("expected default context budget 8000, got %d", cfg.MaxContextChars)
	}
}

func TestLoadParsesEnvOverrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "900")
	t.Setenv("EMBED_DIMENSION", "1024")
	t.Setenv("LLM_TIMEOUT_SECONDS", "10")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChunkSize != 900 {
		t.Fatalf("expected chunk size 900, got %d", cfg.ChunkSize)
	}
	if cfg.EmbedDimension != 1024 {
		t.Fatalf("expected embed dimension 1024, got %d", cfg.EmbedDimension)
	}
	if cfg.LLMTimeoutSeconds != 10 {
		t.Fatalf("expected llm timeout 10, got %d", cfg.LLMTimeoutSeconds)
	}
}

func TestLoadFallsBackOnBadInt(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChunkSize != 1500 {
		t.Fatalf("expected fallback chunk size 1500, got %d", cfg.ChunkSize)
	}
}

func TestYAMLOverlayWinsOverEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "chunk_size: 800\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	t.Setenv("CHUNK_SIZE", "1200")
	t.Setenv("CHUNK_OVERLAP", "100")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChunkSize != 800 {
		t.Fatalf("expected overlay chunk size 800, got %d", cfg.ChunkSize)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected overlay log level debug, got %q", cfg.LogLevel)
	}
	// Keys absent from the overlay keep their environment values.
	if cfg.ChunkOverlap != 100 {
		t.Fatalf("expected env chunk overlap 100, got %d", cfg.ChunkOverlap)
	}
}

func TestYAMLOverlayErrors(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing overlay file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("chunk_size: [not scalar"), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed overlay file")
	}
}
