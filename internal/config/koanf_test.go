// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate runs the test in an empty directory with no config file.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, "")
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "saveeat.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

// TestDefaultConfig verifies that defaultConfig() returns valid defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Messaging.Enabled {
		t.Error("Messaging should be in-process by default")
	}
	if cfg.Recommend.Serving.DefaultTopK != 10 {
		t.Errorf("Recommend.Serving.DefaultTopK = %d, want 10", cfg.Recommend.Serving.DefaultTopK)
	}
	if cfg.Recommend.Training.Enabled {
		t.Error("in-process training should be disabled by default")
	}
	if got := cfg.Server.Addr(); got != "0.0.0.0:8000" {
		t.Errorf("Addr() = %q", got)
	}
}

// TestEnvTransformFunc verifies environment variable mapping
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"SAVEEAT_HTTP_PORT", "server.port"},
		{"saveeat_log_level", "logging.level"},
		{"DUCKDB_PATH", "database.path"},
		{"CHECKPOINT_DIR", "recommend.serving.checkpoint_dir"},
		{"NATS_URL", "messaging.url"},
		{"NATS_EMBEDDED", "messaging.embedded_server"},
		{"WAL_ENABLED", "wal.enabled"},
		{"USE_TEXT_EMBEDDINGS", "recommend.model.use_text_embeddings"},
		{"PATH", ""},
		{"HOME", ""},
		{"SAVEEAT_UNKNOWN", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	dir := isolate(t)

	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want empty string", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	if got := findConfigFile(); got != "config.yaml" {
		t.Errorf("findConfigFile() = %q, want config.yaml", got)
	}

	custom := writeConfig(t, dir, "server:\n  port: 9001\n")
	t.Setenv(ConfigPathEnvVar, custom)
	if got := findConfigFile(); got != custom {
		t.Errorf("findConfigFile() = %q, want %q", got, custom)
	}

	t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
	if got := findConfigFile(); got != "config.yaml" {
		t.Errorf("findConfigFile() = %q, want fallback config.yaml", got)
	}
}

// TestLoadWithKoanfEnvVars tests loading configuration from environment variables
func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolate(t)
	t.Setenv("SAVEEAT_HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("RERANKER_HIDDEN_DIMS", "64,32")
	t.Setenv("NATS_SUBSCRIBERS", "3")
	t.Setenv("WAL_ENABLED", "false")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Recommend.Serving.CacheTTL != 90*time.Second {
		t.Errorf("Recommend.Serving.CacheTTL = %v, want 90s", cfg.Recommend.Serving.CacheTTL)
	}
	if dims := cfg.Recommend.Reranker.HiddenDims; len(dims) != 2 || dims[0] != 64 || dims[1] != 32 {
		t.Errorf("Recommend.Reranker.HiddenDims = %v, want [64 32]", dims)
	}
	if cfg.Messaging.SubscribersCount != 3 {
		t.Errorf("Messaging.SubscribersCount = %d, want 3", cfg.Messaging.SubscribersCount)
	}
	if cfg.WAL.Enabled {
		t.Error("WAL.Enabled should be false")
	}

	// Defaults survive for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Recommend.Model.EmbeddingDim != 128 {
		t.Errorf("Recommend.Model.EmbeddingDim = %d, want 128 (default)", cfg.Recommend.Model.EmbeddingDim)
	}
}

// TestLoadConfigFile tests loading configuration from an explicit YAML file
func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
server:
  port: 8081
  environment: production
database:
  path: /tmp/recipes.duckdb
messaging:
  enabled: true
  embedded_server: false
  url: nats://nats:4222
recommend:
  model:
    embedding_dim: 64
    num_layers: 3
  training:
    eval_top_k: [5, 10]
  serving:
    checkpoint_dir: /models
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8081 || !cfg.IsProduction() {
		t.Errorf("server section not applied: %+v", cfg.Server)
	}
	if cfg.Database.Path != "/tmp/recipes.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if !cfg.Messaging.Enabled || cfg.Messaging.URL != "nats://nats:4222" {
		t.Errorf("messaging section not applied: %+v", cfg.Messaging)
	}
	if cfg.Recommend.Model.EmbeddingDim != 64 || cfg.Recommend.Model.NumLayers != 3 {
		t.Errorf("model section not applied: %+v", cfg.Recommend.Model)
	}
	if got := cfg.Recommend.Training.EvalTopK; len(got) != 2 || got[0] != 5 {
		t.Errorf("EvalTopK = %v, want [5 10]", got)
	}
	if cfg.Recommend.Serving.CheckpointDir != "/models" {
		t.Errorf("CheckpointDir = %q", cfg.Recommend.Serving.CheckpointDir)
	}
	// Untouched nested defaults remain
	if cfg.Recommend.Model.HiddenDim != 256 {
		t.Errorf("HiddenDim = %d, want 256 (default)", cfg.Recommend.Model.HiddenDim)
	}
}

// TestLoadEnvOverridesFile verifies precedence ENV > File > Defaults
func TestLoadEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "server:\n  port: 8081\nlogging:\n  level: warn\n")
	t.Setenv("HTTP_PORT", "9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 from env", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn from file", cfg.Logging.Level)
	}
}

// TestLoadMissingExplicitFile verifies an explicit path must exist
func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	if _, err := Load("/non/existent/saveeat.yaml"); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

// TestLoadValidation verifies invalid values are rejected
func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"invalid port", map[string]string{"HTTP_PORT": "70000"}, "HTTP_PORT"},
		{"invalid log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"invalid log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"invalid environment", map[string]string{"ENVIRONMENT": "qa"}, "ENVIRONMENT"},
		{"half import pair", map[string]string{"IMPORT_RECIPES_CSV": "recipes.csv"}, "IMPORT_"},
		{"bad nats url", map[string]string{"NATS_ENABLED": "true", "NATS_EMBEDDED": "false", "NATS_URL": "http://x"}, "messaging"},
		{"bad wal interval", map[string]string{"WAL_ENABLED": "true", "WAL_RETRY_INTERVAL": "1ms"}, "wal"},
		{"bad model depth", map[string]string{"NUM_LAYERS": "0"}, "recommend"},
		{"zero rate limit", map[string]string{"RATE_LIMIT_REQUESTS": "0"}, "RATE_LIMIT_REQUESTS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

// TestDisabledRateLimitSkipsLimits verifies limits are ignored when disabled
func TestDisabledRateLimitSkipsLimits(t *testing.T) {
	isolate(t)
	t.Setenv("DISABLE_RATE_LIMIT", "true")
	t.Setenv("RATE_LIMIT_REQUESTS", "0")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if !cfg.Security.RateLimitDisabled {
		t.Error("RateLimitDisabled should be true")
	}
}

// TestLoggingConversion verifies the logging section maps onto logging.Config
func TestLoggingConversion(t *testing.T) {
	lc := LoggingConfig{Level: "debug", Format: "console", Caller: true}.ToLogging()
	if lc.Level != "debug" || lc.Format != "console" || !lc.Caller || !lc.Timestamp {
		t.Errorf("ToLogging() = %+v", lc)
	}
}
