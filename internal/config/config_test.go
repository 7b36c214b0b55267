package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()
	if cfg.Port != 3007 {
		t.Errorf("port = %d, want 3007", cfg.Port)
	}
	if cfg.CacheBackend != "memory" || cfg.CacheTTLSecs != 3600 {
		t.Errorf("cache defaults = %s/%d", cfg.CacheBackend, cfg.CacheTTLSecs)
	}
	if cfg.DescKeyPrefix != 100 {
		t.Errorf("description key prefix = %d, want 100", cfg.DescKeyPrefix)
	}
	if !cfg.EnableCaching || !cfg.EnableAnonymization || !cfg.EnableFallback {
		t.Error("feature flags should default to enabled")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CACHE_TTL", "120")
	t.Setenv("ENABLE_PII_ANONYMIZATION", "false")
	t.Setenv("ENABLE_FALLBACK_RESPONSES", "no")

	cfg := defaults()
	loadEnv(cfg)
	if cfg.Port != 8080 {
		t.Errorf("port = %d", cfg.Port)
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("openai key = %q", cfg.OpenAIAPIKey)
	}
	if cfg.CacheTTLSecs != 120 {
		t.Errorf("cache ttl = %d", cfg.CacheTTLSecs)
	}
	if cfg.EnableAnonymization || cfg.EnableFallback {
		t.Error("boolean env overrides not applied")
	}
}

func TestEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("ENABLE_CACHING", "maybe")

	cfg := defaults()
	loadEnv(cfg)
	if cfg.Port != 3007 {
		t.Errorf("port = %d, want default preserved", cfg.Port)
	}
	if !cfg.EnableCaching {
		t.Error("unparseable boolean changed a default")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guidance-config.yaml")
	data := "port: 9000\nlogLevel: debug\ncacheBackend: bbolt\nenableCaching: false\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := defaults()
	loadFile(cfg, path)
	if cfg.Port != 9000 || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.CacheBackend != "bbolt" {
		t.Errorf("cache backend = %q", cfg.CacheBackend)
	}
	if cfg.EnableCaching {
		t.Error("file override not applied to feature flag")
	}
	// Untouched keys keep their defaults.
	if cfg.CacheTTLSecs != 3600 {
		t.Errorf("cache ttl = %d, want default", cfg.CacheTTLSecs)
	}
}

func TestLoadFileMissingIsIgnored(t *testing.T) {
	cfg := defaults()
	loadFile(cfg, filepath.Join(t.TempDir(), "absent.yaml"))
	if cfg.Port != 3007 {
		t.Errorf("missing file changed defaults: %+v", cfg)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guidance-config.yaml")
	if err := os.WriteFile(path, []byte("cacheTtlSeconds: 3600\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Runtime, 1)
	if err := Watch(ctx, path, func(rt Runtime) {
		select {
		case reloaded <- rt:
		default:
		}
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(path, []byte("cacheTtlSeconds: 60\nenableCaching: false\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case rt := <-reloaded:
		if rt.CacheTTLSecs != 60 {
			t.Errorf("cache ttl = %d, want 60", rt.CacheTTLSecs)
		}
		if rt.EnableCaching {
			t.Error("reloaded flag not applied")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}
