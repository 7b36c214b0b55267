package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Runtime holds the subset of settings that may change while the service is
// running. Watch re-reads the config file on change and hands a fresh
// Runtime to the registered callback; connection-level settings (ports,
// credentials) require a restart and are deliberately excluded.
type Runtime struct {
	LogLevel            string
	CacheTTLSecs        int
	EnableCaching       bool
	EnableAnonymization bool
	EnableFallback      bool
}

func (c *Config) runtime() Runtime {
	return Runtime{
		LogLevel:            c.LogLevel,
		CacheTTLSecs:        c.CacheTTLSecs,
		EnableCaching:       c.EnableCaching,
		EnableAnonymization: c.EnableAnonymization,
		EnableFallback:      c.EnableFallback,
	}
}

// Watch monitors the config file and invokes apply with the reloaded
// runtime settings whenever it is written. Returns immediately if the
// watcher cannot be created; the background goroutine stops when ctx is
// cancelled. The file not existing yet is fine — a later create triggers
// a reload like any other write.
func Watch(ctx context.Context, path string, apply func(Runtime)) error {
	if path == "" {
		path = DefaultConfigFile
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if filepath.Clean(evt.Name) != target {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				// Re-resolve the full layered config so env overrides
				// still take precedence over the edited file.
				cfg := defaults()
				loadFile(cfg, path)
				loadEnv(cfg)
				apply(cfg.runtime())
			case <-watcher.Errors:
				// Watcher errors are non-fatal; the current config stays
				// in effect until the next successful event.
			}
		}
	}()

	// Watch the directory rather than the file so atomic replace
	// (write temp + rename) is still observed.
	dir := filepath.Dir(target)
	if dir == "" {
		dir = "."
	}
	return watcher.Add(dir)
}
