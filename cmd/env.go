package cmd

import (
	"fmt"

	"github.com/Vishruth-S/Project-Beaver/internal"
)

// appEnv bundles the wired components every command needs: config, the
// durable store and the stores/client built on top of it.
type appEnv struct {
	cfg     internal.Config
	kv      *internal.KVStore
	store   *internal.SessionStore
	limiter *internal.RateLimiter
	client  *internal.Client
}

// openEnv loads config, opens the durable store, runs the one-shot legacy
// migration and wires the components. Callers must Close().
func openEnv() (*appEnv, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	kv, err := internal.OpenKVStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}

	store := internal.NewSessionStore(kv)

	if err := internal.NewMigrator(kv, store).Run(); err != nil {
		internal.LogWarn("Legacy migration failed: %v", err)
	}

	return &appEnv{
		cfg:     cfg,
		kv:      kv,
		store:   store,
		limiter: internal.NewRateLimiter(kv),
		client:  internal.NewClient(cfg.APIBaseURL, cfg.QueryTimeout()),
	}, nil
}

func (e *appEnv) Close() {
	if err := e.kv.Close(); err != nil {
		internal.LogWarn("Failed to close local storage: %v", err)
	}
}
