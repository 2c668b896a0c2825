/*
Package cli implements the engage subcommands.

Each command constructs the engagement services it needs explicitly (no
package-level singletons): the kv store, the recently-viewed cache and the
trending ranker are built, initialized once, and passed down.
*/
package cli

import (
	"log"

	"github.com/openshelf/engage/internal/config"
	"github.com/openshelf/engage/internal/history"
	"github.com/openshelf/engage/internal/kv"
	"github.com/openshelf/engage/internal/trending"
)

// services bundles the engagement state layer for CLI commands.
type services struct {
	cfg    *config.Config
	store  kv.Store
	cache  *history.Cache
	trends *trending.Ranker
}

// openServices loads configuration and hydrates the engagement state.
//
// Storage failures disable persistence but never abort the command; the
// services come up empty instead.
func openServices() (*services, error) {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return nil, err
	}

	store := kv.NewSQLiteStore(cfg.DatabasePath)
	if err := store.Init(); err != nil {
		log.Printf("Warning: running without persistence: %v", err)
	}

	cache := history.NewCache(store, cfg.History.Capacity)
	cache.Initialize()

	trends := trending.NewRanker(store)
	trends.Initialize()

	return &services{
		cfg:    cfg,
		store:  store,
		cache:  cache,
		trends: trends,
	}, nil
}

// Close releases the underlying store.
func (s *services) Close() {
	if err := s.store.Close(); err != nil {
		log.Printf("Warning: failed to close store: %v", err)
	}
}
