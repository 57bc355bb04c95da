package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/textra/internal/cli"
	"horse.fit/textra/internal/config"
	"horse.fit/textra/internal/db"
	"horse.fit/textra/internal/logging"
	"horse.fit/textra/internal/metrics"
	"horse.fit/textra/internal/textra"
	"horse.fit/textra/internal/translation"
)

const cacheConnectTimeout = 10 * time.Second

// loadRuntime loads the env file, configuration and logger shared by the
// commands that talk to the service.
func loadRuntime(envLoader *cli.EnvLoader) (*config.Config, zerolog.Logger, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

// newManager wires the client, the optional cache and metrics into a
// translation manager. The returned close func releases the cache pool.
func newManager(cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics, useCache bool) (*translation.Manager, func()) {
	clientCfg := cfg.ClientConfig()
	if m != nil {
		clientCfg.Observer = m
	}
	client := textra.NewClient(clientCfg, logger)

	var store translation.Store
	closeFn := func() {}
	if useCache && cfg.CacheEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), cacheConnectTimeout)
		defer cancel()

		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("translation cache unavailable, continuing without it")
		} else {
			store = pool
			closeFn = func() { _ = pool.Close() }
		}
	}

	manager := translation.NewManager(client, store, logger)
	if m != nil {
		manager.WithCacheObserver(m)
	}
	return manager, closeFn
}
