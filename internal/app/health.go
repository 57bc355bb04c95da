package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"horse.fit/textra/internal/cli"
	"horse.fit/textra/internal/config"
	"horse.fit/textra/internal/db"
	"horse.fit/textra/internal/textra"
	"horse.fit/textra/internal/translation"
)

// liveCheckText is sent by "health --live" on the general ja -> en engine.
const liveCheckText = "こんにちは"

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Health check timeout")
	live := fs.Bool("live", false, "Send one short signed translation to verify the credentials with the service")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, err := loadRuntime(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := textra.NewClient(cfg.ClientConfig(), logger)
	if err := checkCredentials(ctx, os.Stdout, cfg, client, *live); err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}

	if !cfg.CacheEnabled() {
		fmt.Println("ok: translation cache disabled")
		return 0
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}

	logger.Info().
		Dur("timeout", *timeout).
		Msg("database health check passed")
	fmt.Println("ok: database ping successful")
	return 0
}

// checkCredentials reports whether credentials are set. With live it also
// sends a signed translation so the service itself accepts them.
func checkCredentials(ctx context.Context, w io.Writer, cfg *config.Config, translator translation.Translator, live bool) error {
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}
	if !live {
		fmt.Fprintln(w, "ok: credentials present (use --live to verify them with the service)")
		return nil
	}

	opts, err := cfg.Options(string(textra.ModeGeneral), "ja", "en")
	if err != nil {
		return err
	}
	res := translator.Translate(ctx, opts, liveCheckText)
	if !res.OK() {
		return fmt.Errorf("live translation failed (%s): %w", res.Kind(), res.Err())
	}
	fmt.Fprintln(w, "ok: credentials accepted by the translation service")
	return nil
}
