package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"horse.fit/textra/internal/cli"
	"horse.fit/textra/internal/translation"
)

const maxStdinBytes = 1 << 20

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	mode := fs.String("mode", "", "Engine mode: general, patent or patent_claim (default TEXTRA_MODE)")
	from := fs.String("from", "", "Source language, or \"auto\" to detect (default TEXTRA_SOURCE_LANG)")
	to := fs.String("to", "", "Target language (default TEXTRA_TARGET_LANG)")
	timeout := fs.Duration("timeout", 15*time.Minute, "Command timeout")
	noCache := fs.Bool("no-cache", false, "Do not read or write the translation cache")
	force := fs.Bool("force", false, "Retranslate even when a cached translation exists")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *timeout <= 0 {
		fmt.Fprintln(os.Stderr, "--timeout must be > 0")
		return 2
	}

	text, err := readInput(fs.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read input: %v\n", err)
		return 2
	}
	if text == "" {
		fmt.Fprintln(os.Stderr, "translate requires text as arguments or on stdin")
		return 2
	}

	cfg, logger, err := loadRuntime(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := cfg.RequireCredentials(); err != nil {
		fmt.Fprintf(os.Stderr, "Missing credentials: %v\n", err)
		return 1
	}

	opts, err := cfg.Options(*mode, *from, *to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid options: %v\n", err)
		return 2
	}

	manager, closeCache := newManager(cfg, logger, nil, !*noCache)
	defer closeCache()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	outcome := manager.Translate(ctx, opts, text, translation.RunOptions{Force: *force})
	if !outcome.OK() {
		fmt.Fprintf(os.Stderr, "Translate failed (%s): %v\n", outcome.Kind(), outcome.Err())
		return 1
	}

	logger.Debug().
		Str("source_lang", outcome.SourceLang).
		Str("target_lang", outcome.TargetLang).
		Bool("cached", outcome.Cached).
		Dur("latency", outcome.Latency).
		Msg("translated")
	fmt.Println(outcome.Text)
	return 0
}

// readInput joins positional arguments, falling back to stdin when none
// are given.
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	if stdin == nil {
		return "", nil
	}
	raw, err := io.ReadAll(io.LimitReader(stdin, maxStdinBytes+1))
	if err != nil {
		return "", err
	}
	if len(raw) > maxStdinBytes {
		return "", fmt.Errorf("stdin exceeds %d bytes", maxStdinBytes)
	}
	return strings.TrimSpace(string(raw)), nil
}
