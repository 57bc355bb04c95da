package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// EnvFileVar names a .env file that takes precedence over the --env flag.
const EnvFileVar = "TEXTRA_ENV_FILE"

// EnvLoader loads the first readable .env file among TEXTRA_ENV_FILE, the
// --env flag value, its base name in the working directory and the
// default path. Variables already set in the process are never replaced.
type EnvLoader struct {
	flagValue   *string
	defaultPath string
	lookupEnv   func(string) string
}

// AddEnvFlag registers --env on fs and returns the loader bound to it.
func AddEnvFlag(fs *flag.FlagSet, defaultPath, usage string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	defaultPath = strings.TrimSpace(defaultPath)
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if usage == "" {
		usage = "Path to the .env file with TEXTRA_* settings"
	}

	return &EnvLoader{
		flagValue:   fs.String("env", defaultPath, usage),
		defaultPath: defaultPath,
		lookupEnv:   os.Getenv,
	}
}

// Candidates lists the paths Load tries, in order and without repeats.
func (l *EnvLoader) Candidates() []string {
	if l == nil {
		return nil
	}

	var paths []string
	if override := strings.TrimSpace(l.lookupEnv(EnvFileVar)); override != "" {
		paths = append(paths, override)
	}

	requested := l.defaultPath
	if l.flagValue != nil && strings.TrimSpace(*l.flagValue) != "" {
		requested = strings.TrimSpace(*l.flagValue)
	}
	paths = append(paths, requested, filepath.Base(requested), l.defaultPath)

	return lo.Uniq(lo.Compact(paths))
}

// Load reads the first candidate that exists and returns its path. The
// error lists every path tried when none could be read.
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", fmt.Errorf("env loader is nil")
	}

	var errs []error
	for _, path := range l.Candidates() {
		if err := godotenv.Load(path); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		return path, nil
	}
	return "", fmt.Errorf("no env file loaded: %w", errors.Join(errs...))
}
