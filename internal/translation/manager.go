package translation

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog"

	"horse.fit/textra/internal/db"
	"horse.fit/textra/internal/langdetect"
	"horse.fit/textra/internal/textra"
)

// Translator performs one uncached translation call.
type Translator interface {
	Translate(ctx context.Context, opts *textra.Options, text string) textra.Result
}

// Store persists translations between calls.
type Store interface {
	LookupCachedTranslation(ctx context.Context, key db.TranslationKey) (*db.CachedTranslationRow, error)
	UpsertCachedTranslation(ctx context.Context, params db.UpsertTranslationParams) error
}

// CacheObserver is told about every cache lookup.
type CacheObserver interface {
	ObserveCache(hit bool)
}

// RunOptions controls one managed translation.
type RunOptions struct {
	// Force skips the cache lookup; the fresh result is still stored.
	Force bool
}

// Outcome is a translation result plus how it was obtained.
type Outcome struct {
	textra.Result
	Cached     bool
	SourceLang string
	TargetLang string
}

// Manager coordinates source detection, the translation cache and the
// TexTra client.
type Manager struct {
	translator Translator
	store      Store
	cacheObs   CacheObserver
	logger     zerolog.Logger
}

// NewManager builds a manager. A nil store disables caching.
func NewManager(translator Translator, store Store, logger zerolog.Logger) *Manager {
	return &Manager{translator: translator, store: store, logger: logger}
}

// WithCacheObserver reports cache hits and misses to obs.
func (m *Manager) WithCacheObserver(obs CacheObserver) *Manager {
	m.cacheObs = obs
	return m
}

// CacheEnabled reports whether translations are cached.
func (m *Manager) CacheEnabled() bool {
	return m != nil && m.store != nil
}

// Translate resolves an "auto" source language, serves cached text when
// available and otherwise calls the translator, caching successes. The
// caller's options are not modified.
func (m *Manager) Translate(ctx context.Context, opts *textra.Options, text string, run RunOptions) Outcome {
	if m == nil || m.translator == nil {
		return Outcome{Result: textra.Result{Failure: &textra.Error{
			Kind: textra.FailureConfiguration,
			Op:   "translate",
			Err:  fmt.Errorf("translation manager is not initialized"),
		}}}
	}
	if opts == nil {
		return Outcome{Result: m.translator.Translate(ctx, opts, text)}
	}

	resolved := opts.Clone()
	if langdetect.IsAuto(resolved.SourceLang()) {
		detected := langdetect.DetectSource(text)
		if detected == "" {
			return Outcome{Result: textra.Result{Failure: &textra.Error{
				Kind: textra.FailureConfiguration,
				Op:   "detect source language",
				Err:  fmt.Errorf("could not detect source language"),
			}}}
		}
		m.logger.Debug().Str("source_lang", detected).Msg("detected source language")
		resolved.SetLang(detected, resolved.TargetLang())
	}

	outcome := Outcome{SourceLang: resolved.SourceLang(), TargetLang: resolved.TargetLang()}

	key := cacheKey(resolved, text)
	cacheable := m.store != nil && resolved.Validate() == nil
	if cacheable && !run.Force {
		cached, err := m.store.LookupCachedTranslation(ctx, key)
		switch {
		case err == nil && cached != nil:
			m.observeCache(true)
			outcome.Result = textra.Result{Text: cached.TranslatedText}
			outcome.Cached = true
			return outcome
		case err != nil && !db.IsNoRows(err):
			m.logger.Warn().Err(err).Msg("translation cache lookup failed")
		}
		m.observeCache(false)
	}

	outcome.Result = m.translator.Translate(ctx, resolved, text)
	if !outcome.OK() || !cacheable {
		return outcome
	}

	latencyMS := int(outcome.Latency.Milliseconds())
	if err := m.store.UpsertCachedTranslation(ctx, db.UpsertTranslationParams{
		TranslationKey: key,
		OriginalText:   text,
		TranslatedText: outcome.Text,
		LatencyMS:      &latencyMS,
	}); err != nil {
		m.logger.Warn().Err(err).Msg("translation cache upsert failed")
	}
	return outcome
}

func (m *Manager) observeCache(hit bool) {
	if m.cacheObs != nil {
		m.cacheObs.ObserveCache(hit)
	}
}

func cacheKey(opts *textra.Options, text string) db.TranslationKey {
	hash := sha256.Sum256([]byte(text))
	return db.TranslationKey{
		Mode:        opts.Mode().String(),
		SourceLang:  opts.SourceLang(),
		TargetLang:  opts.TargetLang(),
		ContentHash: hash[:],
	}
}
