package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

// TranslationKey identifies one cached translation.
type TranslationKey struct {
	Mode        string
	SourceLang  string
	TargetLang  string
	ContentHash []byte
}

// CachedTranslationRow is one cached translation.
type CachedTranslationRow struct {
	Mode           string
	SourceLang     string
	TargetLang     string
	OriginalText   string
	TranslatedText string
	LatencyMS      *int
	CreatedAt      time.Time
}

// UpsertTranslationParams controls translation cache upserts.
type UpsertTranslationParams struct {
	TranslationKey
	OriginalText   string
	TranslatedText string
	LatencyMS      *int
}

// LookupCachedTranslation returns ErrNoRows when nothing is cached for key.
func (p *Pool) LookupCachedTranslation(ctx context.Context, key TranslationKey) (*CachedTranslationRow, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	var rows []Translation
	err := p.gdb.WithContext(ctx).
		Where("mode = ? AND source_lang = ? AND target_lang = ? AND content_hash = ?",
			key.Mode, key.SourceLang, key.TargetLang, key.ContentHash).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query cached translation: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	row := rows[0]
	return &CachedTranslationRow{
		Mode:           row.Mode,
		SourceLang:     row.SourceLang,
		TargetLang:     row.TargetLang,
		OriginalText:   row.OriginalText,
		TranslatedText: row.TranslatedText,
		LatencyMS:      row.LatencyMS,
		CreatedAt:      row.CreatedAt,
	}, nil
}

// UpsertCachedTranslation stores or refreshes a translation.
func (p *Pool) UpsertCachedTranslation(ctx context.Context, params UpsertTranslationParams) error {
	if p == nil || p.gdb == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	row := Translation{
		Mode:           params.Mode,
		SourceLang:     params.SourceLang,
		TargetLang:     params.TargetLang,
		ContentHash:    params.ContentHash,
		OriginalText:   params.OriginalText,
		TranslatedText: params.TranslatedText,
		LatencyMS:      params.LatencyMS,
	}
	err := p.gdb.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "mode"},
				{Name: "source_lang"},
				{Name: "target_lang"},
				{Name: "content_hash"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"translated_text": row.TranslatedText,
				"latency_ms":      row.LatencyMS,
				"updated_at":      clause.Expr{SQL: "now()"},
			}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert cached translation: %w", err)
	}
	return nil
}
