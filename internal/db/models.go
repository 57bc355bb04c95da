package db

import "time"

// Translation maps textra.translations: one cached result per mode,
// language pair and source text hash.
type Translation struct {
	TranslationID  int64     `gorm:"column:translation_id;primaryKey;autoIncrement"`
	Mode           string    `gorm:"column:mode;type:text;not null;uniqueIndex:translations_lookup_key,priority:1"`
	SourceLang     string    `gorm:"column:source_lang;type:text;not null;uniqueIndex:translations_lookup_key,priority:2"`
	TargetLang     string    `gorm:"column:target_lang;type:text;not null;uniqueIndex:translations_lookup_key,priority:3"`
	ContentHash    []byte    `gorm:"column:content_hash;type:bytea;not null;uniqueIndex:translations_lookup_key,priority:4"`
	OriginalText   string    `gorm:"column:original_text;type:text;not null"`
	TranslatedText string    `gorm:"column:translated_text;type:text;not null"`
	LatencyMS      *int      `gorm:"column:latency_ms;type:integer"`
	CreatedAt      time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt      time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Translation) TableName() string { return "textra.translations" }

func autoMigrateModels() []any {
	return []any{
		&Translation{},
	}
}
