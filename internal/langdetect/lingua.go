package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"

	"horse.fit/textra/internal/language"
)

// Auto is the source-language value that requests detection.
const Auto = "auto"

// minLetters is the shortest sample worth running through the detector.
const minLetters = 6

// TexTra source languages lingua can recognize. Burmese has no lingua model.
var supportedLanguages = []lingua.Language{
	lingua.Japanese,
	lingua.English,
	lingua.Chinese,
	lingua.Korean,
	lingua.French,
	lingua.Portuguese,
	lingua.Indonesian,
	lingua.Thai,
	lingua.Vietnamese,
	lingua.Spanish,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// IsAuto reports whether lang asks for detection.
func IsAuto(lang string) bool {
	return strings.EqualFold(strings.TrimSpace(lang), Auto)
}

// DetectSource returns the TexTra language code for text, or "" when the
// sample is too short or no supported language matches. Chinese is
// reported as "zh-CN"; lingua cannot tell simplified from traditional.
func DetectSource(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < minLetters {
		return ""
	}

	detected, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := language.PrimarySubtag(detected.IsoCode639_1().String())
	if code == "zh" {
		return "zh-CN"
	}
	if len(code) != 2 {
		return ""
	}
	return code
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(supportedLanguages...).
			Build()
	})
	return detector
}
