package language

import "strings"

// FormatCode formats a language code the way the MT endpoints expect it:
// the primary subtag lowercased and everything from the first "-" on
// uppercased ("EN" -> "en", "zh-cn" -> "zh-CN").
func FormatCode(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if dash := strings.IndexByte(trimmed, '-'); dash >= 0 {
		return strings.ToLower(trimmed[:dash]) + strings.ToUpper(trimmed[dash:])
	}
	return strings.ToLower(trimmed)
}

// Key returns the comparison key for a language code. Codes that differ
// only by case share a key.
func Key(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Equal reports whether two codes name the same language, ignoring case.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}

// IsChinese reports whether code is a Chinese variant ("zh", "zh-CN", "zh-TW", ...).
func IsChinese(code string) bool {
	return strings.HasPrefix(Key(code), "zh")
}

// PrimarySubtag returns the primary language subtag (for example, "zh" from "zh-TW").
func PrimarySubtag(code string) string {
	key := Key(code)
	if dash := strings.IndexByte(key, '-'); dash >= 0 {
		return key[:dash]
	}
	return key
}
