package textra

import (
	"fmt"
	"strings"
)

// Mode selects a TexTra translation engine.
type Mode string

const (
	// ModeGeneral is the general-purpose engine (English/Japanese/Chinese/Korean and the en pivot languages).
	ModeGeneral Mode = "general"
	// ModePatent is tuned for patent descriptions.
	ModePatent Mode = "patent"
	// ModePatentClaim is tuned for patent claims.
	ModePatentClaim Mode = "patent_claim"
)

// Modes lists every known mode in declaration order.
func Modes() []Mode {
	return []Mode{ModeGeneral, ModePatent, ModePatentClaim}
}

// legacyModeNames maps the historical enum names used by older clients.
var legacyModeNames = map[string]Mode{
	"generaln":      ModeGeneral,
	"patentn":       ModePatent,
	"patent_claimn": ModePatentClaim,
	"patent-claimn": ModePatentClaim,
}

// ParseMode resolves a mode from its name, its URL slug or a legacy name.
// Matching ignores case and surrounding space.
func ParseMode(name string) (Mode, error) {
	trimmed := strings.TrimSpace(name)
	for _, m := range Modes() {
		if trimmed == string(m) {
			return m, nil
		}
	}

	lowered := strings.ToLower(trimmed)
	for _, m := range Modes() {
		if lowered == m.Slug() || lowered == string(m) {
			return m, nil
		}
	}
	if m, ok := legacyModeNames[lowered]; ok {
		return m, nil
	}

	return "", &Error{
		Kind: FailureConfiguration,
		Op:   "parse mode",
		Err:  fmt.Errorf("%w: %q", ErrInvalidMode, name),
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	for _, known := range Modes() {
		if m == known {
			return true
		}
	}
	return false
}

// Slug is the engine segment of the access URL: underscores become
// hyphens and the result is lowercased.
func (m Mode) Slug() string {
	return strings.ToLower(strings.ReplaceAll(string(m), "_", "-"))
}

func (m Mode) String() string {
	return string(m)
}
