package textra

import (
	"sort"
	"sync"

	"github.com/samber/lo"

	"horse.fit/textra/internal/language"
)

// Combination is one (mode, source, target) triple. Languages compare
// case-insensitively; the mode compares exactly.
type Combination struct {
	Mode   Mode   `json:"mode"`
	Source string `json:"source"`
	Target string `json:"target"`
}

func (c Combination) key() comboKey {
	return comboKey{mode: c.Mode, source: language.Key(c.Source), target: language.Key(c.Target)}
}

// Equal reports whether both triples name the same combination.
func (c Combination) Equal(other Combination) bool {
	return c.key() == other.key()
}

type comboKey struct {
	mode   Mode
	source string
	target string
}

// Rule expands into the combinations it declares legal.
type Rule interface {
	Combinations() []Combination
}

// GroupRule declares a closed group of mutually translatable languages:
// every ordered pair of distinct languages is legal for every mode, except
// pairs where both sides are Chinese variants.
type GroupRule struct {
	Modes     []Mode
	Languages []string
}

func (r GroupRule) Combinations() []Combination {
	langs := lo.Uniq(lo.Map(r.Languages, func(l string, _ int) string { return language.FormatCode(l) }))

	out := make([]Combination, 0, len(r.Modes)*len(langs)*len(langs))
	for _, source := range langs {
		for _, target := range langs {
			if language.IsChinese(source) && language.IsChinese(target) {
				continue
			}
			if language.Equal(source, target) {
				continue
			}
			for _, m := range r.Modes {
				out = append(out, Combination{Mode: m, Source: source, Target: target})
			}
		}
	}
	return out
}

// PivotRule declares bidirectional translation between one pivot language
// and each listed language, for a single mode.
type PivotRule struct {
	Mode      Mode
	Pivot     string
	Languages []string
}

func (r PivotRule) Combinations() []Combination {
	pivot := language.FormatCode(r.Pivot)
	langs := lo.Uniq(lo.Map(r.Languages, func(l string, _ int) string { return language.FormatCode(l) }))

	out := make([]Combination, 0, 2*len(langs))
	for _, target := range langs {
		if language.Equal(pivot, target) {
			continue
		}
		out = append(out,
			Combination{Mode: r.Mode, Source: pivot, Target: target},
			Combination{Mode: r.Mode, Source: target, Target: pivot},
		)
	}
	return out
}

// DefaultRules returns the combinations offered by the TexTra service.
func DefaultRules() []Rule {
	allModes := []Mode{ModeGeneral, ModePatent, ModePatentClaim}
	return []Rule{
		GroupRule{Modes: allModes, Languages: []string{"ja", "en", "zh-CN", "zh-TW"}},
		GroupRule{Modes: allModes, Languages: []string{"ko", "ja"}},
		PivotRule{Mode: ModeGeneral, Pivot: "en", Languages: []string{"fr", "pt", "fr", "id", "my", "th", "vi", "es"}},
	}
}

// CombinationSet is an immutable set of legal combinations.
type CombinationSet struct {
	items map[comboKey]Combination
}

// BuildCombinationSet evaluates rules into a set.
func BuildCombinationSet(rules ...Rule) *CombinationSet {
	set := &CombinationSet{items: make(map[comboKey]Combination)}
	for _, rule := range rules {
		if rule == nil {
			continue
		}
		for _, c := range rule.Combinations() {
			set.items[c.key()] = c
		}
	}
	return set
}

// DefaultCombinations returns the set built from DefaultRules. It is built
// on first use and shared afterwards.
var DefaultCombinations = sync.OnceValue(func() *CombinationSet {
	return BuildCombinationSet(DefaultRules()...)
})

// Contains reports whether c is legal.
func (s *CombinationSet) Contains(c Combination) bool {
	if s == nil {
		return false
	}
	_, ok := s.items[c.key()]
	return ok
}

// Len returns the number of distinct combinations.
func (s *CombinationSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// List returns all combinations ordered by mode, source and target.
func (s *CombinationSet) List() []Combination {
	if s == nil {
		return nil
	}
	items := lo.Values(s.items)
	sortCombinations(items)
	return items
}

// Filter returns the combinations matching mode and source. An empty mode
// or source matches anything.
func (s *CombinationSet) Filter(mode Mode, source string) []Combination {
	return lo.Filter(s.List(), func(c Combination, _ int) bool {
		if mode != "" && c.Mode != mode {
			return false
		}
		if source != "" && !language.Equal(c.Source, source) {
			return false
		}
		return true
	})
}

// Targets lists the legal target languages for mode and source.
func (s *CombinationSet) Targets(mode Mode, source string) []string {
	if mode == "" || source == "" {
		return nil
	}
	targets := lo.Map(s.Filter(mode, source), func(c Combination, _ int) string { return c.Target })
	sort.Strings(targets)
	return targets
}

func sortCombinations(items []Combination) {
	modeOrder := make(map[Mode]int, len(Modes()))
	for i, m := range Modes() {
		modeOrder[m] = i
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Mode != b.Mode {
			oa, ob := rank(modeOrder, a.Mode), rank(modeOrder, b.Mode)
			if oa != ob {
				return oa < ob
			}
			return a.Mode < b.Mode
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Target < b.Target
	})
}

func rank(order map[Mode]int, m Mode) int {
	if i, ok := order[m]; ok {
		return i
	}
	return len(order)
}
