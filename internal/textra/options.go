package textra

import (
	"fmt"

	"horse.fit/textra/internal/language"
)

// Options carries the credentials and language settings for one
// translation session. Setters return the receiver so calls can be
// chained. Options is not safe for concurrent mutation.
type Options struct {
	username   string
	apiKey     string
	secret     string
	mode       Mode
	sourceLang string
	targetLang string

	combinations *CombinationSet
}

// NewOptions returns empty options checked against the default combinations.
func NewOptions() *Options {
	return &Options{combinations: DefaultCombinations()}
}

// Configure builds options in one step. Languages are normalized; an
// unknown mode name fails with ErrInvalidMode.
func Configure(username, apiKey, secret, mode, sourceLang, targetLang string) (*Options, error) {
	opts := NewOptions().
		SetUsername(username).
		SetAPIKey(apiKey).
		SetSecret(secret).
		SetLang(sourceLang, targetLang)
	if err := opts.SetModeName(mode); err != nil {
		return nil, err
	}
	return opts, nil
}

// Clone returns an independent copy sharing the same legality table.
func (o *Options) Clone() *Options {
	if o == nil {
		return nil
	}
	cp := *o
	return &cp
}

// WithCombinations replaces the legality table used by IsCombinationValid.
func (o *Options) WithCombinations(set *CombinationSet) *Options {
	o.combinations = set
	return o
}

func (o *Options) Username() string { return o.username }

func (o *Options) SetUsername(username string) *Options {
	o.username = username
	return o
}

func (o *Options) APIKey() string { return o.apiKey }

func (o *Options) SetAPIKey(apiKey string) *Options {
	o.apiKey = apiKey
	return o
}

func (o *Options) Secret() string { return o.secret }

func (o *Options) SetSecret(secret string) *Options {
	o.secret = secret
	return o
}

func (o *Options) Mode() Mode { return o.mode }

func (o *Options) SetMode(mode Mode) *Options {
	o.mode = mode
	return o
}

// SetModeName sets the mode from its string form.
func (o *Options) SetModeName(name string) error {
	mode, err := ParseMode(name)
	if err != nil {
		return err
	}
	o.mode = mode
	return nil
}

// IsMode reports whether the configured mode has the given name.
func (o *Options) IsMode(name string) bool {
	return string(o.mode) == name
}

func (o *Options) SourceLang() string { return o.sourceLang }

func (o *Options) TargetLang() string { return o.targetLang }

// SetLang normalizes and stores both languages ("EN" -> "en", "zh-cn" -> "zh-CN").
func (o *Options) SetLang(sourceLang, targetLang string) *Options {
	o.sourceLang = language.FormatCode(sourceLang)
	o.targetLang = language.FormatCode(targetLang)
	return o
}

// Combination returns the configured triple.
func (o *Options) Combination() Combination {
	return Combination{Mode: o.mode, Source: o.sourceLang, Target: o.targetLang}
}

// Complete reports whether mode and both languages are set.
func (o *Options) Complete() bool {
	return o != nil && o.mode != "" && o.sourceLang != "" && o.targetLang != ""
}

// IsCombinationValid reports whether the service offers the configured
// mode and language pair. It fails with ErrOptionsIncomplete when any of
// them is unset.
func (o *Options) IsCombinationValid() (bool, error) {
	if !o.Complete() {
		return false, &Error{
			Kind: FailureConfiguration,
			Op:   "check combination",
			Err:  ErrOptionsIncomplete,
		}
	}
	set := o.combinations
	if set == nil {
		set = DefaultCombinations()
	}
	return set.Contains(o.Combination()), nil
}

// Validate is IsCombinationValid folded into one error.
func (o *Options) Validate() error {
	ok, err := o.IsCombinationValid()
	if err != nil {
		return err
	}
	if !ok {
		c := o.Combination()
		return &Error{
			Kind: FailureUnsupported,
			Op:   "check combination",
			Err:  fmt.Errorf("%w: %s %s -> %s", ErrUnsupportedCombination, c.Mode, c.Source, c.Target),
		}
	}
	return nil
}
