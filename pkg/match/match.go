// Package match builds text predicates for filtering collections as the
// user types: substring, prefix, suffix and fuzzy matching, each under a
// configurable sensitivity to case and diacritics.
package match

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/oakwood-commons/colx/pkg/collection"
)

// Mode selects how the query is located in a node's text.
type Mode string

const (
	ModeContains   Mode = "contains"
	ModeStartsWith Mode = "starts-with"
	ModeEndsWith   Mode = "ends-with"
	ModeFuzzy      Mode = "fuzzy"
)

// ValidModes lists every supported mode.
var ValidModes = []Mode{ModeContains, ModeStartsWith, ModeEndsWith, ModeFuzzy}

// Sensitivity controls which differences between characters are significant.
type Sensitivity string

const (
	// SensitivityBase ignores case and diacritics: a = á = A.
	SensitivityBase Sensitivity = "base"
	// SensitivityAccent ignores case only: a = A, a ≠ á.
	SensitivityAccent Sensitivity = "accent"
	// SensitivityCase ignores diacritics only: a = á, a ≠ A.
	SensitivityCase Sensitivity = "case"
	// SensitivityVariant compares exactly (after NFC normalization).
	SensitivityVariant Sensitivity = "variant"
)

// ValidSensitivities lists every supported sensitivity.
var ValidSensitivities = []Sensitivity{SensitivityBase, SensitivityAccent, SensitivityCase, SensitivityVariant}

// ParseMode converts a flag or config value into a Mode. Empty means contains.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "contains":
		return ModeContains, nil
	case "starts-with", "startswith", "prefix":
		return ModeStartsWith, nil
	case "ends-with", "endswith", "suffix":
		return ModeEndsWith, nil
	case "fuzzy":
		return ModeFuzzy, nil
	}
	return "", fmt.Errorf("invalid match mode %q: valid values are contains, starts-with, ends-with, fuzzy", s)
}

// ParseSensitivity converts a flag or config value into a Sensitivity.
// Empty means base.
func ParseSensitivity(s string) (Sensitivity, error) {
	switch Sensitivity(strings.ToLower(strings.TrimSpace(s))) {
	case "", SensitivityBase:
		return SensitivityBase, nil
	case SensitivityAccent:
		return SensitivityAccent, nil
	case SensitivityCase:
		return SensitivityCase, nil
	case SensitivityVariant:
		return SensitivityVariant, nil
	}
	return "", fmt.Errorf("invalid sensitivity %q: valid values are base, accent, case, variant", s)
}

// Option configures a predicate.
type Option func(*options)

type options struct {
	sensitivity Sensitivity
}

// WithSensitivity overrides the default base sensitivity.
func WithSensitivity(s Sensitivity) Option {
	return func(o *options) {
		o.sensitivity = s
	}
}

// New returns a predicate testing node text against query in the given
// mode. An empty query matches every text.
func New(mode Mode, query string, opts ...Option) (collection.Predicate, error) {
	o := options{sensitivity: SensitivityBase}
	for _, opt := range opts {
		opt(&o)
	}
	if _, err := ParseSensitivity(string(o.sensitivity)); err != nil {
		return nil, err
	}

	switch mode {
	case ModeContains, "":
		return normalized(o.sensitivity, query, strings.Contains), nil
	case ModeStartsWith:
		return normalized(o.sensitivity, query, strings.HasPrefix), nil
	case ModeEndsWith:
		return normalized(o.sensitivity, query, strings.HasSuffix), nil
	case ModeFuzzy:
		return fuzzy(o.sensitivity, query), nil
	}
	return nil, fmt.Errorf("invalid match mode %q", mode)
}

// Contains matches texts containing query.
func Contains(query string, opts ...Option) collection.Predicate {
	p, _ := New(ModeContains, query, opts...)
	return p
}

// StartsWith matches texts beginning with query.
func StartsWith(query string, opts ...Option) collection.Predicate {
	p, _ := New(ModeStartsWith, query, opts...)
	return p
}

// EndsWith matches texts ending with query.
func EndsWith(query string, opts ...Option) collection.Predicate {
	p, _ := New(ModeEndsWith, query, opts...)
	return p
}

// Fuzzy matches texts containing the query's characters in order.
func Fuzzy(query string, opts ...Option) collection.Predicate {
	p, _ := New(ModeFuzzy, query, opts...)
	return p
}

func normalized(s Sensitivity, query string, test func(text, query string) bool) collection.Predicate {
	q := Normalize(s, query)
	if q == "" {
		return matchAll
	}
	return func(text string) bool {
		return test(Normalize(s, text), q)
	}
}

var fzfInit sync.Once

func fuzzy(s Sensitivity, query string) collection.Predicate {
	fzfInit.Do(func() {
		algo.Init("default")
	})

	caseSensitive := s == SensitivityCase || s == SensitivityVariant
	pattern := []rune(Normalize(stripOnly(s), query))
	if len(pattern) == 0 {
		return matchAll
	}
	if !caseSensitive {
		for i, r := range pattern {
			pattern[i] = unicode.ToLower(r)
		}
	}
	return func(text string) bool {
		chars := util.ToChars([]byte(Normalize(stripOnly(s), text)))
		res, _ := algo.FuzzyMatchV2(caseSensitive, false, true, &chars, pattern, false, nil)
		return res.Start >= 0
	}
}

// stripOnly keeps the diacritic handling of s and leaves case to fzf.
func stripOnly(s Sensitivity) Sensitivity {
	switch s {
	case SensitivityBase, SensitivityCase:
		return SensitivityCase
	}
	return SensitivityVariant
}

func matchAll(string) bool { return true }

// Normalize maps text to the form compared under sensitivity s: NFC
// always, diacritics stripped for base and case, case folded for base and
// accent.
func Normalize(s Sensitivity, text string) string {
	var t transform.Transformer
	switch s {
	case SensitivityBase:
		t = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	case SensitivityAccent:
		t = transform.Chain(norm.NFC, cases.Fold(), norm.NFC)
	case SensitivityCase:
		t = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	default:
		t = norm.NFC
	}
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}
