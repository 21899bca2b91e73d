// Package resolve maps user-supplied field names to canonical catalog
// names via alias lookup, case-insensitive matching, and fuzzy
// matching with ranked suggestions on failure.
package resolve

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Via records which rule resolved a term.
type Via string

const (
	ViaExact Via = "exact"
	ViaAlias Via = "alias"
	ViaFuzzy Via = "fuzzy"
)

// Options tunes the resolver per pipeline policy.
type Options struct {
	// AcceptThreshold is the minimum similarity for silently accepting
	// the best fuzzy candidate. Zero disables fuzzy acceptance
	// entirely; fuzzy scores then only feed the suggestion list.
	AcceptThreshold float64

	// SuggestCutoff is the looser minimum similarity for entries in the
	// suggestion list of a failed resolution.
	SuggestCutoff float64

	// MaxSuggestions caps the suggestion list. Default 3.
	MaxSuggestions int

	// MaxSamples caps the sample of valid names attached to failures.
	// Default 10.
	MaxSamples int
}

// SEOOptions is the SEO pipeline policy: best-effort correction with
// silent substitution above a high threshold.
func SEOOptions() Options {
	return Options{AcceptThreshold: 0.8, SuggestCutoff: 0.4, MaxSuggestions: 3, MaxSamples: 10}
}

// AnalyticsOptions is the analytics pipeline policy: fuzzy matching
// produces suggestions only, never a silent substitution.
func AnalyticsOptions() Options {
	return Options{AcceptThreshold: 0, SuggestCutoff: 0.4, MaxSuggestions: 3, MaxSamples: 10}
}

// Result is the outcome of resolving one term. Exactly one of
// Resolution and Failure is set; a term is never partially resolved.
type Result struct {
	Resolution *Resolution
	Failure    *Failure
}

// Resolved reports whether the term resolved to a canonical name.
func (r Result) Resolved() bool {
	return r.Resolution != nil
}

// Resolution is a successful mapping from a user term to a canonical
// catalog name. Warning is set for fuzzy substitutions and alias
// targets that themselves needed fuzzy correction.
type Resolution struct {
	Term      string
	Canonical string
	Via       Via
	Warning   string
}

// Failure carries ranked suggestions (descending similarity) and a
// sample of valid names for the error message.
type Failure struct {
	Term        string
	Suggestions []string
	Samples     []string
}

// Resolve maps term to a canonical name from catalog, trying in strict
// priority order: alias lookup, direct case-insensitive match, fuzzy
// match, failure with suggestions. catalog is an ordered slice: when
// fuzzy candidates tie at the top score, the earliest catalog entry
// wins, so iteration order is the documented tie-break.
func Resolve(term string, catalog []string, aliases map[string]string, opts Options) Result {
	opts = withDefaults(opts)
	needle := strings.TrimSpace(fold(term))

	// 1. Alias exact match. If the alias target drifted out of the
	// catalog, fall through to fuzzy-matching the target itself.
	if len(aliases) > 0 {
		if target, ok := lookupAlias(aliases, needle); ok {
			if canonical, ok := findExact(catalog, fold(target)); ok {
				return resolved(term, canonical, ViaAlias, "")
			}
			if best, score := bestCandidate(target, catalog); score >= opts.AcceptThreshold && opts.AcceptThreshold > 0 {
				warning := fmt.Sprintf("Mapped %q to %q (via alias)", term, best)
				zap.L().Info("resolve: alias target substituted",
					zap.String("term", term),
					zap.String("alias_target", target),
					zap.String("column", best),
					zap.Float64("score", score),
				)
				return resolved(term, best, ViaAlias, warning)
			}
		}
	}

	// 2. Direct case-insensitive match.
	if canonical, ok := findExact(catalog, needle); ok {
		return resolved(term, canonical, ViaExact, "")
	}

	// 3. Fuzzy match, accepted only above the pipeline's threshold.
	if opts.AcceptThreshold > 0 {
		if best, score := bestCandidate(term, catalog); score >= opts.AcceptThreshold {
			warning := fmt.Sprintf("Interpreted %q as %q (fuzzy match)", term, best)
			zap.L().Info("resolve: fuzzy matched",
				zap.String("term", term),
				zap.String("column", best),
				zap.Float64("score", score),
			)
			return resolved(term, best, ViaFuzzy, warning)
		}
	}

	// 4. Failure: rank suggestions with the looser cutoff.
	return Result{Failure: &Failure{
		Term:        term,
		Suggestions: Suggestions(term, catalog, opts.SuggestCutoff, opts.MaxSuggestions),
		Samples:     samples(catalog, opts.MaxSamples),
	}}
}

// Suggestions returns up to max catalog names with similarity >= cutoff
// to term, sorted descending by similarity. Ties keep catalog order.
func Suggestions(term string, catalog []string, cutoff float64, max int) []string {
	type scored struct {
		name  string
		score float64
	}
	var candidates []scored
	for _, name := range catalog {
		if s := Similarity(term, name); s >= cutoff {
			candidates = append(candidates, scored{name, s})
		}
	}
	// Stable insertion sort: small n, and preserves catalog order on ties.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].score > candidates[j-1].score; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	if len(candidates) > max {
		candidates = candidates[:max]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}

// bestCandidate returns the single highest-scoring catalog entry for
// term. Ties resolve to the earliest entry.
func bestCandidate(term string, catalog []string) (string, float64) {
	best := ""
	bestScore := 0.0
	for _, name := range catalog {
		if s := Similarity(term, name); s > bestScore {
			bestScore = s
			best = name
		}
	}
	return best, bestScore
}

func lookupAlias(aliases map[string]string, needle string) (string, bool) {
	for alias, target := range aliases {
		if fold(alias) == needle {
			return target, true
		}
	}
	return "", false
}

func findExact(catalog []string, needle string) (string, bool) {
	for _, name := range catalog {
		if fold(name) == needle {
			return name, true
		}
	}
	return "", false
}

func samples(catalog []string, max int) []string {
	if len(catalog) <= max {
		return append([]string(nil), catalog...)
	}
	return append([]string(nil), catalog[:max]...)
}

func resolved(term, canonical string, via Via, warning string) Result {
	return Result{Resolution: &Resolution{
		Term:      term,
		Canonical: canonical,
		Via:       via,
		Warning:   warning,
	}}
}

func withDefaults(opts Options) Options {
	if opts.SuggestCutoff <= 0 {
		opts.SuggestCutoff = 0.4
	}
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = 3
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = 10
	}
	return opts
}
