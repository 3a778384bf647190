package iso3166

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxFuzzyDistance caps SearchOptions.FuzzyDistance to keep a search from
// matching most of the dataset.
const maxFuzzyDistance = 3

// maxSearchInputLen limits query length before Levenshtein comparisons.
const maxSearchInputLen = 256

// SearchOptions configures name search behavior.
type SearchOptions struct {
	FuzzyDistance int  // Max edit distance for typo tolerance (0 = exact, case-insensitive)
	Subdivisions  bool // Also match subdivision names from each record's "regions"
}

// Match is a single Search result.
type Match struct {
	Code     string // Dataset code, or "CC-SUB" for a subdivision
	Name     string // The name that matched
	Distance int    // Edit distance between query and Name (0 for exact)
}

// Search finds countries (and optionally subdivisions) by name. Records are
// expected to carry "name", "names" and "regions" fields as in the upstream
// dataset; records of any other shape are skipped.
//
// Results are ordered by distance, then code. Each code appears at most once,
// with its closest matching name.
func (s *Store) Search(name string, opts ...SearchOptions) []Match {
	query := strings.TrimSpace(name)
	if query == "" {
		return nil
	}
	if runes := []rune(query); len(runes) > maxSearchInputLen {
		query = string(runes[:maxSearchInputLen])
	}

	options := SearchOptions{}
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.FuzzyDistance < 0 {
		options.FuzzyDistance = 0
	}
	if options.FuzzyDistance > maxFuzzyDistance {
		options.FuzzyDistance = maxFuzzyDistance
	}
	query = toLower(query)

	best := make(map[string]Match)
	consider := func(code, candidate string) {
		dist, ok := nameDistance(query, candidate, options.FuzzyDistance)
		if !ok {
			return
		}
		if prev, seen := best[code]; seen && prev.Distance <= dist {
			return
		}
		best[code] = Match{Code: code, Name: candidate, Distance: dist}
	}

	for code, rec := range s.All() {
		obj, ok := rec.(map[string]any)
		if !ok {
			continue
		}
		for _, n := range recordNames(obj) {
			consider(code, n)
		}
		if !options.Subdivisions {
			continue
		}
		regions, _ := obj["regions"].([]any)
		for _, r := range regions {
			region, ok := r.(map[string]any)
			if !ok {
				continue
			}
			iso, _ := region["iso"].(string)
			if iso == "" {
				continue
			}
			subCode := code + "-" + toUpper(iso)
			for _, n := range recordNames(region) {
				consider(subCode, n)
			}
		}
	}

	matches := make([]Match, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Code < matches[j].Code
	})
	return matches
}

// recordNames collects the "name" field and every string in the "names" map.
func recordNames(obj map[string]any) []string {
	var out []string
	if n, ok := obj["name"].(string); ok && n != "" {
		out = append(out, n)
	}
	if names, ok := obj["names"].(map[string]any); ok {
		langs := make([]string, 0, len(names))
		for lang := range names {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
		for _, lang := range langs {
			if n, ok := names[lang].(string); ok && n != "" {
				out = append(out, n)
			}
		}
	}
	return out
}

// nameDistance compares a lower-cased query with candidate. With maxDist 0
// it is an exact case-insensitive match.
func nameDistance(query, candidate string, maxDist int) (int, bool) {
	if maxDist == 0 {
		return 0, strings.EqualFold(query, candidate)
	}
	dist := levenshtein.ComputeDistance(query, toLower(candidate))
	return dist, dist <= maxDist
}
