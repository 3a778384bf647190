package iso3166

import (
	"fmt"
)

// minCountryCount is the fewest top-level codes a complete dataset has
// (ISO 3166-1 assigns 249).
const minCountryCount = 240

// validationCode defines a known code for functional validation.
type validationCode struct {
	code     string
	wantName string
}

// knownCodes are used to validate that lookups and name search work on a
// freshly fetched dataset.
var knownCodes = []validationCode{
	{"US", "United States"},
	{"FR", "France"},
	{"DE", "Germany"},
	{"AU", "Australia"},
	{"JP", "Japan"},
}

// Validate performs sanity checks on a loaded dataset beyond the digest:
// a minimum number of codes, and that well-known codes resolve to records
// whose name search finds them again.
func (s *Store) Validate() error {
	if s.Len() < minCountryCount {
		return fmt.Errorf("code count too low: got %d, want >= %d", s.Len(), minCountryCount)
	}

	for _, tc := range knownCodes {
		rec, err := s.Get(tc.code)
		if err != nil {
			return fmt.Errorf("get(%q): %w", tc.code, err)
		}
		obj, ok := rec.(map[string]any)
		if !ok {
			return fmt.Errorf("get(%q): record is %T, want object", tc.code, rec)
		}
		if _, ok := obj["name"].(string); !ok {
			return fmt.Errorf("get(%q): record has no name", tc.code)
		}
		found := false
		for _, m := range s.Search(tc.wantName, SearchOptions{FuzzyDistance: 2}) {
			if m.Code == tc.code {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("search(%q) did not return %s", tc.wantName, tc.code)
		}
	}
	return nil
}
