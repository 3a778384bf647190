package iso3166

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixtureStore(t *testing.T) *Store {
	t.Helper()
	srv := newFixtureServer(t, fixtureDataset)
	_, opts := fixtureOptions(t, srv)
	s, err := NewStore(false, opts...)
	require.NoError(t, err)
	return s
}

func TestSearch(t *testing.T) {
	s := newFixtureStore(t)

	tests := []struct {
		query    string
		opts     SearchOptions
		wantCode string
		wantName string
		wantDist int
	}{
		{"France", SearchOptions{}, "FR", "France", 0},
		{"  france ", SearchOptions{}, "FR", "France", 0},
		{"DEUTSCHLAND", SearchOptions{}, "DE", "Deutschland", 0},
		{"états-unis", SearchOptions{}, "US", "États-Unis", 0},
		{"Frnace", SearchOptions{FuzzyDistance: 2}, "FR", "France", 2},
		{"Germny", SearchOptions{FuzzyDistance: 1}, "DE", "Germany", 1},
		{"Andora", SearchOptions{FuzzyDistance: 1}, "AD", "Andorra", 1},
		{"Texas", SearchOptions{Subdivisions: true}, "US-TX", "Texas", 0},
		{"Califonia", SearchOptions{FuzzyDistance: 1, Subdivisions: true}, "US-CA", "California", 1},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			matches := s.Search(tt.query, tt.opts)
			require.NotEmpty(t, matches)
			assert.Equal(t, Match{Code: tt.wantCode, Name: tt.wantName, Distance: tt.wantDist}, matches[0])
		})
	}
}

func TestSearch_NoMatch(t *testing.T) {
	s := newFixtureStore(t)

	tests := []struct {
		name  string
		query string
		opts  SearchOptions
	}{
		{"empty", "", SearchOptions{}},
		{"whitespace", "   ", SearchOptions{}},
		{"typo without fuzzy", "Frnace", SearchOptions{}},
		{"subdivision not requested", "Texas", SearchOptions{}},
		{"negative distance is exact", "Frnace", SearchOptions{FuzzyDistance: -1}},
		// "fr" -> "france" is distance 4, beyond the cap of 3.
		{"fuzzy distance capped", "Fr", SearchOptions{FuzzyDistance: 100}},
		// XK holds a bare string, not an object, so it has no names to search.
		{"non-object record", "Kosovo", SearchOptions{FuzzyDistance: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, s.Search(tt.query, tt.opts))
		})
	}
}

func TestSearch_OneMatchPerCode(t *testing.T) {
	s := newFixtureStore(t)

	// "United States" is both the name and names["en"].
	matches := s.Search("united states")
	require.Len(t, matches, 1)
	assert.Equal(t, "US", matches[0].Code)
}

func TestSearch_OrderedByDistanceThenCode(t *testing.T) {
	s := newFixtureStore(t)

	matches := s.Search("Paris", SearchOptions{FuzzyDistance: 3, Subdivisions: true})
	require.NotEmpty(t, matches)
	assert.Equal(t, "FR-75", matches[0].Code)
	for i := 1; i < len(matches); i++ {
		prev, cur := matches[i-1], matches[i]
		if prev.Distance == cur.Distance {
			assert.Less(t, prev.Code, cur.Code)
		} else {
			assert.Less(t, prev.Distance, cur.Distance)
		}
	}
}

func TestSearch_LongInputTruncated(t *testing.T) {
	s := newFixtureStore(t)

	long := make([]rune, maxSearchInputLen*4)
	for i := range long {
		long[i] = 'ü'
	}
	assert.Empty(t, s.Search(string(long), SearchOptions{FuzzyDistance: 3}))
}

func TestRecordNames(t *testing.T) {
	obj := map[string]any{
		"name":  "Germany",
		"names": map[string]any{"fr": "Allemagne", "de": "Deutschland", "xx": 42, "yy": ""},
	}
	assert.Equal(t, []string{"Germany", "Deutschland", "Allemagne"}, recordNames(obj))
	assert.Empty(t, recordNames(map[string]any{"name": 3}))
}
