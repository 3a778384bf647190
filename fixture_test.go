package iso3166

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// fixtureDataset mirrors the upstream document shape. "xk" is deliberately
// lower-case to exercise key canonicalization.
var fixtureDataset = []byte(`{
  "US": {"iso": "US", "name": "United States", "names": {"en": "United States", "fr": "États-Unis"},
         "regions": [{"iso": "TX", "name": "Texas", "names": {"en": "Texas"}}, {"iso": "CA", "name": "California"}]},
  "FR": {"iso": "FR", "name": "France", "names": {"de": "Frankreich"}, "regions": [{"iso": "75", "name": "Paris"}]},
  "DE": {"iso": "DE", "name": "Germany", "names": {"de": "Deutschland"}, "regions": []},
  "AD": {"iso": "AD", "name": "Andorra", "population": 77265, "area": 467.63, "tags": ["small", true, null]},
  "xk": "Kosovo"
}`)

// fixtureCodes are the canonical codes of fixtureDataset in ascending order.
var fixtureCodes = []string{"AD", "DE", "FR", "US", "XK"}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// fixtureServer serves body at /iso3166-2.json and counts requests.
type fixtureServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newFixtureServer(t testing.TB, body []byte) *fixtureServer {
	t.Helper()
	srv := &fixtureServer{}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.hits.Add(1)
		if r.URL.Path != "/iso3166-2.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (s *fixtureServer) datasetURL() string {
	return s.URL + "/iso3166-2.json"
}

// fixtureOptions points a store at srv with a fresh cache directory and the
// digest of fixtureDataset.
func fixtureOptions(t testing.TB, srv *fixtureServer) (string, []Option) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "cache")
	return dir, []Option{
		WithCacheDir(dir),
		WithSourceURL(srv.datasetURL()),
		WithExpectedHash(sha256Hex(fixtureDataset)),
	}
}
