package iso3166

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"sort"
	"strings"
)

const (
	// DefaultSourceURL is where the dataset is fetched from on a cache miss.
	DefaultSourceURL = "https://raw.githubusercontent.com/sebst/pyiso3166/master/data/iso3166-2.json"

	// DefaultExpectedHash is the SHA-256 hex digest of the dataset at DefaultSourceURL.
	DefaultExpectedHash = "e56de6051b8e80f5aa1cd93a8d1ea3af142b34c5b54720405ce2c3a0e9816790"

	// cacheFileName is the name of the cache artifact inside Config.CacheDir.
	cacheFileName = "iso3166-2.json"
)

// Record is the decoded JSON value stored for one code. Objects decode to
// map[string]any, arrays to []any and numbers to json.Number.
type Record = any

// Config contains configuration options for Store initialization.
type Config struct {
	CacheDir     string       // Directory holding the cache artifact (default: "./iso3166-cache")
	SourceURL    string       // Remote dataset location
	ExpectedHash string       // SHA-256 hex digest the acquired bytes must match
	HTTPClient   *http.Client // Client used for http/https sources
	Logger       *slog.Logger
}

// Option is a functional option for configuring a Store.
type Option func(*Config)

// WithCacheDir sets the directory for the cache artifact.
func WithCacheDir(dir string) Option {
	return func(c *Config) {
		c.CacheDir = dir
	}
}

// WithSourceURL overrides the remote dataset location.
func WithSourceURL(url string) Option {
	return func(c *Config) {
		c.SourceURL = url
	}
}

// WithExpectedHash overrides the SHA-256 digest acquired bytes are checked against.
func WithExpectedHash(hash string) Option {
	return func(c *Config) {
		c.ExpectedHash = hash
	}
}

// WithHTTPClient sets the client used for remote fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithLogger sets the logger used for cache and fetch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	return &Config{
		CacheDir:     "./iso3166-cache",
		SourceURL:    DefaultSourceURL,
		ExpectedHash: DefaultExpectedHash,
		HTTPClient:   httpClient,
		Logger:       slog.Default(),
	}
}

func newConfig(opts []Option) *Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = httpClient
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// Store provides read-only access to the ISO 3166-2 dataset.
// All state is built in NewStore and never mutated, so a Store is safe for
// concurrent use.
type Store struct {
	data   map[string]Record // canonical (upper-case) code -> record
	keys   []string          // data keys in ascending order
	config *Config
}

// NewStore loads the dataset, verifies its SHA-256 digest and indexes it.
//
// When useCache is true the cache artifact is read if present; on a miss the
// dataset is fetched from the source URL and written to the cache. When
// useCache is false the source URL is always fetched and the cache is left
// untouched.
//
// Example:
//
//	s, err := iso3166.NewStore(true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	us, err := s.Get("us")
func NewStore(useCache bool, opts ...Option) (*Store, error) {
	cfg := newConfig(opts)

	content, origin, err := acquire(cfg, useCache)
	if err != nil {
		return nil, err
	}
	if err := verifyDigest(content, cfg.ExpectedHash, origin); err != nil {
		return nil, err
	}

	data, err := parseDataset(content)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cfg.Logger.Debug("iso3166 dataset loaded", "origin", origin.String(), "codes", len(keys))
	return &Store{data: data, keys: keys, config: cfg}, nil
}

// verifyDigest checks content against the expected SHA-256 hex digest.
func verifyDigest(content []byte, expected string, origin Origin) error {
	sum := sha256.Sum256(content)
	actual := hex.EncodeToString(sum[:])
	if actual != strings.ToLower(strings.TrimSpace(expected)) {
		return &IntegrityError{Expected: expected, Actual: actual, Origin: origin}
	}
	return nil
}

// parseDataset decodes a JSON object of code -> record, canonicalizing codes
// to upper case.
func parseDataset(content []byte) (map[string]Record, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("parsing dataset: document is null")
	}

	data := make(map[string]Record, len(raw))
	for code, msg := range raw {
		key := toUpper(code)
		if _, dup := data[key]; dup {
			return nil, fmt.Errorf("parsing dataset: duplicate code %q", key)
		}
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("parsing record %q: %w", code, err)
		}
		data[key] = rec
	}
	return data, nil
}

// Get returns the record for code. The lookup is case-insensitive.
func (s *Store) Get(code string) (Record, error) {
	rec, ok := s.data[toUpper(code)]
	if !ok {
		return nil, &KeyNotFoundError{Code: code}
	}
	return rec, nil
}

// Has reports whether code is present in the dataset.
func (s *Store) Has(code string) bool {
	_, ok := s.data[toUpper(code)]
	return ok
}

// Len returns the number of codes in the dataset.
func (s *Store) Len() int {
	return len(s.keys)
}

// Keys returns the dataset codes in ascending order. The returned slice is a copy.
func (s *Store) Keys() []string {
	return append([]string(nil), s.keys...)
}

// All returns a sequence of (code, record) pairs in ascending code order.
// Every call starts a new iteration with its own position, so sequences can
// be ranged over repeatedly and from several goroutines at once.
func (s *Store) All() iter.Seq2[string, Record] {
	return func(yield func(string, Record) bool) {
		for _, k := range s.keys {
			if !yield(k, s.data[k]) {
				return
			}
		}
	}
}

// RemoveCache deletes the store's cache artifact. A missing artifact is not an error.
// The loaded dataset is unaffected; the next NewStore with caching enabled refetches.
func (s *Store) RemoveCache() error {
	return removeCacheFile(cachePath(s.config))
}

// toUpper canonicalizes a code. Uses the standard library so non-ASCII keys
// in the document are folded the same way as queries.
func toUpper(s string) string {
	return strings.ToUpper(s)
}

// toLower is used for case-insensitive name comparison.
func toLower(s string) string {
	return strings.ToLower(s)
}
