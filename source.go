package iso3166

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"
)

// httpClient is the shared default client. No timeout is set: a fetch runs
// to completion or fails with the transport error. Use WithHTTPClient to bound it.
var httpClient = &http.Client{}

// fetchGroup coalesces concurrent cache misses for the same cache path so one
// process performs a single download.
var fetchGroup singleflight.Group

// cachePath returns the location of the cache artifact for cfg.
func cachePath(cfg *Config) string {
	return filepath.Join(cfg.CacheDir, cacheFileName)
}

// acquire returns the raw dataset bytes and where they came from.
func acquire(cfg *Config, useCache bool) ([]byte, Origin, error) {
	if !useCache {
		content, err := fetchSource(cfg)
		return content, OriginRemote, err
	}

	path := cachePath(cfg)
	content, err := os.ReadFile(path)
	if err == nil {
		cfg.Logger.Debug("iso3166 cache hit", "path", path)
		return content, OriginCache, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, OriginCache, fmt.Errorf("reading cache %s: %w", path, err)
	}

	cfg.Logger.Debug("iso3166 cache miss", "path", path, "url", cfg.SourceURL)
	v, err, _ := fetchGroup.Do(path, func() (any, error) {
		content, err := fetchSource(cfg)
		if err != nil {
			return nil, err
		}
		// Only verified bytes are persisted; a bad download must not poison the cache.
		if err := verifyDigest(content, cfg.ExpectedHash, OriginRemote); err != nil {
			return nil, err
		}
		if err := writeCacheFile(path, content); err != nil {
			return nil, err
		}
		return content, nil
	})
	if err != nil {
		return nil, OriginRemote, err
	}
	return v.([]byte), OriginRemote, nil
}

// fetchSource retrieves the dataset from cfg.SourceURL, dispatching on its scheme.
func fetchSource(cfg *Config) ([]byte, error) {
	u, err := url.Parse(cfg.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: source URL %q: %v", ErrNotImplemented, cfg.SourceURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		cfg.Logger.Debug("iso3166 fetching dataset", "url", cfg.SourceURL)
		return fetchHTTP(cfg.HTTPClient, cfg.SourceURL)
	case "file":
		return nil, fmt.Errorf("%w: loading from files is not supported", ErrNotImplemented)
	}
	return nil, fmt.Errorf("%w: scheme %q is not supported", ErrNotImplemented, u.Scheme)
}

func fetchHTTP(client *http.Client, url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP GET %s: status %d", url, resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: reading body: %w", url, err)
	}
	return content, nil
}

// writeCacheFile persists content at path via a temp file and rename, so
// readers never observe a partially written artifact.
func writeCacheFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	out, err := os.CreateTemp(dir, cacheFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache file in %s: %w", dir, err)
	}

	success := false
	defer func() {
		if !success {
			out.Close()
			os.Remove(out.Name())
		}
	}()

	if _, err := out.Write(content); err != nil {
		return fmt.Errorf("writing cache file %s: %w", out.Name(), err)
	}
	if err := out.Chmod(0644); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", out.Name(), err)
	}
	// Close explicitly to catch flush errors before the rename.
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing cache file %s: %w", out.Name(), err)
	}
	if err := os.Rename(out.Name(), path); err != nil {
		return fmt.Errorf("installing cache file %s: %w", path, err)
	}
	success = true
	return nil
}

func removeCacheFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing cache %s: %w", path, err)
	}
	return nil
}

// RemoveCache deletes the cache artifact selected by opts without loading a store.
func RemoveCache(opts ...Option) error {
	return removeCacheFile(cachePath(newConfig(opts)))
}

// VerifyCache checks the cache artifact against the expected digest without
// touching the network. A missing artifact yields an error matching fs.ErrNotExist.
func VerifyCache(opts ...Option) error {
	cfg := newConfig(opts)
	path := cachePath(cfg)
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading cache %s: %w", path, err)
	}
	return verifyDigest(content, cfg.ExpectedHash, OriginCache)
}
