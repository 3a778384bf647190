// Command update-cache refreshes the iso3166 cache artifact from the remote source.
//
// Usage:
//
//	go run ./cmd/update-cache [-cache-dir ./iso3166-cache] [-url URL] [-hash SHA256]
//
// The existing artifact is removed, the dataset is fetched and verified
// against the expected digest, written back to the cache directory and
// checked with a few known codes.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/andreiashu/iso3166"
)

func main() {
	cacheDir := flag.String("cache-dir", "./iso3166-cache", "directory for the cache artifact")
	sourceURL := flag.String("url", iso3166.DefaultSourceURL, "dataset source URL")
	hash := flag.String("hash", iso3166.DefaultExpectedHash, "expected SHA-256 digest of the dataset")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []iso3166.Option{
		iso3166.WithCacheDir(*cacheDir),
		iso3166.WithSourceURL(*sourceURL),
		iso3166.WithExpectedHash(*hash),
		iso3166.WithLogger(logger),
	}

	fmt.Println("Refreshing iso3166 cache...")
	if err := iso3166.RemoveCache(opts...); err != nil {
		fail(err)
	}

	s, err := iso3166.NewStore(true, opts...)
	if err != nil {
		fail(err)
	}
	fmt.Printf("      Codes: %d\n", s.Len())

	if err := iso3166.VerifyCache(opts...); err != nil {
		fail(err)
	}
	fmt.Println("      Cache digest: OK")

	if err := s.Validate(); err != nil {
		fail(err)
	}
	fmt.Println("      Known codes: OK")
	fmt.Println("Cache refreshed successfully.")
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
