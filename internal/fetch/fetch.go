// Package fetch downloads remote plaintext word lists and normalizes them.
// A source that cannot be fetched yields a failed result instead of an error,
// so one unreachable list never aborts a merge run.
package fetch

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/vesaa/spellstacks/internal/config"
	"github.com/vesaa/spellstacks/internal/models"
	"golang.org/x/sync/errgroup"
)

// Fetcher retrieves word lists over HTTP.
type Fetcher struct {
	Client       *http.Client
	UserAgent    string
	MaxBodyBytes int64
	MaxWordLen   int
	// Parallelism caps concurrent downloads in FetchAll; values below 2 fetch sequentially.
	Parallelism int
}

// New builds a Fetcher from the fetch and merge settings.
func New(cfg *config.Config) *Fetcher {
	return &Fetcher{
		Client:       &http.Client{Timeout: cfg.Fetch.Timeout},
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		MaxWordLen:   cfg.Merge.MaxWordLen,
		Parallelism:  cfg.Fetch.Parallelism,
	}
}

// Fetch downloads src and parses it into a WordList. Transport, status and
// read failures are reported through FetchResult.Err.
func (f *Fetcher) Fetch(ctx context.Context, src models.Source) models.FetchResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return models.Failed(src, "building request: %v", err)
	}
	// Some hosts reject clients without a browser-like User-Agent.
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/plain,*/*;q=0.8")

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return models.Failed(src, "request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.Failed(src, "server returned %s", resp.Status)
	}

	body := resp.Body
	if f.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(nil, resp.Body, f.MaxBodyBytes)
	}

	maxLen := f.MaxWordLen
	if maxLen <= 0 {
		maxLen = models.MaxWordLen
	}
	words, stats, err := ParseWords(body, src.Mode, maxLen)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return models.Failed(src, "body exceeds %d bytes", tooLarge.Limit)
		}
		return models.Failed(src, "reading body: %v", err)
	}
	return models.FetchResult{Source: src, Words: words, Stats: stats}
}

// FetchAll fetches every source and returns one result per source, in the
// same order as sources.
func (f *Fetcher) FetchAll(ctx context.Context, sources []models.Source) []models.FetchResult {
	results := make([]models.FetchResult, len(sources))

	limit := f.Parallelism
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, src := range sources {
		g.Go(func() error {
			if limit == 1 {
				log.Printf("[fetch] fetching %s from %s ...", src, src.URL)
			}
			res := f.Fetch(ctx, src)
			if res.OK() {
				log.Printf("[fetch] %s: got %d valid words (%d lines, %d rejected)",
					src, res.Words.Len(), res.Stats.Lines, res.Stats.Rejected)
			} else {
				log.Printf("[fetch] %s: skipped: %v", src, res.Err)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
	return results
}
