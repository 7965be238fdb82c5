// Package scraper collects drawing prompts from public web pages. It is best
// effort: a page that cannot be fetched or parsed contributes nothing.
package scraper

import (
	"bytes"
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MinPrompts is the number of gathered prompts that must be exceeded for the
// live result to be used instead of the fallback catalog.
const MinPrompts = 5

var DefaultSources = []string{
	"https://artprompts.org/",
	"https://www.reddit.com/r/drawing/comments/drawing_prompts/",
	"https://www.deviantart.com/art-prompts/",
}

type Scraper struct {
	fetcher Fetcher
	sources []string
	logger  zerolog.Logger
}

func New(fetcher Fetcher, sources []string, logger zerolog.Logger) *Scraper {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	return &Scraper{fetcher: fetcher, sources: sources, logger: logger}
}

func (s *Scraper) Name() string { return "web" }

// FetchSource returns the prompts found at url, or nil on any failure.
func (s *Scraper) FetchSource(ctx context.Context, url string) []string {
	log := s.logger.With().Str("url", url).Logger()
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Warn().Err(err).Msg("fetch failed")
		return nil
	}
	prompts, err := Extract(bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Msg("extract failed")
		return nil
	}
	log.Debug().Int("prompts", len(prompts)).Msg("fetched prompts")
	return prompts
}

// Gather fetches every source concurrently and returns the deduplicated
// union in source order. The MinPrompts threshold is left to the caller,
// which may merge these with other sources first.
func (s *Scraper) Gather(ctx context.Context) []string {
	results := make([][]string, len(s.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, url := range s.sources {
		g.Go(func() error {
			results[i] = s.FetchSource(gctx, url)
			return nil
		})
	}
	_ = g.Wait()

	var all []string
	seen := make(map[string]struct{})
	for _, prompts := range results {
		for _, p := range prompts {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	s.logger.Info().Int("prompts", len(all)).Int("sources", len(s.sources)).Msg("gathered web prompts")
	return all
}

// Prompts implements the prompt source contract used by the idea generator.
func (s *Scraper) Prompts(ctx context.Context) ([]string, error) {
	return s.Gather(ctx), nil
}
