package slibuy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
	"golang.org/x/time/rate"

	"slibuy-scraper/config"
	"slibuy-scraper/models"
	"slibuy-scraper/utils"
)

// ErrNoListing is returned when a refreshed page holds no listing at all.
var ErrNoListing = errors.New("no listing found on page")

// minTitleSimilarity is the Jaro-Winkler score above which a refreshed
// record with a different id is accepted as the same item.
const minTitleSimilarity = 0.85

// Getter fetches raw page HTML without rendering.
type Getter interface {
	Get(ctx context.Context, pageURL string) (string, error)
}

// PageFunc receives the records of one page as soon as it is parsed.
// Returning an error stops the walk.
type PageFunc func(page, total int, records []*models.Listing) error

// Fetcher drives page loads and hands the HTML to a Parser.
type Fetcher struct {
	cfg    *config.Config
	loader PageLoader
	getter Getter
	parser Parser
	pause  *rate.Limiter
	logger *utils.Logger
}

// NewFetcher wires a render surface, a plain HTTP getter and a parser.
func NewFetcher(cfg *config.Config, loader PageLoader, getter Getter, parser Parser, logger *utils.Logger) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		loader: loader,
		getter: getter,
		parser: parser,
		pause:  utils.NewLimiter(cfg.PagePause),
		logger: logger,
	}
}

// EstimatePages fetches page 1 and reads the total page count from it,
// falling back to the configured default.
func (f *Fetcher) EstimatePages(ctx context.Context) int {
	body, err := f.getter.Get(ctx, f.cfg.SearchURL(1))
	if err != nil {
		f.logger.Warn("[slibuy] Could not probe page count: %v; assuming %d pages", err, f.cfg.DefaultPages)
		return f.cfg.DefaultPages
	}
	n, ok := EstimateTotalPages(body, f.cfg.PageSize)
	if !ok && f.cfg.DefaultPages > 0 {
		f.logger.Warn("[slibuy] No page count on page 1; assuming %d pages", f.cfg.DefaultPages)
		return f.cfg.DefaultPages
	}
	return n
}

// FetchAll walks result pages from last to first, one at a time. Page
// loads start at least PagePause apart. pages <= 0 means estimate from
// page 1. A page that fails to load contributes no records. It returns the
// number of pages visited.
func (f *Fetcher) FetchAll(ctx context.Context, pages int, onPage PageFunc) (int, error) {
	total := pages
	if total <= 0 {
		total = f.EstimatePages(ctx)
	}
	f.logger.Info("[slibuy] Scraping %d pages, last to first", total)

	visited := 0
	for page := total; page >= 1; page-- {
		if err := f.pause.Wait(ctx); err != nil {
			return visited, err
		}

		records := f.FetchPage(ctx, f.cfg.SearchURL(page))
		visited++
		f.logger.Debug("[slibuy] Page %d/%d: %d listings", page, total, len(records))

		if err := onPage(page, total, records); err != nil {
			return visited, err
		}
	}
	return visited, nil
}

// FetchPage renders pageURL and parses it. Load failures are logged and
// yield nil.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) []*models.Listing {
	html, err := f.loader.Load(ctx, pageURL)
	if err != nil {
		f.logger.Warn("[slibuy] Page load failed for %s: %v", pageURL, err)
		return nil
	}
	return f.parser.Parse(html)
}

// FetchOne re-scrapes a single listing from its link. The plain HTML is
// tried first, then the rendered page. The record with the same id wins;
// otherwise the one whose title best matches, otherwise the first.
func (f *Fetcher) FetchOne(ctx context.Context, current *models.Listing) (*models.Listing, error) {
	if current.Link == "" {
		return nil, fmt.Errorf("slibuy: listing %s has no link", current.ID)
	}

	var records []*models.Listing
	body, err := f.getter.Get(ctx, current.Link)
	if err != nil {
		f.logger.Debug("[slibuy] Plain fetch of %s failed: %v", current.Link, err)
	} else {
		records = f.parser.Parse(body)
	}
	if len(records) == 0 && f.loader != nil {
		records = f.FetchPage(ctx, current.Link)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("slibuy: refresh %s: %w", current.ID, ErrNoListing)
	}

	rec := pickRecord(current, records)
	rec.ID = current.ID
	return rec, nil
}

func pickRecord(current *models.Listing, records []*models.Listing) *models.Listing {
	for _, r := range records {
		if r.ID == current.ID {
			return r
		}
	}

	want := strings.ToLower(current.Title)
	best, bestScore := records[0], 0.0
	for _, r := range records {
		score := matchr.JaroWinkler(want, strings.ToLower(r.Title), false)
		if score > bestScore {
			best, bestScore = r, score
		}
	}
	if bestScore < minTitleSimilarity {
		return records[0]
	}
	return best
}
