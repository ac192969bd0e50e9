package slibuy

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"slibuy-scraper/config"
	"slibuy-scraper/models"
	"slibuy-scraper/utils"
)

// fakeSite serves canned HTML for both the render and the plain-GET paths.
type fakeSite struct {
	mu     sync.Mutex
	pages  map[string]string
	fail   map[string]bool
	loaded []string
	times  []time.Time
	got    []string
}

func (f *fakeSite) Load(_ context.Context, pageURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = append(f.loaded, pageURL)
	f.times = append(f.times, time.Now())
	if f.fail[pageURL] {
		return "", errors.New("render timeout")
	}
	return f.pages[pageURL], nil
}

type fakeGetter struct{ site *fakeSite }

func (g fakeGetter) Get(_ context.Context, pageURL string) (string, error) {
	g.site.mu.Lock()
	defer g.site.mu.Unlock()
	g.site.got = append(g.site.got, pageURL)
	body, ok := g.site.pages["GET "+pageURL]
	if !ok {
		return "", errors.New("404")
	}
	return body, nil
}

// lineParser turns "id|title" lines into listings.
type lineParser struct{}

func (lineParser) Parse(raw string) []*models.Listing {
	var out []*models.Listing
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		id, title, ok := strings.Cut(line, "|")
		if !ok {
			continue
		}
		out = append(out, &models.Listing{ID: id, Title: title})
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:      "https://www.slibuy.com",
		SearchPath:   "/search",
		PageSize:     100,
		DefaultPages: 5,
	}
}

func newTestFetcher(site *fakeSite) *Fetcher {
	return NewFetcher(testConfig(), site, fakeGetter{site}, lineParser{}, utils.Discard())
}

func TestFetchAllLastToFirst(t *testing.T) {
	cfg := testConfig()
	site := &fakeSite{
		pages: map[string]string{
			cfg.SearchURL(1): "1|one",
			cfg.SearchURL(2): "2|two",
			cfg.SearchURL(3): "3|three\n4|four",
		},
		fail: map[string]bool{cfg.SearchURL(2): true},
	}
	f := newTestFetcher(site)

	var order []int
	counts := map[int]int{}
	visited, err := f.FetchAll(context.Background(), 3, func(page, total int, records []*models.Listing) error {
		require.Equal(t, 3, total)
		order = append(order, page)
		counts[page] = len(records)
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, visited)
	require.Equal(t, []int{3, 2, 1}, order)
	require.Equal(t, map[int]int{3: 2, 2: 0, 1: 1}, counts)
}

func TestFetchAllEstimatesPages(t *testing.T) {
	cfg := testConfig()
	site := &fakeSite{pages: map[string]string{
		"GET " + cfg.SearchURL(1): `<div>Displaying 1 - 100 Of 150</div>`,
	}}
	f := newTestFetcher(site)

	visited, err := f.FetchAll(context.Background(), 0, func(int, int, []*models.Listing) error { return nil })
	require.NoError(t, err)
	require.Equal(t, 2, visited)
	require.Equal(t, []string{cfg.SearchURL(2), cfg.SearchURL(1)}, site.loaded)
}

func TestFetchAllFallsBackToDefaultPages(t *testing.T) {
	site := &fakeSite{pages: map[string]string{}}
	f := newTestFetcher(site)

	visited, err := f.FetchAll(context.Background(), 0, func(int, int, []*models.Listing) error { return nil })
	require.NoError(t, err)
	require.Equal(t, 5, visited)
}

func TestFetchAllPausesBetweenPages(t *testing.T) {
	cfg := testConfig()
	cfg.PagePause = 60 * time.Millisecond
	site := &fakeSite{pages: map[string]string{}}
	f := NewFetcher(cfg, site, fakeGetter{site}, lineParser{}, utils.Discard())

	visited, err := f.FetchAll(context.Background(), 3, func(int, int, []*models.Listing) error { return nil })
	require.NoError(t, err)
	require.Equal(t, 3, visited)
	require.Len(t, site.times, 3)
	for i := 1; i < len(site.times); i++ {
		gap := site.times[i].Sub(site.times[i-1])
		require.GreaterOrEqual(t, gap, 50*time.Millisecond, "gap before load %d", i+1)
	}
}

func TestFetchAllPauseHonoursCancel(t *testing.T) {
	cfg := testConfig()
	cfg.PagePause = time.Hour
	site := &fakeSite{pages: map[string]string{}}
	f := NewFetcher(cfg, site, fakeGetter{site}, lineParser{}, utils.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	visited, err := f.FetchAll(ctx, 3, func(int, int, []*models.Listing) error {
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, visited)
}

func TestFetchAllStopsOnCallbackError(t *testing.T) {
	site := &fakeSite{pages: map[string]string{}}
	f := newTestFetcher(site)

	stop := errors.New("disk full")
	visited, err := f.FetchAll(context.Background(), 4, func(int, int, []*models.Listing) error { return stop })
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, visited)
}

func TestFetchAllCancelled(t *testing.T) {
	site := &fakeSite{pages: map[string]string{}}
	f := newTestFetcher(site)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	visited, err := f.FetchAll(ctx, 4, func(int, int, []*models.Listing) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, visited)
}

func TestFetchOne(t *testing.T) {
	link := "https://www.slibuy.com/auction/2"
	current := &models.Listing{ID: "2", Title: "Standing Desk", Link: link}

	t.Run("plain GET match by id", func(t *testing.T) {
		site := &fakeSite{pages: map[string]string{"GET " + link: "1|Chair\n2|Standing Desk v2"}}
		rec, err := newTestFetcher(site).FetchOne(context.Background(), current)
		require.NoError(t, err)
		require.Equal(t, "Standing Desk v2", rec.Title)
		require.Empty(t, site.loaded, "render should not run when the GET had records")
	})

	t.Run("render fallback and title match", func(t *testing.T) {
		site := &fakeSite{pages: map[string]string{link: "9|Office Chair\n8|Standing desk"}}
		rec, err := newTestFetcher(site).FetchOne(context.Background(), current)
		require.NoError(t, err)
		require.Equal(t, "2", rec.ID)
		require.Equal(t, "Standing desk", rec.Title)
		require.Equal(t, []string{link}, site.loaded)
	})

	t.Run("no similar title takes first", func(t *testing.T) {
		site := &fakeSite{pages: map[string]string{"GET " + link: "9|Garden Hose\n8|Printer"}}
		rec, err := newTestFetcher(site).FetchOne(context.Background(), current)
		require.NoError(t, err)
		require.Equal(t, "2", rec.ID)
		require.Equal(t, "Garden Hose", rec.Title)
	})

	t.Run("nothing found", func(t *testing.T) {
		site := &fakeSite{pages: map[string]string{}}
		_, err := newTestFetcher(site).FetchOne(context.Background(), current)
		require.ErrorIs(t, err, ErrNoListing)
	})

	t.Run("no link", func(t *testing.T) {
		_, err := newTestFetcher(&fakeSite{}).FetchOne(context.Background(), &models.Listing{ID: "3"})
		require.Error(t, err)
	})
}
