package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"slibuy-scraper/config"
	"slibuy-scraper/models"
	"slibuy-scraper/scraper/slibuy"
	"slibuy-scraper/services"
	"slibuy-scraper/storage"
	"slibuy-scraper/utils"
)

// app bundles what every command needs: config, logger and the opened
// state store. The browser is only launched when a command fetches pages.
type app struct {
	cfg      *config.Config
	logger   *utils.Logger
	state    *storage.State
	closeLog io.Closer

	mu      sync.Mutex
	browser *slibuy.BrowserLoader
	fetcher *slibuy.Fetcher
}

// openApp loads config and opens the store. With logToFile the log goes to
// LOG_FILE instead of the terminal.
func openApp(cmd *cobra.Command, logToFile bool) (*app, error) {
	cfg := config.Load()
	if flagStore != "" {
		cfg.StoreDriver = flagStore
	}

	level := utils.ParseLevel(cfg.LogLevel)
	if flagDebug {
		level = utils.LevelDebug
	}

	a := &app{cfg: cfg}
	if logToFile {
		logger, closer, err := utils.NewFileLogger(cfg.LogFile, level)
		if err != nil {
			return nil, err
		}
		a.logger, a.closeLog = logger, closer
	} else {
		a.logger = utils.NewLogger()
		a.logger.SetLevel(level)
	}

	st, err := storage.Open(cmd.Context(), cfg, a.logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	a.state = st
	return a, nil
}

// Close stops the browser and releases the store.
func (a *app) Close() {
	a.mu.Lock()
	if a.browser != nil {
		a.browser.Close()
		a.browser = nil
	}
	a.mu.Unlock()

	if a.state != nil {
		if err := a.state.Close(); err != nil {
			a.logger.Warn("[app] Closing store: %v", err)
		}
	}
	if a.closeLog != nil {
		a.closeLog.Close()
	}
}

func (a *app) now() time.Time { return time.Now() }

func (a *app) parser() *slibuy.HTMLParser {
	return slibuy.NewHTMLParser(a.cfg.BaseURL, a.cfg.SearchPath, services.NewCleaner(a.logger))
}

// Fetcher launches the browser on first use.
func (a *app) Fetcher(ctx context.Context) (*slibuy.Fetcher, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fetcher != nil {
		return a.fetcher, nil
	}
	browser, err := slibuy.NewBrowserLoader(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.browser = browser
	a.fetcher = slibuy.NewFetcher(a.cfg, browser, slibuy.NewClient(a.cfg, a.logger), a.parser(), a.logger)
	return a.fetcher, nil
}

// scrape walks the result pages and persists after every page so an
// interrupted run keeps what it got. onPage may be nil.
func (a *app) scrape(ctx context.Context, pages int, onPage func(page, total, records int)) (map[string]*models.Listing, error) {
	f, err := a.Fetcher(ctx)
	if err != nil {
		return nil, err
	}

	var cache map[string]*models.Listing
	found := 0
	visited, err := f.FetchAll(ctx, pages, func(page, total int, records []*models.Listing) error {
		merged, err := a.state.MergeAndSave(ctx, records)
		if err != nil {
			return err
		}
		cache = merged
		found += len(records)
		if onPage != nil {
			onPage(page, total, len(records))
		}
		return nil
	})
	a.logger.Info("[scrape] %d pages, %d listings seen, %d cached", visited, found, len(cache))
	return cache, err
}

// refreshOne re-scrapes l and stores the result.
func (a *app) refreshOne(ctx context.Context, l *models.Listing) (map[string]*models.Listing, error) {
	f, err := a.Fetcher(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := f.FetchOne(ctx, l)
	if err != nil {
		return nil, err
	}
	return a.state.MergeAndSave(ctx, []*models.Listing{rec})
}

// fetchPage renders a site page such as the bids or won list and merges
// what it finds into the cache.
func (a *app) fetchPage(ctx context.Context, path string) ([]*models.Listing, error) {
	f, err := a.Fetcher(ctx)
	if err != nil {
		return nil, err
	}
	records := f.FetchPage(ctx, a.cfg.PageURL(path))
	if len(records) == 0 {
		return nil, nil
	}
	if _, err := a.state.MergeAndSave(ctx, records); err != nil {
		return records, err
	}
	return records, nil
}

// views loads the cache and runs the filter/sort pipeline. edit, when not
// nil, adjusts the saved settings for this call only.
func (a *app) views(ctx context.Context, query string, edit func(*models.Settings)) ([]*services.View, error) {
	cache, watch, settings, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}
	if edit != nil {
		edit(&settings)
	}
	return services.Build(cache, settings, query, watch, a.now()), nil
}

// --- ui.Backend ---

func (a *app) Load(ctx context.Context) (map[string]*models.Listing, *utils.KeySet, models.Settings, error) {
	cache, err := a.state.LoadCache(ctx)
	if err != nil {
		return nil, nil, models.Settings{}, err
	}
	watch, err := a.state.LoadWatch(ctx)
	if err != nil {
		return nil, nil, models.Settings{}, err
	}
	settings, err := a.state.LoadSettings(ctx)
	if err != nil {
		return nil, nil, models.Settings{}, err
	}
	return cache, watch, settings, nil
}

func (a *app) SaveSettings(ctx context.Context, s models.Settings) error {
	return a.state.SaveSettings(ctx, s)
}

func (a *app) ToggleWatch(ctx context.Context, id string) (bool, error) {
	return a.state.ToggleWatch(ctx, id)
}

func (a *app) Refresh(ctx context.Context, l *models.Listing) (map[string]*models.Listing, error) {
	return a.refreshOne(ctx, l)
}

func (a *app) Rescrape(ctx context.Context) (map[string]*models.Listing, error) {
	return a.scrape(ctx, 0, nil)
}
