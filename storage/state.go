package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"slibuy-scraper/config"
	"slibuy-scraper/models"
	"slibuy-scraper/services"
	"slibuy-scraper/utils"
)

// Keys of the persisted documents.
const (
	CacheKey    = "sliBuy_cache_v1"
	SettingsKey = "sliBuy_settings_v1"
	WatchKey    = "sliScraperWatch_v1"
)

// KeywordList names one of the two keyword lists held in Settings.
type KeywordList string

const (
	Targets   KeywordList = "targets"
	Blacklist KeywordList = "blacklist"
)

// State is the typed view over the key-value store. Every pipeline stage
// receives the State it works on instead of reaching for globals.
// Read-modify-write methods are serialised within one process only.
type State struct {
	kv     KV
	logger *utils.Logger
	mu     sync.Mutex
}

// NewState wraps a backend.
func NewState(kv KV, logger *utils.Logger) *State {
	return &State{kv: kv, logger: logger}
}

// Open picks the backend named by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*State, error) {
	var kv KV
	var err error
	switch strings.ToLower(cfg.StoreDriver) {
	case "", "sqlite":
		kv, err = OpenSQLite(cfg.SQLitePath)
	case "postgres", "postgresql":
		kv, err = OpenPostgres(ctx, cfg.DSN())
	default:
		return nil, fmt.Errorf("storage: unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}
	return NewState(kv, logger), nil
}

// Close releases the backend.
func (s *State) Close() error {
	return s.kv.Close()
}

// load decodes key into dst. A missing key leaves dst untouched; a value
// that does not decode is logged and reported as missing.
func (s *State) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn("[state] Stored %s is unreadable, using defaults: %v", key, err)
		return false, nil
	}
	return true, nil
}

func (s *State) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("state: encode %s: %w", key, err)
	}
	return s.kv.Put(ctx, key, raw)
}

// LoadCache returns the cached listings keyed by id.
func (s *State) LoadCache(ctx context.Context) (map[string]*models.Listing, error) {
	cache := make(map[string]*models.Listing)
	ok, err := s.load(ctx, CacheKey, &cache)
	if err != nil {
		return nil, err
	}
	if !ok || cache == nil {
		return make(map[string]*models.Listing), nil
	}
	for id, l := range cache {
		if l == nil {
			delete(cache, id)
			continue
		}
		if l.ID == "" {
			l.ID = id
		}
	}
	return cache, nil
}

// SaveCache replaces the cached listings.
func (s *State) SaveCache(ctx context.Context, cache map[string]*models.Listing) error {
	return s.save(ctx, CacheKey, cache)
}

// ClearCache drops every cached listing.
func (s *State) ClearCache(ctx context.Context) error {
	return s.kv.Delete(ctx, CacheKey)
}

// MergeAndSave folds fresh records into the stored cache and writes it
// back. It returns the merged cache.
func (s *State) MergeAndSave(ctx context.Context, fresh []*models.Listing) (map[string]*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache, err := s.LoadCache(ctx)
	if err != nil {
		return nil, err
	}
	merged := services.Merge(cache, fresh)
	if err := s.SaveCache(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// LoadSettings returns saved settings laid over DefaultSettings.
func (s *State) LoadSettings(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()
	ok, err := s.load(ctx, SettingsKey, &settings)
	if err != nil {
		return models.DefaultSettings(), err
	}
	if !ok {
		return models.DefaultSettings(), nil
	}
	return normaliseSettings(settings), nil
}

// SaveSettings persists settings.
func (s *State) SaveSettings(ctx context.Context, settings models.Settings) error {
	return s.save(ctx, SettingsKey, normaliseSettings(settings))
}

func normaliseSettings(st models.Settings) models.Settings {
	st.Targets = cleanKeywords(st.Targets)
	st.Blacklist = cleanKeywords(st.Blacklist)
	if st.Range.Days() == 0 && st.Range != models.RangeAll {
		st.Range = models.RangeAll
	}
	return st
}

func cleanKeywords(words []string) []string {
	out := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		key := strings.ToLower(w)
		if w == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
	}
	return out
}

// AddKeywords appends words to a keyword list and saves the settings.
func (s *State) AddKeywords(ctx context.Context, list KeywordList, words ...string) (models.Settings, error) {
	return s.updateKeywords(ctx, list, func(cur []string) []string {
		return append(cur, words...)
	})
}

// RemoveKeywords drops words (case-insensitive) from a keyword list.
func (s *State) RemoveKeywords(ctx context.Context, list KeywordList, words ...string) (models.Settings, error) {
	drop := make(map[string]struct{}, len(words))
	for _, w := range words {
		drop[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return s.updateKeywords(ctx, list, func(cur []string) []string {
		out := cur[:0]
		for _, w := range cur {
			if _, ok := drop[strings.ToLower(w)]; !ok {
				out = append(out, w)
			}
		}
		return out
	})
}

func (s *State) updateKeywords(ctx context.Context, list KeywordList, edit func([]string) []string) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.LoadSettings(ctx)
	if err != nil {
		return settings, err
	}
	switch list {
	case Targets:
		settings.Targets = edit(settings.Targets)
	case Blacklist:
		settings.Blacklist = edit(settings.Blacklist)
	default:
		return settings, fmt.Errorf("state: unknown keyword list %q", list)
	}
	settings = normaliseSettings(settings)
	return settings, s.SaveSettings(ctx, settings)
}

// LoadWatch returns the set of watched listing ids.
func (s *State) LoadWatch(ctx context.Context) (*utils.KeySet, error) {
	var ids []string
	ok, err := s.load(ctx, WatchKey, &ids)
	if err != nil || !ok {
		return utils.NewKeySet(), err
	}
	return utils.NewKeySet(ids...), nil
}

// SaveWatch persists the watch set as a sorted id list.
func (s *State) SaveWatch(ctx context.Context, watch *utils.KeySet) error {
	ids := watch.Keys()
	sort.Strings(ids)
	return s.save(ctx, WatchKey, ids)
}

// ToggleWatch flips membership of id and reports whether it is now watched.
func (s *State) ToggleWatch(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	watch, err := s.LoadWatch(ctx)
	if err != nil {
		return false, err
	}
	watched := watch.Add(id)
	if !watched {
		watch.Remove(id)
	}
	return watched, s.SaveWatch(ctx, watch)
}

// SetWatched adds or removes ids from the watch set.
func (s *State) SetWatched(ctx context.Context, watched bool, ids ...string) (*utils.KeySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	watch, err := s.LoadWatch(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if watched {
			watch.Add(id)
		} else {
			watch.Remove(id)
		}
	}
	return watch, s.SaveWatch(ctx, watch)
}
