package services

import (
	"dario.cat/mergo"

	"slibuy-scraper/models"
)

// Merge folds a freshly scraped batch into the cache and returns the new
// map; existing is not modified. Fresh non-empty fields win, empty fresh
// fields keep the cached value and ScrapedAt never moves backwards.
func Merge(existing map[string]*models.Listing, fresh []*models.Listing) map[string]*models.Listing {
	out := make(map[string]*models.Listing, len(existing)+len(fresh))
	for id, l := range existing {
		out[id] = l
	}

	for _, f := range fresh {
		if f == nil || f.ID == "" {
			continue
		}
		prev, ok := out[f.ID]
		if !ok {
			out[f.ID] = f.Clone()
			continue
		}
		out[f.ID] = mergeListing(prev, f)
	}
	return out
}

func mergeListing(prev, fresh *models.Listing) *models.Listing {
	merged := fresh.Clone()
	// mergo only fills zero-valued fields of merged, so fresh values stay.
	if err := mergo.Merge(merged, prev.Clone()); err != nil {
		return prev
	}
	if prev.ScrapedAt > merged.ScrapedAt {
		merged.ScrapedAt = prev.ScrapedAt
	}
	return merged
}
