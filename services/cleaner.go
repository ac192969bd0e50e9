package services

import (
	"strings"
	"unicode"

	"slibuy-scraper/models"
	"slibuy-scraper/utils"
)

// Cleaner normalises freshly parsed listings: it tidies text, derives the
// numeric price and MSRP, drops non-listings and removes duplicate ids.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean processes raw listings in order and returns cleaned records. The
// first record seen for an id wins.
func (c *Cleaner) Clean(raw []*models.Listing) []*models.Listing {
	seen := make(map[string]struct{})
	result := make([]*models.Listing, 0, len(raw))

	for _, r := range raw {
		r.ID = strings.TrimSpace(r.ID)
		r.Title = normaliseText(r.Title)
		if r.ID == "" && r.Title == "" {
			c.logger.Debug("[cleaner] Dropping container with neither id nor title")
			continue
		}
		if r.ID == "" {
			c.logger.Debug("[cleaner] Dropping listing without id: %s", r.Title)
			continue
		}

		if _, dup := seen[r.ID]; dup {
			c.logger.Debug("[cleaner] Duplicate id skipped: %s", r.ID)
			continue
		}
		seen[r.ID] = struct{}{}

		if r.Title == "" {
			r.Title = "Unknown"
		}
		r.Price = normaliseText(r.Price)
		r.TimeLeft = normaliseText(r.TimeLeft)

		if r.PriceValue == nil {
			if v, ok := ParsePrice(r.Price); ok {
				r.PriceValue = &v
			}
		}
		if r.MSRP == nil {
			if v, ok := ParseMSRP(r.Title); ok {
				r.MSRP = &v
			}
		}

		result = append(result, r)
	}

	c.logger.Debug("[cleaner] Cleaned %d -> %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}
