package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"slibuy-scraper/models"
)

// nonAlnumRegexp collapses punctuation and spacing in group keys
var nonAlnumRegexp = regexp.MustCompile(`[^a-z0-9]+`)

const groupKeyWords = 6

// GroupKey normalises a title into its bulk-group key: lowercase,
// non-alphanumerics collapsed to single spaces, first six words.
func GroupKey(title string) string {
	words := strings.Fields(nonAlnumRegexp.ReplaceAllString(strings.ToLower(title), " "))
	if len(words) > groupKeyWords {
		words = words[:groupKeyWords]
	}
	return strings.Join(words, " ")
}

// GroupOf returns the listings sharing key, in input order.
func GroupOf(records []*models.Listing, key string) []*models.Listing {
	var out []*models.Listing
	for _, l := range records {
		if GroupKey(l.Title) == key {
			out = append(out, l)
		}
	}
	return out
}

// BulkGroups returns stats for every group with at least minCount
// listings, largest first, ties by key.
func BulkGroups(records []*models.Listing, minCount int, now time.Time) []models.BulkStats {
	groups := make(map[string][]*models.Listing)
	for _, l := range records {
		key := GroupKey(l.Title)
		groups[key] = append(groups[key], l)
	}

	var out []models.BulkStats
	for key, g := range groups {
		if len(g) >= minCount {
			out = append(out, ComputeBulkStats(key, g, now))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// ComputeBulkStats splits a group into ended and active listings and
// reports the price spread of each. Listings without a price are counted
// but left out of the price figures.
func ComputeBulkStats(key string, group []*models.Listing, now time.Time) models.BulkStats {
	st := models.BulkStats{Key: key, Count: len(group)}
	var endedPrices, activePrices []float64

	for _, l := range group {
		p, ok := listingPrice(l)
		if l.Ended(now) {
			st.EndedCount++
			if ok {
				endedPrices = append(endedPrices, p)
			}
			continue
		}
		st.ActiveCount++
		if ok {
			activePrices = append(activePrices, p)
		}
	}

	st.EndedMin, st.EndedMax, st.EndedAvg = spread(endedPrices)
	st.ActiveMin, st.ActiveMax, st.ActiveAvg = spread(activePrices)
	return st
}

// BulkSummary renders stats as one sentence, e.g.
// "3 listings. 1 closed at $5 to $5 averaging $5.00. 2 open from $7 to $9 averaging $8.00."
func BulkSummary(st models.BulkStats) string {
	closed := "0 closed"
	if st.EndedCount > 0 {
		closed = fmt.Sprintf("%d closed at $%s to $%s averaging $%.2f",
			st.EndedCount, trimAmount(st.EndedMin), trimAmount(st.EndedMax), st.EndedAvg)
	}
	open := "0 open"
	if st.ActiveCount > 0 {
		open = fmt.Sprintf("%d open from $%s to $%s averaging $%.2f",
			st.ActiveCount, trimAmount(st.ActiveMin), trimAmount(st.ActiveMax), st.ActiveAvg)
	}
	return fmt.Sprintf("%d listings. %s. %s.", st.Count, closed, open)
}

func listingPrice(l *models.Listing) (float64, bool) {
	if l.PriceValue != nil {
		return *l.PriceValue, true
	}
	return ParsePrice(l.Price)
}

func spread(prices []float64) (min, max, avg float64) {
	if len(prices) == 0 {
		return 0, 0, 0
	}
	min, max = prices[0], prices[0]
	var total float64
	for _, p := range prices {
		total += p
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return min, max, round2(total / float64(len(prices)))
}

// trimAmount prints 5 as "5" and 5.5 as "5.50".
func trimAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
