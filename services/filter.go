package services

import (
	"sort"
	"strings"
	"time"

	"slibuy-scraper/models"
)

// Watchset answers watch-list membership.
type Watchset interface {
	Contains(id string) bool
}

// View is a listing plus the values derived for display. Views are
// throwaway copies; the cache is never touched through them.
type View struct {
	*models.Listing

	PriceNum    *float64
	Increased   *float64
	PctOfMSRP   *float64
	GroupKey    string
	GroupSize   int
	Ended       bool
	Watched     bool
	Target      bool
	Blacklisted bool
}

// NewView derives display values for one listing.
func NewView(l *models.Listing, s models.Settings, watch Watchset, now time.Time) *View {
	v := &View{
		Listing:     l.Clone(),
		GroupKey:    GroupKey(l.Title),
		Ended:       l.Ended(now),
		Target:      MatchesAny(l, s.Targets),
		Blacklisted: MatchesAny(l, s.Blacklist),
	}
	if watch != nil {
		v.Watched = watch.Contains(l.ID)
	}

	price := l.PriceValue
	if price == nil {
		if p, ok := ParsePrice(l.Price); ok {
			price = &p
		}
	}
	if price != nil {
		p := *price
		inc := Increased(p)
		v.PriceNum, v.Increased = &p, &inc
		if l.MSRP != nil && *l.MSRP > 0 {
			pct := PercentOfMSRP(inc, *l.MSRP)
			v.PctOfMSRP = &pct
		}
	}
	return v
}

// MatchesAny reports whether any keyword is a case-insensitive substring
// of the title or equals the listing id.
func MatchesAny(l *models.Listing, keywords []string) bool {
	title := strings.ToLower(l.Title)
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if k == l.ID || strings.Contains(title, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// Filter applies the user's settings and search text to records, in this
// order: price range, search text, targets-only, blacklist (a target match
// overrides it), watch-only, hide ended, ending-within range. Records
// without a parseable price pass the price check, and records without an
// end time pass the range check. Output order follows input order; group
// sizes are counted over the filtered set.
func Filter(records []*models.Listing, s models.Settings, query string, watch Watchset, now time.Time) []*View {
	q := strings.ToLower(strings.TrimSpace(query))
	var window int64
	if days := s.Range.Days(); days > 0 {
		window = now.Add(time.Duration(days) * 24 * time.Hour).UnixMilli()
	}

	out := make([]*View, 0, len(records))
	for _, l := range records {
		v := NewView(l, s, watch, now)

		if v.PriceNum != nil && (*v.PriceNum < s.PriceMin || *v.PriceNum > s.PriceMax) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(l.Title), q) {
			continue
		}
		if s.TargetsOnly && !v.Target {
			continue
		}
		if s.HideBlacklist && v.Blacklisted && !v.Target {
			continue
		}
		if s.WatchOnly && !v.Watched {
			continue
		}
		if s.HideEnded && v.Ended {
			continue
		}
		if window > 0 && l.EndsAt != nil && *l.EndsAt > window {
			continue
		}
		out = append(out, v)
	}

	counts := make(map[string]int, len(out))
	for _, v := range out {
		counts[v.GroupKey]++
	}
	for _, v := range out {
		v.GroupSize = counts[v.GroupKey]
	}
	return out
}

// SortedRecords returns the cache values in id order so downstream stable
// sorts are deterministic.
func SortedRecords(cache map[string]*models.Listing) []*models.Listing {
	out := make([]*models.Listing, 0, len(cache))
	for _, l := range cache {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Prioritize moves target matches to the front and blacklisted rows to the
// back, keeping the existing order inside each band.
func Prioritize(views []*View) {
	sort.SliceStable(views, func(i, j int) bool {
		return band(views[i]) < band(views[j])
	})
}

func band(v *View) int {
	switch {
	case v.Target:
		return 0
	case v.Blacklisted:
		return 2
	}
	return 1
}

// Build runs the whole view pipeline: filter, sort by the settings' sort
// key, then band by target and blacklist when TargetsFirst is set.
func Build(cache map[string]*models.Listing, s models.Settings, query string, watch Watchset, now time.Time) []*View {
	views := Filter(SortedRecords(cache), s, query, watch, now)
	Sort(views, ParseSortKey(s.SortKey), s.SortDesc)
	if s.TargetsFirst {
		Prioritize(views)
	}
	return views
}
