package services

import (
	"sort"
	"strings"
)

// SortKey selects the column views are ordered by.
type SortKey string

const (
	SortPrice     SortKey = "price"
	SortPct       SortKey = "pctOfMsrp"
	SortTitle     SortKey = "title"
	SortEndsAt    SortKey = "endsAt"
	SortScrapedAt SortKey = "scrapedAt"
)

// SortKeys lists the keys in the order the UI cycles through them.
var SortKeys = []SortKey{SortEndsAt, SortPrice, SortPct, SortTitle, SortScrapedAt}

// ParseSortKey accepts the key names plus a few short aliases. Unknown
// names fall back to SortEndsAt.
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "price":
		return SortPrice
	case "pct", "pctofmsrp", "msrp":
		return SortPct
	case "title":
		return SortTitle
	case "scrapedat", "age", "scraped":
		return SortScrapedAt
	}
	return SortEndsAt
}

// DefaultDesc is the direction a key starts in: soonest-ending first,
// everything else largest first.
func DefaultDesc(key SortKey) bool {
	return key != SortEndsAt
}

// Next returns the key after k in SortKeys.
func (k SortKey) Next() SortKey {
	for i, key := range SortKeys {
		if key == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortKeys[0]
}

// Sort orders views in place. The sort is stable and views without a
// value for key always go last, whichever the direction.
func Sort(views []*View, key SortKey, desc bool) {
	sort.SliceStable(views, func(i, j int) bool {
		return less(views[i], views[j], key, desc)
	})
}

func less(a, b *View, key SortKey, desc bool) bool {
	if key == SortTitle {
		at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
		switch {
		case at == "" || bt == "":
			return at != "" && bt == ""
		case desc:
			return at > bt
		default:
			return at < bt
		}
	}

	av, aok := numericValue(a, key)
	bv, bok := numericValue(b, key)
	switch {
	case !aok || !bok:
		return aok && !bok
	case desc:
		return av > bv
	default:
		return av < bv
	}
}

func numericValue(v *View, key SortKey) (float64, bool) {
	switch key {
	case SortPrice:
		if v.PriceNum != nil {
			return *v.PriceNum, true
		}
	case SortPct:
		if v.PctOfMSRP != nil {
			return *v.PctOfMSRP, true
		}
	case SortEndsAt:
		if v.EndsAt != nil {
			return float64(*v.EndsAt), true
		}
	case SortScrapedAt:
		if v.ScrapedAt > 0 {
			return float64(v.ScrapedAt), true
		}
	}
	return 0, false
}
