package models

import (
	"regexp"
	"strings"
	"time"
)

// endedRegexp flags countdown text for auctions that are over
var endedRegexp = regexp.MustCompile(`(?i)ended|closed|finish(ed)?`)

// Status is the bid state reported by the watchlist and won pages.
// The zero value means the page did not say.
type Status string

const (
	StatusWatching Status = "Watching"
	StatusWinning  Status = "Winning"
	StatusLosing   Status = "Losing"
	StatusWon      Status = "Won"
	StatusUnknown  Status = "Unknown"
)

// ParseStatus maps the free text of a status badge to a Status.
func ParseStatus(s string) Status {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "winning"):
		return StatusWinning
	case strings.Contains(s, "losing"), strings.Contains(s, "outbid"):
		return StatusLosing
	case strings.Contains(s, "won"):
		return StatusWon
	case strings.Contains(s, "watch"):
		return StatusWatching
	}
	return StatusUnknown
}

func (s Status) String() string {
	if s == "" {
		return string(StatusUnknown)
	}
	return string(s)
}

// Listing is one auction item as cached locally. Field names in JSON match
// the keys used by the persisted cache map.
type Listing struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Price      string   `json:"price,omitempty"`
	PriceValue *float64 `json:"priceValue,omitempty"`
	MSRP       *float64 `json:"msrpValue,omitempty"`
	TimeLeft   string   `json:"timeRemaining,omitempty"`
	EndsAt     *int64   `json:"endsAt,omitempty"`
	Status     Status   `json:"status,omitempty"`
	ImageURL   string   `json:"imageUrl,omitempty"`
	Link       string   `json:"link,omitempty"`
	ScrapedAt  int64    `json:"scrapedAt"`
}

// Clone returns a deep copy so callers can mutate without touching the cache.
func (l *Listing) Clone() *Listing {
	c := *l
	if l.PriceValue != nil {
		v := *l.PriceValue
		c.PriceValue = &v
	}
	if l.MSRP != nil {
		v := *l.MSRP
		c.MSRP = &v
	}
	if l.EndsAt != nil {
		v := *l.EndsAt
		c.EndsAt = &v
	}
	return &c
}

// Ended reports whether the auction is over. A resolved end instant is
// authoritative; without one the raw countdown text decides.
func (l *Listing) Ended(now time.Time) bool {
	if l.EndsAt != nil {
		return *l.EndsAt <= now.UnixMilli()
	}
	return EndedText(l.TimeLeft)
}

// EndedText reports whether countdown text says the auction is over.
func EndedText(text string) bool {
	return endedRegexp.MatchString(text)
}

// Range restricts the view to listings ending within a rolling window.
type Range string

const (
	RangeToday Range = "today"
	Range2Days Range = "2days"
	Range3Days Range = "3days"
	RangeAll   Range = "all"
)

// Days returns the window length in days, or 0 for RangeAll and unknown values.
func (r Range) Days() int {
	switch r {
	case RangeToday:
		return 1
	case Range2Days:
		return 2
	case Range3Days:
		return 3
	}
	return 0
}

// Settings holds the user's view preferences. Missing keys in a saved
// record keep the values from DefaultSettings.
type Settings struct {
	Range         Range    `json:"range" yaml:"range"`
	Targets       []string `json:"targets" yaml:"targets"`
	Blacklist     []string `json:"blacklist" yaml:"blacklist"`
	PriceMin      float64  `json:"priceMin" yaml:"priceMin"`
	PriceMax      float64  `json:"priceMax" yaml:"priceMax"`
	HideBlacklist bool     `json:"hideBlacklist" yaml:"hideBlacklist"`
	TargetsOnly   bool     `json:"targetsOnly" yaml:"targetsOnly"`
	HideEnded     bool     `json:"hideEnded" yaml:"hideEnded"`
	WatchOnly     bool     `json:"watchOnly" yaml:"watchOnly"`
	SortKey       string   `json:"sortKey" yaml:"sortKey"`
	SortDesc      bool     `json:"sortDesc" yaml:"sortDesc"`
	TargetsFirst  bool     `json:"targetsFirst" yaml:"targetsFirst"`
}

// DefaultSettings returns the settings used when nothing has been saved.
func DefaultSettings() Settings {
	return Settings{
		Range:        RangeAll,
		Targets:      []string{},
		Blacklist:    []string{},
		PriceMin:     0,
		PriceMax:     999999,
		HideEnded:    true,
		SortKey:      "endsAt",
		TargetsFirst: true,
	}
}

// BulkStats summarises a group of listings sharing a normalized title.
type BulkStats struct {
	Key         string
	Count       int
	EndedCount  int
	EndedMin    float64
	EndedMax    float64
	EndedAvg    float64
	ActiveCount int
	ActiveMin   float64
	ActiveMax   float64
	ActiveAvg   float64
}

// InsightReport holds the computed analytics over the cached listings.
type InsightReport struct {
	TotalListings  int
	ActiveListings int
	EndedListings  int
	WatchedCount   int
	AveragePrice   float64
	MinPrice       float64
	MaxPrice       float64
	MostExpensive  *Listing
	BestDeals      []DealEntry
	LargestGroups  []BulkStats
	ListingsByStat map[Status]int
}

// DealEntry pairs a listing with its percent-of-MSRP.
type DealEntry struct {
	Listing *Listing
	Percent float64
}
