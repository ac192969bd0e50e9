package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"slibuy-scraper/models"
)

func f64(v float64) *float64 { return &v }

func TestMergeKeepsCachedFields(t *testing.T) {
	existing := map[string]*models.Listing{
		"1": {ID: "1", Title: "Lamp", Price: "$5", PriceValue: f64(5), ScrapedAt: 20},
	}
	fresh := []*models.Listing{
		{ID: "1", Title: "Desk Lamp", ScrapedAt: 10},
		{ID: "2", Title: "Chair", ScrapedAt: 30},
		{Title: "no id"},
		nil,
	}

	got := Merge(existing, fresh)

	want := map[string]*models.Listing{
		"1": {ID: "1", Title: "Desk Lamp", Price: "$5", PriceValue: f64(5), ScrapedAt: 20},
		"2": {ID: "2", Title: "Chair", ScrapedAt: 30},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
	if existing["1"].Title != "Lamp" {
		t.Error("Merge must not modify the existing map's records")
	}
}

func TestMergeFreshValuesWin(t *testing.T) {
	existing := map[string]*models.Listing{
		"1": {ID: "1", Price: "$5", PriceValue: f64(5), Status: models.StatusLosing, ScrapedAt: 10},
	}
	got := Merge(existing, []*models.Listing{
		{ID: "1", Price: "$8", PriceValue: f64(8), Status: models.StatusWinning, ScrapedAt: 40},
	})

	l := got["1"]
	if l.Price != "$8" || *l.PriceValue != 8 || l.Status != models.StatusWinning || l.ScrapedAt != 40 {
		t.Errorf("fresh values should win, got %+v", l)
	}
}

func TestMergeIdempotent(t *testing.T) {
	batch := []*models.Listing{
		{ID: "1", Title: "Lamp", Price: "$5", PriceValue: f64(5), ScrapedAt: 20},
		{ID: "2", Title: "Chair", TimeLeft: "2h", ScrapedAt: 20},
	}
	once := Merge(nil, batch)
	twice := Merge(once, batch)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("merging the same batch twice changed the cache (-once +twice):\n%s", diff)
	}
}
