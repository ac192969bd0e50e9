package services

import (
	"testing"
	"time"

	"slibuy-scraper/models"
)

func testViews(records ...*models.Listing) []*View {
	out := make([]*View, len(records))
	for i, l := range records {
		out[i] = NewView(l, models.DefaultSettings(), nil, testNow)
	}
	return out
}

func TestSortMissingValuesLast(t *testing.T) {
	records := []*models.Listing{
		{ID: "a", PriceValue: f64(3)},
		{ID: "none"},
		{ID: "b", PriceValue: f64(1)},
	}

	views := testViews(records...)
	Sort(views, SortPrice, false)
	if got := viewIDs(views); got != "b,a,none" {
		t.Errorf("asc = %s; want b,a,none", got)
	}

	Sort(views, SortPrice, true)
	if got := viewIDs(views); got != "a,b,none" {
		t.Errorf("desc = %s; want a,b,none", got)
	}
}

func TestSortStable(t *testing.T) {
	views := testViews(
		&models.Listing{ID: "1", EndsAt: endsIn(time.Hour)},
		&models.Listing{ID: "2", EndsAt: endsIn(time.Minute)},
		&models.Listing{ID: "3", EndsAt: endsIn(time.Hour)},
	)
	Sort(views, SortEndsAt, false)
	if got := viewIDs(views); got != "2,1,3" {
		t.Errorf("endsAt asc = %s; want 2,1,3", got)
	}
}

func TestSortTitle(t *testing.T) {
	views := testViews(
		&models.Listing{ID: "1", Title: "banana"},
		&models.Listing{ID: "2"},
		&models.Listing{ID: "3", Title: "Apple"},
	)
	Sort(views, SortTitle, false)
	if got := viewIDs(views); got != "3,1,2" {
		t.Errorf("title asc = %s; want 3,1,2", got)
	}
	Sort(views, SortTitle, true)
	if got := viewIDs(views); got != "1,3,2" {
		t.Errorf("title desc = %s; want 1,3,2", got)
	}
}

func TestSortKeys(t *testing.T) {
	tests := []struct {
		in   string
		want SortKey
	}{
		{"price", SortPrice},
		{"PCT", SortPct},
		{"pctOfMsrp", SortPct},
		{"age", SortScrapedAt},
		{"title", SortTitle},
		{"bogus", SortEndsAt},
		{"", SortEndsAt},
	}
	for _, tt := range tests {
		if got := ParseSortKey(tt.in); got != tt.want {
			t.Errorf("ParseSortKey(%q) = %s; want %s", tt.in, got, tt.want)
		}
	}

	if SortScrapedAt.Next() != SortEndsAt || SortEndsAt.Next() != SortPrice {
		t.Error("Next should cycle through SortKeys")
	}
	if DefaultDesc(SortEndsAt) || !DefaultDesc(SortPrice) {
		t.Error("endsAt starts ascending, everything else descending")
	}
}
