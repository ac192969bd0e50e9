package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"slibuy-scraper/models"
	"slibuy-scraper/services"
	"slibuy-scraper/utils"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func endsIn(d time.Duration) *int64 {
	ms := testNow.Add(d).UnixMilli()
	return &ms
}

func TestDurationText(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{12 * time.Minute, "12m"},
		{3*time.Hour + 59*time.Minute, "3h"},
		{49 * time.Hour, "2d"},
		{-90 * time.Second, "1m"},
	}
	for _, tt := range tests {
		if got := DurationText(tt.d); got != tt.want {
			t.Errorf("DurationText(%v) = %q; want %q", tt.d, got, tt.want)
		}
	}
}

func TestEndsText(t *testing.T) {
	tests := []struct {
		name string
		l    *models.Listing
		want string
	}{
		{"future", &models.Listing{EndsAt: endsIn(time.Hour)}, "1h"},
		{"past", &models.Listing{EndsAt: endsIn(-time.Minute)}, "ended"},
		{"raw text", &models.Listing{TimeLeft: "2d 3h"}, "2d 3h"},
		{"nothing", &models.Listing{}, "?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EndsText(tt.l, testNow); got != tt.want {
				t.Errorf("EndsText = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestMarks(t *testing.T) {
	v := &services.View{Listing: &models.Listing{}, Watched: true, Blacklisted: true}
	if got := Marks(v); got != "WB" {
		t.Errorf("Marks = %q; want WB", got)
	}
}

func TestRenderTable(t *testing.T) {
	l := &models.Listing{
		ID:         "123",
		Title:      "Foo Bar MSRP $50",
		Price:      "$10",
		PriceValue: f64(10),
		MSRP:       f64(50),
		EndsAt:     endsIn(time.Hour),
		ScrapedAt:  testNow.Add(-5 * time.Minute).UnixMilli(),
	}
	views := []*services.View{services.NewView(l, models.DefaultSettings(), nil, testNow)}

	var buf bytes.Buffer
	RenderTable(&buf, views, testNow)
	out := buf.String()

	for _, want := range []string{"123", "Foo Bar MSRP $50", "$10.00", "$13.37", "26.7%", "1h", "5m"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderBulk(t *testing.T) {
	st := models.BulkStats{Key: "lamp", Count: 2, ActiveCount: 2, ActiveMin: 5, ActiveMax: 7, ActiveAvg: 6}
	var buf bytes.Buffer
	RenderBulk(&buf, []models.BulkStats{st})
	if !strings.Contains(buf.String(), "2 open from $5 to $7 averaging $6.00") {
		t.Errorf("bulk output missing summary:\n%s", buf.String())
	}
}

// --- TUI ---

type fakeBackend struct {
	cache     map[string]*models.Listing
	watch     *utils.KeySet
	saved     []models.Settings
	toggled   []string
	refreshed []string
}

func (f *fakeBackend) Load(ctx context.Context) (map[string]*models.Listing, *utils.KeySet, models.Settings, error) {
	return f.cache, f.watch, models.DefaultSettings(), nil
}

func (f *fakeBackend) SaveSettings(ctx context.Context, s models.Settings) error {
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeBackend) ToggleWatch(ctx context.Context, id string) (bool, error) {
	f.toggled = append(f.toggled, id)
	return !f.watch.Contains(id), nil
}

func (f *fakeBackend) Refresh(ctx context.Context, l *models.Listing) (map[string]*models.Listing, error) {
	f.refreshed = append(f.refreshed, l.ID)
	fresh := l.Clone()
	fresh.Price = "$99"
	fresh.PriceValue = f64(99)
	f.cache = services.Merge(f.cache, []*models.Listing{fresh})
	return f.cache, nil
}

func (f *fakeBackend) Rescrape(ctx context.Context) (map[string]*models.Listing, error) {
	return f.cache, nil
}

func newTestModel(t *testing.T) (Model, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{
		cache: map[string]*models.Listing{
			"1": {ID: "1", Title: "Foo Bar MSRP $50", PriceValue: f64(10), MSRP: f64(50), EndsAt: endsIn(time.Hour), Link: "https://example.com/1"},
			"2": {ID: "2", Title: "Desk Lamp", PriceValue: f64(30), EndsAt: endsIn(2 * time.Hour)},
			"3": {ID: "3", Title: "Old Chair", PriceValue: f64(5), EndsAt: endsIn(-time.Hour)},
		},
		watch: utils.NewKeySet(),
	}
	m := NewModel(context.Background(), fb).WithClock(func() time.Time { return testNow })
	next, _ := m.Update(m.Init()())
	return next.(Model), fb
}

func press(m Model, key string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		msg = tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func ids(views []*services.View) string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.ID
	}
	return strings.Join(out, ",")
}

func TestModelLoadsAndHidesEnded(t *testing.T) {
	m, _ := newTestModel(t)
	if got := ids(m.Views()); got != "1,2" {
		t.Errorf("views = %s; want 1,2", got)
	}
	if !strings.Contains(m.View(), "Foo Bar MSRP $50") {
		t.Errorf("view missing first listing:\n%s", m.View())
	}
}

func TestModelSortKeys(t *testing.T) {
	m, fb := newTestModel(t)

	m, cmd := press(m, "s")
	if m.Settings().SortKey != string(services.SortPrice) || !m.Settings().SortDesc {
		t.Fatalf("after s: key=%s desc=%v; want price desc", m.Settings().SortKey, m.Settings().SortDesc)
	}
	if got := ids(m.Views()); got != "2,1" {
		t.Errorf("price desc views = %s; want 2,1", got)
	}
	cmd()
	if len(fb.saved) != 1 {
		t.Errorf("settings saved %d times; want 1", len(fb.saved))
	}

	m, _ = press(m, "S")
	if got := ids(m.Views()); got != "1,2" {
		t.Errorf("price asc views = %s; want 1,2", got)
	}
}

func TestModelSearch(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(m, "/")
	for _, r := range "lampx" {
		m, _ = press(m, string(r))
	}
	if got := ids(m.Views()); got != "" {
		t.Errorf("views for lampx = %q; want none", got)
	}
	m, _ = press(m, "backspace")
	m, _ = press(m, "enter")
	if got := ids(m.Views()); got != "2" {
		t.Errorf("views for lamp = %s; want 2", got)
	}

	m, _ = press(m, "esc")
	if got := ids(m.Views()); got != "1,2" {
		t.Errorf("views after clearing search = %s; want 1,2", got)
	}
}

func TestModelToggles(t *testing.T) {
	m, fb := newTestModel(t)

	m, _ = press(m, "e")
	if got := ids(m.Views()); got != "3,1,2" {
		t.Errorf("views with ended shown = %s; want 3,1,2", got)
	}

	m, cmd := press(m, "w")
	next, _ := m.Update(cmd())
	m = next.(Model)
	if len(fb.toggled) != 1 || !m.watch.Contains(fb.toggled[0]) {
		t.Fatalf("toggle watch: toggled=%v", fb.toggled)
	}

	m, _ = press(m, "W")
	if got := ids(m.Views()); got != fb.toggled[0] {
		t.Errorf("watch-only views = %s; want %s", got, fb.toggled[0])
	}
}

func TestModelRefreshSelected(t *testing.T) {
	m, fb := newTestModel(t)

	m, cmd := press(m, "r")
	if cmd == nil {
		t.Fatal("r returned no command")
	}
	if m.busy == "" {
		t.Error("model should be busy while refreshing")
	}
	next, _ := m.Update(cmd())
	m = next.(Model)

	if len(fb.refreshed) != 1 || fb.refreshed[0] != "1" {
		t.Fatalf("refreshed %v; want [1]", fb.refreshed)
	}
	if m.busy != "" || m.status != "refreshed 1" {
		t.Errorf("busy=%q status=%q", m.busy, m.status)
	}
	if got := *m.Selected().PriceNum; got != 99 {
		t.Errorf("refreshed price = %v; want 99", got)
	}
}

func TestModelBulkPanel(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(m, "b")
	if !strings.Contains(m.View(), "1 listings.") {
		t.Errorf("bulk panel missing summary:\n%s", m.View())
	}
	m, _ = press(m, "esc")
	if m.panel != panelNone {
		t.Error("esc should close the panel")
	}
}
