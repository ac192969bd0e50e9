package slibuy

import "testing"

func TestEstimateTotalPages(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		want   int
		wantOK bool
	}{
		{"summary line", `<div>Displaying 1 - 100 Of 2,345</div>`, 24, true},
		{"summary exact", `<div>Displaying 1 to 100 of 200</div>`, 2, true},
		{"paginate calls", `<a href="javascript:searchpaginatee(12)">12</a><a onclick="searchpaginatee(3)">3</a>`, 12, true},
		{"next arrow", `<a href="/search?page=2">2</a><a href="/search?page=9">»</a>`, 9, true},
		{"page params", `<a href="/search?page=2">2</a><a href="/search?q=x&page=7">7</a>`, 7, true},
		{"nothing", `<p>no results</p>`, DefaultPageCount, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EstimateTotalPages(tt.html, 100)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("EstimateTotalPages = %d, %v; want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestEstimateTotalPagesFixture(t *testing.T) {
	got, ok := EstimateTotalPages(readFixture(t, "search.html"), 100)
	if got != 3 || !ok {
		t.Errorf("EstimateTotalPages = %d, %v; want 3, true", got, ok)
	}
}
