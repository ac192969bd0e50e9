package services

import (
	"math"
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"$10", 10, true},
		{"US $1,299.00", 1299, true},
		{"Current bid: 12.50 USD", 12.5, true},
		{"$0", 0, false},
		{"", 0, false},
		{"no bids", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseMSRP(t *testing.T) {
	tests := []struct {
		title  string
		want   float64
		wantOK bool
	}{
		{"Foo Bar MSRP $50", 50, true},
		{"Lamp $80 MSRP", 80, true},
		{"Chair msrp: 1,299.99", 1299.99, true},
		{"Set of 2 MSRP $40", 40, true},
		{"Plain title", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseMSRP(tt.title)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseMSRP(%q) = %v, %v; want %v, %v", tt.title, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIncreasedAndPercent(t *testing.T) {
	inc := Increased(10)
	if math.Abs(inc-13.3694) > 1e-9 {
		t.Errorf("Increased(10) = %v; want 13.3694", inc)
	}
	if got := FormatPrice(inc); got != "$13.37" {
		t.Errorf("FormatPrice = %q; want $13.37", got)
	}
	if got := PercentOfMSRP(inc, 50); got != 26.7 {
		t.Errorf("PercentOfMSRP = %v; want 26.7", got)
	}
	if got := PercentOfMSRP(inc, 0); got != 0 {
		t.Errorf("PercentOfMSRP with zero MSRP = %v; want 0", got)
	}
}

func TestColorForPercent(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{0.5, "#00ff00"},
		{1, "#00ff00"},
		{25.5, "#80ff00"},
		{50, "#ffff00"},
		{75, "#800020"},
		{100, "#a6a6a6"},
		{180, "#a6a6a6"},
		{math.NaN(), "#00ff00"},
	}
	for _, tt := range tests {
		if got := ColorForPercent(tt.pct); got != tt.want {
			t.Errorf("ColorForPercent(%v) = %q; want %q", tt.pct, got, tt.want)
		}
	}
}
