package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Fee multipliers applied on top of the hammer price.
const (
	BuyerPremium = 1.18
	CardFee      = 1.03
	SalesTax     = 1.10
)

var (
	// priceRegexp captures the first numeric amount, commas allowed
	priceRegexp = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)
	// msrpAfterRegexp matches "$50 MSRP"
	msrpAfterRegexp = regexp.MustCompile(`(?i)(\$?)\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*MSRP\b`)
	// msrpBeforeRegexp matches "MSRP $50" and "MSRP: 50"
	msrpBeforeRegexp = regexp.MustCompile(`(?i)\bMSRP\b\s*:?\s*(\$?)\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
)

// ParsePrice extracts the first amount from text such as "US $1,299.00".
func ParsePrice(raw string) (float64, bool) {
	match := priceRegexp.FindString(raw)
	if match == "" {
		return 0, false
	}
	return parseAmount(match)
}

// ParseMSRP finds a retail reference price in a title. Either order of
// amount and "MSRP" is accepted; an amount written with "$" wins.
func ParseMSRP(title string) (float64, bool) {
	var fallback string
	for _, re := range []*regexp.Regexp{msrpAfterRegexp, msrpBeforeRegexp} {
		m := re.FindStringSubmatch(title)
		if len(m) < 3 {
			continue
		}
		if m[1] == "$" {
			return parseAmount(m[2])
		}
		if fallback == "" {
			fallback = m[2]
		}
	}
	if fallback == "" {
		return 0, false
	}
	return parseAmount(fallback)
}

func parseAmount(s string) (float64, bool) {
	s = strings.TrimRight(strings.ReplaceAll(s, ",", ""), ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Increased applies buyer's premium, card fee and sales tax.
func Increased(price float64) float64 {
	return price * BuyerPremium * CardFee * SalesTax
}

// PercentOfMSRP returns increased/msrp as a percentage rounded to 0.1.
func PercentOfMSRP(increased, msrp float64) float64 {
	if msrp <= 0 {
		return 0
	}
	return math.Round(increased/msrp*1000) / 10
}

type colorStop struct {
	p       float64
	r, g, b float64
}

var percentStops = []colorStop{
	{1, 0x00, 0xff, 0x00},
	{50, 0xff, 0xff, 0x00},
	{75, 0x80, 0x00, 0x20},
	{100, 0xa6, 0xa6, 0xa6},
}

// ColorForPercent maps a percent-of-MSRP onto the green, yellow, burgundy,
// grey gradient. Values under 1 clamp to green; values past 100 are grey.
func ColorForPercent(p float64) string {
	if math.IsNaN(p) || p < 1 {
		p = 1
	}
	for i := 0; i < len(percentStops)-1; i++ {
		a, b := percentStops[i], percentStops[i+1]
		if p >= a.p && p <= b.p {
			t := (p - a.p) / (b.p - a.p)
			return hexColor(lerp(a.r, b.r, t), lerp(a.g, b.g, t), lerp(a.b, b.b, t))
		}
	}
	last := percentStops[len(percentStops)-1]
	return hexColor(last.r, last.g, last.b)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func hexColor(r, g, b float64) string {
	return fmt.Sprintf("#%02x%02x%02x", int(math.Round(r)), int(math.Round(g)), int(math.Round(b)))
}

// FormatPrice renders an amount the way the site shows it.
func FormatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
