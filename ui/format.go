package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"slibuy-scraper/models"
	"slibuy-scraper/services"
)

// DurationText prints d in its largest whole unit: 45s, 12m, 3h, 2d.
func DurationText(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
	return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
}

// AgeText is how long ago a millisecond timestamp was.
func AgeText(ms int64, now time.Time) string {
	if ms <= 0 {
		return "-"
	}
	return DurationText(now.Sub(time.UnixMilli(ms)))
}

// EndsText shows the remaining time when the end is known, else the raw
// countdown text from the page.
func EndsText(l *models.Listing, now time.Time) string {
	if l.EndsAt != nil {
		left := time.UnixMilli(*l.EndsAt).Sub(now)
		if left <= 0 {
			return "ended"
		}
		return DurationText(left)
	}
	if l.TimeLeft != "" {
		return l.TimeLeft
	}
	return "?"
}

// PriceText prints the numeric price, or the raw text when it did not parse.
func PriceText(v *services.View) string {
	if v.PriceNum != nil {
		return services.FormatPrice(*v.PriceNum)
	}
	if v.Price != "" {
		return v.Price
	}
	return "-"
}

// PctText prints percent-of-MSRP coloured along the price gradient.
func PctText(pct *float64) string {
	if pct == nil {
		return "-"
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(services.ColorForPercent(*pct)))
	return style.Render(fmt.Sprintf("%.1f%%", *pct))
}

// Marks flags a row: W watched, T target, B blacklisted.
func Marks(v *services.View) string {
	var b strings.Builder
	if v.Watched {
		b.WriteByte('W')
	}
	if v.Target {
		b.WriteByte('T')
	}
	if v.Blacklisted {
		b.WriteByte('B')
	}
	return b.String()
}

// StatusText colours bid states: winning green, losing red.
func StatusText(s models.Status) string {
	switch s {
	case models.StatusWinning, models.StatusWon:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render(s.String())
	case models.StatusLosing:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(s.String())
	}
	return s.String()
}

// OpenURL hands url to the desktop's default browser.
func OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("open", url)
	}
	return cmd.Start()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
