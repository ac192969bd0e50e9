package slibuy

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// unitRegexps capture the first "<n>d", "<n>h", "<n>m" and "<n>s" parts of a countdown
	unitRegexps = []struct {
		re   *regexp.Regexp
		unit time.Duration
	}{
		{regexp.MustCompile(`(?i)(\d+)\s*d`), 24 * time.Hour},
		{regexp.MustCompile(`(?i)(\d+)\s*h`), time.Hour},
		{regexp.MustCompile(`(?i)(\d+)\s*m`), time.Minute},
		{regexp.MustCompile(`(?i)(\d+)\s*s`), time.Second},
	}
	// zoneNameRegexp strips the "(Central Daylight Time)" tail browsers print
	zoneNameRegexp = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	// tzSuffixRegexp strips a "GMT"/"UTC" tail no offset layout accepted
	tzSuffixRegexp = regexp.MustCompile(`\s*(GMT|UTC)[+-]?\d*.*$`)
)

// dateLayouts are the absolute timestamp shapes seen in timer elements and
// hidden inputs. Tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"Mon Jan 2 2006 15:04:05 GMT-0700",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"Mon Jan 2 2006 15:04:05",
	"Mon Jan 02 2006 15:04:05",
	"Jan 2 2006 15:04:05",
	"Jan 2, 2006 15:04:05",
	"January 2 2006 15:04:05",
	"January 2, 2006 15:04:05",
	"Jan 2 2006 3:04 PM",
	"Jan 2, 2006 3:04 PM",
	"01/02/2006 15:04:05",
	"01/02/2006 3:04:05 PM",
	"01/02/2006 3:04 PM",
	"Jan 2 2006",
	"January 2 2006",
	"2006-01-02",
}

// ParseAbsoluteTime parses text as a calendar timestamp. A written offset
// wins; otherwise the time is taken in loc.
func ParseAbsoluteTime(text string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	candidates := []string{s}
	named := zoneNameRegexp.ReplaceAllString(s, "")
	if named != s {
		candidates = append(candidates, named)
	}
	if bare := tzSuffixRegexp.ReplaceAllString(named, ""); bare != named {
		candidates = append(candidates, bare)
	}
	for _, c := range candidates {
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, c, loc); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ParseEndTime resolves countdown or date text to an absolute end instant
// in epoch milliseconds. It returns nil when the text carries no usable
// time, including "ended" text.
func ParseEndTime(text string, now time.Time) *int64 {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return nil
	}

	if t, ok := ParseAbsoluteTime(raw, now.Location()); ok {
		ms := t.UnixMilli()
		return &ms
	}

	var total time.Duration
	matched := false
	for _, u := range unitRegexps {
		m := u.re.FindStringSubmatch(raw)
		if len(m) < 2 {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		matched = true
		total += time.Duration(n) * u.unit
	}
	if matched {
		ms := now.Add(total).UnixMilli()
		return &ms
	}

	return nil
}
