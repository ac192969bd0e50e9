package slibuy

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultPageCount is used when page 1 gives no hint of the total.
const DefaultPageCount = 10

var (
	// displayingRegexp matches the "Displaying 1 - 100 Of 2,345" summary line
	displayingRegexp = regexp.MustCompile(`(?i)Displaying\s*\d+\s*(?:[-–to]+)\s*\d+\s*Of\s*([\d,]+)`)
	// paginateCallRegexp matches javascript:searchpaginatee(12)
	paginateCallRegexp = regexp.MustCompile(`(?i)searchpaginatee\(\s*(\d+)\s*\)`)
	// pageParamRegexp matches ?page=12 or &page=12
	pageParamRegexp = regexp.MustCompile(`[?&]page=(\d+)`)
)

// EstimateTotalPages reads the total page count off a results page.
// pageSize is the number of listings per page used by the summary line.
// ok is false when nothing on the page hinted at a total, in which case
// DefaultPageCount is returned.
func EstimateTotalPages(rawHTML string, pageSize int) (pages int, ok bool) {
	if pageSize <= 0 {
		pageSize = 100
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return DefaultPageCount, false
	}

	if m := displayingRegexp.FindStringSubmatch(doc.Text()); len(m) > 1 {
		if total, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil && total > 0 {
			return (total + pageSize - 1) / pageSize, true
		}
	}

	lastPage := 0
	doc.Find("a, button").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		onclick, _ := a.Attr("onclick")
		n := firstInt(paginateCallRegexp, href, onclick)
		if n == 0 && strings.TrimSpace(a.Text()) == "»" {
			n = firstInt(pageParamRegexp, href)
		}
		if n > lastPage {
			lastPage = n
		}
	})
	if lastPage > 0 {
		return lastPage, true
	}

	maxPage := 0
	doc.Find(`a[href*="page="]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if n := firstInt(pageParamRegexp, href); n > maxPage {
			maxPage = n
		}
	})
	if maxPage > 0 {
		return maxPage, true
	}

	return DefaultPageCount, false
}

func firstInt(re *regexp.Regexp, inputs ...string) int {
	for _, in := range inputs {
		if m := re.FindStringSubmatch(in); len(m) > 1 {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return 0
}
