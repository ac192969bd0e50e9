package slibuy

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"slibuy-scraper/models"
	"slibuy-scraper/services"
)

// Parser turns one rendered results page into listing records.
type Parser interface {
	Parse(rawHTML string) []*models.Listing
}

// Selectors are tried in order; the first that yields anything wins.
var (
	containerSelectors = []string{
		".well.list_view",
		".well.well-bg.list_view",
		".list_view",
		".media.ss-pwrap",
	}
	titleSelector    = `h3.ftnbld, h3[id^="ptitle_"]`
	priceSelector    = `[id^="price"], .formatCurrency, .buy-price`
	timerSelector    = `.timer, .mys`
	statusSelector   = `[class*="watchsts_"], .won-txt span`
	wonIDSelector    = `input[name="getallproids[]"]`
	linkSelector     = `a[href*="auction"], a[href*="product"], a[href*="view"], a[href*="item"], a[href*="watch"]`
	listingHrefRegex = regexp.MustCompile(`(?i)auctionid=|/auction/|ptitle_|bidpop|viewitem|product`)
	bidpopRegex      = regexp.MustCompile(`(?i)bidpop`)
)

var (
	// auctionIDLabelRegexp matches the "Auction Id: 123" badge
	auctionIDLabelRegexp = regexp.MustCompile(`(?i)Auction\s*Id[:\s]*([0-9]+)`)
	// ptitleRegexp pulls the id out of h3#ptitle_123
	ptitleRegexp = regexp.MustCompile(`ptitle_(\d+)`)
	// rmwatchRegexp pulls the id out of the watchlist remove button class
	rmwatchRegexp = regexp.MustCompile(`rmwatch_(\d+)`)
	// longNumberRegexp is the last resort: any 6+ digit run
	longNumberRegexp = regexp.MustCompile(`\b(\d{6,})\b`)
	// usPriceRegexp matches "US $12.50" and "US 12.50"
	usPriceRegexp = regexp.MustCompile(`(?i)US\s*\$?\s*([0-9.,]+)`)
	// barePriceRegexp matches a bare amount
	barePriceRegexp = regexp.MustCompile(`([0-9][0-9.,]*)`)
	// dollarPriceRegexp matches "$7.50" anywhere in the card text
	dollarPriceRegexp = regexp.MustCompile(`\$\s*([0-9][0-9.,]*)`)
	// msrpTextRegexp blanks "MSRP $50" so it is never read as the bid
	msrpTextRegexp = regexp.MustCompile(`(?i)MSRP\s*:?\s*\$?\s*[0-9][0-9.,]*`)
	// inputDateRegexps recognise hidden inputs that carry an end date
	inputDateRegexps = []*regexp.Regexp{
		regexp.MustCompile(`\w+\s+\d{1,2}\s+\d{4}`),
		regexp.MustCompile(`\w{3}\s+\w+\s+\d{2,4}`),
		regexp.MustCompile(`\d{4}-\d\d-\d\dT\d\d:\d\d`),
	}
	// countdownPartRegexp collects "2d", "3 h", "15m" tokens from free text
	countdownPartRegexp = regexp.MustCompile(`(?i)\b(\d+\s*d|\d+\s*h|\d+\s*m|\d+\s*s)\b`)
	digitRegexp         = regexp.MustCompile(`\d`)
)

// HTMLParser is the goquery implementation of Parser for SliBuy markup.
type HTMLParser struct {
	base       *url.URL
	searchPath string
	cleaner    *services.Cleaner
	now        func() time.Time
}

// NewHTMLParser creates a parser resolving relative links against baseURL.
// searchPath is used to craft a fallback link from a bare id.
func NewHTMLParser(baseURL, searchPath string, cleaner *services.Cleaner) *HTMLParser {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = &url.URL{}
	}
	return &HTMLParser{base: base, searchPath: searchPath, cleaner: cleaner, now: time.Now}
}

// WithClock replaces the time source used to resolve relative countdowns.
func (p *HTMLParser) WithClock(now func() time.Time) *HTMLParser {
	p.now = now
	return p
}

// Parse never fails: unreadable markup yields no records and missing
// fields are left empty.
func (p *HTMLParser) Parse(rawHTML string) []*models.Listing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	now := p.now()
	containers := findContainers(doc)

	records := make([]*models.Listing, 0, containers.Length())
	containers.Each(func(_ int, c *goquery.Selection) {
		if rec := p.parseContainer(c, now); rec != nil {
			records = append(records, rec)
		}
	})

	return p.cleaner.Clean(records)
}

func findContainers(doc *goquery.Document) *goquery.Selection {
	for _, sel := range containerSelectors {
		if found := doc.Find(sel); found.Length() > 0 {
			return found
		}
	}

	seen := make(map[*html.Node]struct{})
	var nodes []*html.Node
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		onclick, _ := a.Attr("onclick")
		if !listingHrefRegex.MatchString(href) && !bidpopRegex.MatchString(onclick) {
			return
		}
		div := a.Closest("div")
		if div.Length() == 0 {
			return
		}
		n := div.Get(0)
		if _, dup := seen[n]; dup {
			return
		}
		seen[n] = struct{}{}
		nodes = append(nodes, n)
	})
	return doc.FindNodes(nodes...)
}

func (p *HTMLParser) parseContainer(c *goquery.Selection, now time.Time) *models.Listing {
	text := c.Text()

	id := extractID(c, text)
	title := extractTitle(c)
	if id == "" && title == "" {
		return nil
	}
	if id == "" {
		id = syntheticID()
	}

	rec := &models.Listing{
		ID:        id,
		Title:     title,
		Price:     extractPrice(c, text),
		ImageURL:  p.extractImage(c),
		Link:      p.extractLink(c, id),
		Status:    models.ParseStatus(c.Find(statusSelector).First().Text()),
		ScrapedAt: now.UnixMilli(),
	}

	rec.TimeLeft = extractTimeLeft(c, text)
	rec.EndsAt = ParseEndTime(rec.TimeLeft, now)
	if rec.EndsAt == nil && models.EndedText(rec.TimeLeft) {
		// Closed listings end at the scrape instant.
		ended := now.UnixMilli()
		rec.EndsAt = &ended
	}

	return rec
}

func extractID(c *goquery.Selection, text string) string {
	if m := auctionIDLabelRegexp.FindStringSubmatch(c.Find(".auct-id").First().Text()); len(m) > 1 {
		return m[1]
	}
	if idAttr, ok := c.Find(`h3[id^="ptitle_"]`).First().Attr("id"); ok {
		if m := ptitleRegexp.FindStringSubmatch(idAttr); len(m) > 1 {
			return m[1]
		}
	}

	var watchID string
	c.Find(`[class*="rmwatch_"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if m := rmwatchRegexp.FindStringSubmatch(class); len(m) > 1 {
			watchID = m[1]
			return false
		}
		return true
	})
	if watchID != "" {
		return watchID
	}

	if v, ok := c.Find(wonIDSelector).First().Attr("value"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if m := auctionIDLabelRegexp.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	if m := longNumberRegexp.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	return ""
}

func syntheticID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func extractTitle(c *goquery.Selection) string {
	if t := strings.TrimSpace(c.Find(titleSelector).First().Text()); t != "" {
		return t
	}
	if t := strings.TrimSpace(c.Find("h3").First().Text()); t != "" {
		return t
	}
	if alt, ok := c.Find("img[alt]").First().Attr("alt"); ok && strings.TrimSpace(alt) != "" {
		return strings.TrimSpace(alt)
	}
	body := c.Find(".media-body").First().Text()
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func extractPrice(c *goquery.Selection, text string) string {
	var raw string
	c.Find(priceSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := strings.TrimSpace(s.Text())
		if digitRegexp.MatchString(t) {
			raw = t
			return false
		}
		return true
	})
	if raw != "" {
		if m := usPriceRegexp.FindStringSubmatch(raw); len(m) > 1 {
			return "$" + m[1]
		}
		if m := barePriceRegexp.FindStringSubmatch(raw); len(m) > 1 {
			return "$" + m[1]
		}
	}
	if m := usPriceRegexp.FindStringSubmatch(text); len(m) > 1 {
		return "$" + m[1]
	}
	if m := dollarPriceRegexp.FindStringSubmatch(msrpTextRegexp.ReplaceAllString(text, "")); len(m) > 1 {
		return "$" + m[1]
	}
	return ""
}

func extractTimeLeft(c *goquery.Selection, text string) string {
	if t := strings.TrimSpace(c.Find(timerSelector).First().Text()); t != "" {
		return t
	}

	var fromInput string
	c.Find("input").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("value")
		for _, re := range inputDateRegexps {
			if re.MatchString(v) {
				fromInput = strings.TrimSpace(v)
				return false
			}
		}
		return true
	})
	if fromInput != "" {
		return fromInput
	}

	if v, ok := c.Find(`input[id^="tim"]`).First().Attr("value"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}

	parts := countdownPartRegexp.FindAllString(text, -1)
	return strings.Join(parts, " ")
}

func (p *HTMLParser) extractImage(c *goquery.Selection) string {
	img := c.Find("img").First()
	src, _ := img.Attr("data-src")
	if strings.TrimSpace(src) == "" {
		src, _ = img.Attr("src")
	}
	return p.resolve(strings.TrimSpace(src))
}

func (p *HTMLParser) extractLink(c *goquery.Selection, id string) string {
	title := c.Find(titleSelector).First()
	if a := title.Find("a[href]").First(); a.Length() > 0 {
		if href := usableHref(a); href != "" {
			return p.resolve(href)
		}
	}
	if a := title.Closest("a[href]"); a.Length() > 0 {
		if href := usableHref(a); href != "" {
			return p.resolve(href)
		}
	}
	if href := usableHref(c.Find(linkSelector).First()); href != "" {
		return p.resolve(href)
	}
	if id == "" {
		return ""
	}
	return p.resolve(p.searchPath + "?auctionid=" + url.QueryEscape(id))
}

func usableHref(a *goquery.Selection) string {
	href, ok := a.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" || href == "#" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	return href
}

func (p *HTMLParser) resolve(ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return p.base.ResolveReference(u).String()
}
