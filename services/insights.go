package services

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"slibuy-scraper/models"
	"slibuy-scraper/utils"
)

const (
	topDeals  = 5
	topGroups = 5
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes totals, price spread over active listings, the best
// deals by percent-of-MSRP and the largest bulk groups.
func (s *InsightService) Generate(listings []*models.Listing, watch Watchset, now time.Time) *models.InsightReport {
	report := &models.InsightReport{
		ListingsByStat: make(map[models.Status]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var priced []*models.Listing
	var deals []models.DealEntry

	for _, l := range listings {
		st := l.Status
		if st == "" {
			st = models.StatusUnknown
		}
		report.ListingsByStat[st]++
		if watch != nil && watch.Contains(l.ID) {
			report.WatchedCount++
		}

		if l.Ended(now) {
			report.EndedListings++
			continue
		}
		report.ActiveListings++

		p, ok := listingPrice(l)
		if !ok {
			continue
		}
		priced = append(priced, l)
		if l.MSRP != nil && *l.MSRP > 0 {
			deals = append(deals, models.DealEntry{Listing: l, Percent: PercentOfMSRP(Increased(p), *l.MSRP)})
		}
	}

	// Price stats (active listings with a price)
	if len(priced) > 0 {
		first, _ := listingPrice(priced[0])
		report.MinPrice, report.MaxPrice = first, first
		report.MostExpensive = priced[0]
		var total float64
		for _, l := range priced {
			p, _ := listingPrice(l)
			total += p
			if p < report.MinPrice {
				report.MinPrice = p
			}
			if p > report.MaxPrice {
				report.MaxPrice = p
				report.MostExpensive = l
			}
		}
		report.AveragePrice = round2(total / float64(len(priced)))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}

	sort.SliceStable(deals, func(i, j int) bool { return deals[i].Percent < deals[j].Percent })
	if len(deals) > topDeals {
		deals = deals[:topDeals]
	}
	report.BestDeals = deals

	bulk := BulkGroups(listings, 2, now)
	if len(bulk) > topGroups {
		bulk = bulk[:topGroups]
	}
	report.LargestGroups = bulk

	s.logger.Debug("[insights] %d listings, %d active, %d deals, %d bulk groups",
		report.TotalListings, report.ActiveListings, len(report.BestDeals), len(report.LargestGroups))
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  SLIBUY CACHE INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Cached listings : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  Active          : \033[1m%d\033[0m\n", r.ActiveListings)
	fmt.Fprintf(w, "  Ended           : \033[1m%d\033[0m\n", r.EndedListings)
	fmt.Fprintf(w, "  Watched         : \033[1m%d\033[0m\n", r.WatchedCount)
	fmt.Fprintln(w)

	// Price Stats
	fmt.Fprintf(w, "\033[1;33m  Current Bids (active listings)\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.MaxPrice > 0 {
		fmt.Fprintf(w, "  Average bid : \033[1;32m$%.2f\033[0m\n", r.AveragePrice)
		fmt.Fprintf(w, "  Lowest bid  : \033[1;32m$%.2f\033[0m\n", r.MinPrice)
		fmt.Fprintf(w, "  Highest bid : \033[1;32m$%.2f\033[0m\n", r.MaxPrice)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	if r.MostExpensive != nil {
		fmt.Fprintf(w, "\033[1;33m  Highest Current Bid\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostExpensive.Title, 50))
		fmt.Fprintf(w, "  Auction : %s\n", r.MostExpensive.ID)
		fmt.Fprintf(w, "  Price   : \033[1;31m%s\033[0m\n", r.MostExpensive.Price)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Best Deals (price after fees vs MSRP)\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.BestDeals) == 0 {
		fmt.Fprintf(w, "  No listings with an MSRP\n")
	} else {
		for i, d := range r.BestDeals {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s \033[1;32m%5.1f%%\033[0m\n",
				i+1, truncate(d.Listing.Title, 38), d.Percent)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Bulk Groups\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.LargestGroups) == 0 {
		fmt.Fprintf(w, "  No repeated titles\n")
	} else {
		for _, g := range r.LargestGroups {
			bar := strings.Repeat("█", g.Count)
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(g.Key, 28), bar, g.Count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
