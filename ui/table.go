package ui

import (
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"slibuy-scraper/models"
	"slibuy-scraper/services"
)

const titleWidth = 48

// RenderTable prints views as a rounded table.
func RenderTable(w io.Writer, views []*services.View, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"", "ID", "Title", "Price", "+Fees", "%MSRP", "Ends", "Status", "Age", "Grp"})

	for _, v := range views {
		fees := "-"
		if v.Increased != nil {
			fees = services.FormatPrice(*v.Increased)
		}
		group := ""
		if v.GroupSize > 1 {
			group = strconv.Itoa(v.GroupSize)
		}
		t.AppendRow(table.Row{
			Marks(v),
			v.ID,
			truncate(v.Title, titleWidth),
			PriceText(v),
			fees,
			PctText(v.PctOfMSRP),
			EndsText(v.Listing, now),
			StatusText(v.Status),
			AgeText(v.ScrapedAt, now),
			group,
		})
	}

	t.AppendFooter(table.Row{"", "", strconv.Itoa(len(views)) + " listings"})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// RenderBids prints the watchlist panel: title, price, ends, status.
func RenderBids(w io.Writer, listings []*models.Listing, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Title", "Price", "Ends", "Status"})
	for _, l := range listings {
		t.AppendRow(table.Row{l.ID, truncate(l.Title, titleWidth), l.Price, EndsText(l, now), StatusText(l.Status)})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// RenderBulk prints one row per bulk group with its summary sentence.
func RenderBulk(w io.Writer, stats []models.BulkStats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Group", "Count", "Summary"})
	for _, st := range stats {
		t.AppendRow(table.Row{truncate(st.Key, 40), st.Count, services.BulkSummary(st)})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
