package viewmodel

import (
	"fmt"
	"sort"
	"time"

	"gitlab.com/swifttrack/driver-app/internal/model"
)

// HistoryEntry is one past delivery with its display age label.
type HistoryEntry struct {
	Package  *model.Package `json:"package"`
	AgeLabel string         `json:"age_label"`
}

// BuildHistory is the historical manifest: packages from before today,
// newest operational day first, with bucketed age labels. Filter and search
// behave as on the live manifest.
func BuildHistory(pkgs []*model.Package, today time.Time, filter StatusFilter, search string) []HistoryEntry {
	var past []*model.Package
	for _, p := range pkgs {
		if daysBetween(p.DeliveryDate, today) >= 1 {
			past = append(past, p)
		}
	}
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].DeliveryDate.After(past[j].DeliveryDate)
	})

	filtered := BuildManifest(past, filter, search).Packages
	out := make([]HistoryEntry, 0, len(filtered))
	for _, p := range filtered {
		out = append(out, HistoryEntry{
			Package:  p,
			AgeLabel: AgeLabel(p.DeliveryDate, today),
		})
	}
	return out
}

// AgeLabel buckets a past operational day for display: "Yesterday", "N days
// ago" up to six, "N week(s) ago" up to four, then the absolute date.
func AgeLabel(date, today time.Time) string {
	days := daysBetween(date, today)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days <= 6:
		return fmt.Sprintf("%d days ago", days)
	case days <= 29:
		weeks := days / 7
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		return date.Format("Jan 2, 2006")
	}
}

// daysBetween counts whole calendar days from date up to today, in today's
// location.
func daysBetween(date, today time.Time) int {
	y1, m1, d1 := date.Date()
	y2, m2, d2 := today.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
