package viewmodel_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/swifttrack/driver-app/internal/model"
	"gitlab.com/swifttrack/driver-app/internal/viewmodel"
)

func TestAgeLabelBuckets(t *testing.T) {
	today := time.Date(2026, time.August, 31, 14, 0, 0, 0, time.UTC)
	tests := []struct {
		daysAgo int
		want    string
	}{
		{0, "Today"},
		{1, "Yesterday"},
		{2, "2 days ago"},
		{6, "6 days ago"},
		{7, "1 week ago"},
		{13, "1 week ago"},
		{14, "2 weeks ago"},
		{29, "4 weeks ago"},
		{30, "Aug 1, 2026"},
		{45, "Jul 17, 2026"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d days", tt.daysAgo), func(t *testing.T) {
			date := today.AddDate(0, 0, -tt.daysAgo)
			assert.Equal(t, tt.want, viewmodel.AgeLabel(date, today))
		})
	}
}

func TestBuildHistoryExcludesTodayAndSortsDescending(t *testing.T) {
	today := time.Date(2026, time.August, 31, 14, 0, 0, 0, time.UTC)

	fresh := pkg("PKG-TODAY", model.StatusPending, model.PriorityLow, 9, 11)
	fresh.DeliveryDate = today

	old := func(id string, daysAgo int, status model.PackageStatus) *model.Package {
		p := pkg(id, status, model.PriorityLow, 9, 11)
		p.DeliveryDate = today.AddDate(0, 0, -daysAgo)
		return p
	}

	entries := viewmodel.BuildHistory([]*model.Package{
		fresh,
		old("PKG-0996", 2, model.StatusDelivered),
		old("PKG-0998", 1, model.StatusDelivered),
		old("PKG-0990", 7, model.StatusFailed),
	}, today, viewmodel.FilterAll, "")

	require.Len(t, entries, 3)
	assert.Equal(t, "PKG-0998", entries[0].Package.ID)
	assert.Equal(t, "Yesterday", entries[0].AgeLabel)
	assert.Equal(t, "PKG-0996", entries[1].Package.ID)
	assert.Equal(t, "2 days ago", entries[1].AgeLabel)
	assert.Equal(t, "PKG-0990", entries[2].Package.ID)
	assert.Equal(t, "1 week ago", entries[2].AgeLabel)
}

func TestBuildHistoryFilterAndSearch(t *testing.T) {
	today := time.Date(2026, time.August, 31, 14, 0, 0, 0, time.UTC)

	delivered := pkg("PKG-0998", model.StatusDelivered, model.PriorityMedium, 9, 11)
	delivered.Customer.Name = "John Smith"
	delivered.DeliveryDate = today.AddDate(0, 0, -1)

	failed := pkg("PKG-0995", model.StatusFailed, model.PriorityMedium, 10, 12)
	failed.Customer.Name = "Mike Johnson"
	failed.DeliveryDate = today.AddDate(0, 0, -2)

	entries := viewmodel.BuildHistory([]*model.Package{delivered, failed}, today, viewmodel.FilterFailed, "")
	require.Len(t, entries, 1)
	assert.Equal(t, "PKG-0995", entries[0].Package.ID)

	entries = viewmodel.BuildHistory([]*model.Package{delivered, failed}, today, viewmodel.FilterAll, "smith")
	require.Len(t, entries, 1)
	assert.Equal(t, "PKG-0998", entries[0].Package.ID)
}
