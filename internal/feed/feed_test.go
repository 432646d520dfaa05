package feed_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/feed"
	"gitlab.com/swifttrack/driver-app/internal/model"
	"gitlab.com/swifttrack/driver-app/internal/store"
)

var base = time.Date(2026, time.August, 31, 8, 0, 0, 0, time.UTC)

func seedFeed(t *testing.T) *feed.Feed {
	t.Helper()
	f := feed.New(zap.NewNop())
	fixtures := []model.Notification{
		{ID: "n-1", Kind: model.KindSystem, Title: "Shift started", Priority: model.PriorityLow, CreatedAt: base},
		{ID: "n-2", Kind: model.KindRoute, Title: "Route updated", Priority: model.PriorityMedium, CreatedAt: base.Add(5 * time.Minute)},
		{ID: "n-3", Kind: model.KindPriority, Title: "Urgent delivery", Priority: model.PriorityHigh, ActionRequired: true, PackageID: "PKG-1004", CreatedAt: base.Add(10 * time.Minute)},
		{ID: "n-4", Kind: model.KindAlert, Title: "Weather warning", Priority: model.PriorityHigh, CreatedAt: base.Add(15 * time.Minute)},
	}
	for _, n := range fixtures {
		_, err := f.Add(n)
		require.NoError(t, err)
	}
	return f
}

func TestListNewestFirst(t *testing.T) {
	f := seedFeed(t)

	all := f.List(feed.FilterAll)
	require.Len(t, all, 4)
	assert.Equal(t, "n-4", all[0].ID)
	assert.Equal(t, "n-1", all[3].ID)
}

func TestFilters(t *testing.T) {
	f := seedFeed(t)
	_, err := f.MarkRead("n-1")
	require.NoError(t, err)

	unread := f.List(feed.FilterUnread)
	require.Len(t, unread, 3)
	for _, n := range unread {
		assert.False(t, n.Read)
	}

	priority := f.List(feed.FilterPriority)
	require.Len(t, priority, 2)
	assert.Equal(t, "n-4", priority[0].ID)
	assert.Equal(t, "n-3", priority[1].ID)
}

func TestMarkReadIsMonotonic(t *testing.T) {
	f := seedFeed(t)
	require.Equal(t, 4, f.UnreadCount())

	n, err := f.MarkRead("n-2")
	require.NoError(t, err)
	assert.True(t, n.Read)
	assert.Equal(t, 3, f.UnreadCount())

	// Marking again is a no-op, not an error.
	n, err = f.MarkRead("n-2")
	require.NoError(t, err)
	assert.True(t, n.Read)
	assert.Equal(t, 3, f.UnreadCount())

	_, err = f.MarkRead("n-404")
	require.ErrorIs(t, err, feed.ErrNotFound)
}

func TestMarkAllRead(t *testing.T) {
	f := seedFeed(t)
	f.MarkAllRead()
	assert.Equal(t, 0, f.UnreadCount())
	assert.Empty(t, f.List(feed.FilterUnread))
}

func TestAddFillsDefaults(t *testing.T) {
	f := feed.New(zap.NewNop())
	n, err := f.Add(model.Notification{Kind: model.KindSystem, Title: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())

	_, err = f.Add(model.Notification{Kind: "carrier_pigeon"})
	require.Error(t, err)
}

func TestOpenNavigation(t *testing.T) {
	f := seedFeed(t)

	t.Run("priority with package goes to details", func(t *testing.T) {
		n, target, err := f.Open("n-3")
		require.NoError(t, err)
		assert.True(t, n.Read)
		require.NotNil(t, target)
		assert.Equal(t, "package-details", target.Screen)
		assert.Equal(t, "PKG-1004", target.PackageID)
	})

	t.Run("route goes to route view", func(t *testing.T) {
		_, target, err := f.Open("n-2")
		require.NoError(t, err)
		require.NotNil(t, target)
		assert.Equal(t, "route", target.Screen)
	})

	t.Run("system opens nowhere", func(t *testing.T) {
		_, target, err := f.Open("n-1")
		require.NoError(t, err)
		assert.Nil(t, target)
	})
}

func TestObserveStoreMirrorsStatusChanges(t *testing.T) {
	f := feed.New(zap.NewNop())
	st := store.New(zap.NewNop())
	st.Subscribe(f.ObserveStore())

	day := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.Admit([]*model.Package{{
		ID:            "PKG-1",
		Customer:      model.Customer{Name: "Alice", Address: "123 Main St"},
		TimeWindow:    model.TimeWindow{Start: day.Add(9 * time.Hour), End: day.Add(11 * time.Hour)},
		Priority:      model.PriorityHigh,
		ServiceType:   model.ServiceExpress,
		AttemptNumber: 1,
		MaxAttempts:   3,
		Status:        model.StatusPending,
		DeliveryDate:  day,
	}}))
	assert.Empty(t, f.List(feed.FilterAll), "admission does not notify")

	_, err := st.Apply("PKG-1", func(p *model.Package) error {
		p.Status = model.StatusInTransit
		return nil
	})
	require.NoError(t, err)

	all := f.List(feed.FilterAll)
	require.Len(t, all, 1)
	assert.Equal(t, model.KindDelivery, all[0].Kind)
	assert.Equal(t, "PKG-1", all[0].PackageID)
	assert.Contains(t, all[0].Title, "out for delivery")
}
