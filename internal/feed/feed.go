// Package feed holds the driver's notification feed: an append-only log,
// newest first, with unread tracking and filter views.
package feed

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/metrics"
	"gitlab.com/swifttrack/driver-app/internal/model"
	"gitlab.com/swifttrack/driver-app/internal/store"
)

var ErrNotFound = errors.New("notification not found")

type Filter string

const (
	FilterAll      Filter = "all"
	FilterUnread   Filter = "unread"
	FilterPriority Filter = "priority"
)

type Feed struct {
	mu            sync.Mutex
	notifications []model.Notification
	log           *zap.Logger
}

func New(log *zap.Logger) *Feed {
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{log: log}
}

// Add appends a notification. Empty id and zero timestamp are filled in.
func (f *Feed) Add(n model.Notification) (model.Notification, error) {
	if !n.Kind.Valid() {
		return model.Notification{}, fmt.Errorf("unknown notification kind %q", n.Kind)
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	f.mu.Lock()
	f.notifications = append(f.notifications, n)
	unread := f.unreadLocked()
	f.mu.Unlock()

	metrics.NotificationsUnread.Set(float64(unread))
	f.log.Debug("notification added",
		zap.String("id", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.String("title", n.Title))
	return n, nil
}

// List returns the filtered view, newest first by creation time.
func (f *Feed) List(filter Filter) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.Notification, 0, len(f.notifications))
	for _, n := range f.notifications {
		switch filter {
		case FilterUnread:
			if n.Read {
				continue
			}
		case FilterPriority:
			if n.Priority != model.PriorityHigh && n.Kind != model.KindPriority {
				continue
			}
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (f *Feed) Get(id string) (model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return model.Notification{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// MarkRead flips one notification to read. Already-read is a no-op, not an
// error.
func (f *Feed) MarkRead(id string) (model.Notification, error) {
	f.mu.Lock()
	var found *model.Notification
	for i := range f.notifications {
		if f.notifications[i].ID == id {
			f.notifications[i].Read = true
			found = &f.notifications[i]
			break
		}
	}
	unread := f.unreadLocked()
	f.mu.Unlock()

	if found == nil {
		return model.Notification{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	metrics.NotificationsUnread.Set(float64(unread))
	return *found, nil
}

func (f *Feed) MarkAllRead() {
	f.mu.Lock()
	for i := range f.notifications {
		f.notifications[i].Read = true
	}
	f.mu.Unlock()
	metrics.NotificationsUnread.Set(0)
}

func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unreadLocked()
}

func (f *Feed) unreadLocked() int {
	count := 0
	for _, n := range f.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

// NavigationTarget is the optional action a notification offers when opened.
type NavigationTarget struct {
	Screen    string `json:"screen"`
	PackageID string `json:"package_id,omitempty"`
}

// Open marks the notification read and returns where it navigates, if
// anywhere: priority notifications with a package go to package details,
// route notifications go to the route view.
func (f *Feed) Open(id string) (model.Notification, *NavigationTarget, error) {
	n, err := f.MarkRead(id)
	if err != nil {
		return model.Notification{}, nil, err
	}
	if n.ActionRequired && n.Kind == model.KindPriority && n.PackageID != "" {
		return n, &NavigationTarget{Screen: "package-details", PackageID: n.PackageID}, nil
	}
	if n.Kind == model.KindRoute {
		return n, &NavigationTarget{Screen: "route"}, nil
	}
	return n, nil, nil
}

// ObserveStore returns a store listener that mirrors committed status
// changes into the feed as delivery notifications.
func (f *Feed) ObserveStore() store.Listener {
	return func(ev store.Event) {
		if ev.Type != store.EventStatusChanged {
			return
		}
		title := "Package " + ev.Package.ID + " updated"
		switch ev.Change.To {
		case model.StatusDelivered:
			title = "Package " + ev.Package.ID + " delivered"
		case model.StatusFailed:
			title = "Package " + ev.Package.ID + " delivery failed"
		case model.StatusInTransit:
			title = "Package " + ev.Package.ID + " out for delivery"
		}
		_, _ = f.Add(model.Notification{
			Kind:      model.KindDelivery,
			Title:     title,
			Body:      fmt.Sprintf("Status changed from %s to %s", ev.Change.From, ev.Change.To),
			Priority:  model.PriorityLow,
			PackageID: ev.Package.ID,
			CreatedAt: ev.Change.ChangedAt,
		})
	}
}
