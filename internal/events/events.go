// Package events publishes committed delivery state changes to an external
// trail. Entries are batched by a small worker pool and handed to a
// producer; the kafka producer feeds the dispatch side, the console
// producer serves local runs.
package events

import (
	"time"

	"github.com/google/uuid"

	"gitlab.com/swifttrack/driver-app/internal/model"
	"gitlab.com/swifttrack/driver-app/internal/store"
)

type DeliveryEvent struct {
	ID        string              `json:"id"`
	Type      string              `json:"type"`
	PackageID string              `json:"package_id"`
	From      model.PackageStatus `json:"from,omitempty"`
	To        model.PackageStatus `json:"to,omitempty"`
	Reason    string              `json:"reason,omitempty"`
	Recipient string              `json:"recipient,omitempty"`
	At        time.Time           `json:"at"`
}

// FromStoreEvent maps a committed store event to a trail entry.
func FromStoreEvent(ev store.Event) DeliveryEvent {
	out := DeliveryEvent{
		ID:        uuid.NewString(),
		Type:      string(ev.Type),
		PackageID: ev.Package.ID,
		From:      ev.Change.From,
		To:        ev.Change.To,
		At:        ev.Change.ChangedAt,
	}
	if out.At.IsZero() {
		out.At = time.Now()
	}
	if ev.Package.Failure != nil {
		out.Reason = ev.Package.Failure.ReasonID
	}
	if ev.Package.Proof != nil {
		out.Recipient = ev.Package.Proof.RecipientName
	}
	return out
}
