package model

import "time"

type NotificationKind string

const (
	KindPriority NotificationKind = "priority"
	KindRoute    NotificationKind = "route"
	KindSystem   NotificationKind = "system"
	KindDelivery NotificationKind = "delivery"
	KindAlert    NotificationKind = "alert"
)

func (k NotificationKind) Valid() bool {
	switch k {
	case KindPriority, KindRoute, KindSystem, KindDelivery, KindAlert:
		return true
	}
	return false
}

// Notification is one entry of the driver's feed. Read is monotonic: once
// true it never reverts through any driver-facing operation.
type Notification struct {
	ID             string           `json:"id"`
	Kind           NotificationKind `json:"kind"`
	Title          string           `json:"title"`
	Body           string           `json:"body"`
	Priority       Priority         `json:"priority"`
	ActionRequired bool             `json:"action_required"`
	PackageID      string           `json:"package_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	Read           bool             `json:"read"`
}
