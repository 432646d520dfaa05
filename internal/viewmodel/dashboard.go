package viewmodel

import (
	"gitlab.com/swifttrack/driver-app/internal/model"
)

// Dashboard is the landing screen summary.
type Dashboard struct {
	DriverName      string               `json:"driver_name"`
	TotalDeliveries int                  `json:"total_deliveries"`
	Completed       int                  `json:"completed"`
	Pending         int                  `json:"pending"`
	Failed          int                  `json:"failed"`
	UnreadCount     int                  `json:"unread_count"`
	RecentActivity  []model.StatusChange `json:"recent_activity"`
}

// BuildDashboard summarizes today's manifest. Pending here is remaining
// work: everything not yet terminal, in-transit included.
func BuildDashboard(driver *model.Driver, pkgs []*model.Package, recent []model.StatusChange, unread int) Dashboard {
	d := Dashboard{
		DriverName:      driver.Name,
		TotalDeliveries: len(pkgs),
		UnreadCount:     unread,
		RecentActivity:  recent,
	}
	for _, p := range pkgs {
		switch p.Status {
		case model.StatusDelivered:
			d.Completed++
		case model.StatusFailed:
			d.Failed++
		default:
			d.Pending++
		}
	}
	return d
}
