package model

import "time"

// Setting keys exposed on the profile screen.
const (
	SettingPushNotifications = "push_notifications"
	SettingLocationServices  = "location_services"
	SettingOfflineMode       = "offline_mode"
)

// Driver is created once at login and retained for the session.
type Driver struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	VehicleNumber string          `json:"vehicle_number"`
	Rating        float64         `json:"rating"`
	JoinDate      time.Time       `json:"join_date"`
	Settings      map[string]bool `json:"settings"`
}

func (d *Driver) Clone() *Driver {
	cp := *d
	cp.Settings = make(map[string]bool, len(d.Settings))
	for k, v := range d.Settings {
		cp.Settings[k] = v
	}
	return &cp
}

// DefaultSettings mirrors the toggles a fresh profile starts with.
func DefaultSettings() map[string]bool {
	return map[string]bool{
		SettingPushNotifications: true,
		SettingLocationServices:  true,
		SettingOfflineMode:       false,
	}
}
