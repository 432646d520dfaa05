package model

import "time"

// StopStatus is derived from package state and the clock; it is never stored.
type StopStatus string

const (
	StopUpcoming  StopStatus = "upcoming"
	StopCurrent   StopStatus = "current"
	StopCompleted StopStatus = "completed"
	StopDelayed   StopStatus = "delayed"
)

// Stop is the route-level projection of a package at a sequence position.
// It references the package by id, it does not own it.
type Stop struct {
	PackageID          string     `json:"package_id"`
	SequenceIndex      int        `json:"sequence_index"`
	CustomerName       string     `json:"customer_name"`
	Address            string     `json:"address"`
	TimeWindow         TimeWindow `json:"time_window"`
	EstimatedArrival   time.Time  `json:"estimated_arrival"`
	DistanceFromPrevKm float64    `json:"distance_from_prev_km"`
	Status             StopStatus `json:"status"`
	Notes              string     `json:"notes,omitempty"`
}

type Route struct {
	RouteID  string    `json:"route_id"`
	DriverID string    `json:"driver_id"`
	Date     time.Time `json:"date"`
	Stops    []Stop    `json:"stops"`
}
