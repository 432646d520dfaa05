// Package repository defines the dispatch-system data access layer: the
// rows the dispatch database stores and the interfaces the app core uses to
// admit the manifest and mirror status history back.
package repository

import (
	"context"
	"errors"
	"time"

	"gitlab.com/swifttrack/driver-app/internal/model"
)

var ErrObjectNotFound = errors.New("not found")

// PackageRow is the packages table shape.
type PackageRow struct {
	ID                   string    `db:"id"`
	TrackingNumber       string    `db:"tracking_number"`
	CustomerName         string    `db:"customer_name"`
	CustomerPhone        string    `db:"customer_phone"`
	CustomerEmail        string    `db:"customer_email"`
	CustomerAddress      string    `db:"customer_address"`
	SenderName           string    `db:"sender_name"`
	SenderAddress        string    `db:"sender_address"`
	WindowStart          time.Time `db:"window_start"`
	WindowEnd            time.Time `db:"window_end"`
	Priority             string    `db:"priority"`
	ServiceType          string    `db:"service_type"`
	Weight               string    `db:"weight"`
	Dimensions           string    `db:"dimensions"`
	Category             string    `db:"category"`
	DeclaredValue        string    `db:"declared_value"`
	PaymentMethod        string    `db:"payment_method"`
	DeliveryFee          string    `db:"delivery_fee"`
	DeliveryInstructions string    `db:"delivery_instructions"`
	SpecialInstructions  string    `db:"special_instructions"`
	AttemptNumber        int       `db:"attempt_number"`
	MaxAttempts          int       `db:"max_attempts"`
	Status               string    `db:"status"`
	DeliveryDate         time.Time `db:"delivery_date"`
	SequenceIndex        int       `db:"sequence_index"`
}

// ToModel converts a row into the domain package.
func (r *PackageRow) ToModel() *model.Package {
	return &model.Package{
		ID:             r.ID,
		TrackingNumber: r.TrackingNumber,
		Customer: model.Customer{
			Name:    r.CustomerName,
			Phone:   r.CustomerPhone,
			Email:   r.CustomerEmail,
			Address: r.CustomerAddress,
		},
		Sender: model.Sender{
			Name:    r.SenderName,
			Address: r.SenderAddress,
		},
		TimeWindow: model.TimeWindow{
			Start: r.WindowStart,
			End:   r.WindowEnd,
		},
		Priority:             model.Priority(r.Priority),
		ServiceType:          model.ServiceType(r.ServiceType),
		Weight:               r.Weight,
		Dimensions:           r.Dimensions,
		Category:             r.Category,
		DeclaredValue:        r.DeclaredValue,
		PaymentMethod:        r.PaymentMethod,
		DeliveryFee:          r.DeliveryFee,
		DeliveryInstructions: r.DeliveryInstructions,
		SpecialInstructions:  r.SpecialInstructions,
		AttemptNumber:        r.AttemptNumber,
		MaxAttempts:          r.MaxAttempts,
		Status:               model.PackageStatus(r.Status),
		DeliveryDate:         r.DeliveryDate,
	}
}

// StatusChangeRow is the package_status_history table shape.
type StatusChangeRow struct {
	ID        int64     `db:"id"`
	PackageID string    `db:"package_id"`
	FromState string    `db:"from_state"`
	ToState   string    `db:"to_state"`
	ChangedAt time.Time `db:"changed_at"`
}

// DriverRow is the drivers table shape.
type DriverRow struct {
	ID            string    `db:"id"`
	Username      string    `db:"username"`
	PasswordHash  string    `db:"password_hash"`
	EmployeeID    string    `db:"employee_id"`
	Name          string    `db:"name"`
	Email         string    `db:"email"`
	Phone         string    `db:"phone"`
	VehicleNumber string    `db:"vehicle_number"`
	Rating        float64   `db:"rating"`
	JoinDate      time.Time `db:"join_date"`
}

func (r *DriverRow) ToModel() *model.Driver {
	return &model.Driver{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		VehicleNumber: r.VehicleNumber,
		Rating:        r.Rating,
		JoinDate:      r.JoinDate,
		Settings:      model.DefaultSettings(),
	}
}

// Packages serves the manifest assignment for a driver and day.
type Packages interface {
	ListAssigned(ctx context.Context, driverID string, date time.Time) ([]*model.Package, error)
	DistanceKm(ctx context.Context, driverID string, date time.Time) (map[string]float64, error)
}

// History mirrors committed status changes back to dispatch.
type History interface {
	Record(ctx context.Context, change model.StatusChange) error
	ListByPackage(ctx context.Context, packageID string) ([]model.StatusChange, error)
}

// Drivers serves driver accounts.
type Drivers interface {
	GetByUsername(ctx context.Context, username string) (*model.Driver, string, error)
}
