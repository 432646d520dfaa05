package model

import (
	"fmt"
	"strings"
	"time"
)

// Status of a package over the operational day. Delivered and Failed are
// terminal: the state machine never moves a package out of them.
type PackageStatus string

const (
	StatusPending   PackageStatus = "pending"
	StatusInTransit PackageStatus = "in_transit"
	StatusDelivered PackageStatus = "delivered"
	StatusFailed    PackageStatus = "failed"
)

func (s PackageStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

func (s PackageStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered, StatusFailed:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities for tie-breaking: high sorts before medium before low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

func (p Priority) Valid() bool {
	return p.Rank() < 3
}

type ServiceType string

const (
	ServiceExpress  ServiceType = "express"
	ServiceStandard ServiceType = "standard"
	ServiceEconomy  ServiceType = "economy"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceExpress, ServiceStandard, ServiceEconomy:
		return true
	}
	return false
}

type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address"`
}

type Sender struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// TimeWindow is the promised delivery window in the driver's local wall clock.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w TimeWindow) Valid() bool {
	return !w.Start.After(w.End)
}

// Package is a single parcel on the driver's manifest. It is admitted by the
// upstream dispatch system at session start and mutated only by the delivery
// state machine.
type Package struct {
	ID             string      `json:"id"`
	TrackingNumber string      `json:"tracking_number"`
	Customer       Customer    `json:"customer"`
	Sender         Sender      `json:"sender"`
	TimeWindow     TimeWindow  `json:"time_window"`
	Priority       Priority    `json:"priority"`
	ServiceType    ServiceType `json:"service_type"`

	Weight        string `json:"weight,omitempty"`
	Dimensions    string `json:"dimensions,omitempty"`
	Category      string `json:"category,omitempty"`
	DeclaredValue string `json:"declared_value,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	DeliveryFee   string `json:"delivery_fee,omitempty"`

	DeliveryInstructions string `json:"delivery_instructions,omitempty"`
	SpecialInstructions  string `json:"special_instructions,omitempty"`

	AttemptNumber int `json:"attempt_number"`
	MaxAttempts   int `json:"max_attempts"`

	Status  PackageStatus    `json:"status"`
	Proof   *ProofOfDelivery `json:"proof,omitempty"`
	Failure *FailureRecord   `json:"failure,omitempty"`

	// DeliveryDate is the operational day, local calendar date at midnight.
	DeliveryDate time.Time `json:"delivery_date"`
}

// Validate checks the structural invariants of a package. The store refuses
// to admit a package that fails here.
func (p *Package) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("package: empty id")
	}
	if !p.Status.Valid() {
		return fmt.Errorf("package %s: unknown status %q", p.ID, p.Status)
	}
	if !p.Priority.Valid() {
		return fmt.Errorf("package %s: unknown priority %q", p.ID, p.Priority)
	}
	if !p.ServiceType.Valid() {
		return fmt.Errorf("package %s: unknown service type %q", p.ID, p.ServiceType)
	}
	if !p.TimeWindow.Valid() {
		return fmt.Errorf("package %s: time window start after end", p.ID)
	}
	if p.AttemptNumber < 1 || p.MaxAttempts < 1 || p.AttemptNumber > p.MaxAttempts {
		return fmt.Errorf("package %s: attempt %d of %d out of range", p.ID, p.AttemptNumber, p.MaxAttempts)
	}
	if (p.Proof != nil) != (p.Status == StatusDelivered) {
		return fmt.Errorf("package %s: proof presence does not match status %q", p.ID, p.Status)
	}
	if (p.Failure != nil) != (p.Status == StatusFailed) {
		return fmt.Errorf("package %s: failure record presence does not match status %q", p.ID, p.Status)
	}
	return nil
}

// Clone returns a deep copy so store readers never alias store-owned memory.
func (p *Package) Clone() *Package {
	cp := *p
	if p.Proof != nil {
		proof := *p.Proof
		cp.Proof = &proof
	}
	if p.Failure != nil {
		failure := *p.Failure
		cp.Failure = &failure
	}
	return &cp
}

// StatusChange is one entry of a package's delivery history.
type StatusChange struct {
	PackageID string        `json:"package_id"`
	From      PackageStatus `json:"from"`
	To        PackageStatus `json:"to"`
	ChangedAt time.Time     `json:"changed_at"`
}
