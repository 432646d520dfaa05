package postgresql

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/swifttrack/driver-app/internal/db"
	"gitlab.com/swifttrack/driver-app/internal/model"
	"gitlab.com/swifttrack/driver-app/internal/repository"
)

type PackageRepo struct {
	db db.DB
}

func NewPackageRepo(database db.DB) *PackageRepo {
	return &PackageRepo{db: database}
}

// ListAssigned returns the driver's manifest for the operational day in the
// dispatch-assigned stop order.
func (r *PackageRepo) ListAssigned(ctx context.Context, driverID string, date time.Time) ([]*model.Package, error) {
	var rows []*repository.PackageRow
	err := r.db.Select(ctx, &rows, `
        SELECT id, tracking_number,
               customer_name, customer_phone, customer_email, customer_address,
               sender_name, sender_address,
               window_start, window_end,
               priority, service_type,
               weight, dimensions, category, declared_value,
               payment_method, delivery_fee,
               delivery_instructions, special_instructions,
               attempt_number, max_attempts,
               status, delivery_date, sequence_index
        FROM packages
        WHERE driver_id = $1 AND delivery_date = $2
        ORDER BY sequence_index
    `, driverID, date)
	if err != nil {
		return nil, fmt.Errorf("list assigned packages: %w", err)
	}

	pkgs := make([]*model.Package, 0, len(rows))
	for _, row := range rows {
		pkgs = append(pkgs, row.ToModel())
	}
	return pkgs, nil
}

// DistanceKm returns the planned leg distance to each stop.
func (r *PackageRepo) DistanceKm(ctx context.Context, driverID string, date time.Time) (map[string]float64, error) {
	var rows []struct {
		PackageID  string  `db:"package_id"`
		DistanceKm float64 `db:"distance_km"`
	}
	err := r.db.Select(ctx, &rows, `
        SELECT package_id, distance_km
        FROM route_legs
        WHERE driver_id = $1 AND delivery_date = $2
    `, driverID, date)
	if err != nil {
		return nil, fmt.Errorf("list route legs: %w", err)
	}

	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.PackageID] = row.DistanceKm
	}
	return out, nil
}
