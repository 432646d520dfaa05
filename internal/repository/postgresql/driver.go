package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"

	"gitlab.com/swifttrack/driver-app/internal/db"
	"gitlab.com/swifttrack/driver-app/internal/model"
	"gitlab.com/swifttrack/driver-app/internal/repository"
)

type DriverRepo struct {
	db db.DB
}

func NewDriverRepo(database db.DB) *DriverRepo {
	return &DriverRepo{db: database}
}

// GetByUsername returns the driver profile and the stored password hash.
// The hash never leaves the session login path.
func (r *DriverRepo) GetByUsername(ctx context.Context, username string) (*model.Driver, string, error) {
	var row repository.DriverRow
	err := r.db.Get(ctx, &row, `
        SELECT id, username, password_hash, employee_id, name, email, phone,
               vehicle_number, rating, join_date
        FROM drivers
        WHERE username = $1
    `, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", repository.ErrObjectNotFound
		}
		return nil, "", fmt.Errorf("get driver %s: %w", username, err)
	}
	return row.ToModel(), row.PasswordHash, nil
}
