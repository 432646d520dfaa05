package postgresql

import (
	"context"
	"fmt"

	"gitlab.com/swifttrack/driver-app/internal/db"
	"gitlab.com/swifttrack/driver-app/internal/model"
	"gitlab.com/swifttrack/driver-app/internal/repository"
)

type HistoryRepo struct {
	db db.DB
}

func NewHistoryRepo(database db.DB) *HistoryRepo {
	return &HistoryRepo{db: database}
}

func (r *HistoryRepo) Record(ctx context.Context, change model.StatusChange) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO package_status_history (package_id, from_state, to_state, changed_at)
        VALUES ($1, $2, $3, $4)
    `, change.PackageID, string(change.From), string(change.To), change.ChangedAt)
	if err != nil {
		return fmt.Errorf("record status change for %s: %w", change.PackageID, err)
	}
	return nil
}

func (r *HistoryRepo) ListByPackage(ctx context.Context, packageID string) ([]model.StatusChange, error) {
	var rows []*repository.StatusChangeRow
	err := r.db.Select(ctx, &rows, `
        SELECT id, package_id, from_state, to_state, changed_at
        FROM package_status_history
        WHERE package_id = $1
        ORDER BY changed_at
    `, packageID)
	if err != nil {
		return nil, fmt.Errorf("list status history for %s: %w", packageID, err)
	}

	out := make([]model.StatusChange, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.StatusChange{
			PackageID: row.PackageID,
			From:      model.PackageStatus(row.FromState),
			To:        model.PackageStatus(row.ToState),
			ChangedAt: row.ChangedAt,
		})
	}
	return out, nil
}
