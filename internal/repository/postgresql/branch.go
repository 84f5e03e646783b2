package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/branch"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type branchRepository struct {
	db *database.DB
}

func NewBranchRepository(db *database.DB) branch.BranchRepository {
	return &branchRepository{db: db}
}

// GetByEmployeeID implements branch.BranchRepository.
func (b *branchRepository) GetByEmployeeID(ctx context.Context, employeeID string) (branch.Branch, error) {
	q := GetQuerier(ctx, b.db)

	query := `
		SELECT b.id, b.name, b.timezone, b.work_start_time, b.work_end_time,
			   b.grace_period_minutes, b.standard_work_minutes,
			   b.created_at, b.updated_at
		FROM branches b
		JOIN employees e ON e.branch_id = b.id
		WHERE e.id = $1
	`

	var br branch.Branch
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&br.ID, &br.Name, &br.Timezone, &br.WorkStartTime, &br.WorkEndTime,
		&br.GracePeriodMinutes, &br.StandardWorkMinutes,
		&br.CreatedAt, &br.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return branch.Branch{}, branch.ErrBranchNotFound
		}
		return branch.Branch{}, fmt.Errorf("failed to get branch by employee ID: %w", err)
	}

	return br, nil
}
