package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type breakRepository struct {
	db *database.DB
}

func NewBreakRepository(db *database.DB) attendance.BreakRepository {
	return &breakRepository{db: db}
}

// Create implements attendance.BreakRepository.
func (b *breakRepository) Create(ctx context.Context, newBreak attendance.Break) (attendance.Break, error) {
	q := GetQuerier(ctx, b.db)

	query := `
		INSERT INTO attendance_breaks (attendance_id, break_type, location, start_at, end_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		newBreak.AttendanceID,
		newBreak.BreakType,
		newBreak.Location,
		newBreak.StartAt,
		newBreak.EndAt,
	).Scan(&newBreak.ID, &newBreak.CreatedAt)

	if err != nil {
		return attendance.Break{}, fmt.Errorf("failed to create attendance break: %w", err)
	}

	return newBreak, nil
}

// GetActiveByAttendanceID implements attendance.BreakRepository.
func (b *breakRepository) GetActiveByAttendanceID(ctx context.Context, attendanceID string) (*attendance.Break, error) {
	q := GetQuerier(ctx, b.db)

	query := `
		SELECT id, attendance_id, break_type, location, start_at, end_at, created_at
		FROM attendance_breaks
		WHERE attendance_id = $1
		  AND end_at IS NULL
		LIMIT 1
	`

	var brk attendance.Break
	err := q.QueryRow(ctx, query, attendanceID).Scan(
		&brk.ID, &brk.AttendanceID, &brk.BreakType, &brk.Location, &brk.StartAt, &brk.EndAt, &brk.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // No open break
		}
		return nil, fmt.Errorf("failed to get active break: %w", err)
	}

	return &brk, nil
}

// Update implements attendance.BreakRepository.
func (b *breakRepository) Update(ctx context.Context, brk attendance.Break) error {
	q := GetQuerier(ctx, b.db)

	query := `
		UPDATE attendance_breaks
		SET end_at = $1
		WHERE id = $2
		RETURNING id
	`

	var updatedID string
	if err := q.QueryRow(ctx, query, brk.EndAt, brk.ID).Scan(&updatedID); err != nil {
		if err == pgx.ErrNoRows {
			return attendance.ErrNoActiveBreak
		}
		return fmt.Errorf("failed to update attendance break: %w", err)
	}

	return nil
}
