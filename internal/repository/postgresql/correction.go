package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type correctionRepository struct {
	db *database.DB
}

func NewCorrectionRepository(db *database.DB) correction.CorrectionRepository {
	return &correctionRepository{db: db}
}

const correctionColumns = `
	id, attendance_id, requested_by, correction_type,
	original_value, corrected_value, reason, status,
	reviewed_by, reviewed_at, created_at, updated_at`

// Create implements correction.CorrectionRepository.
func (c *correctionRepository) Create(ctx context.Context, newCorrection correction.Correction) (correction.Correction, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		INSERT INTO attendance_corrections (
			attendance_id, requested_by, correction_type,
			original_value, corrected_value, reason, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newCorrection.AttendanceID,
		newCorrection.RequestedBy,
		newCorrection.CorrectionType,
		newCorrection.OriginalValue,
		newCorrection.CorrectedValue,
		newCorrection.Reason,
		newCorrection.Status,
	).Scan(&newCorrection.ID, &newCorrection.CreatedAt, &newCorrection.UpdatedAt)

	if err != nil {
		// Partial unique index on (attendance_id, correction_type)
		// WHERE status = 'pending'.
		if isUniqueViolation(err) {
			return correction.Correction{}, correction.ErrPendingCorrectionExists
		}
		return correction.Correction{}, fmt.Errorf("failed to create correction: %w", err)
	}

	return newCorrection, nil
}

// GetByID implements correction.CorrectionRepository.
func (c *correctionRepository) GetByID(ctx context.Context, id string) (correction.Correction, error) {
	q := GetQuerier(ctx, c.db)

	query := `SELECT ` + correctionColumns + ` FROM attendance_corrections WHERE id = $1`

	var cor correction.Correction
	err := q.QueryRow(ctx, query, id).Scan(
		&cor.ID, &cor.AttendanceID, &cor.RequestedBy, &cor.CorrectionType,
		&cor.OriginalValue, &cor.CorrectedValue, &cor.Reason, &cor.Status,
		&cor.ReviewedBy, &cor.ReviewedAt, &cor.CreatedAt, &cor.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return correction.Correction{}, correction.ErrCorrectionNotFound
		}
		return correction.Correction{}, fmt.Errorf("failed to get correction by ID: %w", err)
	}

	return cor, nil
}

// Update implements correction.CorrectionRepository.
func (c *correctionRepository) Update(ctx context.Context, cor correction.Correction) error {
	q := GetQuerier(ctx, c.db)

	query := `
		UPDATE attendance_corrections
		SET status = $1, reviewed_by = $2, reviewed_at = $3, updated_at = $4
		WHERE id = $5
		RETURNING id
	`

	var updatedID string
	if err := q.QueryRow(ctx, query, cor.Status, cor.ReviewedBy, cor.ReviewedAt, time.Now(), cor.ID).Scan(&updatedID); err != nil {
		if err == pgx.ErrNoRows {
			return correction.ErrCorrectionNotFound
		}
		return fmt.Errorf("failed to update correction: %w", err)
	}

	return nil
}

// HasPendingForType implements correction.CorrectionRepository.
func (c *correctionRepository) HasPendingForType(ctx context.Context, attendanceID string, ct correction.Type) (bool, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM attendance_corrections
			WHERE attendance_id = $1
			  AND correction_type = $2
			  AND status = 'pending'
		)
	`

	var hasPending bool
	if err := q.QueryRow(ctx, query, attendanceID, ct).Scan(&hasPending); err != nil {
		return false, fmt.Errorf("failed to check pending corrections: %w", err)
	}

	return hasPending, nil
}

// ListByAttendanceID implements correction.CorrectionRepository.
func (c *correctionRepository) ListByAttendanceID(ctx context.Context, attendanceID string) ([]correction.Correction, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		SELECT ` + correctionColumns + `
		FROM attendance_corrections
		WHERE attendance_id = $1
		ORDER BY created_at DESC
	`

	rows, err := q.Query(ctx, query, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer rows.Close()

	var corrections []correction.Correction
	for rows.Next() {
		var cor correction.Correction
		err := rows.Scan(
			&cor.ID, &cor.AttendanceID, &cor.RequestedBy, &cor.CorrectionType,
			&cor.OriginalValue, &cor.CorrectedValue, &cor.Reason, &cor.Status,
			&cor.ReviewedBy, &cor.ReviewedAt, &cor.CreatedAt, &cor.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		corrections = append(corrections, cor)
	}

	return corrections, nil
}
