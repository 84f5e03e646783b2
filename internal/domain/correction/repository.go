package correction

import (
	"context"
)

// CorrectionRepository defines data access methods for attendance corrections.
type CorrectionRepository interface {
	Create(ctx context.Context, c Correction) (Correction, error)

	GetByID(ctx context.Context, id string) (Correction, error)

	// Update persists status and reviewer fields of an existing correction.
	Update(ctx context.Context, c Correction) error

	// HasPendingForType reports whether a pending correction already exists
	// for the given record and field.
	HasPendingForType(ctx context.Context, attendanceID string, ct Type) (bool, error)

	// ListByAttendanceID returns all corrections referencing one record,
	// newest first.
	ListByAttendanceID(ctx context.Context, attendanceID string) ([]Correction, error)
}
