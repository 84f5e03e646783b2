package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for daily attendance records.
type AttendanceRepository interface {
	// Create inserts a new attendance record. The store enforces a unique
	// index on (employee_id, date); a duplicate insert returns ErrAttendanceExists.
	Create(ctx context.Context, record Attendance) (Attendance, error)

	// GetByID retrieves a record together with its breaks.
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByEmployeeAndDate retrieves the record for one employee on one local
	// work day, breaks included. Returns (nil, nil) when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// Update persists mutated fields of an existing record.
	Update(ctx context.Context, record Attendance) error

	// List retrieves records with filters and pagination.
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
}

// BreakRepository defines data access methods for break intervals.
type BreakRepository interface {
	Create(ctx context.Context, brk Break) (Break, error)

	// GetActiveByAttendanceID returns the open break of a record, or (nil, nil)
	// when every break is closed.
	GetActiveByAttendanceID(ctx context.Context, attendanceID string) (*Break, error)

	Update(ctx context.Context, brk Break) error
}
