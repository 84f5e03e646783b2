package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn  = errors.New("employee has already checked in today")
	ErrNotCheckedIn      = errors.New("employee has not checked in today")
	ErrAlreadyCheckedOut = errors.New("employee has already checked out today")

	// Break errors
	ErrAlreadyOnBreak = errors.New("employee is already on a break")
	ErrNoActiveBreak  = errors.New("no active break to end")

	// Manual entry errors
	ErrAttendanceExists = errors.New("an attendance record already exists for this date")
	ErrInvalidTimeRange = errors.New("clock out must not be before clock in")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
