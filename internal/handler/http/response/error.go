package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/branch"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Not found
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, correction.ErrCorrectionNotFound):
		NotFound(w, "Correction not found")
	case errors.Is(err, branch.ErrBranchNotFound):
		NotFound(w, "Branch not found")

	// Uniqueness conflicts
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Employee has already checked in today")
	case errors.Is(err, attendance.ErrAlreadyOnBreak):
		Conflict(w, "Employee is already on a break")
	case errors.Is(err, attendance.ErrAttendanceExists):
		Conflict(w, "An attendance record already exists for this date")
	case errors.Is(err, correction.ErrPendingCorrectionExists):
		Conflict(w, "A pending correction already exists for this field")
	case errors.Is(err, correction.ErrAlreadyProcessed):
		Conflict(w, "Correction has already been approved or rejected")

	// Invalid lifecycle state
	case errors.Is(err, attendance.ErrNotCheckedIn):
		BadRequest(w, "Employee has not checked in today", nil)
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		BadRequest(w, "Employee has already checked out today", nil)
	case errors.Is(err, attendance.ErrNoActiveBreak):
		BadRequest(w, "No active break to end", nil)
	case errors.Is(err, attendance.ErrInvalidTimeRange):
		BadRequest(w, "Clock out must not be before clock in", nil)
	case errors.Is(err, correction.ErrInvalidCorrectedValue):
		BadRequest(w, "Corrected value cannot be applied to the attendance record", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
