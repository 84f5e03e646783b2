package attendance

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
)

// AttendanceService is the single entry point for daily attendance tracking.
type AttendanceService interface {
	// CheckIn opens the employee's attendance record for today.
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut closes the open record, implicitly ending a still-open break,
	// and computes worked and overtime minutes.
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// GetCurrentStatus returns the employee's status for today. Pure read;
	// absent when no record exists.
	GetCurrentStatus(ctx context.Context, employeeID string) (StatusResponse, error)

	// StartBreak opens a break interval on today's open record.
	StartBreak(ctx context.Context, req StartBreakRequest) (BreakResponse, error)

	// EndBreak closes the open break interval.
	EndBreak(ctx context.Context, req EndBreakRequest) (BreakResponse, error)

	// CreateManualEntry backfills a full day's record on behalf of an employee.
	CreateManualEntry(ctx context.Context, req ManualEntryRequest) (AttendanceResponse, error)

	// GetAttendance retrieves a single record with its breaks.
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// ListAttendance retrieves records with filters and pagination.
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// RequestCorrection files a pending correction against an existing record.
	RequestCorrection(ctx context.Context, req correction.CreateRequest) (correction.Response, error)

	// ApproveCorrection finalizes a pending correction and applies its
	// proposed value onto the referenced record.
	ApproveCorrection(ctx context.Context, req correction.DecisionRequest) (correction.Response, error)

	// RejectCorrection finalizes a pending correction without touching the record.
	RejectCorrection(ctx context.Context, req correction.DecisionRequest) (correction.Response, error)

	// ListCorrections returns all corrections filed against one record.
	ListCorrections(ctx context.Context, attendanceID string) ([]correction.Response, error)
}
