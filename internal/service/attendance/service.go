package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/branch"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/lock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	db database.TxManager
	attendance.AttendanceRepository
	attendance.BreakRepository
	correction.CorrectionRepository
	employee.EmployeeRepository
	branch.BranchRepository
	auditSink audit.Sink
	clock     clock.Clock
	dayLocks  *lock.KeyedMutex
}

func NewAttendanceService(
	db database.TxManager,
	attendanceRepo attendance.AttendanceRepository,
	breakRepo attendance.BreakRepository,
	correctionRepo correction.CorrectionRepository,
	employeeRepo employee.EmployeeRepository,
	branchRepo branch.BranchRepository,
	auditSink audit.Sink,
	clk clock.Clock,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		db:                   db,
		AttendanceRepository: attendanceRepo,
		BreakRepository:      breakRepo,
		CorrectionRepository: correctionRepo,
		EmployeeRepository:   employeeRepo,
		BranchRepository:     branchRepo,
		auditSink:            auditSink,
		clock:                clk,
		dayLocks:             lock.New(),
	}
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

// workDay reduces a branch-local timestamp to its calendar day, normalized to
// UTC midnight so that date equality is independent of the host timezone.
func workDay(local time.Time) time.Time {
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func dayLockKey(employeeID string, date time.Time) string {
	return employeeID + ":" + date.Format("2006-01-02")
}

func correctionLockKey(attendanceID string, ct correction.Type) string {
	return attendanceID + ":" + string(ct)
}

// emitAudit records a data modification on the audit sink. Sink failures are
// logged and swallowed; the primary mutation stands regardless.
func (a *AttendanceServiceImpl) emitAudit(ctx context.Context, actorID, entityType, entityID string, action audit.Action, before, after interface{}) {
	entry := audit.Entry{
		ActorID:    actorID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
	}
	if before != nil {
		if data, err := json.Marshal(before); err == nil {
			s := string(data)
			entry.Before = &s
		}
	}
	if after != nil {
		if data, err := json.Marshal(after); err == nil {
			s := string(data)
			entry.After = &s
		}
	}

	if err := a.auditSink.LogDataModification(ctx, entry); err != nil {
		slog.Error("Failed to emit audit entry",
			"entity_type", entityType,
			"entity_id", entityID,
			"action", string(action),
			"error", err,
		)
	}
}

// resolveEmployeeDay loads the employee and its branch configuration and
// resolves "now" in the branch timezone.
func (a *AttendanceServiceImpl) resolveEmployeeDay(ctx context.Context, employeeID string) (employee.Employee, branch.Branch, time.Time, time.Time, error) {
	emp, err := a.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, branch.Branch{}, time.Time{}, time.Time{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, branch.Branch{}, time.Time{}, time.Time{}, fmt.Errorf("failed to get employee: %w", err)
	}

	br, err := a.BranchRepository.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, branch.ErrBranchNotFound) {
			return employee.Employee{}, branch.Branch{}, time.Time{}, time.Time{}, branch.ErrBranchNotFound
		}
		return employee.Employee{}, branch.Branch{}, time.Time{}, time.Time{}, fmt.Errorf("failed to get branch: %w", err)
	}

	nowUTC := a.clock.Now().UTC()
	nowLocal := nowUTC.In(br.Location())

	return emp, br, nowUTC, nowLocal, nil
}

// lateness compares a branch-local check-in moment against the scheduled
// start plus grace period. Minutes are counted from the scheduled start, not
// from the end of the grace window.
func lateness(br branch.Branch, nowLocal time.Time) (attendance.Status, int) {
	start, err := time.Parse("15:04", br.WorkStartTime)
	if err != nil {
		return attendance.StatusPresent, 0
	}

	scheduled := time.Date(
		nowLocal.Year(), nowLocal.Month(), nowLocal.Day(),
		start.Hour(), start.Minute(), 0, 0,
		nowLocal.Location(),
	)
	graceLimit := scheduled.Add(time.Duration(br.GracePeriodMinutes) * time.Minute)

	if !nowLocal.After(graceLimit) {
		return attendance.StatusPresent, 0
	}

	diff := nowLocal.Sub(scheduled).Minutes()
	if diff < 0 {
		diff = 0
	}
	return attendance.StatusLate, int(math.Floor(diff))
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	_, br, nowUTC, nowLocal, err := a.resolveEmployeeDay(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	date := workDay(nowLocal)

	unlock := a.dayLocks.Lock(dayLockKey(req.EmployeeID, date))
	defer unlock()

	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check today's attendance: %w", err)
	}
	if existing != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
	}

	status, lateMinutes := lateness(br, nowLocal)

	record := attendance.Attendance{
		EmployeeID:  req.EmployeeID,
		Date:        date,
		Location:    req.Location,
		Source:      req.Source,
		ClockIn:     &nowUTC,
		Status:      status,
		LateMinutes: &lateMinutes,
	}

	created, err := a.AttendanceRepository.Create(ctx, record)
	if err != nil {
		// A concurrent check-in that slipped past the lock loses on the
		// unique (employee_id, date) index.
		if errors.Is(err, attendance.ErrAttendanceExists) {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	a.emitAudit(ctx, req.EmployeeID, "attendance", created.ID, audit.ActionCreate, nil, created)

	return mapAttendanceToResponse(created), nil
}

// CheckOut implements attendance.AttendanceService. A still-open break is
// closed implicitly at the checkout instant before totals are computed.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	_, br, nowUTC, nowLocal, err := a.resolveEmployeeDay(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	date := workDay(nowLocal)

	unlock := a.dayLocks.Lock(dayLockKey(req.EmployeeID, date))
	defer unlock()

	record, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record == nil || record.ClockIn == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	if record.ClockOut != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}

	before := *record
	before.Breaks = append([]attendance.Break(nil), record.Breaks...)

	var openBreak *attendance.Break
	if ob := record.OpenBreak(); ob != nil {
		closed := *ob
		closed.EndAt = &nowUTC
		openBreak = &closed
		for i := range record.Breaks {
			if record.Breaks[i].ID == closed.ID {
				record.Breaks[i] = closed
			}
		}
	}

	workMinutes := int(nowUTC.Sub(*record.ClockIn).Minutes()) - record.BreakMinutes()
	if workMinutes < 0 {
		workMinutes = 0
	}

	overtimeMinutes := 0
	if br.StandardWorkMinutes > 0 && workMinutes > br.StandardWorkMinutes {
		overtimeMinutes = workMinutes - br.StandardWorkMinutes
	}

	record.ClockOut = &nowUTC
	record.WorkMinutes = &workMinutes
	record.OvertimeMinutes = &overtimeMinutes
	if record.LateMinutes != nil && *record.LateMinutes > 0 {
		record.Status = attendance.StatusLate
	} else {
		record.Status = attendance.StatusPresent
	}

	err = a.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		if openBreak != nil {
			if err := a.BreakRepository.Update(txCtx, *openBreak); err != nil {
				return fmt.Errorf("failed to close open break: %w", err)
			}
		}
		if err := a.AttendanceRepository.Update(txCtx, *record); err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.emitAudit(ctx, req.EmployeeID, "attendance", record.ID, audit.ActionUpdate, before, *record)

	return mapAttendanceToResponse(*record), nil
}

// GetCurrentStatus implements attendance.AttendanceService. Pure read: no
// record for today means absent.
func (a *AttendanceServiceImpl) GetCurrentStatus(ctx context.Context, employeeID string) (attendance.StatusResponse, error) {
	loc := time.UTC
	br, err := a.BranchRepository.GetByEmployeeID(ctx, employeeID)
	if err == nil {
		loc = br.Location()
	} else if !errors.Is(err, branch.ErrBranchNotFound) {
		return attendance.StatusResponse{}, fmt.Errorf("failed to get branch: %w", err)
	}

	nowLocal := a.clock.Now().UTC().In(loc)
	date := workDay(nowLocal)

	record, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	status := attendance.StatusAbsent
	if record != nil {
		status = record.Status
	}

	return attendance.StatusResponse{
		EmployeeID: employeeID,
		Date:       date.Format("2006-01-02"),
		Status:     string(status),
	}, nil
}

// StartBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.StartBreakRequest) (attendance.BreakResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.BreakResponse{}, err
	}

	_, _, nowUTC, nowLocal, err := a.resolveEmployeeDay(ctx, req.EmployeeID)
	if err != nil {
		return attendance.BreakResponse{}, err
	}
	date := workDay(nowLocal)

	unlock := a.dayLocks.Lock(dayLockKey(req.EmployeeID, date))
	defer unlock()

	record, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err != nil {
		return attendance.BreakResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record == nil || record.ClockIn == nil {
		return attendance.BreakResponse{}, attendance.ErrNotCheckedIn
	}
	if record.ClockOut != nil {
		return attendance.BreakResponse{}, attendance.ErrAlreadyCheckedOut
	}

	active, err := a.BreakRepository.GetActiveByAttendanceID(ctx, record.ID)
	if err != nil {
		return attendance.BreakResponse{}, fmt.Errorf("failed to get active break: %w", err)
	}
	if active != nil {
		return attendance.BreakResponse{}, attendance.ErrAlreadyOnBreak
	}

	brk := attendance.Break{
		AttendanceID: record.ID,
		BreakType:    attendance.BreakType(req.BreakType),
		Location:     req.Location,
		StartAt:      nowUTC,
	}
	record.Status = attendance.StatusOnBreak

	var created attendance.Break
	err = a.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err = a.BreakRepository.Create(txCtx, brk)
		if err != nil {
			return fmt.Errorf("failed to create break record: %w", err)
		}
		if err := a.AttendanceRepository.Update(txCtx, *record); err != nil {
			return fmt.Errorf("failed to update attendance status: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.BreakResponse{}, err
	}

	a.emitAudit(ctx, req.EmployeeID, "attendance_break", created.ID, audit.ActionCreate, nil, created)

	return mapBreakToResponse(created), nil
}

// EndBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context, req attendance.EndBreakRequest) (attendance.BreakResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.BreakResponse{}, err
	}

	_, _, nowUTC, nowLocal, err := a.resolveEmployeeDay(ctx, req.EmployeeID)
	if err != nil {
		return attendance.BreakResponse{}, err
	}
	date := workDay(nowLocal)

	unlock := a.dayLocks.Lock(dayLockKey(req.EmployeeID, date))
	defer unlock()

	record, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err != nil {
		return attendance.BreakResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record == nil || record.ClockIn == nil {
		return attendance.BreakResponse{}, attendance.ErrNotCheckedIn
	}

	active, err := a.BreakRepository.GetActiveByAttendanceID(ctx, record.ID)
	if err != nil {
		return attendance.BreakResponse{}, fmt.Errorf("failed to get active break: %w", err)
	}
	if active == nil {
		return attendance.BreakResponse{}, attendance.ErrNoActiveBreak
	}

	before := *active
	endAt := nowUTC
	if endAt.Before(active.StartAt) {
		endAt = active.StartAt
	}
	active.EndAt = &endAt

	if record.LateMinutes != nil && *record.LateMinutes > 0 {
		record.Status = attendance.StatusLate
	} else {
		record.Status = attendance.StatusPresent
	}

	err = a.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := a.BreakRepository.Update(txCtx, *active); err != nil {
			return fmt.Errorf("failed to close break record: %w", err)
		}
		if err := a.AttendanceRepository.Update(txCtx, *record); err != nil {
			return fmt.Errorf("failed to update attendance status: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.BreakResponse{}, err
	}

	a.emitAudit(ctx, req.EmployeeID, "attendance_break", active.ID, audit.ActionUpdate, before, *active)

	return mapBreakToResponse(*active), nil
}

// CreateManualEntry implements attendance.AttendanceService. Manual entries
// backfill a full day on behalf of an employee and are flagged distinctly
// from organic records.
func (a *AttendanceServiceImpl) CreateManualEntry(ctx context.Context, req attendance.ManualEntryRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	_, err := a.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.AttendanceResponse{}, employee.ErrEmployeeNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	br, err := a.BranchRepository.GetByEmployeeID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, branch.ErrBranchNotFound) {
			return attendance.AttendanceResponse{}, branch.ErrBranchNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get branch: %w", err)
	}

	parsedDate, _ := time.Parse("2006-01-02", req.Date)
	date := workDay(parsedDate)

	clockIn, _ := time.Parse(time.RFC3339, req.ClockIn)
	clockIn = clockIn.UTC()

	// The clock-in must land on the entry date in the branch's timezone.
	// Clock-out is allowed past midnight for overnight shifts.
	if clockIn.In(br.Location()).Format("2006-01-02") != req.Date {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{{
			Field:   "clock_in",
			Message: "clock_in must fall on the entry date",
		}}
	}

	var clockOut *time.Time
	if req.ClockOut != nil && *req.ClockOut != "" {
		parsed, _ := time.Parse(time.RFC3339, *req.ClockOut)
		parsed = parsed.UTC()
		if parsed.Before(clockIn) {
			return attendance.AttendanceResponse{}, attendance.ErrInvalidTimeRange
		}
		clockOut = &parsed
	}

	unlock := a.dayLocks.Lock(dayLockKey(req.EmployeeID, date))
	defer unlock()

	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check existing attendance: %w", err)
	}
	if existing != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceExists
	}

	record := attendance.Attendance{
		EmployeeID:    req.EmployeeID,
		Date:          date,
		ClockIn:       &clockIn,
		ClockOut:      clockOut,
		Status:        attendance.Status(req.Status),
		IsManualEntry: true,
		EnteredBy:     &req.EnteredBy,
		Notes:         &req.Reason,
	}

	if clockOut != nil {
		workMinutes := int(clockOut.Sub(clockIn).Minutes())
		record.WorkMinutes = &workMinutes

		overtimeMinutes := 0
		if br.StandardWorkMinutes > 0 && workMinutes > br.StandardWorkMinutes {
			overtimeMinutes = workMinutes - br.StandardWorkMinutes
		}
		record.OvertimeMinutes = &overtimeMinutes
	}

	created, err := a.AttendanceRepository.Create(ctx, record)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceExists) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceExists
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create manual attendance entry: %w", err)
	}

	a.emitAudit(ctx, req.EnteredBy, "attendance", created.ID, audit.ActionCreate, nil, created)

	return mapAttendanceToResponse(created), nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	record, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	return mapAttendanceToResponse(record), nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	records, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, mapAttendanceToResponse(record))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min((filter.Page)*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// RequestCorrection implements attendance.AttendanceService. The referenced
// record is left untouched; only approval applies the proposed value.
func (a *AttendanceServiceImpl) RequestCorrection(ctx context.Context, req correction.CreateRequest) (correction.Response, error) {
	if err := req.Validate(); err != nil {
		return correction.Response{}, err
	}

	if _, err := a.AttendanceRepository.GetByID(ctx, req.AttendanceID); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return correction.Response{}, attendance.ErrAttendanceNotFound
		}
		return correction.Response{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	ct := correction.Type(req.CorrectionType)

	unlock := a.dayLocks.Lock(correctionLockKey(req.AttendanceID, ct))
	defer unlock()

	hasPending, err := a.CorrectionRepository.HasPendingForType(ctx, req.AttendanceID, ct)
	if err != nil {
		return correction.Response{}, fmt.Errorf("failed to check pending corrections: %w", err)
	}
	if hasPending {
		return correction.Response{}, correction.ErrPendingCorrectionExists
	}

	created, err := a.CorrectionRepository.Create(ctx, correction.Correction{
		AttendanceID:   req.AttendanceID,
		RequestedBy:    req.RequestedBy,
		CorrectionType: ct,
		OriginalValue:  req.OriginalValue,
		CorrectedValue: req.CorrectedValue,
		Reason:         req.Reason,
		Status:         correction.StatusPending,
	})
	if err != nil {
		// A concurrent request that slipped past the lock loses on the
		// partial unique (attendance_id, correction_type) pending index.
		if errors.Is(err, correction.ErrPendingCorrectionExists) {
			return correction.Response{}, correction.ErrPendingCorrectionExists
		}
		return correction.Response{}, fmt.Errorf("failed to create correction: %w", err)
	}

	a.emitAudit(ctx, req.RequestedBy, "attendance_correction", created.ID, audit.ActionCreate, nil, created)

	return mapCorrectionToResponse(created), nil
}

// ApproveCorrection implements attendance.AttendanceService. Approval applies
// the proposed value onto the referenced record and recomputes derived totals.
func (a *AttendanceServiceImpl) ApproveCorrection(ctx context.Context, req correction.DecisionRequest) (correction.Response, error) {
	if err := req.Validate(); err != nil {
		return correction.Response{}, err
	}

	c, err := a.CorrectionRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, correction.ErrCorrectionNotFound) {
			return correction.Response{}, correction.ErrCorrectionNotFound
		}
		return correction.Response{}, fmt.Errorf("failed to get correction: %w", err)
	}
	if c.Terminal() {
		return correction.Response{}, correction.ErrAlreadyProcessed
	}

	record, err := a.AttendanceRepository.GetByID(ctx, c.AttendanceID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return correction.Response{}, attendance.ErrAttendanceNotFound
		}
		return correction.Response{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	beforeRecord := record
	if err := applyCorrection(&record, c); err != nil {
		return correction.Response{}, err
	}

	// Recompute derived totals when both clock times are present.
	if record.ClockIn != nil && record.ClockOut != nil {
		if record.ClockOut.Before(*record.ClockIn) {
			return correction.Response{}, attendance.ErrInvalidTimeRange
		}
		workMinutes := int(record.ClockOut.Sub(*record.ClockIn).Minutes()) - record.BreakMinutes()
		if workMinutes < 0 {
			workMinutes = 0
		}
		record.WorkMinutes = &workMinutes

		if br, err := a.BranchRepository.GetByEmployeeID(ctx, record.EmployeeID); err == nil {
			overtimeMinutes := 0
			if br.StandardWorkMinutes > 0 && workMinutes > br.StandardWorkMinutes {
				overtimeMinutes = workMinutes - br.StandardWorkMinutes
			}
			record.OvertimeMinutes = &overtimeMinutes
		}
	}

	now := a.clock.Now().UTC()
	beforeCorrection := c
	c.Status = correction.StatusApproved
	c.ReviewedBy = &req.ReviewedBy
	c.ReviewedAt = &now

	err = a.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := a.AttendanceRepository.Update(txCtx, record); err != nil {
			return fmt.Errorf("failed to apply correction to attendance: %w", err)
		}
		if err := a.CorrectionRepository.Update(txCtx, c); err != nil {
			return fmt.Errorf("failed to update correction: %w", err)
		}
		return nil
	})
	if err != nil {
		return correction.Response{}, err
	}

	a.emitAudit(ctx, req.ReviewedBy, "attendance", record.ID, audit.ActionUpdate, beforeRecord, record)
	a.emitAudit(ctx, req.ReviewedBy, "attendance_correction", c.ID, audit.ActionUpdate, beforeCorrection, c)

	return mapCorrectionToResponse(c), nil
}

// RejectCorrection implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RejectCorrection(ctx context.Context, req correction.DecisionRequest) (correction.Response, error) {
	if err := req.Validate(); err != nil {
		return correction.Response{}, err
	}

	c, err := a.CorrectionRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, correction.ErrCorrectionNotFound) {
			return correction.Response{}, correction.ErrCorrectionNotFound
		}
		return correction.Response{}, fmt.Errorf("failed to get correction: %w", err)
	}
	if c.Terminal() {
		return correction.Response{}, correction.ErrAlreadyProcessed
	}

	now := a.clock.Now().UTC()
	before := c
	c.Status = correction.StatusRejected
	c.ReviewedBy = &req.ReviewedBy
	c.ReviewedAt = &now

	if err := a.CorrectionRepository.Update(ctx, c); err != nil {
		return correction.Response{}, fmt.Errorf("failed to update correction: %w", err)
	}

	a.emitAudit(ctx, req.ReviewedBy, "attendance_correction", c.ID, audit.ActionUpdate, before, c)

	return mapCorrectionToResponse(c), nil
}

// ListCorrections implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListCorrections(ctx context.Context, attendanceID string) ([]correction.Response, error) {
	if _, err := a.AttendanceRepository.GetByID(ctx, attendanceID); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return nil, attendance.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}

	corrections, err := a.CorrectionRepository.ListByAttendanceID(ctx, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list corrections: %w", err)
	}

	responses := make([]correction.Response, 0, len(corrections))
	for _, c := range corrections {
		responses = append(responses, mapCorrectionToResponse(c))
	}

	return responses, nil
}

// applyCorrection writes the corrected value onto the record field named by
// the correction type.
func applyCorrection(record *attendance.Attendance, c correction.Correction) error {
	switch c.CorrectionType {
	case correction.TypeCheckInTime:
		t, err := time.Parse(time.RFC3339, c.CorrectedValue)
		if err != nil {
			return correction.ErrInvalidCorrectedValue
		}
		utc := t.UTC()
		record.ClockIn = &utc
	case correction.TypeCheckOutTime:
		t, err := time.Parse(time.RFC3339, c.CorrectedValue)
		if err != nil {
			return correction.ErrInvalidCorrectedValue
		}
		utc := t.UTC()
		record.ClockOut = &utc
	case correction.TypeStatus:
		found := false
		for _, s := range attendance.ValidStatuses {
			if s == c.CorrectedValue {
				found = true
				break
			}
		}
		if !found {
			return correction.ErrInvalidCorrectedValue
		}
		record.Status = attendance.Status(c.CorrectedValue)
	default:
		return correction.ErrInvalidCorrectedValue
	}
	return nil
}

// mapAttendanceToResponse converts an Attendance entity to AttendanceResponse
func mapAttendanceToResponse(record attendance.Attendance) attendance.AttendanceResponse {
	breaks := make([]attendance.BreakResponse, 0, len(record.Breaks))
	for _, b := range record.Breaks {
		breaks = append(breaks, mapBreakToResponse(b))
	}

	return attendance.AttendanceResponse{
		ID:              record.ID,
		EmployeeID:      record.EmployeeID,
		EmployeeName:    record.EmployeeName,
		Date:            record.Date.Format("2006-01-02"),
		Location:        record.Location,
		ClockInTime:     timePtrToString(record.ClockIn),
		ClockOutTime:    timePtrToString(record.ClockOut),
		WorkMinutes:     record.WorkMinutes,
		LateMinutes:     record.LateMinutes,
		OvertimeMinutes: record.OvertimeMinutes,
		Status:          string(record.Status),
		IsManualEntry:   record.IsManualEntry,
		EnteredBy:       record.EnteredBy,
		Notes:           record.Notes,
		Breaks:          breaks,
	}
}

func mapBreakToResponse(b attendance.Break) attendance.BreakResponse {
	return attendance.BreakResponse{
		ID:           b.ID,
		AttendanceID: b.AttendanceID,
		BreakType:    string(b.BreakType),
		Location:     b.Location,
		StartAt:      b.StartAt.Format("2006-01-02 15:04:05"),
		EndAt:        timePtrToString(b.EndAt),
	}
}

func mapCorrectionToResponse(c correction.Correction) correction.Response {
	return correction.Response{
		ID:             c.ID,
		AttendanceID:   c.AttendanceID,
		RequestedBy:    c.RequestedBy,
		CorrectionType: string(c.CorrectionType),
		OriginalValue:  c.OriginalValue,
		CorrectedValue: c.CorrectedValue,
		Reason:         c.Reason,
		Status:         string(c.Status),
		ReviewedBy:     c.ReviewedBy,
		ReviewedAt:     timePtrToString(c.ReviewedAt),
		CreatedAt:      c.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
