package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/branch"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ----------------------------------------
// In-memory fakes
// ----------------------------------------

type memStore struct {
	mu          sync.Mutex
	attendances map[string]attendance.Attendance
	breaks      map[string]attendance.Break
	corrections map[string]correction.Correction
	seq         int
}

func newMemStore() *memStore {
	return &memStore{
		attendances: make(map[string]attendance.Attendance),
		breaks:      make(map[string]attendance.Break),
		corrections: make(map[string]correction.Correction),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) breaksForLocked(attendanceID string) []attendance.Break {
	var result []attendance.Break
	for _, b := range s.breaks {
		if b.AttendanceID == attendanceID {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartAt.Before(result[j].StartAt)
	})
	return result
}

type fakeAttendanceRepo struct {
	s *memStore
}

func (r *fakeAttendanceRepo) Create(ctx context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.attendances {
		if existing.EmployeeID == record.EmployeeID && existing.Date.Equal(record.Date) {
			return attendance.Attendance{}, attendance.ErrAttendanceExists
		}
	}

	record.ID = r.s.nextID("att")
	record.Breaks = nil
	r.s.attendances[record.ID] = record
	return record, nil
}

func (r *fakeAttendanceRepo) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	record, ok := r.s.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	record.Breaks = r.s.breaksForLocked(id)
	return record, nil
}

func (r *fakeAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, record := range r.s.attendances {
		if record.EmployeeID == employeeID && record.Date.Equal(date) {
			record.Breaks = r.s.breaksForLocked(record.ID)
			return &record, nil
		}
	}
	return nil, nil
}

func (r *fakeAttendanceRepo) Update(ctx context.Context, record attendance.Attendance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.attendances[record.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	record.Breaks = nil
	r.s.attendances[record.ID] = record
	return nil
}

func (r *fakeAttendanceRepo) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []attendance.Attendance
	for _, record := range r.s.attendances {
		if filter.EmployeeID != nil && record.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(record.Status) != *filter.Status {
			continue
		}
		if filter.Date != nil && record.Date.Format("2006-01-02") != *filter.Date {
			continue
		}
		record.Breaks = r.s.breaksForLocked(record.ID)
		matched = append(matched, record)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Date.Equal(matched[j].Date) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].Date.After(matched[j].Date)
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(matched) {
		return []attendance.Attendance{}, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

type fakeBreakRepo struct {
	s *memStore
}

func (r *fakeBreakRepo) Create(ctx context.Context, brk attendance.Break) (attendance.Break, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	brk.ID = r.s.nextID("brk")
	r.s.breaks[brk.ID] = brk
	return brk, nil
}

func (r *fakeBreakRepo) GetActiveByAttendanceID(ctx context.Context, attendanceID string) (*attendance.Break, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.breaks {
		if b.AttendanceID == attendanceID && b.EndAt == nil {
			return &b, nil
		}
	}
	return nil, nil
}

func (r *fakeBreakRepo) Update(ctx context.Context, brk attendance.Break) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.breaks[brk.ID]; !ok {
		return attendance.ErrNoActiveBreak
	}
	r.s.breaks[brk.ID] = brk
	return nil
}

type fakeCorrectionRepo struct {
	s *memStore
}

func (r *fakeCorrectionRepo) Create(ctx context.Context, c correction.Correction) (correction.Correction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Mirrors the partial unique pending index on (attendance_id, correction_type).
	if c.Status == correction.StatusPending {
		for _, existing := range r.s.corrections {
			if existing.AttendanceID == c.AttendanceID &&
				existing.CorrectionType == c.CorrectionType &&
				existing.Status == correction.StatusPending {
				return correction.Correction{}, correction.ErrPendingCorrectionExists
			}
		}
	}

	c.ID = r.s.nextID("cor")
	r.s.corrections[c.ID] = c
	return c, nil
}

func (r *fakeCorrectionRepo) GetByID(ctx context.Context, id string) (correction.Correction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.corrections[id]
	if !ok {
		return correction.Correction{}, correction.ErrCorrectionNotFound
	}
	return c, nil
}

func (r *fakeCorrectionRepo) Update(ctx context.Context, c correction.Correction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.corrections[c.ID]; !ok {
		return correction.ErrCorrectionNotFound
	}
	r.s.corrections[c.ID] = c
	return nil
}

func (r *fakeCorrectionRepo) HasPendingForType(ctx context.Context, attendanceID string, ct correction.Type) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.corrections {
		if c.AttendanceID == attendanceID && c.CorrectionType == ct && c.Status == correction.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCorrectionRepo) ListByAttendanceID(ctx context.Context, attendanceID string) ([]correction.Correction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []correction.Correction
	for _, c := range r.s.corrections {
		if c.AttendanceID == attendanceID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID > result[j].ID
	})
	return result, nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

type fakeBranchRepo struct {
	branches map[string]branch.Branch
}

func (r *fakeBranchRepo) GetByEmployeeID(ctx context.Context, employeeID string) (branch.Branch, error) {
	br, ok := r.branches[employeeID]
	if !ok {
		return branch.Branch{}, branch.ErrBranchNotFound
	}
	return br, nil
}

type recordingSink struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (s *recordingSink) LogDataModification(ctx context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *recordingSink) all() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Entry(nil), s.entries...)
}

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// ----------------------------------------
// Fixture
// ----------------------------------------

type fixture struct {
	svc   attendance.AttendanceService
	store *memStore
	clk   *fakeClock
	sink  *recordingSink
}

const (
	testEmployeeID = "emp-1"
	testManagerID  = "mgr-1"
)

// 09:00 on a Monday, branch clock.
var testBaseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	clk := &fakeClock{now: testBaseTime}
	sink := &recordingSink{}

	br := branch.Branch{
		ID:                  "branch-1",
		Name:                "Head Office",
		Timezone:            "UTC",
		WorkStartTime:       "09:00",
		WorkEndTime:         "17:00",
		GracePeriodMinutes:  5,
		StandardWorkMinutes: 480,
	}

	employees := map[string]employee.Employee{
		testEmployeeID: {ID: testEmployeeID, BranchID: "branch-1", EmployeeCode: "EMP001", FullName: "Ayu Lestari"},
		testManagerID:  {ID: testManagerID, BranchID: "branch-1", EmployeeCode: "MGR001", FullName: "Budi Santoso"},
	}

	svc := NewAttendanceService(
		passthroughTx{},
		&fakeAttendanceRepo{s: store},
		&fakeBreakRepo{s: store},
		&fakeCorrectionRepo{s: store},
		&fakeEmployeeRepo{employees: employees},
		&fakeBranchRepo{branches: map[string]branch.Branch{
			testEmployeeID: br,
			testManagerID:  br,
		}},
		sink,
		clk,
	)

	return &fixture{svc: svc, store: store, clk: clk, sink: sink}
}

func (f *fixture) at(hour, minute int) {
	f.clk.set(time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC))
}

// ----------------------------------------
// CheckIn
// ----------------------------------------

func TestCheckInWithinGracePeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.at(9, 3)
	result, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	assert.Equal(t, testEmployeeID, result.EmployeeID)
	assert.Equal(t, "2026-03-02", result.Date)
	assert.Equal(t, string(attendance.StatusPresent), result.Status)
	require.NotNil(t, result.LateMinutes)
	assert.Equal(t, 0, *result.LateMinutes)
	require.NotNil(t, result.ClockInTime)
	assert.Equal(t, "2026-03-02 09:03:00", *result.ClockInTime)
	assert.Nil(t, result.ClockOutTime)
	assert.False(t, result.IsManualEntry)
}

func TestCheckInAfterGracePeriodIsLate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.at(9, 20)
	result, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusLate), result.Status)
	require.NotNil(t, result.LateMinutes)
	// Counted from the scheduled 09:00 start, not from the end of grace.
	assert.Equal(t, 20, *result.LateMinutes)
}

func TestCheckInTwiceSameDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	_, err = f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckInUnknownEmployee(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CheckIn(context.Background(), attendance.CheckInRequest{EmployeeID: "nope"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestCheckInValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CheckIn(context.Background(), attendance.CheckInRequest{})
	require.Error(t, err)

	var vErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &vErrs)
}

func TestCheckInConcurrentSameEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	successes := 0
	for err := range errCh {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Len(t, f.store.attendances, 1)
}

// ----------------------------------------
// CheckOut
// ----------------------------------------

func TestCheckOutWithoutCheckIn(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CheckOut(context.Background(), attendance.CheckOutRequest{EmployeeID: testEmployeeID})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestCheckOutTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	f.at(17, 0)
	_, err = f.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	_, err = f.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestFullWorkDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	f.at(11, 0)
	brk, err := f.svc.StartBreak(ctx, attendance.StartBreakRequest{
		EmployeeID: testEmployeeID,
		BreakType:  string(attendance.BreakTypeTea),
	})
	require.NoError(t, err)
	assert.Equal(t, "tea", brk.BreakType)

	f.at(11, 15)
	ended, err := f.svc.EndBreak(ctx, attendance.EndBreakRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)
	require.NotNil(t, ended.EndAt)
	assert.Equal(t, "2026-03-02 11:15:00", *ended.EndAt)

	f.at(17, 30)
	result, err := f.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	// 09:00 to 17:30 minus a 15 minute break.
	require.NotNil(t, result.WorkMinutes)
	assert.Equal(t, 495, *result.WorkMinutes)
	require.NotNil(t, result.OvertimeMinutes)
	assert.Equal(t, 15, *result.OvertimeMinutes)
	assert.Equal(t, string(attendance.StatusPresent), result.Status)
	require.Len(t, result.Breaks, 1)
}

func TestCheckOutClosesOpenBreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	f.at(12, 0)
	_, err = f.svc.StartBreak(ctx, attendance.StartBreakRequest{
		EmployeeID: testEmployeeID,
		BreakType:  string(attendance.BreakTypeLunch),
	})
	require.NoError(t, err)

	f.at(13, 0)
	result, err := f.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	require.Len(t, result.Breaks, 1)
	require.NotNil(t, result.Breaks[0].EndAt)
	assert.Equal(t, "2026-03-02 13:00:00", *result.Breaks[0].EndAt)

	// 240 minutes on the clock minus the 60 minute break.
	require.NotNil(t, result.WorkMinutes)
	assert.Equal(t, 180, *result.WorkMinutes)

	for _, b := range f.store.breaks {
		assert.NotNil(t, b.EndAt)
	}
}

func TestCheckOutKeepsLateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.at(9, 30)
	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	f.at(17, 0)
	result, err := f.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusLate), result.Status)
}

// ----------------------------------------
// Breaks
// ----------------------------------------

func TestStartBreakRequiresCheckIn(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.StartBreak(context.Background(), attendance.StartBreakRequest{
		EmployeeID: testEmployeeID,
		BreakType:  string(attendance.BreakTypeTea),
	})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestStartBreakWhileOnBreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	f.at(12, 0)
	_, err = f.svc.StartBreak(ctx, attendance.StartBreakRequest{
		EmployeeID: testEmployeeID,
		BreakType:  string(attendance.BreakTypeLunch),
	})
	require.NoError(t, err)

	_, err = f.svc.StartBreak(ctx, attendance.StartBreakRequest{
		EmployeeID: testEmployeeID,
		BreakType:  string(attendance.BreakTypeTea),
	})
	assert.ErrorIs(t, err, attendance.ErrAlreadyOnBreak)
}

func TestStartBreakAfterCheckOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	f.at(17, 0)
	_, err = f.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	_, err = f.svc.StartBreak(ctx, attendance.StartBreakRequest{
		EmployeeID: testEmployeeID,
		BreakType:  string(attendance.BreakTypeTea),
	})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestStartBreakInvalidType(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.StartBreak(context.Background(), attendance.StartBreakRequest{
		EmployeeID: testEmployeeID,
		BreakType:  "siesta",
	})
	require.Error(t, err)

	var vErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &vErrs)
}

func TestEndBreakWithoutActiveBreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	_, err = f.svc.EndBreak(ctx, attendance.EndBreakRequest{EmployeeID: testEmployeeID})
	assert.ErrorIs(t, err, attendance.ErrNoActiveBreak)
}

func TestSequentialBreaks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	f.at(10, 30)
	_, err = f.svc.StartBreak(ctx, attendance.StartBreakRequest{
		EmployeeID: testEmployeeID,
		BreakType:  string(attendance.BreakTypeTea),
	})
	require.NoError(t, err)

	f.at(10, 45)
	_, err = f.svc.EndBreak(ctx, attendance.EndBreakRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	f.at(12, 0)
	_, err = f.svc.StartBreak(ctx, attendance.StartBreakRequest{
		EmployeeID: testEmployeeID,
		BreakType:  string(attendance.BreakTypeLunch),
	})
	require.NoError(t, err)

	f.at(13, 0)
	_, err = f.svc.EndBreak(ctx, attendance.EndBreakRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	f.at(17, 0)
	result, err := f.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	require.Len(t, result.Breaks, 2)
	// 480 minutes on the clock minus 15 + 60 break minutes.
	require.NotNil(t, result.WorkMinutes)
	assert.Equal(t, 405, *result.WorkMinutes)
}

// ----------------------------------------
// Current status
// ----------------------------------------

func TestGetCurrentStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status, err := f.svc.GetCurrentStatus(ctx, testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusAbsent), status.Status)

	_, err = f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	status, err = f.svc.GetCurrentStatus(ctx, testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusPresent), status.Status)

	f.at(12, 0)
	_, err = f.svc.StartBreak(ctx, attendance.StartBreakRequest{
		EmployeeID: testEmployeeID,
		BreakType:  string(attendance.BreakTypeLunch),
	})
	require.NoError(t, err)

	status, err = f.svc.GetCurrentStatus(ctx, testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusOnBreak), status.Status)

	f.at(13, 0)
	_, err = f.svc.EndBreak(ctx, attendance.EndBreakRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	status, err = f.svc.GetCurrentStatus(ctx, testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusPresent), status.Status)
}

// ----------------------------------------
// Manual entries
// ----------------------------------------

func TestCreateManualEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	clockOut := "2026-03-01T17:00:00Z"
	result, err := f.svc.CreateManualEntry(ctx, attendance.ManualEntryRequest{
		EmployeeID: testEmployeeID,
		Date:       "2026-03-01",
		ClockIn:    "2026-03-01T09:00:00Z",
		ClockOut:   &clockOut,
		Status:     string(attendance.StatusPresent),
		Reason:     "forgot to check in",
		EnteredBy:  testManagerID,
	})
	require.NoError(t, err)

	assert.True(t, result.IsManualEntry)
	require.NotNil(t, result.EnteredBy)
	assert.Equal(t, testManagerID, *result.EnteredBy)
	require.NotNil(t, result.Notes)
	assert.Equal(t, "forgot to check in", *result.Notes)
	require.NotNil(t, result.WorkMinutes)
	assert.Equal(t, 480, *result.WorkMinutes)
	require.NotNil(t, result.OvertimeMinutes)
	assert.Equal(t, 0, *result.OvertimeMinutes)
}

func TestCreateManualEntryDuplicateDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	_, err = f.svc.CreateManualEntry(ctx, attendance.ManualEntryRequest{
		EmployeeID: testEmployeeID,
		Date:       "2026-03-02",
		ClockIn:    "2026-03-02T09:00:00Z",
		Status:     string(attendance.StatusPresent),
		Reason:     "backfill",
		EnteredBy:  testManagerID,
	})
	assert.ErrorIs(t, err, attendance.ErrAttendanceExists)
}

func TestCreateManualEntryInvalidRange(t *testing.T) {
	f := newFixture(t)

	clockOut := "2026-03-01T08:00:00Z"
	_, err := f.svc.CreateManualEntry(context.Background(), attendance.ManualEntryRequest{
		EmployeeID: testEmployeeID,
		Date:       "2026-03-01",
		ClockIn:    "2026-03-01T09:00:00Z",
		ClockOut:   &clockOut,
		Status:     string(attendance.StatusPresent),
		Reason:     "backfill",
		EnteredBy:  testManagerID,
	})
	assert.ErrorIs(t, err, attendance.ErrInvalidTimeRange)
}

func TestCreateManualEntryClockInOutsideDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateManualEntry(context.Background(), attendance.ManualEntryRequest{
		EmployeeID: testEmployeeID,
		Date:       "2026-03-02",
		ClockIn:    "2026-05-01T09:00:00Z",
		Status:     string(attendance.StatusPresent),
		Reason:     "backfill",
		EnteredBy:  testManagerID,
	})

	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Equal(t, "clock_in", validationErrs[0].Field)
}

func TestCreateManualEntryOnLeave(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.CreateManualEntry(context.Background(), attendance.ManualEntryRequest{
		EmployeeID: testEmployeeID,
		Date:       "2026-03-01",
		ClockIn:    "2026-03-01T09:00:00Z",
		Status:     string(attendance.StatusOnLeave),
		Reason:     "approved annual leave",
		EnteredBy:  testManagerID,
	})
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusOnLeave), result.Status)
	assert.Nil(t, result.WorkMinutes)
}

// ----------------------------------------
// Corrections
// ----------------------------------------

func checkInAndOut(t *testing.T, f *fixture) attendance.AttendanceResponse {
	t.Helper()
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	f.at(17, 0)
	result, err := f.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)
	return result
}

func TestRequestCorrection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record := checkInAndOut(t, f)

	result, err := f.svc.RequestCorrection(ctx, correction.CreateRequest{
		AttendanceID:   record.ID,
		RequestedBy:    testEmployeeID,
		CorrectionType: string(correction.TypeCheckOutTime),
		OriginalValue:  "2026-03-02T17:00:00Z",
		CorrectedValue: "2026-03-02T18:00:00Z",
		Reason:         "stayed for deployment",
	})
	require.NoError(t, err)

	assert.Equal(t, record.ID, result.AttendanceID)
	assert.Equal(t, string(correction.StatusPending), result.Status)
	assert.Nil(t, result.ReviewedBy)
}

func TestRequestCorrectionUnknownRecord(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RequestCorrection(context.Background(), correction.CreateRequest{
		AttendanceID:   "missing",
		RequestedBy:    testEmployeeID,
		CorrectionType: string(correction.TypeStatus),
		CorrectedValue: string(attendance.StatusPresent),
		Reason:         "wrong status",
	})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestRequestCorrectionDuplicatePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record := checkInAndOut(t, f)

	req := correction.CreateRequest{
		AttendanceID:   record.ID,
		RequestedBy:    testEmployeeID,
		CorrectionType: string(correction.TypeCheckOutTime),
		CorrectedValue: "2026-03-02T18:00:00Z",
		Reason:         "stayed late",
	}
	_, err := f.svc.RequestCorrection(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.RequestCorrection(ctx, req)
	assert.ErrorIs(t, err, correction.ErrPendingCorrectionExists)

	// A different field may still be corrected in parallel.
	_, err = f.svc.RequestCorrection(ctx, correction.CreateRequest{
		AttendanceID:   record.ID,
		RequestedBy:    testEmployeeID,
		CorrectionType: string(correction.TypeStatus),
		CorrectedValue: string(attendance.StatusHalfDay),
		Reason:         "left at noon",
	})
	assert.NoError(t, err)
}

func TestRequestCorrectionConcurrentSameField(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record := checkInAndOut(t, f)

	const workers = 16
	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RequestCorrection(ctx, correction.CreateRequest{
				AttendanceID:   record.ID,
				RequestedBy:    testEmployeeID,
				CorrectionType: string(correction.TypeCheckOutTime),
				CorrectedValue: "2026-03-02T18:00:00Z",
				Reason:         "stayed late",
			})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	successes := 0
	for err := range errCh {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, correction.ErrPendingCorrectionExists)
		}
	}
	assert.Equal(t, 1, successes)

	pending := 0
	for _, c := range f.store.corrections {
		if c.CorrectionType == correction.TypeCheckOutTime && c.Status == correction.StatusPending {
			pending++
		}
	}
	assert.Equal(t, 1, pending)
}

func TestApproveCorrectionAppliesValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record := checkInAndOut(t, f)

	created, err := f.svc.RequestCorrection(ctx, correction.CreateRequest{
		AttendanceID:   record.ID,
		RequestedBy:    testEmployeeID,
		CorrectionType: string(correction.TypeCheckOutTime),
		OriginalValue:  "2026-03-02T17:00:00Z",
		CorrectedValue: "2026-03-02T18:00:00Z",
		Reason:         "stayed for deployment",
	})
	require.NoError(t, err)

	result, err := f.svc.ApproveCorrection(ctx, correction.DecisionRequest{
		ID:         created.ID,
		ReviewedBy: testManagerID,
	})
	require.NoError(t, err)

	assert.Equal(t, string(correction.StatusApproved), result.Status)
	require.NotNil(t, result.ReviewedBy)
	assert.Equal(t, testManagerID, *result.ReviewedBy)
	assert.NotNil(t, result.ReviewedAt)

	updated, err := f.svc.GetAttendance(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.ClockOutTime)
	assert.Equal(t, "2026-03-02 18:00:00", *updated.ClockOutTime)
	// Totals are recomputed from the corrected checkout.
	require.NotNil(t, updated.WorkMinutes)
	assert.Equal(t, 540, *updated.WorkMinutes)
	require.NotNil(t, updated.OvertimeMinutes)
	assert.Equal(t, 60, *updated.OvertimeMinutes)
}

func TestApproveCorrectionTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record := checkInAndOut(t, f)

	created, err := f.svc.RequestCorrection(ctx, correction.CreateRequest{
		AttendanceID:   record.ID,
		RequestedBy:    testEmployeeID,
		CorrectionType: string(correction.TypeStatus),
		CorrectedValue: string(attendance.StatusHalfDay),
		Reason:         "left at noon",
	})
	require.NoError(t, err)

	decision := correction.DecisionRequest{ID: created.ID, ReviewedBy: testManagerID}
	_, err = f.svc.ApproveCorrection(ctx, decision)
	require.NoError(t, err)

	_, err = f.svc.ApproveCorrection(ctx, decision)
	assert.ErrorIs(t, err, correction.ErrAlreadyProcessed)

	_, err = f.svc.RejectCorrection(ctx, decision)
	assert.ErrorIs(t, err, correction.ErrAlreadyProcessed)
}

func TestApproveCorrectionInvalidValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record := checkInAndOut(t, f)

	created, err := f.svc.RequestCorrection(ctx, correction.CreateRequest{
		AttendanceID:   record.ID,
		RequestedBy:    testEmployeeID,
		CorrectionType: string(correction.TypeCheckOutTime),
		CorrectedValue: "not-a-timestamp",
		Reason:         "typo",
	})
	require.NoError(t, err)

	_, err = f.svc.ApproveCorrection(ctx, correction.DecisionRequest{
		ID:         created.ID,
		ReviewedBy: testManagerID,
	})
	assert.ErrorIs(t, err, correction.ErrInvalidCorrectedValue)
}

func TestApproveCorrectionInvalidRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record := checkInAndOut(t, f)

	created, err := f.svc.RequestCorrection(ctx, correction.CreateRequest{
		AttendanceID:   record.ID,
		RequestedBy:    testEmployeeID,
		CorrectionType: string(correction.TypeCheckOutTime),
		CorrectedValue: "2026-03-02T08:00:00Z",
		Reason:         "fat fingered",
	})
	require.NoError(t, err)

	_, err = f.svc.ApproveCorrection(ctx, correction.DecisionRequest{
		ID:         created.ID,
		ReviewedBy: testManagerID,
	})
	assert.ErrorIs(t, err, attendance.ErrInvalidTimeRange)
}

func TestRejectCorrectionLeavesRecordUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record := checkInAndOut(t, f)

	created, err := f.svc.RequestCorrection(ctx, correction.CreateRequest{
		AttendanceID:   record.ID,
		RequestedBy:    testEmployeeID,
		CorrectionType: string(correction.TypeCheckOutTime),
		CorrectedValue: "2026-03-02T18:00:00Z",
		Reason:         "stayed late",
	})
	require.NoError(t, err)

	result, err := f.svc.RejectCorrection(ctx, correction.DecisionRequest{
		ID:         created.ID,
		ReviewedBy: testManagerID,
	})
	require.NoError(t, err)
	assert.Equal(t, string(correction.StatusRejected), result.Status)

	unchanged, err := f.svc.GetAttendance(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, unchanged.ClockOutTime)
	assert.Equal(t, "2026-03-02 17:00:00", *unchanged.ClockOutTime)
}

func TestListCorrections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record := checkInAndOut(t, f)

	for _, ct := range []correction.Type{correction.TypeCheckInTime, correction.TypeStatus} {
		value := "2026-03-02T08:30:00Z"
		if ct == correction.TypeStatus {
			value = string(attendance.StatusHalfDay)
		}
		_, err := f.svc.RequestCorrection(ctx, correction.CreateRequest{
			AttendanceID:   record.ID,
			RequestedBy:    testEmployeeID,
			CorrectionType: string(ct),
			CorrectedValue: value,
			Reason:         "adjustment",
		})
		require.NoError(t, err)
	}

	results, err := f.svc.ListCorrections(ctx, record.ID)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	_, err = f.svc.ListCorrections(ctx, "missing")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

// ----------------------------------------
// Listing
// ----------------------------------------

func TestListAttendancePagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for day := 1; day <= 5; day++ {
		_, err := f.svc.CreateManualEntry(ctx, attendance.ManualEntryRequest{
			EmployeeID: testEmployeeID,
			Date:       fmt.Sprintf("2026-02-%02d", day),
			ClockIn:    fmt.Sprintf("2026-02-%02dT09:00:00Z", day),
			Status:     string(attendance.StatusPresent),
			Reason:     "migration backfill",
			EnteredBy:  testManagerID,
		})
		require.NoError(t, err)
	}

	result, err := f.svc.ListAttendance(ctx, attendance.AttendanceFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.TotalCount)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, "1-2 of 5", result.Showing)
	assert.Len(t, result.Attendances, 2)

	result, err = f.svc.ListAttendance(ctx, attendance.AttendanceFilter{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Attendances, 1)
	assert.Equal(t, "5-5 of 5", result.Showing)
}

func TestListAttendanceEmpty(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.ListAttendance(context.Background(), attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.TotalCount)
	assert.Equal(t, "0 of 0", result.Showing)
	assert.Empty(t, result.Attendances)
}

// ----------------------------------------
// Audit trail
// ----------------------------------------

func TestAuditTrailCoversMutations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	f.at(12, 0)
	_, err = f.svc.StartBreak(ctx, attendance.StartBreakRequest{
		EmployeeID: testEmployeeID,
		BreakType:  string(attendance.BreakTypeLunch),
	})
	require.NoError(t, err)

	f.at(13, 0)
	_, err = f.svc.EndBreak(ctx, attendance.EndBreakRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	f.at(17, 0)
	_, err = f.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
	require.NoError(t, err)

	entries := f.sink.all()
	require.Len(t, entries, 4)

	assert.Equal(t, audit.ActionCreate, entries[0].Action)
	assert.Equal(t, "attendance", entries[0].EntityType)
	assert.Nil(t, entries[0].Before)
	assert.NotNil(t, entries[0].After)

	assert.Equal(t, "attendance_break", entries[1].EntityType)
	assert.Equal(t, audit.ActionCreate, entries[1].Action)

	assert.Equal(t, "attendance_break", entries[2].EntityType)
	assert.Equal(t, audit.ActionUpdate, entries[2].Action)
	assert.NotNil(t, entries[2].Before)

	assert.Equal(t, "attendance", entries[3].EntityType)
	assert.Equal(t, audit.ActionUpdate, entries[3].Action)
	assert.NotNil(t, entries[3].Before)
	assert.NotNil(t, entries[3].After)

	for _, e := range entries {
		assert.Equal(t, testEmployeeID, e.ActorID)
	}
}

func TestApproveCorrectionAuditsBothEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record := checkInAndOut(t, f)

	created, err := f.svc.RequestCorrection(ctx, correction.CreateRequest{
		AttendanceID:   record.ID,
		RequestedBy:    testEmployeeID,
		CorrectionType: string(correction.TypeStatus),
		CorrectedValue: string(attendance.StatusHalfDay),
		Reason:         "left at noon",
	})
	require.NoError(t, err)

	before := len(f.sink.all())
	_, err = f.svc.ApproveCorrection(ctx, correction.DecisionRequest{
		ID:         created.ID,
		ReviewedBy: testManagerID,
	})
	require.NoError(t, err)

	entries := f.sink.all()[before:]
	require.Len(t, entries, 2)
	assert.Equal(t, "attendance", entries[0].EntityType)
	assert.Equal(t, "attendance_correction", entries[1].EntityType)
	for _, e := range entries {
		assert.Equal(t, testManagerID, e.ActorID)
		assert.Equal(t, audit.ActionUpdate, e.Action)
	}
}
