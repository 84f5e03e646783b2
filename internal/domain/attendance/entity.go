package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusOnBreak Status = "on_break"
	StatusHalfDay Status = "half_day"
	StatusOnLeave Status = "on_leave"
)

// ValidStatuses lists every status a record may carry. Manual entries may use
// any of them; organic records only move between present/late/on_break.
var ValidStatuses = []string{
	string(StatusPresent),
	string(StatusAbsent),
	string(StatusLate),
	string(StatusOnBreak),
	string(StatusHalfDay),
	string(StatusOnLeave),
}

type BreakType string

const (
	BreakTypeTea      BreakType = "tea"
	BreakTypeLunch    BreakType = "lunch"
	BreakTypePersonal BreakType = "personal"
	BreakTypeMeeting  BreakType = "meeting"
)

var ValidBreakTypes = []string{
	string(BreakTypeTea),
	string(BreakTypeLunch),
	string(BreakTypePersonal),
	string(BreakTypeMeeting),
}

type Attendance struct {
	ID              string
	EmployeeID      string
	Date            time.Time
	Location        *string
	Source          *string
	ClockIn         *time.Time
	ClockOut        *time.Time
	WorkMinutes     *int
	LateMinutes     *int
	OvertimeMinutes *int
	Status          Status
	IsManualEntry   bool
	EnteredBy       *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Breaks []Break

	// DTO
	EmployeeName *string
}

type Break struct {
	ID           string
	AttendanceID string
	BreakType    BreakType
	Location     *string
	StartAt      time.Time
	EndAt        *time.Time
	CreatedAt    time.Time
}

// Open reports whether the break has not been ended yet.
func (b Break) Open() bool {
	return b.EndAt == nil
}

// Minutes returns the break duration in whole minutes. Open breaks count as zero.
func (b Break) Minutes() int {
	if b.EndAt == nil {
		return 0
	}
	return int(b.EndAt.Sub(b.StartAt).Minutes())
}

// OpenBreak returns the currently open break, if any. At most one break per
// record may be open at a time.
func (a Attendance) OpenBreak() *Break {
	for i := range a.Breaks {
		if a.Breaks[i].Open() {
			return &a.Breaks[i]
		}
	}
	return nil
}

// BreakMinutes sums the durations of all closed breaks.
func (a Attendance) BreakMinutes() int {
	total := 0
	for _, b := range a.Breaks {
		total += b.Minutes()
	}
	return total
}

// IsOpen reports whether the record represents an active working session.
func (a Attendance) IsOpen() bool {
	return a.ClockIn != nil && a.ClockOut == nil
}
