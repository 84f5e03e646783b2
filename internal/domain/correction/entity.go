package correction

import (
	"time"
)

type Type string

const (
	TypeCheckInTime  Type = "check_in_time"
	TypeCheckOutTime Type = "check_out_time"
	TypeStatus       Type = "status"
)

var ValidTypes = []string{
	string(TypeCheckInTime),
	string(TypeCheckOutTime),
	string(TypeStatus),
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Correction is a proposed retroactive change to one field of an attendance
// record. It references the record by ID only; the record keeps existing
// independent of any pending corrections.
type Correction struct {
	ID             string
	AttendanceID   string
	RequestedBy    string
	CorrectionType Type
	OriginalValue  string
	CorrectedValue string
	Reason         string
	Status         Status
	ReviewedBy     *string
	ReviewedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Terminal reports whether the correction has reached a final state.
func (c Correction) Terminal() bool {
	return c.Status == StatusApproved || c.Status == StatusRejected
}
