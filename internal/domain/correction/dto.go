package correction

import (
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type CreateRequest struct {
	AttendanceID   string `json:"attendance_id"`
	RequestedBy    string `json:"-"`
	CorrectionType string `json:"correction_type"`
	OriginalValue  string `json:"original_value"`
	CorrectedValue string `json:"corrected_value"`
	Reason         string `json:"reason"`
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id is required",
		})
	}

	if validator.IsEmpty(r.RequestedBy) {
		errs = append(errs, validator.ValidationError{
			Field:   "requested_by",
			Message: "requested_by is required",
		})
	}

	if validator.IsEmpty(r.CorrectionType) {
		errs = append(errs, validator.ValidationError{
			Field:   "correction_type",
			Message: "correction_type is required",
		})
	} else if !validator.IsInSlice(r.CorrectionType, ValidTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "correction_type",
			Message: "correction_type must be one of: check_in_time, check_out_time, status",
		})
	}

	if validator.IsEmpty(r.CorrectedValue) {
		errs = append(errs, validator.ValidationError{
			Field:   "corrected_value",
			Message: "corrected_value is required",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DecisionRequest struct {
	ID         string `json:"-"`
	ReviewedBy string `json:"-"`
}

func (r *DecisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "correction id is required",
		})
	}

	if validator.IsEmpty(r.ReviewedBy) {
		errs = append(errs, validator.ValidationError{
			Field:   "reviewed_by",
			Message: "reviewed_by is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type Response struct {
	ID             string  `json:"id"`
	AttendanceID   string  `json:"attendance_id"`
	RequestedBy    string  `json:"requested_by"`
	CorrectionType string  `json:"correction_type"`
	OriginalValue  string  `json:"original_value"`
	CorrectedValue string  `json:"corrected_value"`
	Reason         string  `json:"reason"`
	Status         string  `json:"status"`
	ReviewedBy     *string `json:"reviewed_by,omitempty"`
	ReviewedAt     *string `json:"reviewed_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}
