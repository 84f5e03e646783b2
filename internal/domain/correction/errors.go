package correction

import "errors"

// Correction domain errors
var (
	ErrCorrectionNotFound      = errors.New("attendance correction not found")
	ErrAlreadyProcessed        = errors.New("correction has already been approved or rejected")
	ErrPendingCorrectionExists = errors.New("a pending correction already exists for this field")
	ErrInvalidCorrectedValue   = errors.New("corrected value cannot be applied to the attendance record")
)
