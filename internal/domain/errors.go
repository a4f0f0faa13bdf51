package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors of the analysis pipeline. Only ErrMissingVolumes prevents
// an analysis from starting; every other data issue degrades to an explicit
// nil/undefined field or an advisory finding.
var (
	// ErrMissingVolumes signals that the segmentation collaborator never
	// produced an observation. The single fatal input condition.
	ErrMissingVolumes = errors.New("volume observation is missing or empty")

	ErrNotFound           = errors.New("not found")
	ErrInvalidSex         = errors.New("sex must be 'male' or 'female'")
	ErrInvalidReferenceData = errors.New("invalid reference data snapshot")
)

// Error codes for structured error responses.
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeMissingVolumes = "MISSING_VOLUMES"
	ErrCodeSegmentation   = "SEGMENTATION_ERROR"
	ErrCodeDatabase       = "DATABASE_ERROR"
	ErrCodeInternal       = "INTERNAL_SERVER_ERROR"
)

// AnalysisError is a standardized error response carried across the API
// boundary.
type AnalysisError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAnalysisError creates a new AnalysisError with timestamp.
func NewAnalysisError(code, message, details, requestID string) *AnalysisError {
	return &AnalysisError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// ValidationError represents input validation errors.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
