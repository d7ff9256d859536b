package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation          ErrorType = "validation"
	ErrorTypeDecode              ErrorType = "image_decode"
	ErrorTypeOCREngine           ErrorType = "ocr_engine"
	ErrorTypeNoFace              ErrorType = "no_face"
	ErrorTypeLowFaceQuality      ErrorType = "low_face_quality"
	ErrorTypeModelUnavailable    ErrorType = "model_unavailable"
	ErrorTypeRegistryUnavailable ErrorType = "registry_unavailable"
	ErrorTypeStorage             ErrorType = "storage"
	ErrorTypeInternal            ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewDecodeError marks an input byte stream that cannot be parsed as any
// supported raster format. The request is rejected before any OCR work.
func NewDecodeError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeDecode,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewOCREngineError marks a per-variant OCR failure. Callers recover by
// skipping the variant; it is fatal only when every variant fails.
func NewOCREngineError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeOCREngine,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewNoFaceError signals that no face was detected in an image.
func NewNoFaceError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNoFace,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewLowFaceQualityError signals that the best detected face crop fell below
// the usability floor.
func NewLowFaceQualityError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeLowFaceQuality,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewModelUnavailableError signals that the embedding backbone never
// initialized for this process. Similarity stays unavailable process-wide.
func NewModelUnavailableError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeModelUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// NewRegistryUnavailableError marks a registry backend outage. It propagates
// as a service failure distinct from a FAKE verdict.
func NewRegistryUnavailableError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeRegistryUnavailable,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewStorageError marks a stored-photo retrieval failure.
func NewStorageError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeStorage,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
