package internal

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when a patch targets an id no entry carries.
	ErrNotFound = errors.New("entry not found")
	// ErrQuotaExhausted signals a billing or rate limit at the extraction service.
	ErrQuotaExhausted = errors.New("extraction quota exhausted")
)

// ExtractionParseError reports a reply from the extraction service that is
// not a single JSON object. Raw holds the reply as received.
type ExtractionParseError struct {
	Raw string
	Err error
}

func (e *ExtractionParseError) Error() string {
	return fmt.Sprintf("JSON parse error: %v", e.Err)
}

func (e *ExtractionParseError) Unwrap() error { return e.Err }

// ExtractionServiceError is any other transport or service failure of the
// extraction call.
type ExtractionServiceError struct {
	Status int
	Body   string
	Err    error
}

func (e *ExtractionServiceError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("extraction service status %d: %v", e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("extraction service: %v", e.Err)
	default:
		return fmt.Sprintf("extraction service status %d: %s", e.Status, e.Body)
	}
}

func (e *ExtractionServiceError) Unwrap() error { return e.Err }

// ValidationError is a malformed request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Error kinds reported at the request boundary.
const (
	KindValidation      = "validation"
	KindNotFound        = "not_found"
	KindQuotaExhausted  = "quota_exhausted"
	KindExtractionParse = "extraction_parse"
	KindExtraction      = "extraction_service"
	KindInternal        = "internal"
)

// AppError is the structured failure returned to callers.
type AppError struct {
	Code      int    `json:"code"`
	Kind      string `json:"kind"`
	Message   string `json:"error"`
	RawOutput string `json:"rawOutput,omitempty"`
}

func (e *AppError) Error() string { return e.Message }

// ToAppError classifies err into a status code and kind.
func ToAppError(err error) *AppError {
	var (
		appErr   *AppError
		parseErr *ExtractionParseError
		svcErr   *ExtractionServiceError
		valErr   *ValidationError
	)
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &valErr):
		return &AppError{Code: http.StatusBadRequest, Kind: KindValidation, Message: valErr.Error()}
	case errors.Is(err, ErrNotFound):
		return &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Entry not found"}
	case errors.Is(err, ErrQuotaExhausted):
		return &AppError{Code: http.StatusPaymentRequired, Kind: KindQuotaExhausted, Message: "Quota exhausted. Please add billing or wait."}
	case errors.As(err, &parseErr):
		return &AppError{Code: http.StatusBadGateway, Kind: KindExtractionParse, Message: parseErr.Error(), RawOutput: parseErr.Raw}
	case errors.As(err, &svcErr):
		return &AppError{Code: http.StatusBadGateway, Kind: KindExtraction, Message: svcErr.Error()}
	default:
		return &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: err.Error()}
	}
}
