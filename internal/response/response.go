package response

import "github.com/Kanaan7/NutritionTracker/internal"

// ErrorResponse is the body of every failed request. RawOutput carries the
// extraction service's reply when it could not be parsed.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Code      int    `json:"code"`
	RawOutput string `json:"rawOutput,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func Failure(e *internal.AppError, requestID string) ErrorResponse {
	return ErrorResponse{
		Error:     e.Message,
		Kind:      e.Kind,
		Code:      e.Code,
		RawOutput: e.RawOutput,
		RequestID: requestID,
	}
}
