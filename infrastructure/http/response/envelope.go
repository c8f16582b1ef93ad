package response

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	apperror "github.com/bluecarbon/registry-api/domain/error"
	"github.com/bluecarbon/registry-api/infrastructure/service/logger"
)

// ErrorEnvelope is the JSON shape of every non-2xx response.
type ErrorEnvelope struct {
	Error          string              `json:"error"`
	Message        string              `json:"message"`
	RequestID      string              `json:"requestId"`
	Timestamp      string              `json:"timestamp"`
	Fields         map[string][]string `json:"fields,omitempty"`
	RetryAfter     int64               `json:"retryAfter,omitempty"`
	ProcessingTime string              `json:"processing_time,omitempty"`
	Details        *ErrorDetails       `json:"details,omitempty"`
}

// ErrorDetails is only populated outside production.
type ErrorDetails struct {
	Code  string `json:"code"`
	Cause string `json:"cause,omitempty"`
	Stack string `json:"stack,omitempty"`
}

// JSON writes a success payload.
func JSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// Error writes an AppError as the standard error envelope. includeDetails
// adds the error code, cause and stack for non-production environments.
func Error(w http.ResponseWriter, r *http.Request, appErr *apperror.AppError, includeDetails bool) {
	ErrorWithTiming(w, r, appErr, includeDetails, 0)
}

// ErrorWithTiming additionally reports how long the failed operation ran;
// the mint endpoint includes this on every outcome.
func ErrorWithTiming(w http.ResponseWriter, r *http.Request, appErr *apperror.AppError, includeDetails bool, elapsed time.Duration) {
	envelope := ErrorEnvelope{
		Error:     string(appErr.Code),
		Message:   appErr.Message,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Fields:    appErr.Fields,
	}

	if appErr.RetryAfter > 0 {
		seconds := int64(appErr.RetryAfter.Round(time.Second) / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		envelope.RetryAfter = seconds
		w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
	}

	if elapsed > 0 {
		envelope.ProcessingTime = strconv.FormatInt(elapsed.Milliseconds(), 10) + "ms"
	}

	if includeDetails {
		details := &ErrorDetails{Code: string(appErr.Code)}
		if appErr.Cause != nil {
			details.Cause = appErr.Cause.Error()
		}
		details.Stack = string(debug.Stack())
		envelope.Details = details
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.Status)
	_ = json.NewEncoder(w).Encode(envelope)
}
