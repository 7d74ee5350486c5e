package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Message string    `json:"message"`
	Code    ErrorCode `json:"code"`
}

// ErrorCode is the machine-readable reason in an error envelope. Each code
// maps to exactly one HTTP status.
type ErrorCode string

const (
	CodeInvalidDate      ErrorCode = "INVALID_DATE"
	CodeDateOutOfRange   ErrorCode = "DATE_OUT_OF_RANGE"
	CodeInvalidRange     ErrorCode = "INVALID_RANGE"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeStoreUnhealthy   ErrorCode = "STORE_UNHEALTHY"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
)

var codeStatus = map[ErrorCode]int{
	CodeInvalidDate:      http.StatusBadRequest,
	CodeDateOutOfRange:   http.StatusBadRequest,
	CodeInvalidRange:     http.StatusBadRequest,
	CodeNotFound:         http.StatusNotFound,
	CodeMethodNotAllowed: http.StatusMethodNotAllowed,
	CodeUnauthorized:     http.StatusUnauthorized,
	CodeStoreUnhealthy:   http.StatusServiceUnavailable,
	CodeInternal:         http.StatusInternalServerError,
}

// Status returns the HTTP status sent with code.
func (c ErrorCode) Status() int {
	if s, ok := codeStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 envelope around data.
func WriteSuccess(w http.ResponseWriter, data any) error {
	return writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// WriteError writes an error envelope with the status of code.
func WriteError(w http.ResponseWriter, code ErrorCode, format string, args ...any) error {
	return writeJSON(w, code.Status(), Response{
		Error: &ErrorInfo{
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		},
	})
}
