package services

import "net/http"

// ServiceError is a typed error with an HTTP status code. Fields carries
// per-field messages for validation failures.
type ServiceError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
	Err        error
}

func (e *ServiceError) Error() string { return e.Message }

// Unwrap exposes the sentinel behind the error, if any.
func (e *ServiceError) Unwrap() error { return e.Err }

func fromSentinel(status int, err error) *ServiceError {
	return &ServiceError{StatusCode: status, Message: err.Error(), Err: err}
}

func badRequest(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: msg}
}

func notFound(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Message: msg}
}

func conflict(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusConflict, Message: msg}
}

func internal(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: msg}
}

// MetaData is the pagination block attached to list responses.
type MetaData struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

func newMetaData(page, limit int, total int64) MetaData {
	totalPages := calculateTotalPages(total, limit)
	return MetaData{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    int64(page) < totalPages,
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
