package helpers

import (
	"encoding/json"
	"errors"
	"net/http"

	"confernet/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeNotFound      = "not_found"
	ErrCodeBadGateway    = "bad_gateway"
	ErrCodeInternalError = "internal_error"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data:  nil,
		Error: &APIError{Code: code, Message: message},
	})
}

// Classify maps a service error to an HTTP status and error code. The message shown to the user
// is always err.Error(): backend text, identity sentence or validation message.
func Classify(err error) (int, string) {
	var (
		verr    *domain.ValidationError
		authErr *domain.AuthError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.As(err, &authErr), errors.Is(err, domain.ErrNoSession):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, domain.ErrInvalidResponse):
		return http.StatusBadGateway, ErrCodeBadGateway
	}
	return http.StatusInternalServerError, ErrCodeInternalError
}

// WriteServiceError writes err in the envelope using Classify.
func WriteServiceError(w http.ResponseWriter, err error) {
	status, code := Classify(err)
	WriteJSONError(w, status, code, err.Error())
}
