package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"securebank/internal/service"
	"securebank/internal/util"

	"go.uber.org/zap"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func successResponse(data interface{}, message string) Response {
	return Response{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func errorResponse(err error, message string) Response {
	return Response{
		Success: false,
		Error:   err.Error(),
		Message: message,
	}
}

// responder carries the JSON helpers shared by every handler.
type responder struct {
	logger *zap.Logger
}

func (h responder) respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", util.ErrorField(err))
	}
}

func (h responder) respondWithError(w http.ResponseWriter, statusCode int, err error, message string) {
	h.logger.Warn("HTTP error response",
		util.ErrorField(err),
		util.Int("status_code", statusCode),
		util.String("message", message),
	)
	h.respondWithJSON(w, statusCode, errorResponse(err, message))
}

// respondWithServiceError maps err to a status code. Validation failures
// carry their field map as data; lockouts set Retry-After.
func (h responder) respondWithServiceError(w http.ResponseWriter, err error, message string) {
	statusCode := getStatusCode(err)

	if statusCode == http.StatusInternalServerError {
		h.logger.Error("Request failed", util.ErrorField(err), util.String("message", message))
		h.respondWithJSON(w, statusCode, errorResponse(errInternal, message))
		return
	}

	var locked *service.LockedError
	if errors.As(err, &locked) {
		w.Header().Set("Retry-After", strconv.FormatInt(locked.Seconds(), 10))
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		resp := errorResponse(err, message)
		resp.Data = verr.Fields
		h.logger.Debug("Validation failed", util.Any("fields", verr.Fields))
		h.respondWithJSON(w, statusCode, resp)
		return
	}

	h.respondWithError(w, statusCode, err, message)
}

var errInternal = errors.New("internal server error")

// getStatusCode determines the appropriate HTTP status code for an error
func getStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrLocked):
		return http.StatusLocked
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidMFACode),
		errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrLimitExceeded), errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrNotPending):
		return http.StatusConflict
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
