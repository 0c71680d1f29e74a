// internal/handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/pkg/logger"
)

const (
	// retryAfterSeconds is sent with 503 responses
	retryAfterSeconds = 1
	maxBodyBytes      = 1 << 20
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	Requested *int   `json:"requested,omitempty"`
	Available *int   `json:"available,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, log *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, status int, code, message string) {
	respondJSON(w, log, status, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: logger.RequestID(r.Context()),
	})
}

// respondDomainError maps engine errors onto status codes. Anything that is
// not a domain error is logged and hidden behind a 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	resp := ErrorResponse{
		Error:     err.Error(),
		RequestID: logger.RequestID(r.Context()),
	}

	var (
		validation   *domain.ValidationError
		insufficient *domain.InsufficientStockError
		status       int
	)

	switch {
	case errors.As(err, &validation):
		status, resp.Code, resp.Field = http.StatusBadRequest, "validation", validation.Field
	case errors.Is(err, domain.ErrNotFound):
		status, resp.Code = http.StatusNotFound, "not_found"
	case errors.As(err, &insufficient):
		status, resp.Code = http.StatusUnprocessableEntity, "insufficient_stock"
		resp.Requested = &insufficient.Requested
		resp.Available = &insufficient.Available
	case errors.Is(err, domain.ErrConflict):
		status, resp.Code = http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrReferentialIntegrity):
		status, resp.Code = http.StatusConflict, "referential_integrity"
	case errors.Is(err, domain.ErrStoreUnavailable):
		status, resp.Code = http.StatusServiceUnavailable, "store_unavailable"
		resp.Error = "Store temporarily unavailable"
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	default:
		status, resp.Code = http.StatusInternalServerError, "internal"
		resp.Error = "Internal Server Error"
	}

	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	} else {
		log.DebugContext(r.Context(), "request rejected",
			slog.String("path", r.URL.Path),
			slog.String("code", resp.Code),
			slog.String("error", err.Error()))
	}

	respondJSON(w, log, status, resp)
}

// decodeJSON reads a request body into dst, rejecting unknown fields so
// that attempts to set quantity or location through an update fail loudly.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError("", "invalid request body: "+err.Error())
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "must be a UUID")
	}
	return id, nil
}

func queryUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "must be a UUID")
	}
	return id, nil
}

func queryTime(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError(name, "must be an RFC 3339 timestamp")
	}
	return t, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative integer")
	}
	return n, nil
}
