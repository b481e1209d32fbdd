package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/and161185/neuralpress/internal/convert"
	"github.com/and161185/neuralpress/internal/errs"
	"github.com/and161185/neuralpress/internal/quota"
	"github.com/and161185/neuralpress/internal/service"
)

const (
	msgMissingKey = "Missing API key. Send Authorization: Bearer <key>."
	msgInvalidKey = "Invalid or revoked API key."
	msgConflict   = "An API key is already registered for this email."
	msgNotFound   = "Not found."
	msgInternal   = "Internal server error."
	msgRateLimit  = "Too many requests. Try again later."
	msgForbidden  = "Forbidden."
	msgBadJSON    = "Request body must be valid JSON."
	msgTooLarge   = "Request body too large."
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, convert.Error{Error: msg})
}

// statusFor maps a service error to its HTTP status and client-facing message.
func statusFor(err error) (int, string) {
	var ve *service.ValidationError
	var qe *quota.ExceededError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrMissingCredential):
		return http.StatusUnauthorized, msgMissingKey
	case errors.Is(err, errs.ErrInvalidCredential):
		return http.StatusUnauthorized, msgInvalidKey
	case errors.As(err, &qe):
		return http.StatusTooManyRequests, qe.Error()
	case errors.Is(err, errs.ErrQuotaExceeded):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests, msgRateLimit
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict, msgConflict
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// fail writes the mapped error. Server-side failures are logged; their detail never reaches
// the client.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID(r)),
			zap.Error(err),
		)
	}
	writeError(w, code, msg)
}

// decodeJSON reads a JSON body into dst and writes the error response itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return false
		}
		writeError(w, http.StatusBadRequest, msgBadJSON)
		return false
	}
	return true
}
