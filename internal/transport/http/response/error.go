package response

import (
	"errors"
	"net/http"

	"github.com/baechuer/bridge-auth/internal/domain"
	"github.com/baechuer/bridge-auth/internal/logger"
)

type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// statusByCode pins the statuses the mobile client already branches on.
// Everything else falls back to the kind.
var statusByCode = map[string]int{
	"invalid_email":      http.StatusUnauthorized,
	"invalid_password":   http.StatusPaymentRequired,
	"email_not_verified": http.StatusGone,
	"phone_not_verified": http.StatusLengthRequired,
}

// WriteError renders err as the JSON error body and logs it once.
// Non-domain errors become a bare 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	message := "internal error"
	var meta map[string]string

	var de *domain.Error
	if errors.As(err, &de) {
		status = StatusFor(de)
		code = de.Code
		message = de.Message
		meta = de.Meta
	}

	lg := logger.WithCtx(r.Context())
	evt := lg.Info()
	if status >= http.StatusInternalServerError {
		evt = lg.Error()
	}
	evt.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Str("code", code).
		Msg("request_failed")

	WriteJSON(w, status, ErrorBody{
		Error: ErrorPayload{
			Code:      code,
			Message:   message,
			Meta:      meta,
			RequestID: RequestIDFromContext(r),
		},
	})
}

// StatusFor maps a domain error to its HTTP status.
func StatusFor(de *domain.Error) int {
	if s, ok := statusByCode[de.Code]; ok {
		return s
	}
	return statusFromKind(de.Kind)
}

func statusFromKind(kind domain.ErrKind) int {
	switch kind {
	case domain.KindValidation, domain.KindCodeMismatch, domain.KindProvider:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindNotVerified:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindInfrastructure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
