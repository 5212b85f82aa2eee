package http_handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/bridge-auth/internal/logger"
	"github.com/baechuer/bridge-auth/internal/transport/http/dto"
	"github.com/baechuer/bridge-auth/internal/transport/http/response"
)

// Pinger is any backing service readiness depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Root handles GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	response.OK(w, dto.MessageResponse{Message: "Hello, World!"})
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.OK(w, dto.StatusResponse{Status: "ok"})
}

// Readyz handles GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			logger.WithCtx(r.Context()).Warn().Err(err).Msg("readiness check failed")
			response.WriteJSON(w, http.StatusServiceUnavailable, dto.StatusResponse{
				Status: "unavailable",
				Error:  "credential store unavailable",
			})
			return
		}
	}
	response.OK(w, dto.StatusResponse{Status: "ready"})
}
