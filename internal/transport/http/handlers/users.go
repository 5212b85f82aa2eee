package http_handlers

import (
	"net/http"

	"github.com/baechuer/bridge-auth/internal/application/auth"
	"github.com/baechuer/bridge-auth/internal/domain"
	"github.com/baechuer/bridge-auth/internal/transport/http/dto"
	"github.com/baechuer/bridge-auth/internal/transport/http/response"
)

// UsersHandler serves GET /users. When disabled it answers 404 as if the
// route did not exist.
type UsersHandler struct {
	svc     *auth.Service
	enabled bool
}

func NewUsersHandler(svc *auth.Service, enabled bool) *UsersHandler {
	return &UsersHandler{svc: svc, enabled: enabled}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.enabled {
		response.WriteError(w, r, domain.New(domain.KindNotFound, "not_found", "not found"))
		return
	}

	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUsersResponse(users))
}
