package http_handlers

import (
	"errors"
	"net/http"

	"github.com/baechuer/bridge-auth/internal/application/auth"
	"github.com/baechuer/bridge-auth/internal/domain"
	"github.com/baechuer/bridge-auth/internal/logger"
	"github.com/baechuer/bridge-auth/internal/transport/http/dto"
	"github.com/baechuer/bridge-auth/internal/transport/http/middleware"
	"github.com/baechuer/bridge-auth/internal/transport/http/response"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// decode reads and presence-checks a request body, writing the error itself.
func decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := response.DecodeJSON(w, r, req); err != nil {
		response.WriteError(w, r, err)
		return false
	}
	if err := dto.Validate(req); err != nil {
		response.WriteError(w, r, err)
		return false
	}
	return true
}

// resultLabel is the metrics label for an outcome: "ok" or the error code.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "internal_error"
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.SignUpRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.SignUp(r.Context(), req.Phone, req.Email, req.Password)
	middleware.SignupsTotal.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.UserID).
		Msg("user_signed_up")

	response.OK(w, dto.SignUpResponse{Message: res.Message, UID: res.UserID})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	middleware.LoginAttemptsTotal.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.UserID).
		Bool("token_issued", res.Token != "").
		Msg("user_logged_in")

	response.OK(w, dto.LoginResponse{Message: res.Message, UID: res.UserID, Token: res.Token})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.ForgotPassword(r.Context(), req.Email)
	middleware.PasswordResetsTotal.WithLabelValues("request", resultLabel(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.ForgotPasswordResponse{Message: res.Message, ResetLink: res.ResetLink})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword)
	middleware.PasswordResetsTotal.WithLabelValues("confirm", resultLabel(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.MessageResponse{Message: auth.MsgPasswordReset})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailVerificationRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.VerifyEmail(r.Context(), req.Email, req.Code)
	h.writeVerify(w, r, domain.ChannelEmail, res, err)
}

func (h *AuthHandler) VerifyPhone(w http.ResponseWriter, r *http.Request) {
	var req dto.PhoneVerificationRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.VerifyPhone(r.Context(), req.Phone, req.Code)
	h.writeVerify(w, r, domain.ChannelPhone, res, err)
}

func (h *AuthHandler) writeVerify(w http.ResponseWriter, r *http.Request, ch domain.Channel, res auth.VerifyResult, err error) {
	label := resultLabel(err)
	if err == nil && res.AlreadyVerified {
		label = "already_verified"
	}
	middleware.VerificationAttemptsTotal.WithLabelValues(string(ch), label).Inc()

	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.MessageResponse{Message: res.Message})
}
