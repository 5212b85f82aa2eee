package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthHandler interface {
	Root(w http.ResponseWriter, r *http.Request)
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	SignUp(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
	VerifyEmail(w http.ResponseWriter, r *http.Request)
	VerifyPhone(w http.ResponseWriter, r *http.Request)
}

type UsersHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type Middleware = func(http.Handler) http.Handler

type Deps struct {
	Health HealthHandler
	Auth   AuthHandler
	Users  UsersHandler

	// Global chain, outermost first. Nil entries are skipped.
	RequestIDMW Middleware
	MetricsMW   Middleware
	CORSMW      Middleware

	// Per-route rate limits; nil disables.
	RLSignUp         Middleware
	RLLogin          Middleware
	RLVerify         Middleware
	RLForgotPassword Middleware
	RLResetPassword  Middleware

	// Metrics defaults to the Prometheus default registry handler.
	Metrics http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("nil Users handler")
	}

	r := chi.NewRouter()
	for _, mw := range []Middleware{deps.RequestIDMW, deps.MetricsMW, deps.CORSMW} {
		if mw != nil {
			r.Use(mw)
		}
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}

	r.Get("/", deps.Health.Root)
	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", metrics)

	r.With(optional(deps.RLSignUp)...).Post("/signup", deps.Auth.SignUp)
	r.With(optional(deps.RLLogin)...).Post("/login", deps.Auth.Login)
	r.With(optional(deps.RLVerify)...).Post("/email-valid", deps.Auth.VerifyEmail)
	r.With(optional(deps.RLVerify)...).Post("/phone-valid", deps.Auth.VerifyPhone)
	r.With(optional(deps.RLForgotPassword)...).Post("/forgot-password", deps.Auth.ForgotPassword)
	r.With(optional(deps.RLResetPassword)...).Post("/reset-password", deps.Auth.ResetPassword)

	r.Get("/users", deps.Users.List)

	return r, nil
}

func optional(mws ...Middleware) []Middleware {
	out := make([]Middleware, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}
