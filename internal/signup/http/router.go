package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/firststore/internal/signup/service"
	"github.com/aussiebroadwan/firststore/internal/signup/store"
	"github.com/aussiebroadwan/firststore/pkg/httpx"
	"github.com/aussiebroadwan/firststore/pkg/slogx"
)

// Rate limit profiles per route group.
type RateLimits struct {
	Start   httpx.RateLimitConfig
	OTP     httpx.RateLimitConfig
	Session httpx.RateLimitConfig
	Public  httpx.RateLimitConfig
}

// DefaultRateLimits returns the package defaults from httpx.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Start:   httpx.StartLimit,
		OTP:     httpx.OTPSendLimit,
		Session: httpx.SessionLimit,
		Public:  httpx.PublicLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	limits       RateLimits

	store          store.Store
	SessionService *service.SessionService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger, limits RateLimits) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		limits:       limits,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSessions()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSessions() {
	h := &SessionsHandler{Sessions: r.SessionService}

	// Session creation allocates server state, so it has its own budget per IP.
	r.Mux.Handle("POST /v1/signup/sessions",
		httpx.Chain(http.HandlerFunc(h.HandleStart),
			httpx.RateLimitByIP(r.limits.Start),
		),
	)

	r.Mux.Handle("GET /v1/signup/sessions/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)

	// Anything that can dispatch a code is limited per IP and session.
	otp := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitBySession(r.limits.OTP))
	}
	r.Mux.Handle("POST /v1/signup/sessions/{id}/phone", otp(h.HandleSubmitPhone))
	r.Mux.Handle("POST /v1/signup/sessions/{id}/otp/resend", otp(h.HandleResendOTP))

	session := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitBySession(r.limits.Session))
	}
	r.Mux.Handle("PUT /v1/signup/sessions/{id}/otp/{index}", session(h.HandleUpdateOTPDigit))
	r.Mux.Handle("POST /v1/signup/sessions/{id}/otp", session(h.HandleSubmitOTP))
	r.Mux.Handle("POST /v1/signup/sessions/{id}/profile", session(h.HandleSubmitProfile))
	r.Mux.Handle("POST /v1/signup/sessions/{id}/back", session(h.HandleGoBack))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)
}
