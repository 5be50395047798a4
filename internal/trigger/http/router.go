package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/service"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/store"
	"github.com/aussiebroadwan/bluezscript/pkg/cryptox"
	"github.com/aussiebroadwan/bluezscript/pkg/httpx"
	"github.com/aussiebroadwan/bluezscript/pkg/slogx"

	_ "github.com/aussiebroadwan/bluezscript/api/trigger" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// maxAdminBody bounds operator request bodies.
const maxAdminBody = 4 << 10

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	adminToken   string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store     store.Store
	cipher    *cryptox.SecretCipher
	Registry  *service.Registry
	Validator *service.Validator
	Actions   *service.ActionRunner
	Stats     *service.Stats

	// TrustedProxies may set forwarding headers. Nil keys limits on the socket peer.
	TrustedProxies httpx.TrustedProxies
}

func NewRouter(
	adminToken, buildVersion string,
	st store.Store,
	cipher *cryptox.SecretCipher,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slogx.Discard()
	}
	r := &Router{
		Mux:          http.NewServeMux(),
		adminToken:   adminToken,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		cipher:       cipher,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.SecurityHeaders,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerDevices()
	r.registerTrigger()
	r.registerReporting()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			BluezScript Trigger Service API
//	@version		0.1.0
//	@description	Pairs companion devices and authenticates their trigger messages with time-based one-time codes.
//	@description
//	@description				Operator endpoints require the admin token configured on the server.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/bluezscript
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Operator admin token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// admin wraps an operator handler with a per-IP limit and authentication.
// Failed token guesses spend from the same bucket.
func (r *Router) admin(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		r.limitByIP(limit),
		httpx.RequireBearerToken(r.adminToken),
		httpx.MaxBodyBytes(maxAdminBody),
	)
}

func (r *Router) limitByIP(limit httpx.RateLimitConfig) httpx.Middleware {
	return httpx.RateLimitByIP(limit, r.TrustedProxies)
}

func (r *Router) registerDevices() {
	h := &DevicesHandler{Registry: r.Registry}

	// POST /v1/devices - pairing mints a secret, so it gets its own tight limit
	r.Mux.Handle("POST /v1/devices", r.admin(h.HandlePair, httpx.PairingLimit))

	r.Mux.Handle("GET /v1/devices", r.admin(h.HandleList, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/devices/{id}", r.admin(h.HandleGet, httpx.ModerateLimit))
	r.Mux.Handle("PATCH /v1/devices/{id}", r.admin(h.HandleRename, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/devices/{id}/revoke", r.admin(h.HandleRevoke, httpx.ModerateLimit))
}

func (r *Router) registerTrigger() {
	h := &TriggerHandler{Validator: r.Validator, Actions: r.Actions}

	// POST /v1/trigger - strict rate limit by IP (code guessing)
	r.Mux.Handle("POST /v1/trigger",
		httpx.Chain(h,
			r.limitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerReporting() {
	stats := &StatsHandler{Stats: r.Stats, Registry: r.Registry}
	audit := &AuditHandler{Events: r.store.AuditEvents()}

	r.Mux.Handle("GET /v1/stats", r.admin(stats.ServeHTTP, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/audit-events", r.admin(audit.ServeHTTP, httpx.LenientLimit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			r.limitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cipher),
			r.limitByIP(httpx.PublicLimit),
		),
	)
}
