// Package router arma la tabla de rutas del API móvil y el pipeline de
// middlewares.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/shepherd/internal/http"
	adminctl "github.com/dropDatabas3/shepherd/internal/http/controllers/admin"
	announcementsctl "github.com/dropDatabas3/shepherd/internal/http/controllers/announcements"
	attendancectl "github.com/dropDatabas3/shepherd/internal/http/controllers/attendance"
	authctl "github.com/dropDatabas3/shepherd/internal/http/controllers/auth"
	directoryctl "github.com/dropDatabas3/shepherd/internal/http/controllers/directory"
	eventsctl "github.com/dropDatabas3/shepherd/internal/http/controllers/events"
	firsttimersctl "github.com/dropDatabas3/shepherd/internal/http/controllers/firsttimers"
	flagsctl "github.com/dropDatabas3/shepherd/internal/http/controllers/flags"
	groupsctl "github.com/dropDatabas3/shepherd/internal/http/controllers/groups"
	pathwaysctl "github.com/dropDatabas3/shepherd/internal/http/controllers/pathways"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/shepherd/internal/jwt"
	"github.com/dropDatabas3/shepherd/internal/rate"
)

// Controllers reúne todos los controllers del API.
type Controllers struct {
	Auth          *authctl.Controllers
	Attendance    *attendancectl.Controllers
	Events        *eventsctl.Controllers
	Directory     *directoryctl.Controllers
	Groups        *groupsctl.Controllers
	Pathways      *pathwaysctl.Controllers
	FirstTimers   *firsttimersctl.Controllers
	Announcements *announcementsctl.Controllers
	Admin         *adminctl.Controllers
	Flags         *flagsctl.Controller
}

// Deps contiene todo lo que el router necesita para armarse.
type Deps struct {
	Controllers Controllers

	Issuer *jwtx.Issuer

	// APILimiter es el rate limit general por IP; nil lo desactiva.
	APILimiter rate.Limiter
	// LoginLimiter es el rate limit de login por IP+email; nil lo desactiva.
	LoginLimiter rate.Limiter

	CORSAllowed []string

	// MetricsHandler sirve /metrics (promhttp).
	MetricsHandler http.Handler
	// HealthWindow alimenta /health/summary y al monitor de flags.
	HealthWindow *httpx.HealthWindow

	// Ready verifica las dependencias (pool de Postgres) para /readyz.
	Ready func(ctx context.Context) error
}

// New construye el handler raíz del API.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// Pipeline global, del más externo al más interno.
	r.Use(mw.WithRecover())
	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())
	r.Use(mw.WithSecurityHeaders())
	r.Use(mw.WithCORS(d.CORSAllowed))
	r.Use(func(next http.Handler) http.Handler {
		return httpx.WithMetrics(next, d.HealthWindow)
	})
	if d.APILimiter != nil {
		r.Use(mw.WithRateLimit(d.APILimiter, mw.IPRateKey, "/healthz", "/readyz", "/metrics"))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httperrors.WriteError(w, req, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Allow", "")
		httperrors.WriteError(w, req, httperrors.ErrMethodNotAllowed)
	})

	// Superficie pública: salud, métricas y configuración de flags.
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if d.Ready != nil {
			if err := d.Ready(ctx); err != nil {
				httperrors.WriteError(w, req, httperrors.ErrServiceUnavailable.WithCause(err))
				return
			}
		}
		helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}
	if d.HealthWindow != nil {
		r.Method(http.MethodGet, "/health/summary", httpx.HealthSummaryHandler(d.HealthWindow))
	}
	r.Get("/flags", d.Controllers.Flags.List)

	// Auth. El login lleva su propio limiter (3/hora por IP+email).
	r.Group(func(r chi.Router) {
		if d.LoginLimiter != nil {
			r.Use(mw.WithRateLimit(d.LoginLimiter, mw.LoginRateKey))
		}
		r.Post("/auth/login", d.Controllers.Auth.Login.Login)
	})
	r.Post("/auth/refresh", d.Controllers.Auth.Refresh.Refresh)
	r.Post("/auth/logout", d.Controllers.Auth.Logout.Logout)

	// Rutas con principal.
	r.Group(func(r chi.Router) {
		r.Use(mw.WithAuth(d.Issuer))

		r.Post("/checkins", d.Controllers.Attendance.Checkin.Create)

		r.Get("/events", d.Controllers.Events.List.List)
		r.Post("/events/{id}/rsvp", d.Controllers.Events.RSVP.RSVP)

		r.Get("/directory/search", d.Controllers.Directory.Search.Search)
		r.Get("/members/{id}", d.Controllers.Directory.Member.Get)
		r.Get("/me", d.Controllers.Directory.Me.Get)
		r.Patch("/me", d.Controllers.Directory.Me.Patch)

		r.Get("/groups", d.Controllers.Groups.List.List)
		r.Post("/groups/{id}/requests", d.Controllers.Groups.Join.Join)
		r.Post("/groups/requests/{id}/approve", d.Controllers.Groups.Decision.Approve)
		r.Post("/groups/requests/{id}/reject", d.Controllers.Groups.Decision.Reject)

		r.Get("/pathways", d.Controllers.Pathways.List.List)
		r.Post("/pathways/{id}/enroll", d.Controllers.Pathways.Enroll.Enroll)
		r.Post("/enrollments/{id}/steps/{stepId}/complete", d.Controllers.Pathways.Progress.Complete)

		r.Post("/firsttimers", d.Controllers.FirstTimers.Create.Create)
		r.Get("/firsttimers", d.Controllers.FirstTimers.List.List)
		r.Patch("/firsttimers/{id}", d.Controllers.FirstTimers.Update.Patch)

		r.Get("/announcements", d.Controllers.Announcements.List.List)
		r.Post("/announcements", d.Controllers.Announcements.Create.Create)

		// Panel admin. Los permisos finos (SUPER_ADMIN vs ADMIN+ por tenant)
		// los decide cada service; acá solo se exige un principal.
		r.Route("/admin", func(r chi.Router) {
			r.Get("/tenants", d.Controllers.Admin.Tenants.List)
			r.Get("/flags", d.Controllers.Admin.Flags.List)
			r.Patch("/flags/{name}", d.Controllers.Admin.Flags.Update)
			r.Post("/flags/{name}/kill", d.Controllers.Admin.Flags.Kill)
			r.Post("/flags/{name}/revive", d.Controllers.Admin.Flags.Revive)
			r.Get("/sessions", d.Controllers.Admin.Sessions.List)
			r.Post("/sessions/revoke", d.Controllers.Admin.Sessions.Revoke)
		})
	})

	return r
}
