package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hireloop/portal-api/internal/core/application"
	"github.com/hireloop/portal-api/internal/core/company"
	"github.com/hireloop/portal-api/internal/core/employee"
	"github.com/hireloop/portal-api/internal/core/meeting"
	"github.com/hireloop/portal-api/internal/core/notification"
	"github.com/hireloop/portal-api/internal/core/user"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the use cases the HTTP API exposes. Pinger and Logger are optional.
type Services struct {
	Auth          Authenticator
	Users         user.UseCase
	Applications  application.UseCase
	Notifications notification.UseCase
	Companies     company.UseCase
	Employees     employee.UseCase
	Meetings      meeting.UseCase
	Pinger        Pinger
	Logger        *slog.Logger
}

// NewRouter mounts every route on a chi router.
func NewRouter(s Services) http.Handler {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", healthHandler(s.Pinger))

	users := &userHandler{auth: s.Auth, svc: s.Users}
	r.Post("/auth/register", users.register)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth(s.Auth))

		r.Get("/me", users.me)
		r.Patch("/me", users.updateMe)

		apps := &applicationHandler{svc: s.Applications}
		r.Route("/applications", func(r chi.Router) {
			r.Post("/", apps.apply)
			r.Get("/me", apps.listMine)
			r.Get("/company/{companyId}", apps.listByCompany)
			r.Get("/company/{companyId}/pipeline", apps.pipeline)
			r.Put("/{id}/status", apps.changeStatus)
			r.Put("/{id}/withdraw", apps.withdraw)
		})

		notes := &notificationHandler{svc: s.Notifications}
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notes.list)
			r.Put("/read-all", notes.markAllRead)
			r.Put("/{id}/read", notes.markRead)
		})

		companies := &companyHandler{svc: s.Companies, employees: s.Employees}
		r.Route("/companies", func(r chi.Router) {
			r.Post("/", companies.register)
			r.Get("/pending", companies.listPending)
			r.Put("/{id}/approve", companies.approve)
			r.Put("/{id}/reject", companies.reject)
			r.Get("/{id}/employees", companies.listEmployees)
		})

		meetings := &meetingHandler{svc: s.Meetings}
		r.Route("/meetings", func(r chi.Router) {
			r.Post("/", meetings.request)
			r.Get("/me", meetings.listMine)
			r.Get("/pending", meetings.listPending)
			r.Put("/{id}/approve", meetings.approve)
			r.Put("/{id}/decline", meetings.decline)
		})
	})

	return r
}

func healthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			if err := p.Ping(r.Context()); err != nil {
				slog.Warn("health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
