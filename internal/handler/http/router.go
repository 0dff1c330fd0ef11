package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/user"
	"github.com/cmlabs-hris/shift-engine-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/shift-engine-go/internal/handler/http/response"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// HealthCheck reports whether one backing service is reachable.
type HealthCheck func(ctx context.Context) error

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// RateLimiter guards the attendance endpoints; nil disables limiting.
	RateLimiter  *middleware.RateLimiter
	HealthChecks map[string]HealthCheck
}

func NewRouter(
	JWTService jwt.Service,
	shiftHandler ShiftHandler,
	locationHandler LocationHandler,
	attendanceHandler AttendanceHandler,
	opts RouterOptions,
) *chi.Mux {
	r := chi.NewRouter()

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(log, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))

	r.Get("/health", healthHandler(opts.HealthChecks))

	limit := func(next http.Handler) http.Handler { return next }
	if opts.RateLimiter != nil {
		limit = opts.RateLimiter.Handler
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", shiftHandler.List)
			r.Get("/{id}", shiftHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionShiftSchedule))
				r.Post("/", shiftHandler.Create)
				r.Post("/batch", shiftHandler.CreateBatch)
				r.Put("/{id}", shiftHandler.Update)
			})

			r.With(middleware.RequirePermission(user.PermissionShiftCancel)).Delete("/{id}", shiftHandler.Cancel)
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", locationHandler.List)
			r.Get("/{id}", locationHandler.Get)

			// Manager only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/", locationHandler.Create)
				r.Put("/{id}", locationHandler.Update)
				r.Delete("/{id}", locationHandler.Delete)
			})
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", attendanceHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(limit)
				r.Post("/validate", attendanceHandler.Validate)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployeeProfile)
					r.Use(middleware.RequirePermission(user.PermissionAttendanceCreate))
					r.Post("/check-in", attendanceHandler.CheckIn)
					r.Post("/check-out", attendanceHandler.CheckOut)
				})
			})
		})
	})

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := make(map[string]string, len(checks))
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status[name] = err.Error()
				healthy = false
				continue
			}
			status[name] = "ok"
		}

		if !healthy {
			response.ServiceUnavailable(w, "One or more dependencies are unavailable")
			return
		}
		response.Success(w, map[string]any{
			"status": "ok",
			"checks": status,
		})
	}
}
