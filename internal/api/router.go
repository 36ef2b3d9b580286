package api

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pmorchard/polis-api/internal/api/shared"
	"github.com/pmorchard/polis-api/internal/platform/logger"
)

// Handlers bundles the endpoint handlers the router mounts.
type Handlers struct {
	Upload   *UploadHandler
	Schedule *ScheduleHandler
	Policy   *PolicyHandler
}

// NewRouter builds the HTTP routing tree. Every request's context carries
// a logger scoped with the request ID, which handlers retrieve through
// logger.FromContext.
func NewRouter(log *slog.Logger, h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/uploads", h.Upload.UploadFile)
		r.Post("/schedules", h.Schedule.ScheduleMessage)
		r.Route("/policies", func(r chi.Router) {
			r.Get("/search", h.Policy.SearchPolicies)
			r.Get("/aggregate", h.Policy.AggregatePolicies)
		})
	})

	return r
}

// requestLogger attaches a request-scoped logger to the context.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLog := log
			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				reqLog = log.With("request_id", reqID)
			}
			ctx := logger.WithLogger(r.Context(), reqLog)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// handleHealth reports liveness. The PID identifies which supervised
// worker answered.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"ok":  true,
		"pid": os.Getpid(),
	})
}
