package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/EdwardBetts/librephotos/internal/http/handlers"
	"github.com/EdwardBetts/librephotos/internal/infra"
	"github.com/EdwardBetts/librephotos/internal/middleware"
)

func NewRouter(app *handlers.App, logger infra.Logger, rateLimitPerMin int) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Principal)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.RateLimit(rateLimitPerMin, time.Minute))

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/images", func(r chi.Router) {
		r.Post("/generate", app.GenerateImage)
		r.Post("/generate-from-reference", app.GenerateImageFromReference)
	})

	r.Route("/v1/jobs", func(r chi.Router) {
		r.Get("/{job_id}", app.JobStatus)
	})

	r.Get("/v1/artifacts/archive", app.ArtifactsArchive)

	return r
}
