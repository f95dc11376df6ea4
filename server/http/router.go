package serverhttp

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"movierec-service/internal/config"
	"movierec-service/internal/middleware"
	recHnd "movierec-service/internal/recommend/handler"
	"movierec-service/server/http/handlers"
)

func NewRouter(cfg config.Config, rec *recHnd.Handler, status handlers.StatusFunc, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> rate limit -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// служебные маршруты без лимитов
	r.Get("/health", handlers.Health(status))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit))
		r.Get("/recommend/title", rec.RecommendTitle)
		r.Get("/recommend/genre", rec.RecommendGenre)
		r.Get("/genres", rec.Genres)

		r.With(chimw.RequestSize(int64(cfg.MaxUploadMB) << 20)).Post("/catalog", rec.UploadCatalog)
	})

	return r
}
