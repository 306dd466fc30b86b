package router

import (
	"net/http"

	"ads-board/internal/delivery/handler"
	"ads-board/internal/delivery/middleware"
	"ads-board/internal/infrastructure/metrics"
	"ads-board/internal/service"
	"ads-board/pkg/logger"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Options struct {
	MaxImageBytes  int64
	AllowedOrigins []string
}

func SetupAdRoutes(adRouter *chi.Mux, adService service.AdService, loggers *logger.Loggers, metrics *metrics.HandlerMetrics, opts Options) {
	adHandler := handler.NewAdHandler(adService, loggers, metrics, opts.MaxImageBytes)

	adRouter.Use(chimiddleware.RequestID)
	adRouter.Use(chimiddleware.RealIP)
	adRouter.Use(middleware.RequestLogger(loggers))
	adRouter.Use(chimiddleware.Recoverer)

	adRouter.Get("/", adHandler.ShowBoard)
	adRouter.Post("/ads", adHandler.SubmitForm)

	adRouter.Route("/api", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		api.Get("/ads", adHandler.ListAds)
		api.Post("/ads", adHandler.CreateAd)
		api.Get("/categories", adHandler.ListCategories)
	})

	adRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	adRouter.Handle("/metrics", metrics.HTTPHandler())
}
