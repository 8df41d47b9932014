package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/Miittkkoo/gaf-insight-engine-sub000/docs"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/api/handler"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/api/middleware"
)

type Router struct {
	userHandler     *handler.UserHandler
	syncHandler     *handler.SyncHandler
	analysisHandler *handler.AnalysisHandler
}

func NewRouter(userHandler *handler.UserHandler, syncHandler *handler.SyncHandler, analysisHandler *handler.AnalysisHandler) *Router {
	return &Router{
		userHandler:     userHandler,
		syncHandler:     syncHandler,
		analysisHandler: analysisHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.Tracing)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", rt.userHandler.Create)

			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", rt.userHandler.GetByID)

				r.Route("/garmin", func(r chi.Router) {
					r.Put("/credentials", rt.userHandler.StoreCredentials)
					r.Post("/sync", rt.syncHandler.Sync)
					r.Get("/test-connection", rt.syncHandler.TestConnection)
					r.Get("/dates", rt.syncHandler.Dates)
				})

				r.Get("/sync-logs", rt.syncHandler.SyncLogs)
				r.Get("/analysis", rt.analysisHandler.Analyze)
				r.Get("/framework-score", rt.analysisHandler.FrameworkScore)
				r.Get("/insights", rt.analysisHandler.Insights)
			})
		})
	})

	return r
}
