package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	_ "github.com/tewff14/searh-your-moments-webapp/docs" // Импорт сгенерированных файлов
	"github.com/tewff14/searh-your-moments-webapp/internal/infrastructure/auth"
	"github.com/tewff14/searh-your-moments-webapp/internal/usecase"
	"github.com/tewff14/searh-your-moments-webapp/pkg/logger"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(videoUC usecase.VideoUC, searchUC usecase.SearchUC, verifier auth.TokenVerifier) {
	r.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(AuthMiddleware(verifier))

		videoHandler := NewVideoHandler(videoUC, r.logger)
		registerVideoRoutes(v1, videoHandler)

		searchHandler := NewSearchHandler(searchUC, videoUC, r.logger)
		registerSearchRoutes(v1, searchHandler)
	})
}

func registerVideoRoutes(router chi.Router, h *VideoHandler) {
	router.Route("/videos", func(v chi.Router) {
		v.Post("/", h.uploadVideo)
		v.Get("/", h.listVideos)
		v.Get("/{id}", h.getVideo)
		v.Delete("/{id}", h.deleteVideo)
		v.Get("/{id}/stream", h.streamVideo)
	})
}

func registerSearchRoutes(router chi.Router, h *SearchHandler) {
	router.Route("/search", func(s chi.Router) {
		s.Post("/global", h.searchGlobal)
		s.Post("/videos/{id}", h.searchInVideo)
	})
}
