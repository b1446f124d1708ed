package scores

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func SetupRoutes(svc *Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(svc.log))
	r.Use(svc.metrics.Middleware)

	r.Get("/", Root)
	r.Get("/health", Healthz)
	r.Method(http.MethodGet, "/metrics", svc.metrics.Handler())

	r.Route("/api/scores", func(r chi.Router) {
		r.Get("/", ListScores(svc))
		r.Post("/", CreateScore(svc))
		r.Put("/{id}", RenameScore(svc))
	})
	r.Get("/ws", Subscribe(svc))
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)))
		})
	}
}
