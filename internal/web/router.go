package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter はルーティングとミドルウェアを組み立てます。
func NewRouter(srv *Server, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)

	r.Get("/healthz", srv.Health)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(srv.sessions.withSession)

		r.Get("/", srv.Index)
		r.Post("/mode", srv.SwitchMode)
		r.Post("/prompt", srv.SavePrompt)
		r.Post("/generate", srv.Generate)
		r.Post("/key", srv.SetKey)
		r.Get("/output", srv.Download)

		r.Route("/slots", func(r chi.Router) {
			r.Post("/", srv.AddSlot)
			r.Post("/{index}", srv.Upload)
			r.Post("/{index}/drag", srv.Drag)
		})
	})

	return r
}

// requestLogger はリクエストごとに slog で1行のアクセスログを出力します。
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			slog.InfoContext(r.Context(), "http request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
