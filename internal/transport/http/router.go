// Package http is the Transport implementation of spec §6: a chi-based
// router exposing the stable HTTP surface over the Broker API. Grounded on
// the teacher's modules/chimux (go-chi/chi/v5 router setup, middleware
// stacking) simplified out of its dependency-injection/tenant machinery,
// since this repository has one broker instance for its whole lifetime.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/f-str/radishmq/internal/broker"
)

// NewRouter builds the full HTTP surface of spec §6 over b.
func NewRouter(b *broker.Broker, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(slogRequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	h := &handler{broker: b, logger: logger}

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)

	r.Route("/message_topics", func(r chi.Router) {
		r.Get("/", h.listMessageTopics)
		r.Post("/", h.createMessageTopic)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.getMessageTopic)
			r.Delete("/", h.deleteMessageTopic)
			r.Post("/publisher", h.addMessageTopicPublisher)
			r.Delete("/publisher/{id}", h.removeMessageTopicPublisher)
			r.Post("/publisher/{id}/publish", h.publishMessageTopic)
			r.Post("/subscribers", h.addMessageTopicSubscriber)
			r.Delete("/subscribers/{id}", h.removeMessageTopicSubscriber)
			r.Get("/subscribers/{id}/is_new_data", h.isNewDataForSubscriber)
			r.Get("/subscribers/{id}/get_data", h.getDataForSubscriber)
		})
	})

	r.Route("/task_topics", func(r chi.Router) {
		r.Get("/", h.listTaskTopics)
		r.Post("/", h.createTaskTopic)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.getTaskTopic)
			r.Delete("/", h.deleteTaskTopic)
			r.Post("/publisher", h.addTaskTopicPublisher)
			r.Delete("/publisher/{id}", h.removeTaskTopicPublisher)
			r.Post("/publisher/{id}/publish", h.publishTaskTopic)
			r.Post("/subscribers", h.addTaskTopicSubscriber)
			r.Delete("/subscribers/{id}", h.removeTaskTopicSubscriber)
			r.Get("/subscribers/{id}/is_new_task", h.isThereATaskForSubscriber)
			r.Get("/subscribers/{id}/get_task", h.getTaskForSubscriber)
		})
	})

	return r
}

// slogRequestLogger adapts chi's middleware.Logger convention to log/slog
// instead of the standard library logger, matching the structured-logging
// ambient stack the rest of this repository uses.
func slogRequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			next.ServeHTTP(ww, req)
			logger.Info("http request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(req.Context()),
			)
		})
	}
}
