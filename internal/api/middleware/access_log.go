package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// AccessLog пишет строку лога на каждый запрос
func AccessLog(log Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			log.Info("HTTP %s %s -> %d (%s) request_id=%s",
				r.Method, r.URL.RequestURI(), rec.status, time.Since(start), RequestIDFromContext(r.Context()))
		})
	}
}
