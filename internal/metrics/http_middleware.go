package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// HTTPMiddleware records every request by chi route pattern and logs board
// requests (under /api/) with the requested date, status and latency.
// Place it after middleware.RequestID so the id is logged.
func HTTPMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			elapsed := time.Since(start)
			ObserveHTTPRequest(r.Method, route, strconv.Itoa(status), elapsed)

			if !strings.HasPrefix(route, "/api/") {
				return
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("elapsed", elapsed),
				zap.Int("bytes", ww.BytesWritten()),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			}
			if date := r.URL.Query().Get("date"); date != "" {
				fields = append(fields, zap.String("date", date))
			}
			if status >= http.StatusInternalServerError {
				logger.Warn("board request", fields...)
				return
			}
			logger.Info("board request", fields...)
		})
	}
}

// routePattern keeps metric cardinality bounded: unmatched paths collapse
// to a single series.
func routePattern(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return "unmatched"
	}
	if p := rc.RoutePattern(); p != "" {
		return p
	}
	return "unmatched"
}
