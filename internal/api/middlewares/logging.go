package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/observability/tracing"
)

// LoggingMiddleware puts a request scoped logger into the context and logs
// every completed request with its status and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		logger := log.With().Str("method", r.Method).Str("path", r.URL.Path).Logger()
		if traceId := r.Context().Value(tracing.TraceIdKey); traceId != nil {
			logger = logger.With().Interface("traceId", traceId).Logger()
		}
		r = r.WithContext(logger.WithContext(r.Context()))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		var logEvent *zerolog.Event
		if status >= http.StatusInternalServerError {
			logEvent = logger.Warn()
		} else {
			logEvent = logger.Debug()
		}
		if tracingInfo := r.Context().Value(tracing.TracingInfoKey); tracingInfo != nil {
			logEvent = logEvent.Interface("tracingInfo", tracingInfo)
		}
		logEvent.
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Int64("requestDuration", time.Since(startTime).Milliseconds()).
			Msg("request completed")
	})
}
