// internal/middleware/logging.go
//
// Access logging.
//
// Context
//   RequestLog derives a request-scoped logger carrying the chi request id,
//   stores it with logger.WithContext for handlers, and writes one access
//   line per request after the handler returns: method, path, status, bytes,
//   duration, client IP, and the parsed user agent.  Server errors log at
//   WARN so they stand out; everything else logs at INFO, except /healthz
//   and /metrics which log at DEBUG.

package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/eventform/internal/logger"
	"github.com/yanizio/eventform/internal/requestinfo"
)

// RequestLog returns the access-log middleware.
func RequestLog(base *zap.SugaredLogger) func(http.Handler) http.Handler {
	if base == nil {
		base = zap.S()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := base.With("request_id", chimw.GetReqID(r.Context()))

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), log)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			}
			if info := requestinfo.FromContext(r.Context()); info != nil {
				fields = append(fields,
					"ip", info.IP.String(),
					"ua", info.UA.String(),
					"bot", info.UA.IsBot,
					"lang", info.Lang,
				)
			}

			switch {
			case status >= 500:
				log.Warnw("request", fields...)
			case r.URL.Path == "/healthz" || r.URL.Path == "/metrics":
				log.Debugw("request", fields...)
			default:
				log.Infow("request", fields...)
			}
		})
	}
}
