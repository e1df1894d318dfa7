// internal/server/timeouts.go
//
// HTTP server helper with robust timeouts.
//
// Defaults:
//
//   • ReadHeaderTimeout – abort slow-loris headers (5 s)
//   • ReadTimeout       – cap request body reads (10 s)
//   • WriteTimeout      – cap total response time; must outlast one
//                         delivery, retries included
//   • IdleTimeout       – close keep-alives on idle clients (60 s)
//
// net/http's own error log is routed into zap at WARN.
//

package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs an *http.Server.  deliveryTimeout is the configured
// delivery budget; WriteTimeout gets it plus headroom so a slow submit is
// answered rather than cut off.
func New(addr string, handler http.Handler, deliveryTimeout time.Duration, log *zap.SugaredLogger) *http.Server {
	if log == nil {
		log = zap.S()
	}
	write := 15 * time.Second
	if d := deliveryTimeout + 5*time.Second; d > write {
		write = d
	}
	errLog, err := zap.NewStdLogAt(log.Desugar().Named("http"), zapcore.WarnLevel)
	if err != nil {
		errLog = nil // only fails on an invalid level
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          errLog,
	}
}
