// internal/middleware/recovery.go

package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/dhananjayaaps/wifi-monitor/internal/logger"
)

// Recovery turns handler panics into a 500 instead of killing the process.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())
					http.Error(w, `{"status":"error","message":"internal server error"}`, http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
