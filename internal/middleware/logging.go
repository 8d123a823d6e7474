package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/cloudyskybd/portfolio/pkg"

	log "github.com/sirupsen/logrus"
)

// admin surface, logged one level up from public reads
var adminPathPrefixes = []string{"/a/", "/functions/"}

func isAdminPath(path string) bool {
	for _, prefix := range adminPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// LogRequest logs every served request once it completes. Admin calls go out at debug,
// public reads and health pings at trace.
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			begin := time.Now()
			resp := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(resp, r)

			reqIP, _ := pkg.ReadUserIP(r)
			admin := isAdminPath(r.URL.Path)
			entry := log.WithFields(log.Fields{
				"method":   r.Method,
				"route":    routeName(r),
				"path":     r.URL.Path,
				"status":   resp.statusCode,
				"duration": time.Since(begin).String(),
				"ip":       reqIP,
				"ua":       r.Header.Get("User-Agent"),
				"admin":    admin,
			})

			switch {
			case resp.statusCode >= http.StatusInternalServerError:
				entry.Warn("request failed")
			case admin:
				entry.Debug("admin request")
			default:
				entry.Trace("request")
			}
		})
	}
}
