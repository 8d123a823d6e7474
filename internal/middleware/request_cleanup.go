package middleware

import (
	"io"
	"net/http"

	"github.com/cloudyskybd/portfolio/pkg"

	log "github.com/sirupsen/logrus"
)

// DrainAndCloseRequest reads what the handler left of the body so the connection can be
// reused. Handlers never read more than pkg.MaxJSONBodyBytes, so at most that much is
// drained; the server drops the connection for anything larger.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body == nil || r.Body == http.NoBody {
				return
			}

			drained, err := io.Copy(io.Discard, io.LimitReader(r.Body, pkg.MaxJSONBodyBytes+1))
			if err == nil && drained > pkg.MaxJSONBodyBytes {
				log.WithFields(log.Fields{
					"route": routeName(r),
					"path":  r.URL.Path,
				}).Debug("oversized request body left unread")
			}
			_ = r.Body.Close()
		})
	}
}
