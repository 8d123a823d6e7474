package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/cloudyskybd/portfolio/internal/telemetry/metrics"
	"github.com/cloudyskybd/portfolio/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PanicRecovery turns a handler panic into a 500, counted per route and recorded on the request span.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				route := routeName(req)
				log.WithFields(log.Fields{
					"route":  route,
					"method": req.Method,
					"path":   req.URL.Path,
				}).Errorf("panic serving request: %v\n%s", rec, debug.Stack())

				span := trace.SpanFromContext(req.Context())
				span.RecordError(fmt.Errorf("panic: %v", rec), trace.WithAttributes(attribute.String("route", route)))
				span.SetStatus(codes.Error, "handler panic")

				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.WithLabelValues(route).Inc()
				}
				pkg.WriteJSONError(respWriter, http.StatusInternalServerError, "internal error")
			}()

			next.ServeHTTP(respWriter, req)
		})
	}
}
