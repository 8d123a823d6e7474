package misc

import (
	"context"
	"net/http"

	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"
	"github.com/cloudyskybd/portfolio/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// PingFunc checks a single dependency.
type PingFunc func(ctx context.Context) error

type Handler struct {
	versionInfo string
	// dependencies checked by /health, keyed by name
	dependencies map[string]PingFunc
}

func NewHandler(versionInfo string, dependencies map[string]PingFunc) *Handler {
	return &Handler{
		versionInfo:  versionInfo,
		dependencies: dependencies,
	}
}

type healthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")
	mainRouter.HandleFunc("/health", handler.handleHealth).Methods("GET").Name("health")
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

// handleHealth pings every dependency; any failure turns the response into a 503.
func (handler *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.health")
	defer span.End()

	resp := healthResponse{
		Status:       "ok",
		Dependencies: make(map[string]string, len(handler.dependencies)),
	}
	for name, ping := range handler.dependencies {
		if err := ping(ctx); err != nil {
			log.Errorf("health: %s ping: %s", name, err)
			resp.Dependencies[name] = "down"
			resp.Status = "degraded"
			continue
		}
		resp.Dependencies[name] = "up"
	}

	span.SetAttributes(attribute.String("health.status", resp.Status))
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	pkg.WriteJSON(w, status, resp)
}
