package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux wires the /architect routes, health, and metrics behind CORS.
func NewMux(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /architect/preview", h.HandlePreview)
	mux.HandleFunc("POST /architect/agent-plan", h.HandleAgentPlan)
	mux.HandleFunc("POST /architect/diagram-from-idea", h.HandleDiagramFromIdea)
	mux.HandleFunc("POST /architect/scaffold", h.HandleScaffold)
	mux.HandleFunc("POST /architect/scaffold/zip", h.HandleScaffoldZip)
	mux.HandleFunc("GET /architect/runs", h.HandleRecentRuns)
	mux.HandleFunc("GET /architect/runs/{id}/artifacts", h.HandleRunArtifacts)
	mux.HandleFunc("GET /architect/runs/{id}/artifacts/{path...}", h.HandleRunArtifactDownload)
	mux.HandleFunc("GET /architect/plan/ws", h.HandlePlanStream)

	mux.HandleFunc("GET /healthz", h.HandleHealthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(h.metrics.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/", h.HandleRoot)

	return corsMiddleware(mux)
}
