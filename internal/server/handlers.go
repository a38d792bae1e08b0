package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"archplan/internal/artifact"
	"archplan/internal/classifier"
	"archplan/internal/diagram"
	"archplan/internal/planner"
	"archplan/internal/runstore"
	"archplan/internal/scaffold"
	"archplan/internal/types"
	"archplan/internal/util/jsonutil"
)

// Handler carries the wired dependencies for all /architect routes.
// Artifacts may be nil when object storage is not configured.
type Handler struct {
	planner   *planner.Planner
	runs      *runstore.Store
	artifacts *artifact.S3Store
	cache     *lru.Cache[string, types.ArchitecturePlan]
	metrics   *metrics
	log       zerolog.Logger
}

func NewHandler(p *planner.Planner, runs *runstore.Store, artifacts *artifact.S3Store, cacheSize int, log zerolog.Logger) *Handler {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, _ := lru.New[string, types.ArchitecturePlan](cacheSize)
	return &Handler{
		planner:   p,
		runs:      runs,
		artifacts: artifacts,
		cache:     cache,
		metrics:   newMetrics(),
		log:       log,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := jsonutil.MarshalNoEscape(v)
	if err != nil {
		h.log.Error().Err(err).Msg("encode response")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writePlanError maps a planning failure onto the HTTP surface: recovery
// failures are 502 (the upstream model produced garbage), transport failures
// are 503 (the upstream model is unreachable).
func (h *Handler) writePlanError(w http.ResponseWriter, err error) {
	var pe *planner.PlanError
	if errors.As(err, &pe) {
		h.metrics.planFailures.WithLabelValues(pe.Label()).Inc()
		h.writeJSON(w, http.StatusBadGateway, errorResponse{Error: pe.Error(), Kind: pe.Label()})
		return
	}
	h.metrics.planFailures.WithLabelValues("model_unavailable").Inc()
	h.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Kind: "model_unavailable"})
}

func (h *Handler) decodeIdea(w http.ResponseWriter, r *http.Request, body any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(body); err != nil {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (h *Handler) validateIdea(w http.ResponseWriter, idea types.ProjectIdea) bool {
	if missing := idea.Validate(); missing != "" {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: missing})
		return false
	}
	return true
}

func ideaKey(idea types.ProjectIdea) string {
	raw, err := jsonutil.MarshalNoEscape(idea)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// planResult is one planning round trip plus its bookkeeping.
type planResult struct {
	RunID      string                 `json:"run_id"`
	Model      string                 `json:"model"`
	DurationMS int64                  `json:"duration_ms"`
	Cached     bool                   `json:"cached"`
	Plan       types.ArchitecturePlan `json:"plan"`
}

// plan runs the pipeline for an idea, consulting the LRU cache first and
// recording the run either way.
func (h *Handler) plan(ctx context.Context, idea types.ProjectIdea) (planResult, error) {
	runID := uuid.NewString()
	key := ideaKey(idea)
	start := time.Now()

	if key != "" {
		if cached, ok := h.cache.Get(key); ok {
			res := planResult{RunID: runID, Model: h.planner.LLM.Name(), Cached: true, Plan: cached}
			h.recordRun(ctx, runID, idea, nil, time.Since(start))
			return res, nil
		}
	}

	plan, err := h.planner.Plan(ctx, idea)
	elapsed := time.Since(start)
	h.recordRun(ctx, runID, idea, err, elapsed)
	if err != nil {
		return planResult{}, err
	}

	if key != "" {
		h.cache.Add(key, plan)
	}
	h.storePlanArtifact(ctx, runID, plan)

	return planResult{
		RunID:      runID,
		Model:      h.planner.LLM.Name(),
		DurationMS: elapsed.Milliseconds(),
		Plan:       plan,
	}, nil
}

func (h *Handler) recordRun(ctx context.Context, runID string, idea types.ProjectIdea, planErr error, elapsed time.Duration) {
	run := runstore.Run{
		ID:         runID,
		IdeaName:   idea.Name,
		Model:      h.planner.LLM.Name(),
		Status:     runstore.StatusOK,
		DurationMS: elapsed.Milliseconds(),
	}
	if planErr != nil {
		run.Status = runstore.StatusFailed
		run.ErrorKind = "model_unavailable"
		var pe *planner.PlanError
		if errors.As(planErr, &pe) {
			run.ErrorKind = pe.Label()
		}
	}
	h.metrics.plansTotal.WithLabelValues(run.Status).Inc()
	if err := h.runs.Record(ctx, run); err != nil {
		h.log.Warn().Err(err).Str("run_id", runID).Msg("record run")
	}
}

func (h *Handler) storePlanArtifact(ctx context.Context, runID string, plan types.ArchitecturePlan) {
	if h.artifacts == nil {
		return
	}
	body, err := jsonutil.MarshalNoEscapeIndent(plan, "", "  ")
	if err != nil {
		return
	}
	if err := h.artifacts.Put(ctx, runID, "plan.json", body, "application/json"); err != nil {
		h.log.Warn().Err(err).Str("run_id", runID).Msg("store plan artifact")
	}
}

// HandlePreview serves POST /architect/preview. The preview path never calls
// the model; it is the cheap deterministic estimate.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	defer h.observe("preview")()
	var idea types.ProjectIdea
	if !h.decodeIdea(w, r, &idea) || !h.validateIdea(w, idea) {
		return
	}
	h.writeJSON(w, http.StatusOK, classifier.Preview(idea))
}

// HandleAgentPlan serves POST /architect/agent-plan.
func (h *Handler) HandleAgentPlan(w http.ResponseWriter, r *http.Request) {
	defer h.observe("agent_plan")()
	var idea types.ProjectIdea
	if !h.decodeIdea(w, r, &idea) || !h.validateIdea(w, idea) {
		return
	}
	res, err := h.plan(r.Context(), idea)
	if err != nil {
		h.writePlanError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

type diagramRequest struct {
	Idea        types.ProjectIdea `json:"idea"`
	DiagramType string            `json:"diagram_type"`
	Title       string            `json:"title"`
}

type diagramResponse struct {
	RunID       string                 `json:"run_id"`
	DiagramType string                 `json:"diagram_type"`
	Mermaid     string                 `json:"mermaid"`
	Plan        types.ArchitecturePlan `json:"plan"`
}

// HandleDiagramFromIdea serves POST /architect/diagram-from-idea.
func (h *Handler) HandleDiagramFromIdea(w http.ResponseWriter, r *http.Request) {
	defer h.observe("diagram_from_idea")()
	var req diagramRequest
	if !h.decodeIdea(w, r, &req) || !h.validateIdea(w, req.Idea) {
		return
	}
	if req.DiagramType == "" {
		req.DiagramType = diagram.TypeFlow
	}

	res, err := h.plan(r.Context(), req.Idea)
	if err != nil {
		h.writePlanError(w, err)
		return
	}
	mermaid := diagram.Build(res.Plan, req.DiagramType, req.Title)
	if h.artifacts != nil {
		if err := h.artifacts.Put(r.Context(), res.RunID, "diagram.mmd", []byte(mermaid), "text/plain"); err != nil {
			h.log.Warn().Err(err).Str("run_id", res.RunID).Msg("store diagram artifact")
		}
	}
	h.writeJSON(w, http.StatusOK, diagramResponse{
		RunID:       res.RunID,
		DiagramType: req.DiagramType,
		Mermaid:     mermaid,
		Plan:        res.Plan,
	})
}

// scaffoldRequest carries either an existing plan or an idea to plan first;
// a provided plan wins and skips the model round trip entirely.
type scaffoldRequest struct {
	Idea                 *types.ProjectIdea      `json:"idea"`
	Plan                 *types.ArchitecturePlan `json:"plan"`
	ProjectSlug          string                  `json:"project_slug"`
	IncludeDocker        *bool                   `json:"include_docker"`
	IncludeGithubActions bool                    `json:"include_github_actions"`
}

type scaffoldResponse struct {
	RunID string                 `json:"run_id"`
	Slug  string                 `json:"project_slug"`
	Tree  []string               `json:"tree"`
	Files map[string]string      `json:"files"`
	Plan  types.ArchitecturePlan `json:"plan"`
}

func (req scaffoldRequest) options() scaffold.Options {
	// Docker files are included unless the request opts out.
	includeDocker := true
	if req.IncludeDocker != nil {
		includeDocker = *req.IncludeDocker
	}
	return scaffold.Options{
		ProjectSlug:          req.ProjectSlug,
		IncludeDocker:        includeDocker,
		IncludeGithubActions: req.IncludeGithubActions,
	}
}

// resolveScaffoldPlan picks the plan for a scaffold request: a provided plan
// is used as-is, an idea goes through the pipeline, and a request carrying
// neither is rejected. The bool reports whether a response was already
// written.
func (h *Handler) resolveScaffoldPlan(w http.ResponseWriter, r *http.Request, req scaffoldRequest) (planResult, bool) {
	if req.Plan != nil {
		if len(req.Plan.Components) == 0 {
			h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "plan.components: required field is missing"})
			return planResult{}, false
		}
		return planResult{RunID: uuid.NewString(), Plan: *req.Plan}, true
	}
	if req.Idea == nil {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "provide either 'plan' or 'idea' in the request body"})
		return planResult{}, false
	}
	if !h.validateIdea(w, *req.Idea) {
		return planResult{}, false
	}
	res, err := h.plan(r.Context(), *req.Idea)
	if err != nil {
		h.writePlanError(w, err)
		return planResult{}, false
	}
	return res, true
}

// HandleScaffold serves POST /architect/scaffold.
func (h *Handler) HandleScaffold(w http.ResponseWriter, r *http.Request) {
	defer h.observe("scaffold")()
	var req scaffoldRequest
	if !h.decodeIdea(w, r, &req) {
		return
	}
	res, ok := h.resolveScaffoldPlan(w, r, req)
	if !ok {
		return
	}
	tree, files := scaffold.Generate(res.Plan, req.options())
	h.writeJSON(w, http.StatusOK, scaffoldResponse{
		RunID: res.RunID,
		Slug:  scaffold.NormalizeSlug(req.ProjectSlug),
		Tree:  tree,
		Files: files,
		Plan:  res.Plan,
	})
}

// HandleScaffoldZip serves POST /architect/scaffold/zip.
func (h *Handler) HandleScaffoldZip(w http.ResponseWriter, r *http.Request) {
	defer h.observe("scaffold_zip")()
	var req scaffoldRequest
	if !h.decodeIdea(w, r, &req) {
		return
	}
	res, ok := h.resolveScaffoldPlan(w, r, req)
	if !ok {
		return
	}
	_, files := scaffold.Generate(res.Plan, req.options())
	data, err := scaffold.BuildZip(files)
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "build zip: " + err.Error()})
		return
	}

	slug := scaffold.NormalizeSlug(req.ProjectSlug)
	if h.artifacts != nil {
		if err := h.artifacts.Put(r.Context(), res.RunID, slug+"_scaffold.zip", data, "application/zip"); err != nil {
			h.log.Warn().Err(err).Str("run_id", res.RunID).Msg("store zip artifact")
		}
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_scaffold.zip", slug))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type runsResponse struct {
	Runs []runstore.Run `json:"runs"`
}

type artifactListResponse struct {
	RunID string   `json:"run_id"`
	Paths []string `json:"paths"`
}

// HandleRunArtifacts serves GET /architect/runs/{id}/artifacts.
func (h *Handler) HandleRunArtifacts(w http.ResponseWriter, r *http.Request) {
	defer h.observe("run_artifacts")()
	if h.artifacts == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "artifact store is not configured"})
		return
	}
	runID := r.PathValue("id")
	paths, err := h.artifacts.List(r.Context(), runID)
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, artifactListResponse{RunID: runID, Paths: paths})
}

// HandleRunArtifactDownload serves GET /architect/runs/{id}/artifacts/{path...}.
// With ?presign=true it answers a one-hour presigned URL instead of the body.
func (h *Handler) HandleRunArtifactDownload(w http.ResponseWriter, r *http.Request) {
	defer h.observe("run_artifact_download")()
	if h.artifacts == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "artifact store is not configured"})
		return
	}
	runID := r.PathValue("id")
	path := r.PathValue("path")

	if r.URL.Query().Get("presign") == "true" {
		url, err := h.artifacts.GetURL(r.Context(), runID, path)
		if err != nil {
			h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]string{"url": url})
		return
	}

	data, err := h.artifacts.Get(r.Context(), runID, path)
	if errors.Is(err, artifact.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "artifact not found"})
		return
	}
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleRecentRuns serves GET /architect/runs.
func (h *Handler) HandleRecentRuns(w http.ResponseWriter, r *http.Request) {
	defer h.observe("runs")()
	runs, err := h.runs.Recent(r.Context(), 20)
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if runs == nil {
		runs = []runstore.Run{}
	}
	h.writeJSON(w, http.StatusOK, runsResponse{Runs: runs})
}

// HandleHealthz serves GET /healthz.
func (h *Handler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleRoot serves GET /.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"service": "archplan",
		"model":   h.planner.LLM.Name(),
	})
}

func (h *Handler) observe(route string) func() {
	start := time.Now()
	return func() {
		h.metrics.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
