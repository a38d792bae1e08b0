package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"archplan/internal/planner"
	"archplan/internal/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Browser clients connect from the app origin; CORS is handled at the
	// HTTP layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// stageEvent is one progress message on the planning websocket.
type stageEvent struct {
	RunID string `json:"run_id"`
	Stage string `json:"stage"`
	State string `json:"state"`
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

type planEvent struct {
	RunID      string                 `json:"run_id"`
	Stage      string                 `json:"stage"`
	State      string                 `json:"state"`
	Model      string                 `json:"model"`
	DurationMS int64                  `json:"duration_ms"`
	Plan       types.ArchitecturePlan `json:"plan"`
}

// HandlePlanStream serves GET /architect/plan/ws. The client sends one idea
// as JSON; the server streams stage events and closes after the final plan
// or error event.
func (h *Handler) HandlePlanStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var idea types.ProjectIdea
	if err := conn.ReadJSON(&idea); err != nil {
		_ = conn.WriteJSON(stageEvent{Stage: "request", State: "error", Error: "invalid idea payload"})
		return
	}
	if missing := idea.Validate(); missing != "" {
		_ = conn.WriteJSON(stageEvent{Stage: "request", State: "error", Error: missing})
		return
	}

	runID := uuid.NewString()
	start := time.Now()
	emit := func(stage, state string) {
		_ = conn.WriteJSON(stageEvent{RunID: runID, Stage: stage, State: state})
	}
	fail := func(stage string, err error) {
		ev := stageEvent{RunID: runID, Stage: stage, State: "error", Error: err.Error()}
		var pe *planner.PlanError
		if errors.As(err, &pe) {
			ev.Kind = pe.Label()
		}
		_ = conn.WriteJSON(ev)
		h.recordRun(r.Context(), runID, idea, err, time.Since(start))
	}

	emit("model_call", "start")
	raw, err := h.planner.LLM.Chat(r.Context(), planner.SystemPrompt(), planner.UserPrompt(idea))
	if err != nil {
		fail("model_call", err)
		return
	}
	emit("model_call", "done")

	emit("extract", "start")
	jsonText, err := planner.ExtractJSON(raw)
	if err != nil {
		fail("extract", err)
		return
	}
	emit("extract", "done")

	emit("repair", "start")
	repaired := planner.RemoveTrailingCommas(jsonText)
	emit("repair", "done")

	emit("validate", "start")
	plan, err := planner.DecodePlan(repaired)
	if err != nil {
		fail("validate", err)
		return
	}
	emit("validate", "done")

	elapsed := time.Since(start)
	h.recordRun(r.Context(), runID, idea, nil, elapsed)
	h.storePlanArtifact(r.Context(), runID, plan)
	_ = conn.WriteJSON(planEvent{
		RunID:      runID,
		Stage:      "plan",
		State:      "done",
		Model:      h.planner.LLM.Name(),
		DurationMS: elapsed.Milliseconds(),
		Plan:       plan,
	})
}
