package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"archplan/internal/llm"
	"archplan/internal/planner"
	"archplan/internal/runstore"
	"archplan/internal/types"
)

func newTestHandler(client llm.Client) *Handler {
	return NewHandler(planner.New(client), runstore.New(8), nil, 8, zerolog.Nop())
}

func ideaBody(t *testing.T) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(types.ProjectIdea{
		Name:        "shop",
		Description: "an online shop",
		Domain:      "ecommerce",
		Scale:       "mvp",
	})
	if err != nil {
		t.Fatalf("marshal idea: %v", err)
	}
	return bytes.NewReader(body)
}

func postJSON(t *testing.T, mux http.Handler, path string, body *bytes.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestPreview(t *testing.T) {
	mux := NewMux(newTestHandler(llm.NewFakeClient("")))
	rec := postJSON(t, mux, "/architect/preview", ideaBody(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var preview types.ArchitecturePreview
	if err := json.Unmarshal(rec.Body.Bytes(), &preview); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if preview.Pattern == "" || len(preview.Services) == 0 {
		t.Fatalf("empty preview: %+v", preview)
	}
}

func TestPreviewRejectsIncompleteIdea(t *testing.T) {
	mux := NewMux(newTestHandler(llm.NewFakeClient("")))
	body, _ := json.Marshal(types.ProjectIdea{Name: "shop"})
	rec := postJSON(t, mux, "/architect/preview", bytes.NewReader(body))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "description") {
		t.Fatalf("error does not name the field: %s", rec.Body.String())
	}
}

func TestAgentPlan(t *testing.T) {
	mux := NewMux(newTestHandler(llm.NewFakeClient("")))
	rec := postJSON(t, mux, "/architect/agent-plan", ideaBody(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res planResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.RunID == "" || res.Cached {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Plan.Components) != 3 {
		t.Fatalf("want 3 components, got %d", len(res.Plan.Components))
	}
}

func TestAgentPlanCachesByIdea(t *testing.T) {
	mux := NewMux(newTestHandler(llm.NewFakeClient("")))
	first := postJSON(t, mux, "/architect/agent-plan", ideaBody(t))
	if first.Code != http.StatusOK {
		t.Fatalf("first call: %d", first.Code)
	}
	second := postJSON(t, mux, "/architect/agent-plan", ideaBody(t))
	var res planResult
	if err := json.Unmarshal(second.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Cached {
		t.Fatalf("second identical idea not served from cache")
	}
}

func TestAgentPlanBadModelOutputIs502(t *testing.T) {
	mux := NewMux(newTestHandler(llm.NewFakeClient("I cannot answer that.")))
	rec := postJSON(t, mux, "/architect/agent-plan", ideaBody(t))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status %d, want 502: %s", rec.Code, rec.Body.String())
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Kind != "empty_or_non_json_response" {
		t.Fatalf("wrong kind: %q", resp.Kind)
	}
}

func TestAgentPlanTransportFailureIs503(t *testing.T) {
	client := llm.NewFakeClient("")
	client.Err = errors.New("connection refused")
	mux := NewMux(newTestHandler(client))
	rec := postJSON(t, mux, "/architect/agent-plan", ideaBody(t))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503: %s", rec.Code, rec.Body.String())
	}
}

func TestAgentPlanRecordsRun(t *testing.T) {
	h := newTestHandler(llm.NewFakeClient(""))
	mux := NewMux(h)
	postJSON(t, mux, "/architect/agent-plan", ideaBody(t))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/architect/runs", nil))
	var resp runsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Runs) != 1 {
		t.Fatalf("want 1 run, got %d", len(resp.Runs))
	}
	if resp.Runs[0].Status != runstore.StatusOK || resp.Runs[0].IdeaName != "shop" {
		t.Fatalf("unexpected run: %+v", resp.Runs[0])
	}
}

func TestDiagramFromIdea(t *testing.T) {
	mux := NewMux(newTestHandler(llm.NewFakeClient("")))
	body, _ := json.Marshal(map[string]any{
		"idea": types.ProjectIdea{
			Name: "shop", Description: "d", Domain: "ecommerce", Scale: "mvp",
		},
		"diagram_type": "component",
		"title":        "Shop",
	})
	rec := postJSON(t, mux, "/architect/diagram-from-idea", bytes.NewReader(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res diagramResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(res.Mermaid, "flowchart TB") {
		t.Fatalf("not a component diagram:\n%s", res.Mermaid)
	}
	// Arrows must survive JSON encoding unescaped.
	if !bytes.Contains(rec.Body.Bytes(), []byte("-->")) {
		t.Fatalf("mermaid arrows escaped in response body")
	}
}

func TestScaffoldZipHeaders(t *testing.T) {
	mux := NewMux(newTestHandler(llm.NewFakeClient("")))
	body, _ := json.Marshal(map[string]any{
		"idea": types.ProjectIdea{
			Name: "shop", Description: "d", Domain: "ecommerce", Scale: "mvp",
		},
		"project_slug": "my shop!",
	})
	rec := postJSON(t, mux, "/architect/scaffold/zip", bytes.NewReader(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "my_shop_scaffold.zip") {
		t.Fatalf("content disposition %q", cd)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("empty zip body")
	}
}

func TestScaffoldWithProvidedPlanSkipsModel(t *testing.T) {
	// A broken client proves the model is never called when a plan is given.
	client := llm.NewFakeClient("")
	client.Err = errors.New("connection refused")
	mux := NewMux(newTestHandler(client))

	body, _ := json.Marshal(map[string]any{
		"plan": map[string]any{
			"components": []map[string]any{
				{"name": "api", "role": "routing", "technologies": []string{"Go"}},
			},
			"deployment": "single host",
			"security":   []string{},
		},
		"project_slug": "given_plan",
	})
	rec := postJSON(t, mux, "/architect/scaffold", bytes.NewReader(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res scaffoldResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Slug != "given_plan" || res.RunID == "" {
		t.Fatalf("unexpected response: %+v", res)
	}
	if len(res.Plan.Components) != 1 || res.Plan.Components[0].Name != "api" {
		t.Fatalf("provided plan not used: %+v", res.Plan)
	}
}

func TestScaffoldRejectsMissingPlanAndIdea(t *testing.T) {
	mux := NewMux(newTestHandler(llm.NewFakeClient("")))
	rec := postJSON(t, mux, "/architect/scaffold", bytes.NewReader([]byte(`{"project_slug": "x"}`)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "'plan'") || !strings.Contains(rec.Body.String(), "'idea'") {
		t.Fatalf("error should name both accepted fields: %s", rec.Body.String())
	}
}

func TestScaffoldRejectsEmptyProvidedPlan(t *testing.T) {
	mux := NewMux(newTestHandler(llm.NewFakeClient("")))
	rec := postJSON(t, mux, "/architect/scaffold", bytes.NewReader([]byte(`{"plan": {"deployment": "x"}}`)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422: %s", rec.Code, rec.Body.String())
	}
}

func TestScaffoldDockerDefaultsOn(t *testing.T) {
	mux := NewMux(newTestHandler(llm.NewFakeClient("")))

	body, _ := json.Marshal(map[string]any{
		"idea": types.ProjectIdea{
			Name: "shop", Description: "d", Domain: "ecommerce", Scale: "mvp",
		},
		"project_slug": "dockered",
	})
	rec := postJSON(t, mux, "/architect/scaffold", bytes.NewReader(body))
	var res scaffoldResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := res.Files["dockered/Dockerfile"]; !ok {
		t.Fatalf("Dockerfile missing when include_docker omitted")
	}

	body, _ = json.Marshal(map[string]any{
		"idea": types.ProjectIdea{
			Name: "shop", Description: "d", Domain: "ecommerce", Scale: "mvp",
		},
		"project_slug":   "bare",
		"include_docker": false,
	})
	rec = postJSON(t, mux, "/architect/scaffold", bytes.NewReader(body))
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := res.Files["bare/Dockerfile"]; ok {
		t.Fatalf("Dockerfile present despite include_docker=false")
	}
}

func TestRunArtifactsWithoutStore(t *testing.T) {
	mux := NewMux(newTestHandler(llm.NewFakeClient("")))
	for _, path := range []string{
		"/architect/runs/r1/artifacts",
		"/architect/runs/r1/artifacts/plan.json",
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: status %d, want 503", path, rec.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	mux := NewMux(newTestHandler(llm.NewFakeClient("")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestPlanStream(t *testing.T) {
	srv := httptest.NewServer(NewMux(newTestHandler(llm.NewFakeClient(""))))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/architect/plan/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	err = conn.WriteJSON(types.ProjectIdea{
		Name: "shop", Description: "d", Domain: "ecommerce", Scale: "mvp",
	})
	if err != nil {
		t.Fatalf("write idea: %v", err)
	}

	stages := []string{}
	for {
		var raw map[string]any
		if err := conn.ReadJSON(&raw); err != nil {
			t.Fatalf("read event (got stages %v): %v", stages, err)
		}
		stage, _ := raw["stage"].(string)
		state, _ := raw["state"].(string)
		if state == "error" {
			t.Fatalf("stream failed at %s: %v", stage, raw["error"])
		}
		stages = append(stages, stage+":"+state)
		if stage == "plan" {
			if _, ok := raw["plan"].(map[string]any); !ok {
				t.Fatalf("final event missing plan: %v", raw)
			}
			break
		}
	}

	want := "model_call:start model_call:done extract:start extract:done repair:start repair:done validate:start validate:done plan:done"
	if got := strings.Join(stages, " "); got != want {
		t.Fatalf("stage order\n got: %s\nwant: %s", got, want)
	}
}
