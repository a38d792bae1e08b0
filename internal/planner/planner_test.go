package planner

import (
	"context"
	"errors"
	"testing"

	"archplan/internal/llm"
	"archplan/internal/types"
)

func testIdea() types.ProjectIdea {
	users := 5000
	return types.ProjectIdea{
		Name:          "AI Resume Screener",
		Description:   "Ranks resumes using ML.",
		Domain:        "HR Tech",
		Scale:         "startup",
		ExpectedUsers: &users,
		Compliance:    []string{"GDPR"},
		Budget:        "medium",
	}
}

func TestPlan_RecoversFromChattyResponse(t *testing.T) {
	client := llm.NewFakeClient("Sure! Here is your architecture:\n```json\n" +
		`{"components": [{"name": "api", "role": "routing", "technologies": ["Go"]},],` +
		`"deployment": "Docker",}` + "\n```\nHope that helps!")
	p := New(client)

	plan, err := p.Plan(context.Background(), testIdea())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(plan.Components) != 1 || plan.Components[0].Name != "api" {
		t.Fatalf("unexpected plan: %#v", plan)
	}
}

func TestPlan_TransportErrorKeepsIdentity(t *testing.T) {
	sentinel := errors.New("connection refused")
	client := llm.NewFakeClient("")
	client.Err = sentinel
	p := New(client)

	_, err := p.Plan(context.Background(), testIdea())
	if !errors.Is(err, sentinel) {
		t.Fatalf("transport error identity lost: %v", err)
	}
	var pe *PlanError
	if errors.As(err, &pe) {
		t.Fatalf("transport failures must not look like recovery failures: %v", err)
	}
}

func TestPlan_KindSurvivesPropagation(t *testing.T) {
	client := llm.NewFakeClient("no json here, sorry")
	p := New(client)

	_, err := p.Plan(context.Background(), testIdea())
	if !errors.Is(err, ErrEmptyOrNonJSON) {
		t.Fatalf("expected ErrEmptyOrNonJSON, got %v", err)
	}
}

func TestRecover_StagesInOrder(t *testing.T) {
	raw := `preamble {"components": [{"name": "a", "role": "b", "technologies": [],}], "deployment": {"k": "v"},} trailer`
	plan, err := Recover(raw)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := plan.Deployment.Structured(); !ok {
		t.Fatal("expected structured deployment to survive recovery")
	}
}

func TestPlanError_Labels(t *testing.T) {
	cases := map[error]string{
		ErrEmptyOrNonJSON: "empty_or_non_json_response",
		ErrUnbalancedJSON: "unbalanced_json_response",
		ErrInvalidJSON:    "invalid_json",
		ErrSchemaMismatch: "schema_mismatch",
	}
	for kind, want := range cases {
		pe := &PlanError{Kind: kind}
		if got := pe.Label(); got != want {
			t.Fatalf("label for %v: got %q, want %q", kind, got, want)
		}
	}
}
