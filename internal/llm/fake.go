package llm

import "context"

// FakeClient returns a canned response for offline use and tests.
type FakeClient struct {
	Response string
	Err      error
}

func NewFakeClient(response string) *FakeClient {
	if response == "" {
		response = `{
  "components": [
    {"name": "api", "role": "Request routing and validation", "technologies": ["Go", "net/http"]},
    {"name": "planner", "role": "Architecture plan generation", "technologies": ["LLM"]},
    {"name": "storage", "role": "Persist runs and artifacts", "technologies": ["PostgreSQL"]}
  ],
  "deployment": "Docker on a single VM",
  "scaling": "Vertical first, split services later",
  "security": ["Input validation", "TLS everywhere", "Secrets via env"]
}`
	}
	return &FakeClient{Response: response}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Chat(ctx context.Context, system, user string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}
