// Package planner recovers a typed architecture plan from raw LLM output.
//
// The pipeline is extract -> repair -> parse -> validate, all pure text
// transforms with no I/O and no shared state; the only blocking call is the
// injected model client's. A malformed response is a hard failure carrying
// one of four distinguishable kinds (see errors.go); the planner never
// retries the model itself.
package planner

import (
	"context"
	"fmt"

	"archplan/internal/llm"
	"archplan/internal/types"
)

// Planner sequences one planning request end to end.
type Planner struct {
	LLM llm.Client
}

// New returns a planner backed by the given model client.
func New(client llm.Client) *Planner {
	return &Planner{LLM: client}
}

// Plan performs one model round trip and recovers the structured plan.
// Transport errors from the client are wrapped but keep their identity, so
// callers can tell "model unreachable" apart from "model produced garbage".
func (p *Planner) Plan(ctx context.Context, idea types.ProjectIdea) (types.ArchitecturePlan, error) {
	raw, err := p.LLM.Chat(ctx, systemPrompt, buildUserPrompt(idea))
	if err != nil {
		return types.ArchitecturePlan{}, fmt.Errorf("model call failed: %w", err)
	}
	return Recover(raw)
}

// Recover threads already-fetched model output through the recovery stages.
// Split out so callers that stream stage progress can drive the stages with
// their own model call.
func Recover(raw string) (types.ArchitecturePlan, error) {
	jsonText, err := ExtractJSON(raw)
	if err != nil {
		return types.ArchitecturePlan{}, err
	}
	return DecodePlan(RemoveTrailingCommas(jsonText))
}
