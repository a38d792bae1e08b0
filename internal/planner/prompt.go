package planner

import (
	"fmt"
	"strings"

	"archplan/internal/types"
)

const systemPrompt = `You are an expert software architect.
Return ONLY valid JSON. No markdown. No backticks. No extra text.

You must produce an architecture plan JSON with fields:
{
  "components": [{"name": "...", "role": "...", "technologies": ["..."]}],
  "deployment": "...",
  "scaling": "...",
  "security": ["..."]
}

Rules:
- components must be 3-6 items
- technologies must be concrete (e.g., FastAPI, Streamlit, PostgreSQL, Docker, Azure App Service)
- security must include 3-6 actionable items
`

// SystemPrompt returns the fixed system instruction, for callers that drive
// the model call themselves (the websocket stream does).
func SystemPrompt() string { return systemPrompt }

// UserPrompt renders the per-idea user message.
func UserPrompt(idea types.ProjectIdea) string { return buildUserPrompt(idea) }

func buildUserPrompt(idea types.ProjectIdea) string {
	users := "null"
	if idea.ExpectedUsers != nil {
		users = fmt.Sprintf("%d", *idea.ExpectedUsers)
	}
	compliance := "[]"
	if len(idea.Compliance) > 0 {
		compliance = "[" + strings.Join(idea.Compliance, ", ") + "]"
	}
	budget := idea.Budget
	if budget == "" {
		budget = "null"
	}

	var b strings.Builder
	b.WriteString("Design an architecture plan for this project.\n\n")
	b.WriteString("Project:\n")
	fmt.Fprintf(&b, "- name: %s\n", strings.TrimSpace(idea.Name))
	fmt.Fprintf(&b, "- description: %s\n", strings.TrimSpace(idea.Description))
	fmt.Fprintf(&b, "- domain: %s\n", strings.TrimSpace(idea.Domain))
	fmt.Fprintf(&b, "- scale: %s\n", strings.TrimSpace(idea.Scale))
	fmt.Fprintf(&b, "- expected_users: %s\n", users)
	fmt.Fprintf(&b, "- compliance: %s\n", compliance)
	fmt.Fprintf(&b, "- budget: %s\n", budget)
	b.WriteString("\nReturn ONLY JSON matching the schema exactly.\n")
	return b.String()
}
