package diagram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archplan/internal/types"
)

func plan(components ...types.ComponentSpec) types.ArchitecturePlan {
	return types.ArchitecturePlan{
		Components: components,
		Deployment: types.TextDeployment("single host"),
		Security:   []string{},
	}
}

func TestBuild_FlowPicksEntryNode(t *testing.T) {
	p := plan(
		types.ComponentSpec{Name: "ML Service", Technologies: []string{"Go"}},
		types.ComponentSpec{Name: "API Gateway", Technologies: []string{"Go"}},
		types.ComponentSpec{Name: "Postgres", Technologies: []string{"SQL"}},
	)
	out := Build(p, TypeFlow, "")
	require.True(t, strings.HasPrefix(out, "flowchart LR\n"))
	assert.Contains(t, out, "API_Gateway --> ML_Service")
	assert.Contains(t, out, "API_Gateway --> Postgres")
	assert.NotContains(t, out, "ML_Service --> ")
}

func TestBuild_ComponentSequentialEdges(t *testing.T) {
	p := plan(
		types.ComponentSpec{Name: "a", Role: "first", Technologies: []string{"Go", "Redis"}},
		types.ComponentSpec{Name: "b", Role: "second"},
	)
	out := Build(p, TypeComponent, "My System")
	require.True(t, strings.HasPrefix(out, "flowchart TB\n"))
	assert.Contains(t, out, "%% My System")
	assert.Contains(t, out, `a["a\nfirst\n[Go, Redis]"]`)
	assert.Contains(t, out, "a --> b")
}

func TestBuild_SanitizesAndDisambiguates(t *testing.T) {
	p := plan(
		types.ComponentSpec{Name: "web app!"},
		types.ComponentSpec{Name: "web-app"},
		types.ComponentSpec{Name: "???"},
	)
	out := Build(p, TypeComponent, "")
	assert.Contains(t, out, "web_app[")
	assert.Contains(t, out, "web_app_2[")
	assert.Contains(t, out, "node[")
}

func TestBuild_KeepsUnicodeLetters(t *testing.T) {
	p := plan(
		types.ComponentSpec{Name: "база данных"},
		types.ComponentSpec{Name: "Café API"},
	)
	out := Build(p, TypeComponent, "")
	assert.Contains(t, out, "база_данных[")
	assert.Contains(t, out, "Café_API[")
}

func TestBuild_EscapesQuotesInLabels(t *testing.T) {
	p := plan(types.ComponentSpec{Name: `the "edge" layer`})
	out := Build(p, TypeFlow, `Title with "quotes"`)
	assert.Contains(t, out, `\"edge\"`)
	assert.Contains(t, out, `%% Title with \"quotes\"`)
}

func TestBuild_EmptyPlan(t *testing.T) {
	out := Build(types.ArchitecturePlan{}, TypeFlow, "")
	assert.Equal(t, "flowchart LR\nA[No components]\n", out)
	out = Build(types.ArchitecturePlan{}, TypeComponent, "")
	assert.Equal(t, "flowchart TB\nA[No components]\n", out)
}

func TestBuild_UnknownTypeFallsBackToFlow(t *testing.T) {
	p := plan(types.ComponentSpec{Name: "api"})
	out := Build(p, "sequence", "")
	assert.True(t, strings.HasPrefix(out, "flowchart LR\n"))
}
