// Package diagram renders mermaid text from an architecture plan.
package diagram

import (
	"fmt"
	"strings"
	"unicode"

	"archplan/internal/types"
)

// Diagram types understood by Build.
const (
	TypeFlow      = "flow"
	TypeComponent = "component"
)

// Build renders the plan as mermaid source. Unknown diagram types fall back
// to the flow layout, matching how the HTTP layer defaults the field.
func Build(plan types.ArchitecturePlan, diagramType, title string) string {
	if diagramType == TypeComponent {
		return componentDiagram(plan, title)
	}
	return flowDiagram(plan, title)
}

// sanitizeID reduces a component name to a safe mermaid node id
// (letters, digits, underscore). Letters from any script are kept.
func sanitizeID(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			b.WriteRune(ch)
		} else {
			b.WriteByte('_')
		}
	}
	cleaned := strings.Trim(b.String(), "_")
	if cleaned == "" {
		return "node"
	}
	return cleaned
}

// escapeLabel escapes double quotes for quoted mermaid labels.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// uniqueIDs assigns node ids in order, suffixing duplicates (_2, _3, ...).
func uniqueIDs(names []string) []string {
	seen := map[string]int{}
	ids := make([]string, 0, len(names))
	for _, n := range names {
		base := sanitizeID(n)
		seen[base]++
		if seen[base] == 1 {
			ids = append(ids, base)
		} else {
			ids = append(ids, fmt.Sprintf("%s_%d", base, seen[base]))
		}
	}
	return ids
}

func componentDiagram(plan types.ArchitecturePlan, title string) string {
	lines := []string{"flowchart TB"}
	if title != "" {
		lines = append(lines, "%% "+escapeLabel(title))
	}

	comps := plan.Components
	if len(comps) == 0 {
		return "flowchart TB\nA[No components]\n"
	}

	names := make([]string, len(comps))
	for i, c := range comps {
		names[i] = c.Name
	}
	ids := uniqueIDs(names)

	for i, c := range comps {
		parts := []string{c.Name}
		if c.Role != "" {
			parts = append(parts, c.Role)
		}
		if len(c.Technologies) > 0 {
			parts = append(parts, "["+strings.Join(c.Technologies, ", ")+"]")
		}
		label := escapeLabel(strings.Join(parts, `\n`))
		lines = append(lines, fmt.Sprintf(`%s["%s"]`, ids[i], label))
	}

	for i := 0; i < len(ids)-1; i++ {
		lines = append(lines, fmt.Sprintf("%s --> %s", ids[i], ids[i+1]))
	}

	return strings.Join(lines, "\n") + "\n"
}

// flowDiagram picks a likely entry node (gateway/api/ui) and fans out to the
// remaining components.
func flowDiagram(plan types.ArchitecturePlan, title string) string {
	lines := []string{"flowchart LR"}
	if title != "" {
		lines = append(lines, "%% "+escapeLabel(title))
	}

	comps := plan.Components
	if len(comps) == 0 {
		return "flowchart LR\nA[No components]\n"
	}

	entry := 0
	best := -1
	for i, c := range comps {
		if s := entryScore(c.Name); s > best {
			best = s
			entry = i
		}
	}

	names := make([]string, len(comps))
	for i, c := range comps {
		names[i] = c.Name
	}
	ids := uniqueIDs(names)

	for i, c := range comps {
		lines = append(lines, fmt.Sprintf(`%s["%s"]`, ids[i], escapeLabel(c.Name)))
	}
	for i := range comps {
		if i == entry {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s --> %s", ids[entry], ids[i]))
	}

	return strings.Join(lines, "\n") + "\n"
}

func entryScore(name string) int {
	n := strings.ToLower(name)
	score := 0
	if strings.Contains(n, "gateway") || strings.Contains(n, "api") {
		score += 3
	}
	if strings.Contains(n, "ui") || strings.Contains(n, "frontend") || strings.Contains(n, "client") {
		score += 2
	}
	return score
}
