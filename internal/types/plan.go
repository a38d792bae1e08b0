package types

// ComponentSpec is one building block of an agent-produced plan.
type ComponentSpec struct {
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Technologies []string `json:"technologies"`
}

// ArchitecturePlan is the validated output contract of the planning agent.
// Scaling and Security default to empty when the model omits them; unknown
// keys in the model output are dropped during validation, never kept here.
type ArchitecturePlan struct {
	Components []ComponentSpec `json:"components"`
	Deployment Deployment      `json:"deployment"`
	Scaling    string          `json:"scaling"`
	Security   []string        `json:"security"`
}
