package types

// ServiceComponent is one service in a classifier-derived preview.
type ServiceComponent struct {
	Name           string   `json:"name"`
	Responsibility string   `json:"responsibility"`
	Technologies   []string `json:"technologies"`
}

// DataFlow is a directed edge between two preview services.
type DataFlow struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Description string `json:"description"`
}

// ArchitecturePreview is the ML-side answer: a predicted pattern expanded
// into a concrete service breakdown. Produced without any model call.
type ArchitecturePreview struct {
	Pattern    string             `json:"pattern"`
	Confidence float64            `json:"confidence"`
	Services   []ServiceComponent `json:"services"`
	DataFlows  []DataFlow         `json:"data_flows"`
	Storage    []string           `json:"storage"`
	Risks      []string           `json:"risks"`
}
