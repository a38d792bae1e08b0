package classifier

import (
	"fmt"
	"strings"

	"archplan/internal/types"
)

var baseRisks = []string{
	"Requirements drift",
	"Operational overhead",
	"Security misconfiguration",
}

// Preview predicts a pattern for the idea and expands it into a concrete
// service/flow/storage/risk breakdown.
func Preview(idea types.ProjectIdea) types.ArchitecturePreview {
	f := FeaturesFromIdea(idea)
	pattern, confidence := Predict(f)

	pv := previewForPattern(pattern)
	pv.Pattern = pattern
	pv.Confidence = confidence
	pv.Risks = append(pv.Risks, fmt.Sprintf("Context: domain=%s, scale=%s, budget=%s",
		strings.TrimSpace(f.Domain), strings.TrimSpace(f.Scale), strings.TrimSpace(f.Budget)))
	return pv
}

func previewForPattern(pattern string) types.ArchitecturePreview {
	switch pattern {
	case PatternMonolith:
		return types.ArchitecturePreview{
			Services: []types.ServiceComponent{
				{Name: "app", Responsibility: "Single deployable API + business logic + ML calls", Technologies: []string{"Go", "net/http", "SQLite"}},
			},
			DataFlows: []types.DataFlow{
				{Source: "client", Destination: "app", Description: "Submit project idea + constraints"},
				{Source: "app", Destination: "storage", Description: "Persist runs, artifacts, feedback"},
			},
			Storage: []string{"SQLite"},
			Risks:   append(risks(), "Scaling limits under high concurrency"),
		}
	case PatternMicroservices:
		return types.ArchitecturePreview{
			Services: []types.ServiceComponent{
				{Name: "api", Responsibility: "Request routing, validation, orchestration", Technologies: []string{"Go", "net/http"}},
				{Name: "ml-service", Responsibility: "Pattern inference + recommendations", Technologies: []string{"Go"}},
				{Name: "artifact-store", Responsibility: "Store models, outputs, generated scaffolds", Technologies: []string{"MinIO (dev)", "Blob Storage (prod)"}},
			},
			DataFlows: []types.DataFlow{
				{Source: "client", Destination: "api", Description: "Submit project idea + constraints"},
				{Source: "api", Destination: "ml-service", Description: "Predict architecture pattern"},
				{Source: "api", Destination: "artifact-store", Description: "Save generated plans + diagrams"},
			},
			Storage: []string{"PostgreSQL", "Object Storage"},
			Risks:   append(risks(), "Service-to-service latency", "Deployment complexity"),
		}
	case PatternEventDriven:
		return types.ArchitecturePreview{
			Services: []types.ServiceComponent{
				{Name: "api", Responsibility: "Accept requests and publish events", Technologies: []string{"Go", "net/http"}},
				{Name: "worker", Responsibility: "Async generation: diagrams, scaffolds, evaluations", Technologies: []string{"Go"}},
				{Name: "queue", Responsibility: "Buffer work and decouple components", Technologies: []string{"Redis (dev)", "Managed queue (prod)"}},
			},
			DataFlows: []types.DataFlow{
				{Source: "client", Destination: "api", Description: "Submit project idea"},
				{Source: "api", Destination: "queue", Description: "Publish plan_requested event"},
				{Source: "queue", Destination: "worker", Description: "Worker consumes and generates outputs"},
			},
			Storage: []string{"PostgreSQL", "Object Storage"},
			Risks:   append(risks(), "Event ordering/retries", "Observability needed"),
		}
	case PatternServerless:
		return types.ArchitecturePreview{
			Services: []types.ServiceComponent{
				{Name: "api-functions", Responsibility: "Stateless endpoints for plan/diagram/scaffold generation", Technologies: []string{"Cloud Functions", "Go"}},
				{Name: "storage", Responsibility: "Persist artifacts and outputs", Technologies: []string{"Blob Storage"}},
			},
			DataFlows: []types.DataFlow{
				{Source: "client", Destination: "api-functions", Description: "Submit project idea"},
				{Source: "api-functions", Destination: "storage", Description: "Store outputs and artifacts"},
			},
			Storage: []string{"Object Storage"},
			Risks:   append(risks(), "Cold starts", "Vendor lock-in", "Debugging complexity"),
		}
	}
	return types.ArchitecturePreview{
		Services: []types.ServiceComponent{
			{Name: "api", Responsibility: "Plan + generate outputs", Technologies: []string{"Go", "net/http"}},
		},
		DataFlows: []types.DataFlow{
			{Source: "client", Destination: "api", Description: "Submit project idea"},
		},
		Storage: []string{"SQLite"},
		Risks:   append(risks(), "Unrecognized pattern fallback"),
	}
}

func risks() []string {
	out := make([]string, len(baseRisks))
	copy(out, baseRisks)
	return out
}
