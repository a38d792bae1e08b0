// Package classifier predicts an architecture pattern for a project idea
// without calling a model service. The prediction is a deterministic vote
// over the decision rules the training data was labeled with, which keeps
// the preview path fast, offline and reproducible.
package classifier

// Known pattern labels, in preference order for tie-breaking.
const (
	PatternMonolith      = "monolith"
	PatternMicroservices = "microservices"
	PatternEventDriven   = "event-driven"
	PatternServerless    = "serverless"
)

var patternOrder = []string{PatternMonolith, PatternMicroservices, PatternEventDriven, PatternServerless}

// voter is one weighted decision rule. An empty vote means the rule abstains.
type voter struct {
	weight float64
	vote   func(Features) string
}

var voters = []voter{
	// Enterprise traffic pushes toward decoupled architectures.
	{3, func(f Features) string {
		if f.Scale != "enterprise" || f.Users < 100_000 {
			return ""
		}
		if f.Budget == "medium" || f.Budget == "high" {
			return PatternEventDriven
		}
		return PatternMicroservices
	}},
	// Cheap prototypes stay monolithic.
	{3, func(f Features) string {
		if f.Budget == "low" && f.Scale == "prototype" {
			return PatternMonolith
		}
		return ""
	}},
	// Regulated domains with real compliance load split into services.
	{2, func(f Features) string {
		if (f.Domain == "FinTech" || f.Domain == "Cybersecurity") && f.ComplianceCount >= 2 {
			return PatternMicroservices
		}
		return ""
	}},
	// Funded startups tend to build services from the start.
	{2, func(f Features) string {
		if f.Scale == "startup" && f.Budget == "high" {
			return PatternMicroservices
		}
		return ""
	}},
	// Low traffic without other signals: a single deployable is enough.
	{1, func(f Features) string {
		if f.Users <= 1000 {
			return PatternMonolith
		}
		return ""
	}},
	// Spiky mid-size traffic on a small budget fits serverless.
	{1, func(f Features) string {
		if f.Users > 1000 && f.Budget == "low" && f.Scale != "enterprise" {
			return PatternServerless
		}
		return ""
	}},
	// Heavy traffic favors event-driven decoupling regardless of scale label.
	{1, func(f Features) string {
		if f.Users >= 500_000 {
			return PatternEventDriven
		}
		return ""
	}},
}

// Predict returns the winning pattern and a confidence in (0, 1]: the
// winner's share of the weight that actually voted. When every rule
// abstains, the prediction falls back to monolith with low confidence.
func Predict(f Features) (string, float64) {
	tally := map[string]float64{}
	var total float64
	for _, v := range voters {
		p := v.vote(f)
		if p == "" {
			continue
		}
		tally[p] += v.weight
		total += v.weight
	}
	if total == 0 {
		return PatternMonolith, 0.25
	}

	best := ""
	for _, p := range patternOrder {
		if tally[p] == 0 {
			continue
		}
		if best == "" || tally[p] > tally[best] {
			best = p
		}
	}
	return best, tally[best] / total
}
