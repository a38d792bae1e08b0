package classifier

import (
	"strings"

	"archplan/internal/types"
)

// Features are the encoded classifier inputs. They must stay aligned with the
// columns the pattern model was derived from: domain, scale, budget, users,
// compliance_count.
type Features struct {
	Domain          string
	Scale           string
	Budget          string
	Users           int
	ComplianceCount int
}

// FeaturesFromIdea normalizes an idea into model features, applying the same
// defaults for absent values that training used.
func FeaturesFromIdea(idea types.ProjectIdea) Features {
	f := Features{
		Domain: strings.TrimSpace(idea.Domain),
		Scale:  strings.TrimSpace(idea.Scale),
		Budget: strings.TrimSpace(idea.Budget),
		Users:  100,
	}
	if f.Domain == "" {
		f.Domain = "other"
	}
	if f.Scale == "" {
		f.Scale = "prototype"
	}
	if f.Budget == "" {
		f.Budget = "low"
	}
	if idea.ExpectedUsers != nil {
		f.Users = *idea.ExpectedUsers
	}
	if f.Users < 1 {
		f.Users = 1
	}
	f.ComplianceCount = len(idea.Compliance)
	return f
}
