package types

import "strings"

// ProjectIdea is the free-form project description submitted by a user.
// Name, Description, Domain and Scale are required at the HTTP boundary;
// the remaining fields fall back to the classifier defaults.
type ProjectIdea struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Domain        string   `json:"domain"`
	Scale         string   `json:"scale"`
	ExpectedUsers *int     `json:"expected_users,omitempty"`
	Compliance    []string `json:"compliance,omitempty"`
	Budget        string   `json:"budget,omitempty"`
}

// Validate reports the first missing required field, or "" when the idea is usable.
func (p ProjectIdea) Validate() string {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return "name is required"
	case strings.TrimSpace(p.Description) == "":
		return "description is required"
	case strings.TrimSpace(p.Domain) == "":
		return "domain is required"
	case strings.TrimSpace(p.Scale) == "":
		return "scale is required"
	}
	return ""
}
