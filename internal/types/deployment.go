package types

import (
	"encoding/json"
	"errors"
)

// Deployment is the deployment description of an architecture plan. Models
// emit it either as free text ("Docker on a single VM") or as a key/value
// topology object; both shapes are accepted and preserved as-is so consumers
// can branch on the shape instead of duck-typing.
type Deployment struct {
	text       string
	structured map[string]any
	isText     bool
}

// TextDeployment wraps a free-text deployment description.
func TextDeployment(s string) Deployment {
	return Deployment{text: s, isText: true}
}

// StructuredDeployment wraps a key/value deployment topology.
func StructuredDeployment(m map[string]any) Deployment {
	if m == nil {
		m = map[string]any{}
	}
	return Deployment{structured: m}
}

// IsStructured reports whether the deployment was given as an object.
func (d Deployment) IsStructured() bool { return !d.isText }

// Text returns the free-text description and whether that is the shape held.
func (d Deployment) Text() (string, bool) { return d.text, d.isText }

// Structured returns the topology mapping and whether that is the shape held.
func (d Deployment) Structured() (map[string]any, bool) {
	if d.isText {
		return nil, false
	}
	return d.structured, true
}

// String renders either shape for display contexts (README, diagrams).
func (d Deployment) String() string {
	if d.isText {
		return d.text
	}
	b, err := json.Marshal(d.structured)
	if err != nil {
		return ""
	}
	return string(b)
}

func (d Deployment) MarshalJSON() ([]byte, error) {
	if d.isText {
		return json.Marshal(d.text)
	}
	return json.Marshal(d.structured)
}

func (d *Deployment) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = TextDeployment(s)
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err == nil {
		*d = StructuredDeployment(m)
		return nil
	}
	return errors.New("deployment: expected a string or an object")
}
