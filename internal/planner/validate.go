package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"archplan/internal/types"
)

// DecodePlan parses repaired JSON text and validates it into a typed plan.
// The input is decoded into a generic tree first; only recognized fields are
// lifted into the result and everything else is dropped. Models love to add
// commentary keys, and those must never fail validation.
func DecodePlan(jsonText string) (types.ArchitecturePlan, error) {
	dec := json.NewDecoder(strings.NewReader(jsonText))
	dec.UseNumber()

	var tree map[string]any
	if err := dec.Decode(&tree); err != nil {
		return types.ArchitecturePlan{}, &PlanError{
			Kind:    ErrInvalidJSON,
			Detail:  err.Error(),
			Excerpt: excerpt(jsonText),
		}
	}

	plan, err := planFromTree(tree)
	if err != nil {
		return types.ArchitecturePlan{}, &PlanError{
			Kind:    ErrSchemaMismatch,
			Detail:  err.Error(),
			Excerpt: excerpt(jsonText),
		}
	}
	return plan, nil
}

func planFromTree(tree map[string]any) (types.ArchitecturePlan, error) {
	var plan types.ArchitecturePlan

	rawComponents, ok := tree["components"]
	if !ok {
		return plan, errors.New("components: required field is missing")
	}
	items, ok := rawComponents.([]any)
	if !ok {
		return plan, fmt.Errorf("components: expected a sequence, got %s", jsonTypeName(rawComponents))
	}
	plan.Components = make([]types.ComponentSpec, 0, len(items))
	for i, item := range items {
		comp, err := componentFromTree(i, item)
		if err != nil {
			// One malformed component fails the whole plan.
			return plan, err
		}
		plan.Components = append(plan.Components, comp)
	}

	rawDeployment, ok := tree["deployment"]
	if !ok {
		return plan, errors.New("deployment: required field is missing")
	}
	switch v := rawDeployment.(type) {
	case string:
		plan.Deployment = types.TextDeployment(v)
	case map[string]any:
		plan.Deployment = types.StructuredDeployment(v)
	default:
		return plan, fmt.Errorf("deployment: expected a string or an object, got %s", jsonTypeName(rawDeployment))
	}

	if raw, ok := tree["scaling"]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return plan, fmt.Errorf("scaling: expected a string, got %s", jsonTypeName(raw))
		}
		plan.Scaling = s
	}

	plan.Security = []string{}
	if raw, ok := tree["security"]; ok && raw != nil {
		items, ok := raw.([]any)
		if !ok {
			return plan, fmt.Errorf("security: expected a sequence, got %s", jsonTypeName(raw))
		}
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return plan, fmt.Errorf("security[%d]: expected a string, got %s", i, jsonTypeName(item))
			}
			plan.Security = append(plan.Security, s)
		}
	}

	return plan, nil
}

func componentFromTree(index int, raw any) (types.ComponentSpec, error) {
	var comp types.ComponentSpec

	fields, ok := raw.(map[string]any)
	if !ok {
		return comp, fmt.Errorf("components[%d]: expected an object, got %s", index, jsonTypeName(raw))
	}

	name, err := requiredString(fields, "name", index)
	if err != nil {
		return comp, err
	}
	role, err := requiredString(fields, "role", index)
	if err != nil {
		return comp, err
	}

	rawTech, ok := fields["technologies"]
	if !ok {
		return comp, fmt.Errorf("components[%d].technologies: required field is missing", index)
	}
	items, ok := rawTech.([]any)
	if !ok {
		return comp, fmt.Errorf("components[%d].technologies: expected a sequence, got %s", index, jsonTypeName(rawTech))
	}
	tech := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return comp, fmt.Errorf("components[%d].technologies[%d]: expected a string, got %s", index, i, jsonTypeName(item))
		}
		tech = append(tech, s)
	}

	comp.Name = name
	comp.Role = role
	comp.Technologies = tech
	return comp, nil
}

func requiredString(fields map[string]any, key string, index int) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("components[%d].%s: required field is missing", index, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("components[%d].%s: expected a string, got %s", index, key, jsonTypeName(raw))
	}
	return s, nil
}

// jsonTypeName names a decoded JSON value's type in error messages.
func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
