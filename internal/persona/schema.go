package persona

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

func ptr[T any](v T) *T { return &v }

// traitMatrix is a mapping of trait label to a score in [0,1].
func traitMatrix() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		AdditionalProperties: &jsonschema.Schema{
			Type:    "number",
			Minimum: ptr(0.0),
			Maximum: ptr(1.0),
		},
	}
}

func stringList(minItems int) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:  "array",
		Items: &jsonschema.Schema{Type: "string", MinLength: ptr(1)},
	}
	if minItems > 0 {
		s.MinItems = ptr(minItems)
	}
	return s
}

// profileSchema describes the persona profile document.
func profileSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"name", "core_traits", "emotional_tendencies", "language_patterns"},
		Properties: map[string]*jsonschema.Schema{
			"name":                 {Type: "string", MinLength: ptr(1)},
			"tagline":              {Type: "string"},
			"age":                  {Type: "integer", Minimum: ptr(0.0)},
			"birthday":             {Type: "string"},
			"constellation":        {Type: "string"},
			"mbti":                 {Type: "string"},
			"hometown":             {Type: "string"},
			"occupation":           {Type: "string"},
			"backstory":            {Type: "string"},
			"core_traits":          traitMatrix(),
			"emotional_tendencies": traitMatrix(),
			"language_patterns": {
				Type:     "object",
				Required: []string{"special_addressing"},
				Properties: map[string]*jsonschema.Schema{
					"口頭禪": stringList(0),
					"special_addressing": {
						Type:     "object",
						Required: []string{"to_user", "self_reference"},
						Properties: map[string]*jsonschema.Schema{
							"to_user":        stringList(1),
							"self_reference": stringList(1),
						},
					},
				},
			},
		},
	}
}

var resolvedProfileSchema *jsonschema.Resolved

func init() {
	rs, err := profileSchema().Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("persona: invalid profile schema: %v", err))
	}
	resolvedProfileSchema = rs
}

// validateDocument checks a decoded JSON document against the profile schema.
func validateDocument(doc any) error {
	if err := resolvedProfileSchema.Validate(doc); err != nil {
		return fmt.Errorf("profile does not match schema: %w", err)
	}
	return nil
}
