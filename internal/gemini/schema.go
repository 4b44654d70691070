package gemini

import (
	"slices"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"
)

// toGenaiSchema converts the composed response contract into the Gemini
// API's schema dialect. Only the subset the contract uses is mapped:
// objects, strings, nullability, descriptions, and required fields.
func toGenaiSchema(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Description: s.Description,
		Required:    slices.Clone(s.Required),
	}

	typ, nullable := schemaType(s)
	out.Type = typ
	if nullable {
		out.Nullable = genai.Ptr(true)
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}

	return out
}

// schemaType resolves a JSON Schema type declaration ("type" keyword as
// either a single string or a list that may include "null") to the genai
// type enum plus a nullability flag.
func schemaType(s *jsonschema.Schema) (genai.Type, bool) {
	typ := s.Type
	nullable := false

	if typ == "" {
		for _, t := range s.Types {
			if t == "null" {
				nullable = true
				continue
			}
			typ = t
		}
	}

	switch typ {
	case "object":
		return genai.TypeObject, nullable
	case "string":
		return genai.TypeString, nullable
	case "number":
		return genai.TypeNumber, nullable
	case "integer":
		return genai.TypeInteger, nullable
	case "boolean":
		return genai.TypeBoolean, nullable
	case "array":
		return genai.TypeArray, nullable
	default:
		return genai.TypeUnspecified, nullable
	}
}
