package gemini

import (
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"

	"github.com/polyglotlabs/polyglot/internal/chat"
)

func TestToGenaiSchema_Nil(t *testing.T) {
	if toGenaiSchema(nil) != nil {
		t.Error("nil contract should convert to nil schema")
	}
}

func TestToGenaiSchema_ResponseContract(t *testing.T) {
	schema := toGenaiSchema(chat.ResponseContract())

	if schema.Type != genai.TypeObject {
		t.Errorf("type = %v, want TypeObject", schema.Type)
	}
	if len(schema.Required) != 3 {
		t.Errorf("required = %v, want 3 fields", schema.Required)
	}

	reply, ok := schema.Properties["reply"]
	if !ok {
		t.Fatal("reply property missing")
	}
	if reply.Type != genai.TypeString {
		t.Errorf("reply type = %v, want TypeString", reply.Type)
	}
	if reply.Description == "" {
		t.Error("field descriptions must survive conversion")
	}

	insight, ok := schema.Properties["cultural_insight"]
	if !ok {
		t.Fatal("cultural_insight property missing")
	}
	if insight.Type != genai.TypeString {
		t.Errorf("cultural_insight type = %v, want TypeString", insight.Type)
	}
	if insight.Nullable == nil || !*insight.Nullable {
		t.Error("cultural_insight must convert as nullable")
	}
}

func TestSchemaType_Scalars(t *testing.T) {
	tests := []struct {
		name         string
		schema       *jsonschema.Schema
		wantType     genai.Type
		wantNullable bool
	}{
		{"plain string", &jsonschema.Schema{Type: "string"}, genai.TypeString, false},
		{"nullable string", &jsonschema.Schema{Types: []string{"string", "null"}}, genai.TypeString, true},
		{"integer", &jsonschema.Schema{Type: "integer"}, genai.TypeInteger, false},
		{"number", &jsonschema.Schema{Type: "number"}, genai.TypeNumber, false},
		{"boolean", &jsonschema.Schema{Type: "boolean"}, genai.TypeBoolean, false},
		{"array", &jsonschema.Schema{Type: "array"}, genai.TypeArray, false},
		{"untyped", &jsonschema.Schema{}, genai.TypeUnspecified, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, nullable := schemaType(tt.schema)
			if typ != tt.wantType {
				t.Errorf("type = %v, want %v", typ, tt.wantType)
			}
			if nullable != tt.wantNullable {
				t.Errorf("nullable = %v, want %v", nullable, tt.wantNullable)
			}
		})
	}
}
