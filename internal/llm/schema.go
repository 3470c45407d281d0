package llm

import (
	"fmt"
	"strings"
)

// OutputSchema describes the JSON object a prompt asks the model to return.
type OutputSchema struct {
	Name        string
	Description string
	Fields      []SchemaField
}

// SchemaField is one top-level key of an OutputSchema.
type SchemaField struct {
	Name        string
	Type        string // JSON-ish type hint shown to the model
	Description string
	Required    bool
}

// Required returns the names of the required fields.
func (s OutputSchema) Required() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// BuildJSONPrompt assembles system text, task text, the output contract and
// the quoted input into one prompt.
func BuildJSONPrompt(schema OutputSchema, task, input string) string {
	var sb strings.Builder

	if schema.Description != "" {
		sb.WriteString(schema.Description)
		sb.WriteString("\n\n")
	}
	if task != "" {
		sb.WriteString(task)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = `"string"`
		}
		fmt.Fprintf(&sb, "  %q: %s", field.Name, typeHint)
		if field.Required {
			sb.WriteString(" (required)")
		}
		if field.Description != "" {
			fmt.Fprintf(&sb, " // %s", field.Description)
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")
	sb.WriteString("Return ONLY the JSON object, no markdown, no explanation.\n\n")

	sb.WriteString("Page content:\n\"\"\"\n")
	sb.WriteString(input)
	sb.WriteString("\n\"\"\"\n")
	return sb.String()
}

// SuggestionsSchema is the contract for per-pillar edit suggestions.
func SuggestionsSchema(system string) OutputSchema {
	return OutputSchema{
		Name:        "GeoSuggestions",
		Description: system,
		Fields: []SchemaField{
			{
				Name:        "suggestions",
				Type:        `[{"pillar": "string", "action": "string", "example": "string", "impact": "high|medium|low"}]`,
				Description: "One entry per proposed edit; pillar is the weak area key",
				Required:    true,
			},
			{
				Name:        "summary",
				Type:        `"string"`,
				Description: "One sentence on the overall direction of the edits",
			},
		},
	}
}
