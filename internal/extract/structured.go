package extract

import (
	"encoding/json"
	"strings"
)

// StructuredTypes lists the schema type names declared by each detector.
type StructuredTypes struct {
	JSONLD    []string `json:"json_ld"`
	Microdata []string `json:"microdata"`
	RDFa      []string `json:"rdfa"`
}

// All returns the distinct type names across detectors in detection order.
func (t StructuredTypes) All() []string {
	seen := make(map[string]bool)
	all := make([]string, 0)
	for _, group := range [][]string{t.JSONLD, t.Microdata, t.RDFa} {
		for _, name := range group {
			if !seen[name] {
				seen[name] = true
				all = append(all, name)
			}
		}
	}
	return all
}

// Any reports whether any detector found structured data.
func (t StructuredTypes) Any() bool {
	return len(t.JSONLD)+len(t.Microdata)+len(t.RDFa) > 0
}

// SchemaTypes returns the declared schema types. JSON-LD types come from top-level
// objects and @graph members; malformed blocks contribute nothing.
func (d *Document) SchemaTypes() StructuredTypes {
	types := StructuredTypes{
		JSONLD:    make([]string, 0),
		Microdata: dedupe(d.ItemTypes),
		RDFa:      dedupe(d.RDFaTypes),
	}
	for _, obj := range d.StructuredData {
		types.JSONLD = append(types.JSONLD, typeNames(obj["@type"])...)
	}
	types.JSONLD = dedupe(types.JSONLD)
	return types
}

// HasSchemaType reports whether any detector declared one of names (case-insensitive).
func (d *Document) HasSchemaType(names ...string) bool {
	for _, t := range d.SchemaTypes().All() {
		for _, n := range names {
			if strings.EqualFold(t, n) {
				return true
			}
		}
	}
	return false
}

// JSONLDField collects the values of key across all decoded JSON-LD objects.
func (d *Document) JSONLDField(key string) []any {
	values := make([]any, 0)
	for _, obj := range d.StructuredData {
		if v, ok := obj[key]; ok && v != nil {
			values = append(values, v)
		}
	}
	return values
}

// decodeJSONLD parses each block, flattening top-level arrays and @graph members.
func decodeJSONLD(blocks []string) ([]map[string]any, int) {
	objects := make([]map[string]any, 0)
	malformed := 0
	for _, block := range blocks {
		var v any
		if err := json.Unmarshal([]byte(block), &v); err != nil {
			malformed++
			continue
		}
		objects = appendObjects(objects, v)
	}
	return objects, malformed
}

func appendObjects(dst []map[string]any, v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		dst = append(dst, t)
		if graph, ok := t["@graph"]; ok {
			dst = appendObjects(dst, graph)
		}
	case []any:
		for _, item := range t {
			dst = appendObjects(dst, item)
		}
	}
	return dst
}

func typeNames(v any) []string {
	switch t := v.(type) {
	case string:
		if name := lastSegment(t); name != "" {
			return []string{name}
		}
	case []any:
		names := make([]string, 0, len(t))
		for _, item := range t {
			names = append(names, typeNames(item)...)
		}
		return names
	}
	return nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// StringValues flattens a JSON-LD value into its string leaves. Objects contribute
// their "name" or "@id".
func StringValues(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, StringValues(item)...)
		}
		return out
	case map[string]any:
		if name, ok := t["name"].(string); ok {
			return []string{name}
		}
		if id, ok := t["@id"].(string); ok {
			return []string{id}
		}
	}
	return nil
}
