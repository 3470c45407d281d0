// Package schemas holds the JSON Schema contracts for scorer output.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names.
const (
	GeoReport  = "geo_report.schema.json"
	QuickScore = "quick_score.schema.json"
)

// Read returns the raw bytes of a schema file.
func Read(name string) ([]byte, error) {
	return FS.ReadFile(name)
}
