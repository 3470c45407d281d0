package schemas

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/scoring"
	"github.com/jonathan/geo-scorer/internal/types"
)

const page = `<html lang="en"><head><title>Acme</title></head><body>
<h1>Acme Widgets</h1><p>Acme Widgets is a company that builds widgets for factories.</p>
<h3>Pricing</h3><p>Plans start at $10 per month, according to the 2024 price list.</p>
</body></html>`

func engine(t *testing.T) *scoring.Engine {
	t.Helper()
	e, err := scoring.NewBuilder().
		WithDefaults(pillars.Network{}).
		WithClock(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }).
		Build()
	require.NoError(t, err)
	return e
}

func TestValidateReport_EngineOutput(t *testing.T) {
	e := engine(t)
	for _, tier := range types.AllTiers {
		report, err := e.Score(context.Background(), page, nil, tier)
		require.NoError(t, err)
		data, err := json.Marshal(report)
		require.NoError(t, err)
		assert.NoError(t, ValidateReport(data), "tier %s", tier)
	}
}

func TestValidateQuickScore_EngineOutput(t *testing.T) {
	quick, err := engine(t).QuickScore(context.Background(), page, nil, types.TierPro)
	require.NoError(t, err)
	data, err := json.Marshal(quick)
	require.NoError(t, err)
	assert.NoError(t, ValidateQuickScore(data))
}

func TestValidateReport_Invalid(t *testing.T) {
	err := ValidateReport([]byte(`{"score": -1, "grade": "Z"}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Errors)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateReport_Malformed(t *testing.T) {
	err := ValidateReport([]byte(`{ not json`))
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("missing.schema.json", []byte(`{}`))
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "missing.schema.json", loadErr.Schema)
}

func TestValidateQuickScore_WrongShape(t *testing.T) {
	err := ValidateQuickScore([]byte(`{"score": "high"}`))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "quick_score.schema.json", validationErr.Schema)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Schema: "geo_report.schema.json", Errors: []FieldError{{Field: "grade", Message: "must be one of"}}}
	assert.Equal(t, "validation failed against geo_report.schema.json:\n  1. grade: must be one of\n", err.Error())
}
