package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArtifactCSV(t *testing.T) {
	result := &ExportResult{
		Filename: "reorder_report.csv",
		Data:     json.RawMessage(`[["A","1"],["B","2"]]`),
	}

	artifact, err := BuildArtifact(ExportCSV, result)
	require.NoError(t, err)
	assert.Equal(t, "A,1\nB,2", string(artifact.Content))
	assert.Equal(t, "text/csv", artifact.MIMEType)
	assert.Equal(t, "reorder_report.csv", artifact.Filename)
}

func TestBuildArtifactCSVMixedCells(t *testing.T) {
	result := &ExportResult{
		Filename: "r.csv",
		Data: json.RawMessage(`[["Product ID","Days Remaining","Estimated Cost"],
			["WIDGET_001",4.5,2550.0],["X",null,true]]`),
	}

	artifact, err := BuildArtifact(ExportCSV, result)
	require.NoError(t, err)
	assert.Equal(t,
		"Product ID,Days Remaining,Estimated Cost\nWIDGET_001,4.5,2550.0\nX,,true",
		string(artifact.Content))
}

func TestBuildArtifactCSVRejectsNonRows(t *testing.T) {
	result := &ExportResult{Filename: "r.csv", Data: json.RawMessage(`{"rows":1}`)}

	_, err := BuildArtifact(ExportCSV, result)
	assert.Error(t, err)
}

func TestBuildArtifactJSON(t *testing.T) {
	result := &ExportResult{
		Filename: "reorder_report.json",
		Data:     json.RawMessage(`[["A","1"],["B","2"]]`),
	}

	artifact, err := BuildArtifact(ExportJSON, result)
	require.NoError(t, err)
	expected := "[\n  [\n    \"A\",\n    \"1\"\n  ],\n  [\n    \"B\",\n    \"2\"\n  ]\n]"
	assert.Equal(t, expected, string(artifact.Content))
	assert.Equal(t, "application/json", artifact.MIMEType)
}

func TestBuildArtifactJSONKeepsKeyOrder(t *testing.T) {
	result := &ExportResult{
		Filename: "r.json",
		Data:     json.RawMessage(`{"total_items":1,"export_date":"2024-01-01"}`),
	}

	artifact, err := BuildArtifact(ExportJSON, result)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"total_items\": 1,\n  \"export_date\": \"2024-01-01\"\n}", string(artifact.Content))
}

func TestBuildArtifactRequiresFilename(t *testing.T) {
	_, err := BuildArtifact(ExportCSV, &ExportResult{Data: json.RawMessage(`[]`)})
	assert.Error(t, err)
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, ExportCSV, f)

	_, err = ParseExportFormat("xml")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
