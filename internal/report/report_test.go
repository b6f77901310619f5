package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cruffinoni/errgen/internal/diagnostics"
)

func TestWriteJSONAndCSV(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "audit", "report.json")
	csvPath := filepath.Join(dir, "audit", "report.csv")

	files := []FileItem{
		{
			File:      "pkg/errors.go",
			Status:    StatusGenerated,
			Types:     []string{"ReadError"},
			Companion: "pkg/errors_errgen.go",
			Checked:   true,
			Written:   true,
		},
		{
			File:        "pkg/broken.go",
			Status:      StatusGenerationError,
			Diagnostics: []DiagnosticItem{{Code: "ERRGEN_CONFLICTING_SOURCE", Message: "boom"}},
		},
	}
	summary := Summary{
		Discovered:       2,
		Generated:        1,
		GenerationFailed: 1,
		Written:          1,
	}

	rep := NewJSONReport(summary, files)
	require.NoError(t, WriteJSON(jsonPath, rep))
	require.NoError(t, WriteCSV(csvPath, files))

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded JSONReport
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, 2, decoded.Summary.Discovered)
	require.Equal(t, StatusGenerated, decoded.Files[0].Status)

	_, err = os.Stat(csvPath)
	require.NoError(t, err)
}

func TestToDiagnosticItem(t *testing.T) {
	diag := diagnostics.New("ERRGEN_TAG_SYNTAX", "pkg/errors.go", 4, 2, "bad tag", "`errgen:\"nope\"`")
	item := ToDiagnosticItem("pkg/errors.go", diag)
	require.Equal(t, "ERRGEN_TAG_SYNTAX", item.Code)
	require.Equal(t, 4, item.Line)
	require.Equal(t, "bad tag", item.Message)

	plain := ToDiagnosticItem("pkg/errors.go", errors.New("io exploded"))
	require.Equal(t, "ERROR", plain.Code)
	require.Equal(t, "pkg/errors.go", plain.File)
}
