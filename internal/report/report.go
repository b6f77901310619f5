// Package report persists machine-readable summaries of one generation
// run for CI auditing.
package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cruffinoni/errgen/internal/diagnostics"
)

// FileStatus is the per-source processing status used in reports.
type FileStatus string

const (
	StatusGenerated       FileStatus = "generated"
	StatusNoDirectives    FileStatus = "no_directives"
	StatusGenerationError FileStatus = "failed_generation"
	StatusCheckError      FileStatus = "failed_check"
)

// DiagnosticItem is the report-friendly representation of one diagnostic.
type DiagnosticItem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// FileItem describes generation and validation for one source file.
type FileItem struct {
	File        string           `json:"file"`
	Status      FileStatus       `json:"status"`
	Diagnostics []DiagnosticItem `json:"diagnostics,omitempty"`
	Types       []string         `json:"types,omitempty"`
	Companion   string           `json:"companion,omitempty"`
	Checked     bool             `json:"checked"`
	Written     bool             `json:"written"`
}

// Summary contains aggregate counters for one generation run.
type Summary struct {
	Discovered       int `json:"discovered"`
	Generated        int `json:"generated"`
	NoDirectives     int `json:"no_directives"`
	GenerationFailed int `json:"generation_failed"`
	CheckFailed      int `json:"check_failed"`
	Written          int `json:"written"`
}

// JSONReport is the structured report persisted by --report-json.
type JSONReport struct {
	GeneratedAt string     `json:"generated_at"`
	Summary     Summary    `json:"summary"`
	Files       []FileItem `json:"files"`
}

// NewJSONReport builds a report payload with RFC3339 generation timestamp.
func NewJSONReport(summary Summary, files []FileItem) JSONReport {
	return JSONReport{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Summary:     summary,
		Files:       files,
	}
}

// ToDiagnosticItem converts an error to a typed report diagnostic.
func ToDiagnosticItem(file string, err error) DiagnosticItem {
	if d, ok := err.(diagnostics.Diagnostic); ok {
		return DiagnosticItem{
			Code:    d.Code,
			Message: d.Message,
			File:    d.File,
			Line:    d.Line,
			Column:  d.Column,
			Snippet: d.Snippet,
		}
	}
	return DiagnosticItem{
		Code:    "ERROR",
		Message: err.Error(),
		File:    file,
	}
}

// WriteJSON writes the full JSON report if path is non-empty.
func WriteJSON(path string, report JSONReport) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	return os.WriteFile(path, raw, 0o644)
}

func intToString(v int) string {
	return strconv.Itoa(v)
}

func boolToString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// WriteCSV writes the flattened CSV report if path is non-empty.
func WriteCSV(path string, files []FileItem) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	w := csv.NewWriter(fh)
	defer w.Flush()

	header := []string{
		"file",
		"status",
		"types",
		"diagnostics_count",
		"companion",
		"checked",
		"written",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	copied := append([]FileItem(nil), files...)
	sort.Slice(copied, func(i, j int) bool { return copied[i].File < copied[j].File })

	for _, item := range copied {
		row := []string{
			item.File,
			string(item.Status),
			strings.Join(item.Types, " "),
			intToString(len(item.Diagnostics)),
			item.Companion,
			boolToString(item.Checked),
			boolToString(item.Written),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
