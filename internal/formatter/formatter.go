// package formatter provides functions to export analysis results to report files (Markdown, HTML, Mermaid, JSON, plain text)
package formatter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/schemax/internal/markup"
	"github.com/desertthunder/schemax/internal/tasks"
)

// Report file names written by [WriteReport].
const (
	DictionaryMarkdownFile = "data_dictionary.md"
	DictionaryHTMLFile     = "data_dictionary.html"
	DiagramFile            = "er_diagram.mmd"
	SchemaFile             = "schema.json"
	SummaryFile            = "summary.txt"
)

// Summary returns the stats line tables/relations/enum_tables, e.g. 5/3/1
func Summary(view *tasks.ResultView) string {
	if view == nil {
		return "0/0/0"
	}
	return view.Stats.String()
}

// ExportToText converts a result view to a plain text summary
func ExportToText(taskID string, view *tasks.ResultView) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Task: %s\n", taskID))
	buf.WriteString(fmt.Sprintf("Tables: %d\n", view.Stats.Tables))
	buf.WriteString(fmt.Sprintf("Relations: %d\n", view.Stats.Relations))
	buf.WriteString(fmt.Sprintf("Enum tables: %d\n", view.Stats.EnumTables))

	return buf.Bytes()
}

// ExportToMarkdown converts a result view to a Markdown report with the ER diagram in a mermaid block
func ExportToMarkdown(view *tasks.ResultView) []byte {
	var buf bytes.Buffer

	buf.WriteString(view.DictMarkdown)
	if len(view.DictMarkdown) > 0 && view.DictMarkdown[len(view.DictMarkdown)-1] != '\n' {
		buf.WriteString("\n")
	}

	if view.ERMermaid != "" {
		buf.WriteString("\n## ER Diagram\n\n```mermaid\n")
		buf.WriteString(view.ERMermaid)
		buf.WriteString("\n```\n")
	}

	return buf.Bytes()
}

// ExportToHTML wraps the rendered dictionary in a standalone page headed by the stats line
func ExportToHTML(title string, view *tasks.ResultView) []byte {
	body := fmt.Sprintf(
		"<p class=\"stats\">Tables: %d | Relations: %d | Enum tables: %d</p>\n%s",
		view.Stats.Tables, view.Stats.Relations, view.Stats.EnumTables, view.DictHTML,
	)
	return []byte(markup.Document(title, body))
}

// ReportResult contains information about files created by WriteReport
type ReportResult struct {
	Directory string
	Files     []string
}

// WriteReport writes a completed analysis to a dedicated directory.
//
// Directory name defaults to the task ID.
// Creates data_dictionary.md, data_dictionary.html, er_diagram.mmd, schema.json and summary.txt under it.
func WriteReport(taskID string, view *tasks.ResultView, outputDir string) (*ReportResult, error) {
	if view == nil {
		return nil, fmt.Errorf("no result to write for task %s", taskID)
	}
	if outputDir == "" {
		outputDir = taskID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &ReportResult{Directory: outputDir, Files: []string{}}

	files := []struct {
		name string
		data []byte
	}{
		{DictionaryMarkdownFile, ExportToMarkdown(view)},
		{DictionaryHTMLFile, ExportToHTML("Data Dictionary", view)},
		{DiagramFile, []byte(view.ERMermaid)},
		{SchemaFile, []byte(view.SchemaJSON)},
		{SummaryFile, ExportToText(taskID, view)},
	}

	for _, f := range files {
		path := filepath.Join(outputDir, f.name)
		if err := os.WriteFile(path, f.data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		result.Files = append(result.Files, path)
	}

	return result, nil
}
