package server

import (
	"fmt"
	"html"
	"net/http"

	"github.com/desertthunder/schemax/internal/formatter"
	"github.com/desertthunder/schemax/internal/markup"
	"github.com/desertthunder/schemax/internal/tasks"
)

// ReportHandler serves one completed analysis.
//
// Routes:
//   - / : HTML page with stats, rendered dictionary, diagram source and schema
//   - /schema.json : indented schema
//   - /er_diagram.mmd : mermaid source
//   - /data_dictionary.md : dictionary markup
type ReportHandler struct {
	title string
	view  *tasks.ResultView
}

var _ Handler = (*ReportHandler)(nil)

// NewReportHandler creates a handler for the given result view.
func NewReportHandler(title string, view *tasks.ResultView) *ReportHandler {
	return &ReportHandler{title: title, view: view}
}

func (h *ReportHandler) Routes() []string {
	return []string{"/", "/" + formatter.SchemaFile, "/" + formatter.DiagramFile, "/" + formatter.DictionaryMarkdownFile}
}

func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, markup.Document(h.title, h.page()))
	case "/" + formatter.SchemaFile:
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, h.view.SchemaJSON)
	case "/" + formatter.DiagramFile:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, h.view.ERMermaid)
	case "/" + formatter.DictionaryMarkdownFile:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		fmt.Fprint(w, h.view.DictMarkdown)
	default:
		http.NotFound(w, r)
	}
}

func (h *ReportHandler) page() string {
	s := h.view.Stats
	return fmt.Sprintf(`<p class="stats">Tables: %d | Relations: %d | Enum tables: %d</p>
<section id="dictionary">%s</section>
<h2>ER Diagram</h2>
<pre id="er">%s</pre>
<h2>Schema</h2>
<pre id="schema">%s</pre>`,
		s.Tables, s.Relations, s.EnumTables,
		h.view.DictHTML,
		html.EscapeString(h.view.ERMermaid),
		html.EscapeString(h.view.SchemaJSON),
	)
}
