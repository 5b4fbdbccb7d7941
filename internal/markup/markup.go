// package markup converts the data dictionary dialect produced by the analysis server into HTML.
//
// The dialect is a small subset of Markdown: headings (#, ##, ###), **bold**, `code`,
// pipe tables and plain lines. Substitutions run in a fixed order because each one operates on
// the output of the previous one.
package markup

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	h3Pattern   = regexp.MustCompile(`(?m)^### (.*)$`)
	h2Pattern   = regexp.MustCompile(`(?m)^## (.*)$`)
	h1Pattern   = regexp.MustCompile(`(?m)^# (.*)$`)
	boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)
	codePattern = regexp.MustCompile("`([^`]+)`")
	cellPattern = regexp.MustCompile(`<td>(.*?)</td>`)
)

const (
	cellBoundary = "</td><td>"
	lineBreak    = "<br>"
	dividerRun   = "---"
)

// Render transforms dictionary markup into display HTML.
//
// Headings and inline spans are resolved before line breaks are substituted, and pipes are split
// into cells before divider cells (any cell containing a run of dashes) are elided.
// Nested emphasis, escaped delimiters and malformed tables are passed through as-is.
func Render(text string) string {
	out := text

	out = h3Pattern.ReplaceAllString(out, "<h3>$1</h3>")
	out = h2Pattern.ReplaceAllString(out, "<h2>$1</h2>")
	out = h1Pattern.ReplaceAllString(out, "<h1>$1</h1>")

	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	out = codePattern.ReplaceAllString(out, "<code>$1</code>")

	out = strings.ReplaceAll(out, "|", cellBoundary)
	out = cellPattern.ReplaceAllStringFunc(out, elideDivider)

	out = strings.ReplaceAll(out, "\n", lineBreak)
	return out
}

func elideDivider(cell string) string {
	m := cellPattern.FindStringSubmatch(cell)
	if len(m) == 2 && strings.Contains(m[1], dividerRun) {
		return ""
	}
	return cell
}

// Document wraps rendered markup into a standalone HTML page.
func Document(title, body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(title)))
	b.WriteString("<style>\n")
	b.WriteString("body { font-family: -apple-system, BlinkMacSystemFont, \"Segoe UI\", Roboto, sans-serif; margin: 2rem; }\n")
	b.WriteString("td { padding: 0.25rem 0.75rem; border-bottom: 1px solid #eee; }\n")
	b.WriteString("code { background: #f5f5f5; padding: 0 0.25rem; }\n")
	b.WriteString("pre { background: #f5f5f5; padding: 1rem; overflow-x: auto; }\n")
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}
