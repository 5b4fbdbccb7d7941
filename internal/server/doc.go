// Package server provides HTTP routing, middleware, and the report preview handler.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [BasicRouter] uses [http.ServeMux] internally with method filtering.
// Middleware added first wraps outermost.
//
// # Middleware
//
//   - [Logging] : logs each request with charmbracelet/log
//   - [Recover] : converts handler panics to 500 responses
//
// # Report Preview
//
// [ReportHandler] serves a completed analysis from history: an HTML page built with the markup
// renderer plus the raw dictionary, mermaid and schema files. `schemax report serve` runs it with
// [Serve] and opens the browser.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
