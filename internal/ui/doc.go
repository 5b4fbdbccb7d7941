// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI follows one analysis at a time:
//   - a spinner and progress bar (charmbracelet/bubbles/progress) with the status message and active channel
//   - on failure, the server's message and a re-enabled resubmit key
//   - on completion, the stats line and a tabbed viewport with the data dictionary (rendered with glamour),
//     the ER diagram source and the indented schema JSON
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// State updates flow through a channel from the [tasks.Engine], providing non-blocking status reporting while tracking.
//
// Keyboard navigation: tab/shift+tab switch result tabs, j/k scroll, r resubmits once submit is enabled, q quits and cancels tracking.
package ui
