package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/schemax/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStateUpdate MsgKind = iota
	MsgRunComplete
)

// runResult is the outcome of one tracking run.
type runResult struct {
	state *tasks.State
	err   error
}

// stateUpdateMsg is the constructor for [MsgStateUpdate]
func stateUpdateMsg(state tasks.State) Msg {
	return Msg{kind: MsgStateUpdate, data: state}
}

// runCompleteMsg is the constructor for [MsgRunComplete]
func runCompleteMsg(state *tasks.State, err error) Msg {
	return Msg{kind: MsgRunComplete, data: runResult{state: state, err: err}}
}
