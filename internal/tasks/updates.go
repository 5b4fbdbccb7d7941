package tasks

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/schemax/internal/markup"
	"github.com/desertthunder/schemax/internal/models"
	"github.com/desertthunder/schemax/internal/shared"
)

// PlaceholderMessage is shown when a snapshot carries no message.
const PlaceholderMessage = "Processing..."

// FailurePlaceholder is surfaced when a failed snapshot carries no message.
const FailurePlaceholder = "Analysis failed"

// Tracking phase enumeration
type Phase int

const (
	Idle Phase = iota
	Submitting
	Tracking
	Completed
	Failed
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Tracking:
		return "tracking"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return ""
	}
}

// Done reports whether the phase ends a tracking session.
func (p Phase) Done() bool {
	return p == Completed || p == Failed || p == Cancelled
}

// State is the visible state of one submission, owned by the tracking loop.
//
// Copies are sent to the CLI or UI layer for display.
type State struct {
	TaskID          string
	Phase           Phase
	Channel         ChannelKind // Active delivery channel, empty when none
	Percent         int         // Progress bar percentage
	Message         string      // Status line under the progress bar
	ProgressVisible bool
	SubmitEnabled   bool
	ResultVisible   bool
	Result          *ResultView
	Err             string // User-facing error, empty when none
}

// ResultView is the rendered form of a completed task's result.
type ResultView struct {
	Stats        models.Stats
	DictMarkdown string
	DictHTML     string
	ERMermaid    string
	SchemaJSON   string // Two-space indented, or the raw text when it is not valid JSON
}

// NewResultView renders a completed task's payload. A nil result yields an empty view.
func NewResultView(r *models.Result, logger *log.Logger) *ResultView {
	if r == nil {
		return &ResultView{}
	}

	schema, err := shared.IndentJSON(r.SchemaJSON)
	if err != nil {
		if logger != nil {
			logger.Warn("schema payload is not valid JSON, showing raw text", "error", err)
		}
		schema = r.SchemaJSON
	}

	return &ResultView{
		Stats:        r.Stats,
		DictMarkdown: r.DictMD,
		DictHTML:     markup.Render(r.DictMD),
		ERMermaid:    r.ERMermaid,
		SchemaJSON:   schema,
	}
}

// Project maps a snapshot onto the visible progress fields of prev.
//
// It is pure: applying the same snapshot twice yields the same state.
func Project(prev State, s models.Snapshot) State {
	next := prev
	next.Percent = 0
	if s.Progress != nil {
		next.Percent = *s.Progress
	}
	next.Message = PlaceholderMessage
	if s.Message != nil && *s.Message != "" {
		next.Message = *s.Message
	}
	return next
}

// Label is a one-line description of the state for logs and plain output.
func (s State) Label() string {
	switch s.Phase {
	case Failed:
		return fmt.Sprintf("failed: %s", s.Err)
	case Completed:
		if s.Result != nil {
			return fmt.Sprintf("completed (%s)", s.Result.Stats)
		}
		return "completed"
	default:
		return fmt.Sprintf("[%3d%%] %s", s.Percent, s.Message)
	}
}

func submittingState() State {
	return State{
		Phase:           Submitting,
		Message:         "Submitting analysis...",
		ProgressVisible: true,
	}
}

func submitFailedState(prev State, err error) State {
	next := prev
	next.Phase = Failed
	next.Err = fmt.Sprintf("Submission failed: %v", err)
	next.ProgressVisible = false
	next.SubmitEnabled = true
	return next
}

func trackingState(prev State, taskID string) State {
	next := prev
	next.TaskID = taskID
	next.Phase = Tracking
	next.ProgressVisible = true
	next.SubmitEnabled = false
	next.ResultVisible = false
	next.Result = nil
	next.Err = ""
	if next.Message == "" {
		next.Message = PlaceholderMessage
	}
	return next
}

func completedState(prev State, view *ResultView) State {
	next := prev
	next.Phase = Completed
	next.Channel = ""
	next.Result = view
	next.ResultVisible = true
	next.SubmitEnabled = true
	return next
}

func failedState(prev State, message string) State {
	next := prev
	next.Phase = Failed
	next.Channel = ""
	next.Err = message
	if next.Err == "" {
		next.Err = FailurePlaceholder
	}
	next.ProgressVisible = false
	next.ResultVisible = false
	next.SubmitEnabled = true
	return next
}

func cancelledState(prev State) State {
	next := prev
	next.Phase = Cancelled
	next.Channel = ""
	next.SubmitEnabled = true
	return next
}
