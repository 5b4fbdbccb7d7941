package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/schemax/internal/models"
	"github.com/desertthunder/schemax/internal/shared"
	"github.com/desertthunder/schemax/internal/tasks"
)

// fakeEngine replays a fixed sequence of states, or blocks until cancelled when block is set.
type fakeEngine struct {
	mu       sync.Mutex
	states   []tasks.State
	err      error
	block    bool
	analyzed int
	watched  []string
}

func (f *fakeEngine) Analyze(ctx context.Context, req models.AnalysisRequest, updates chan<- tasks.State) (*tasks.State, error) {
	f.mu.Lock()
	f.analyzed++
	f.mu.Unlock()
	return f.run(ctx, updates)
}

func (f *fakeEngine) Watch(ctx context.Context, taskID string, updates chan<- tasks.State) (*tasks.State, error) {
	f.mu.Lock()
	f.watched = append(f.watched, taskID)
	f.mu.Unlock()
	return f.run(ctx, updates)
}

func (f *fakeEngine) run(ctx context.Context, updates chan<- tasks.State) (*tasks.State, error) {
	for _, s := range f.states {
		updates <- s
	}
	if f.block {
		<-ctx.Done()
		last := f.states[len(f.states)-1]
		last.Phase = tasks.Cancelled
		last.SubmitEnabled = true
		return &last, ctx.Err()
	}
	last := f.states[len(f.states)-1]
	return &last, f.err
}

func tracking(percent int, message string) tasks.State {
	return tasks.State{TaskID: "T1", Phase: tasks.Tracking, Channel: tasks.PushKind, Percent: percent, Message: message, ProgressVisible: true}
}

func completed() tasks.State {
	s := tracking(100, "Analysis complete")
	s.Phase = tasks.Completed
	s.Channel = ""
	s.SubmitEnabled = true
	s.ResultVisible = true
	s.Result = tasks.NewResultView(&models.Result{
		Stats:      models.Stats{Tables: 5, Relations: 3, EnumTables: 1},
		DictMD:     "# Data Dictionary\n\nusers table",
		ERMermaid:  "erDiagram\n  users ||--o{ orders : places",
		SchemaJSON: `{"a":1}`,
	}, nil)
	return s
}

func failed(message string) tasks.State {
	s := tracking(30, "Reading tables")
	s.Phase = tasks.Failed
	s.Err = message
	s.ProgressVisible = false
	s.SubmitEnabled = true
	return s
}

// drive feeds messages produced by cmd back into the model until the run completes.
func drive(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for cmd != nil {
		msgs := make(chan tea.Msg, 1)
		go func(c tea.Cmd) { msgs <- c() }(cmd)

		select {
		case msg := <-msgs:
			_, cmd = m.Update(msg)
			if um, ok := msg.(Msg); ok && um.kind == MsgRunComplete {
				return
			}
		case <-deadline:
			t.Fatal("timed out driving the model")
		}
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestModel(t *testing.T) {
	t.Run("Completed Run", func(t *testing.T) {
		engine := &fakeEngine{states: []tasks.State{tracking(40, "Reading tables"), completed()}}
		settled := 0
		m := NewModel(context.Background(), engine, Options{
			Request:   models.AnalysisRequest{DBType: "mysql"},
			OnSettled: func(*tasks.State, error) { settled++ },
		})
		m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

		drive(t, m, m.start())

		if m.State().Phase != tasks.Completed || m.Err() != nil {
			t.Fatalf("expected completed run, got %+v, %v", m.State(), m.Err())
		}
		if settled != 1 {
			t.Errorf("expected OnSettled once, got %d", settled)
		}

		view := m.View()
		for _, want := range []string{"task T1", "Tables: 5", "Relations: 3", "Enum tables: 1", "Data Dictionary"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected view to contain %q", want)
			}
		}
	})

	t.Run("Tabs", func(t *testing.T) {
		engine := &fakeEngine{states: []tasks.State{completed()}}
		m := NewModel(context.Background(), engine, Options{})
		drive(t, m, m.start())

		tests := []struct {
			key  string
			tab  Tab
			want string
		}{
			{"tab", DiagramTab, "users ||--o{ orders"},
			{"tab", SchemaTab, "\"a\": 1"},
			{"tab", DictionaryTab, "users"},
			{"shift+tab", SchemaTab, "\"a\": 1"},
		}

		for _, tt := range tests {
			m.Update(keyPress(tt.key))
			if m.tab != tt.tab {
				t.Fatalf("expected tab %s, got %s", tt.tab, m.tab)
			}
			if !strings.Contains(m.vp.View(), tt.want) {
				t.Errorf("expected %s tab to show %q, got:\n%s", tt.tab, tt.want, m.vp.View())
			}
		}
	})

	t.Run("Failed Run And Resubmit", func(t *testing.T) {
		engine := &fakeEngine{
			states: []tasks.State{tracking(30, "Reading tables"), failed("access denied")},
			err:    fmt.Errorf("%w: access denied", shared.ErrTaskFailed),
		}
		m := NewModel(context.Background(), engine, Options{Request: models.AnalysisRequest{DBType: "mysql"}})
		drive(t, m, m.start())

		if !errors.Is(m.Err(), shared.ErrTaskFailed) {
			t.Fatalf("expected task failure, got %v", m.Err())
		}
		if view := m.View(); !strings.Contains(view, "Error: access denied") {
			t.Errorf("expected error in view, got:\n%s", view)
		}
		if !m.canResubmit() {
			t.Fatal("expected resubmit to be enabled")
		}

		_, cmd := m.Update(keyPress("r"))
		if cmd == nil {
			t.Fatal("expected resubmit command")
		}
		if m.canResubmit() {
			t.Error("expected resubmit to be disabled while running")
		}
		_, again := m.Update(keyPress("r"))
		if again != nil {
			t.Error("expected resubmit to be ignored while running")
		}

		drive(t, m, cmd)
		engine.mu.Lock()
		defer engine.mu.Unlock()
		if engine.analyzed != 2 {
			t.Errorf("expected two submissions, got %d", engine.analyzed)
		}
	})

	t.Run("Watch Mode", func(t *testing.T) {
		engine := &fakeEngine{states: []tasks.State{completed()}}
		m := NewModel(context.Background(), engine, Options{TaskID: "T1"})
		drive(t, m, m.start())

		if len(engine.watched) != 1 || engine.watched[0] != "T1" {
			t.Errorf("expected Watch(T1), got %v", engine.watched)
		}
		if m.canResubmit() {
			t.Error("expected no resubmit when watching an existing task")
		}
	})

	t.Run("Quit Cancels Tracking", func(t *testing.T) {
		engine := &fakeEngine{states: []tasks.State{tracking(10, "Connecting")}, block: true}
		m := NewModel(context.Background(), engine, Options{})

		cmd := m.start()
		msg := cmd()
		m.Update(msg)
		if m.State().Percent != 10 {
			t.Fatalf("expected 10%%, got %d", m.State().Percent)
		}
		if !strings.Contains(m.View(), "Connecting") {
			t.Error("expected status message in view")
		}

		_, quit := m.Update(keyPress("q"))
		if quit == nil {
			t.Fatal("expected quit command")
		}

		done := m.waitForState()
		if res, ok := done().(Msg); !ok || res.kind != MsgRunComplete {
			t.Fatalf("expected run to complete after quit, got %+v", res)
		} else if !errors.Is(res.data.(runResult).err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", res.data.(runResult).err)
		}
	})
}

func TestPalette(t *testing.T) {
	tc := []struct {
		kind tasks.ChannelKind
		want any
	}{
		{kind: tasks.PushKind, want: muted},
		{kind: tasks.PullKind, want: fallback},
		{kind: "", want: muted},
	}

	for _, tt := range tc {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := styles.channelStyle(tt.kind).GetForeground(); got != tt.want {
				t.Errorf("expected %v for %q, got %v", tt.want, tt.kind, got)
			}
		})
	}

	if styles.completed.GetForeground() == styles.failed.GetForeground() {
		t.Error("completed and failed outcomes should be told apart")
	}
}
