package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/schemax/internal/formatter"
	"github.com/desertthunder/schemax/internal/models"
	"github.com/desertthunder/schemax/internal/shared"
	"github.com/desertthunder/schemax/internal/tasks"
	"github.com/desertthunder/schemax/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI, submitting an analysis or attaching to --task.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	opts := ui.Options{TaskID: cmd.String("task")}
	var newRecord func(string) *models.Analysis

	if opts.TaskID == "" {
		req, err := r.analysisRequest(cmd)
		if err != nil {
			return err
		}
		if req.Database == "" {
			return fmt.Errorf("%w: --database or --task is required", shared.ErrMissingArgument)
		}
		opts.Request = req
		newRecord = func(taskID string) *models.Analysis { return models.NewAnalysis(taskID, req) }
	}

	return r.runTUI(ctx, opts, r.trackOptions(cmd), newRecord)
}

// runTUI follows runs in the terminal UI. Each settled run is recorded and reported like a plain run.
func (r *Runner) runTUI(ctx context.Context, opts ui.Options, track trackOpts, newRecord func(string) *models.Analysis) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/schemax-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	var report *formatter.ReportResult
	opts.OnSettled = func(state *tasks.State, runErr error) {
		if runErr != nil {
			r.logger.Warn("run ended", "error", runErr)
		}
		rep, err := r.settle(state, track, newRecord)
		if err != nil {
			r.logger.Error("failed to settle run", "error", err)
			return
		}
		report = rep
	}

	model := ui.NewModel(ctx, r.engineFor(track.poll), opts)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	state := model.State()
	r.writeOutcome(&state, report)
	return nil
}
