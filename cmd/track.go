package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/desertthunder/schemax/internal/formatter"
	"github.com/desertthunder/schemax/internal/models"
	"github.com/desertthunder/schemax/internal/shared"
	"github.com/desertthunder/schemax/internal/tasks"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// trackOpts describe how a run is followed and where its outcome goes.
type trackOpts struct {
	poll    bool
	output  string
	save    bool
	timeout time.Duration
}

func (r *Runner) trackOptions(cmd *cli.Command) trackOpts {
	output := cmd.String("output")
	if output == "" {
		output = r.config.Output.Dir
	}
	return trackOpts{
		poll:    cmd.Bool("poll"),
		output:  output,
		save:    !cmd.Bool("no-save"),
		timeout: cmd.Duration("timeout"),
	}
}

// withTimeout bounds ctx by the --timeout flag.
func (o trackOpts) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}

// runError maps a run ending on the --timeout deadline to [shared.ErrTimeout].
func (o trackOpts) runError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: no terminal status after %s", shared.ErrTimeout, o.timeout)
	}
	return err
}

// progressReporter draws tracking updates as a terminal progress bar.
type progressReporter struct {
	bar     *progressbar.ProgressBar
	channel tasks.ChannelKind
	r       *Runner
}

func newProgressReporter(r *Runner, w io.Writer) *progressReporter {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(tasks.PlaceholderMessage),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)
	return &progressReporter{bar: bar, r: r}
}

// follow consumes updates until the channel is closed. The returned channel is closed once it has drained.
func (p *progressReporter) follow(updates <-chan tasks.State) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for state := range updates {
			p.update(state)
		}
	}()
	return done
}

func (p *progressReporter) update(state tasks.State) {
	if state.Channel != "" && state.Channel != p.channel {
		p.r.logger.Debug("tracking channel", "task_id", state.TaskID, "channel", state.Channel)
		p.channel = state.Channel
	}
	if !state.ProgressVisible {
		return
	}
	p.bar.Describe(state.Message)
	if err := p.bar.Set(clampPercent(state.Percent)); err != nil {
		p.r.logger.Debug("progress bar update failed", "error", err)
	}
}

// finish completes the bar for a completed run and leaves it in place otherwise.
func (p *progressReporter) finish(state *tasks.State) {
	if state != nil && state.Phase == tasks.Completed {
		p.bar.Describe("Analysis complete")
		p.bar.Finish()
		return
	}
	p.bar.Exit()
}

// track runs fn with a progress bar attached to its updates.
func (r *Runner) track(fn func(updates chan<- tasks.State) (*tasks.State, error)) (*tasks.State, error) {
	updates := make(chan tasks.State, 16)
	reporter := newProgressReporter(r, r.output)
	done := reporter.follow(updates)

	state, err := fn(updates)
	close(updates)
	<-done

	reporter.finish(state)
	if state != nil {
		r.logger.Debug("tracking ended", "task_id", state.TaskID, "state", state.Label())
	}
	return state, err
}

// settle records the outcome of a run and writes the report of a completed one.
//
// newRecord builds the history entry when the task has none yet; nil skips unknown tasks.
func (r *Runner) settle(state *tasks.State, opts trackOpts, newRecord func(taskID string) *models.Analysis) (*formatter.ReportResult, error) {
	if state == nil || state.TaskID == "" {
		return nil, nil
	}

	if opts.save {
		r.recordOutcome(state, newRecord)
	}

	if state.Phase != tasks.Completed {
		return nil, nil
	}

	report, err := formatter.WriteReport(state.TaskID, state.Result, filepath.Join(opts.output, state.TaskID))
	if err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	r.logger.Info("report written", "task_id", state.TaskID, "dir", report.Directory, "files", len(report.Files))
	return report, nil
}

// recordOutcome saves state to the history database. Failures are logged, never returned.
func (r *Runner) recordOutcome(state *tasks.State, newRecord func(taskID string) *models.Analysis) {
	repo, closeDB, err := r.openHistory()
	if err != nil {
		r.logger.Warn("history unavailable", "error", err)
		return
	}
	defer closeDB()

	analysis, err := repo.GetByTaskID(state.TaskID)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrRecordNotFound) && newRecord != nil:
		analysis = newRecord(state.TaskID)
	case errors.Is(err, shared.ErrRecordNotFound):
		r.logger.Debug("task not in history, skipping", "task_id", state.TaskID)
		return
	default:
		r.logger.Warn("failed to look up history", "task_id", state.TaskID, "error", err)
		return
	}

	applyState(analysis, state)

	if analysis.ID() == "" {
		err = repo.Create(analysis)
	} else {
		err = repo.Update(analysis)
	}
	if err != nil {
		r.logger.Warn("failed to record analysis", "task_id", state.TaskID, "error", err)
		return
	}
	r.logger.Debug("analysis recorded", "id", analysis.ID(), "status", analysis.Status())
}

func applyState(a *models.Analysis, s *tasks.State) {
	switch s.Phase {
	case tasks.Completed:
		a.Settle(models.StatusCompleted, 100, s.Message, resultOf(s.Result))
	case tasks.Failed:
		a.Settle(models.StatusFailed, clampPercent(s.Percent), s.Err, nil)
	default:
		a.SetStatus(models.StatusProcessing)
		a.SetProgress(clampPercent(s.Percent))
		a.SetMessage(s.Message)
	}
	a.SetUpdatedAt(time.Now())
}

func resultOf(view *tasks.ResultView) *models.Result {
	if view == nil {
		return nil
	}
	return &models.Result{
		Stats:      view.Stats,
		DictMD:     view.DictMarkdown,
		ERMermaid:  view.ERMermaid,
		SchemaJSON: view.SchemaJSON,
	}
}

func clampPercent(p int) int {
	return max(0, min(p, 100))
}

// writeOutcome prints the summary of a finished run.
func (r *Runner) writeOutcome(state *tasks.State, report *formatter.ReportResult) {
	if state == nil {
		return
	}

	switch state.Phase {
	case tasks.Completed:
		r.writePlainHeader("Analysis Complete")
		r.writePlain("Task: %s\n", state.TaskID)
		r.writePlain("Tables/Relations/Enum tables: %s\n", formatter.Summary(state.Result))
		if report != nil {
			r.writePlain("Report: %s\n", report.Directory)
			for _, f := range report.Files {
				r.writePlain("  - %s\n", filepath.Base(f))
			}
		}
	case tasks.Failed:
		r.writePlain("✗ %s\n", state.Err)
	case tasks.Cancelled:
		r.writePlain("Stopped following task %s at %d%%\n", state.TaskID, state.Percent)
	}
}
