package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/schemax/internal/shared"
	"github.com/desertthunder/schemax/internal/tasks"
	"github.com/desertthunder/schemax/internal/ui"
	"github.com/urfave/cli/v3"
)

// TaskWatch follows an already submitted task. Its history entry, if any, is updated with the outcome.
func (r *Runner) TaskWatch(ctx context.Context, cmd *cli.Command) error {
	taskID := cmd.StringArg("task-id")
	if taskID == "" {
		return fmt.Errorf("%w: task ID is required", shared.ErrMissingArgument)
	}

	opts := r.trackOptions(cmd)
	if cmd.Bool("tui") {
		return r.runTUI(ctx, ui.Options{TaskID: taskID}, opts, nil)
	}

	r.logger.Info("watching task", "task_id", taskID, "poll", opts.poll)
	engine := r.engineFor(opts.poll)

	runCtx, cancel := opts.withTimeout(ctx)
	defer cancel()

	state, err := r.track(func(updates chan<- tasks.State) (*tasks.State, error) {
		return engine.Watch(runCtx, taskID, updates)
	})

	report, settleErr := r.settle(state, opts, nil)
	r.writeOutcome(state, report)

	if err != nil {
		return opts.runError(err)
	}
	return settleErr
}

// TaskStatus fetches one snapshot of a task.
func (r *Runner) TaskStatus(ctx context.Context, cmd *cli.Command) error {
	taskID := cmd.StringArg("task-id")
	if taskID == "" {
		return fmt.Errorf("%w: task ID is required", shared.ErrMissingArgument)
	}

	snapshot, err := r.api.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshot, cmd.Bool("pretty"))
	}

	state := tasks.Project(tasks.State{TaskID: taskID}, *snapshot)

	r.writePlain("Task:     %s\n", taskID)
	r.writePlain("Status:   %s\n", snapshot.Status)
	r.writePlain("Progress: %d%%\n", state.Percent)
	r.writePlain("Message:  %s\n", state.Message)
	if snapshot.Result != nil {
		r.writePlain("Tables/Relations/Enum tables: %s\n", snapshot.Result.Stats)
	}
	return nil
}
