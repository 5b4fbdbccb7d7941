package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/schemax/internal/models"
	"github.com/desertthunder/schemax/internal/shared"
	"github.com/urfave/cli/v3"
)

// analysisRecord is the JSON form of a history entry.
type analysisRecord struct {
	ID          string         `json:"id"`
	Sequence    int            `json:"sequence"`
	TaskID      string         `json:"task_id"`
	DBType      string         `json:"db_type"`
	Host        string         `json:"host"`
	Database    string         `json:"database"`
	Schema      string         `json:"schema,omitempty"`
	Status      models.Status  `json:"status"`
	Progress    int            `json:"progress"`
	Message     string         `json:"message,omitempty"`
	Result      *models.Result `json:"result,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

func newAnalysisRecord(a *models.Analysis, withResult bool) analysisRecord {
	rec := analysisRecord{
		ID:          a.ID(),
		Sequence:    a.Sequence(),
		TaskID:      a.TaskID(),
		DBType:      a.DBType(),
		Host:        a.Host(),
		Database:    a.Database(),
		Schema:      a.Schema(),
		Status:      a.Status(),
		Progress:    a.Progress(),
		Message:     a.Message(),
		CreatedAt:   a.CreatedAt(),
		UpdatedAt:   a.UpdatedAt(),
		CompletedAt: a.CompletedAt(),
	}
	if withResult {
		rec.Result = a.Result()
	}
	return rec
}

// HistoryList prints recorded analyses, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeDB()

	analyses, err := repo.List(map[string]any{
		"status":   cmd.String("status"),
		"database": cmd.String("database"),
		"limit":    int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		records := make([]analysisRecord, 0, len(analyses))
		for _, a := range analyses {
			records = append(records, newAnalysisRecord(a, false))
		}
		return r.writeJSON(records, true)
	}

	if len(analyses) == 0 {
		return r.writePlain("No analyses recorded\n")
	}

	r.writePlainHeader(fmt.Sprintf("Analyses (%d)", len(analyses)))
	for _, a := range analyses {
		r.writePlain("%-4d %-36s %-10s %3d%%  %s/%s  %s\n",
			a.Sequence(), a.TaskID(), a.Status(), a.Progress(),
			a.DBType(), a.Database(), a.CreatedAt().Format(time.DateTime))
	}
	return nil
}

// HistoryShow prints one recorded analysis, looked up by record ID or task ID.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: analysis ID is required", shared.ErrMissingArgument)
	}

	repo, closeDB, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeDB()

	a, err := findAnalysis(repo, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(newAnalysisRecord(a, true), true)
	}

	r.writePlainHeader(fmt.Sprintf("Analysis #%d", a.Sequence()))
	r.writePlain("ID:       %s\n", a.ID())
	r.writePlain("Task:     %s\n", a.TaskID())
	r.writePlain("Database: %s %s/%s\n", a.DBType(), a.Host(), a.Database())
	if a.Schema() != "" {
		r.writePlain("Schema:   %s\n", a.Schema())
	}
	r.writePlain("Status:   %s (%d%%)\n", a.Status(), a.Progress())
	if a.Message() != "" {
		r.writePlain("Message:  %s\n", a.Message())
	}
	r.writePlain("Created:  %s\n", a.CreatedAt().Format(time.DateTime))
	if completed := a.CompletedAt(); completed != nil {
		r.writePlain("Finished: %s\n", completed.Format(time.DateTime))
	}
	if result := a.Result(); result != nil {
		r.writePlain("Tables/Relations/Enum tables: %s\n", result.Stats)
	}
	return nil
}

// HistoryRemove soft-deletes a recorded analysis.
func (r *Runner) HistoryRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: analysis ID is required", shared.ErrMissingArgument)
	}

	repo, closeDB, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeDB()

	a, err := findAnalysis(repo, id)
	if err != nil {
		return err
	}
	if err := repo.Delete(a.ID()); err != nil {
		return err
	}

	r.logger.Info("analysis removed", "id", a.ID(), "task_id", a.TaskID())
	return r.writePlain("✓ Removed analysis %s\n", a.ID())
}

func findAnalysis(repo models.HistoryStore, id string) (*models.Analysis, error) {
	a, err := repo.Get(id)
	if errors.Is(err, shared.ErrRecordNotFound) {
		a, err = repo.GetByTaskID(id)
	}
	return a, err
}
