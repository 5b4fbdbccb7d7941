package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/schemax/internal/models"
	"github.com/desertthunder/schemax/internal/shared"
	"github.com/desertthunder/schemax/internal/tasks"
	"github.com/desertthunder/schemax/internal/ui"
	"github.com/urfave/cli/v3"
)

// Analyze submits an analysis and follows it to a terminal outcome.
func (r *Runner) Analyze(ctx context.Context, cmd *cli.Command) error {
	req, err := r.analysisRequest(cmd)
	if err != nil {
		return err
	}
	if req.Database == "" {
		return fmt.Errorf("%w: --database is required", shared.ErrMissingArgument)
	}

	opts := r.trackOptions(cmd)
	newRecord := func(taskID string) *models.Analysis { return models.NewAnalysis(taskID, req) }

	if cmd.Bool("tui") {
		return r.runTUI(ctx, ui.Options{Request: req}, opts, newRecord)
	}

	r.logger.Info("submitting analysis", "db_type", req.DBType, "host", req.Host, "database", req.Database)
	engine := r.engineFor(opts.poll)

	runCtx, cancel := opts.withTimeout(ctx)
	defer cancel()

	state, err := r.track(func(updates chan<- tasks.State) (*tasks.State, error) {
		return engine.Analyze(runCtx, req, updates)
	})

	report, settleErr := r.settle(state, opts, newRecord)
	r.writeOutcome(state, report)

	if err != nil {
		return opts.runError(err)
	}
	return settleErr
}

// analysisRequest builds a submission from flags, falling back to the [analysis] config section.
func (r *Runner) analysisRequest(cmd *cli.Command) (models.AnalysisRequest, error) {
	defaults := r.config.Analysis
	conn, err := r.connectionParams(cmd)
	if err != nil {
		return models.AnalysisRequest{}, err
	}

	req := models.AnalysisRequest{
		DBType:     conn.DBType,
		Host:       conn.Host,
		Port:       conn.Port,
		Username:   conn.Username,
		Password:   conn.Password,
		Database:   stringOr(cmd.String("database"), defaults.Database),
		Schema:     stringOr(cmd.String("schema"), defaults.Schema),
		SampleSize: defaults.SampleSize,
		EnableAI:   defaults.EnableAI,
		APIKey:     cmd.String("api-key"),
	}

	if cmd.IsSet("sample-size") {
		req.SampleSize = int(cmd.Int("sample-size"))
	}
	if cmd.IsSet("enable-ai") {
		req.EnableAI = cmd.Bool("enable-ai")
	}
	if req.SampleSize < 0 {
		return req, fmt.Errorf("%w: --sample-size must not be negative", shared.ErrInvalidFlag)
	}
	return req, nil
}

// connectionParams reads the connection flags. The port follows the database type when neither flag nor config set one.
func (r *Runner) connectionParams(cmd *cli.Command) (models.ConnectionParams, error) {
	defaults := r.config.Analysis

	dbType := stringOr(cmd.String("db-type"), defaults.DBType)
	switch dbType {
	case "mysql", "sqlserver":
	default:
		return models.ConnectionParams{}, fmt.Errorf("%w: unsupported database type %q (mysql or sqlserver)", shared.ErrInvalidFlag, dbType)
	}

	port := cmd.String("port")
	if port == "" {
		if cmd.IsSet("db-type") || defaults.Port == "" {
			port = models.DefaultPort(dbType)
		} else {
			port = defaults.Port
		}
	}

	return models.ConnectionParams{
		DBType:   dbType,
		Host:     stringOr(cmd.String("host"), defaults.Host),
		Port:     port,
		Username: stringOr(cmd.String("username"), defaults.Username),
		Password: cmd.String("password"),
	}, nil
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
