package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/schemax/internal/shared"
	"github.com/urfave/cli/v3"
)

// DBTest asks the analysis server to connect to the database.
func (r *Runner) DBTest(ctx context.Context, cmd *cli.Command) error {
	params, err := r.connectionParams(cmd)
	if err != nil {
		return err
	}
	r.logger.Info("testing connection", "db_type", params.DBType, "host", params.Host, "port", params.Port)

	result, err := r.api.TestConnection(ctx, params)
	if err != nil {
		return err
	}

	if !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, result.Message)
	}
	return r.writePlain("✓ %s\n", result.Message)
}

// DBList prints the databases visible to the connection.
func (r *Runner) DBList(ctx context.Context, cmd *cli.Command) error {
	params, err := r.connectionParams(cmd)
	if err != nil {
		return err
	}
	r.logger.Info("listing databases", "db_type", params.DBType, "host", params.Host)

	databases, err := r.api.ListDatabases(ctx, params)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(databases, false)
	}

	if len(databases) == 0 {
		return r.writePlain("No databases found\n")
	}
	for _, name := range databases {
		r.writePlain("%s\n", name)
	}
	return nil
}
