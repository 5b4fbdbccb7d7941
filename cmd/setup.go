package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/schemax/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the configuration template to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", configPath)

	r.writePlain("✓ Config written to %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set server.base_url and the [analysis] defaults in %s\n", configPath)
	r.writePlain("2. Run 'schemax setup database' to create the history database\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
//
// The config file is created from the template when it does not exist yet.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.config

	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err != nil {
			r.logger.Info("config file not found, creating from template", "path", r.configPath)
			if err := shared.CreateConfigFile(r.configPath); err != nil {
				r.logger.Warn("failed to create config file", "error", err)
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	migrate := shared.RunMigrations
	if cmd.Bool("reset") {
		r.logger.Warn("resetting history database", "path", config.Database.Path)
		migrate = shared.ResetSchema
	}

	r.logger.Info("running database migrations")
	if err := migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := shared.SchemaVersion(db)
	if err != nil {
		return err
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ History database ready at %s (schema version %d)\n", config.Database.Path, version)
}
