// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// connectionFlags describe the target database. Unset flags fall back to the [analysis] config section.
func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "db-type",
			Usage: "Database type (mysql or sqlserver)",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "Database host",
		},
		&cli.StringFlag{
			Name:  "port",
			Usage: "Database port, defaults to the conventional port of --db-type",
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "Database user",
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Database password",
			Sources: cli.EnvVars("SCHEMAX_DB_PASSWORD"),
		},
	}
}

// analysisFlags extend connectionFlags with the fields of an analysis submission.
func analysisFlags() []cli.Flag {
	return append(connectionFlags(),
		&cli.StringFlag{
			Name:    "database",
			Aliases: []string{"d"},
			Usage:   "Database to analyze",
		},
		&cli.StringFlag{
			Name:  "schema",
			Usage: "Schema to analyze (sqlserver)",
		},
		&cli.IntFlag{
			Name:  "sample-size",
			Usage: "Rows sampled per table",
		},
		&cli.BoolFlag{
			Name:  "enable-ai",
			Usage: "Ask the server to annotate the dictionary with AI descriptions",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key forwarded for AI annotations",
			Sources: cli.EnvVars("SCHEMAX_API_KEY"),
		},
	)
}

// trackingFlags control how a task is followed and where its outcome goes.
func trackingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "poll",
			Usage: "Skip the WebSocket channel and poll for progress",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Directory for report files, defaults to [output] dir",
		},
		&cli.BoolFlag{
			Name:  "no-save",
			Usage: "Do not record the analysis in the local history",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Stop following the task after this long (0 waits indefinitely)",
		},
	}
}

func tuiFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "tui",
		Usage: "Follow the task in the interactive terminal UI",
	}
}

// analyzeCommand submits an analysis and follows it
func analyzeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "analyze",
		Usage:  "Submit a schema analysis and follow it to completion",
		Flags:  append(append(analysisFlags(), trackingFlags()...), tuiFlag()),
		Action: r.Analyze,
	}
}

// taskCommand handles already submitted tasks
func taskCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "task",
		Usage: "Inspect and follow submitted analysis tasks",
		Commands: []*cli.Command{
			{
				Name:  "watch",
				Usage: "Follow an existing task to completion",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "task-id",
					},
				},
				Flags:  append(trackingFlags(), tuiFlag()),
				Action: r.TaskWatch,
			},
			{
				Name:  "status",
				Usage: "Print the current status of a task",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "task-id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.TaskStatus,
			},
		},
	}
}

// dbCommand exposes the server's connection helpers
func dbCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Check database connectivity through the analysis server",
		Commands: []*cli.Command{
			{
				Name:   "test",
				Usage:  "Test a database connection",
				Flags:  connectionFlags(),
				Action: r.DBTest,
			},
			{
				Name:  "list",
				Usage: "List databases visible to the connection",
				Flags: append(connectionFlags(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				),
				Action: r.DBList,
			},
		},
	}
}

// historyCommand manages locally recorded analyses
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"hist"},
		Usage:   "Browse locally recorded analyses",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded analyses, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only show analyses with this status",
					},
					&cli.StringFlag{
						Name:  "database",
						Usage: "Only show analyses of this database",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of analyses to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a recorded analysis by ID or task ID",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "rm",
				Usage: "Remove a recorded analysis",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.HistoryRemove,
			},
		},
	}
}

// reportCommand previews rendered results
func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Preview analysis reports",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve a recorded analysis in the browser",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address, defaults to [report] host and port",
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Do not open the browser",
					},
				},
				Action: r.ReportServe,
			},
			{
				Name:  "render",
				Usage: "Render a markdown data dictionary to HTML",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "document",
						Usage: "Wrap the output in a standalone HTML page",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Page title used with --document",
						Value: "Data Dictionary",
					},
				},
				Action: r.ReportRender,
			},
		},
	}
}

// setupCommand creates the config file and history database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the history database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Create the history database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Drop all recorded analyses and recreate the schema",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand launches the interactive tracker
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive analysis tracker",
		Flags: append(append(analysisFlags(), trackingFlags()...),
			&cli.StringFlag{
				Name:  "task",
				Usage: "Attach to an existing task instead of submitting",
			},
		),
		Action: r.TUI,
	}
}
