package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/desertthunder/schemax/internal/markup"
	"github.com/desertthunder/schemax/internal/server"
	"github.com/desertthunder/schemax/internal/shared"
	"github.com/desertthunder/schemax/internal/tasks"
	"github.com/urfave/cli/v3"
)

var openBrowser = shared.OpenBrowser

// ReportServe serves a recorded analysis on the report address until interrupted.
func (r *Runner) ReportServe(ctx context.Context, cmd *cli.Command) error {
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
	if a.Result() == nil {
		return fmt.Errorf("%w: analysis %s has no result (status %s)", shared.ErrInvalidArgument, a.ID(), a.Status())
	}

	title := fmt.Sprintf("%s: %s", a.DBType(), a.Database())
	handler := r.reportRouter(title, tasks.NewResultView(a.Result(), r.logger))

	addr := stringOr(cmd.String("addr"), r.config.Report.Addr())
	url := "http://" + addr + "/"
	r.logger.Info("serving report", "id", a.ID(), "addr", addr)
	r.writePlain("Serving %s at %s (Ctrl+C to stop)\n", title, url)

	if !cmd.Bool("no-browser") {
		if err := openBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	return server.Serve(ctx, addr, handler)
}

func (r *Runner) reportRouter(title string, view *tasks.ResultView) http.Handler {
	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	router.Handler(server.NewReportHandler(title, view))
	return router
}

// ReportRender converts a markdown file with the dictionary renderer and prints the HTML.
func (r *Runner) ReportRender(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: markdown file path is required", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	out := markup.Render(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if cmd.Bool("document") {
		out = markup.Document(cmd.String("title"), out)
	}
	return r.writePlain("%s\n", out)
}
