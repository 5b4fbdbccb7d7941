// package tasks tracks server-side analysis tasks from submission to a single terminal outcome.
//
// The core abstraction is AnalysisEngine, which submits a job and follows it over a push channel with a polling fallback.
// Operations emit state updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/schemax/internal/models"
	"github.com/desertthunder/schemax/internal/shared"
	"github.com/gorilla/websocket"
)

// Engine defines operations for following analysis tasks.
type Engine interface {
	// Analyze submits a request and tracks the resulting task to its terminal outcome.
	Analyze(ctx context.Context, req models.AnalysisRequest, updates chan<- State) (*State, error)

	// Watch tracks an already submitted task.
	Watch(ctx context.Context, taskID string, updates chan<- State) (*State, error)
}

// APIClient defines the server operations the engine depends on.
type APIClient interface {
	Submit(ctx context.Context, req models.AnalysisRequest) (string, error)
	TaskFetcher
	SocketResolver
}

// EngineOpts configures an [AnalysisEngine].
type EngineOpts struct {
	PollInterval time.Duration     // Pull channel cadence, defaults to [DefaultPollInterval]
	DisablePush  bool              // Track over the pull channel only
	Dialer       *websocket.Dialer // Push channel dialer, defaults to [websocket.DefaultDialer]
	Logger       *log.Logger
}

// AnalysisEngine implements Engine against the analysis server.
type AnalysisEngine struct {
	api    APIClient
	sync   *Synchronizer
	logger *log.Logger
}

var _ Engine = (*AnalysisEngine)(nil)

// NewAnalysisEngine creates a new AnalysisEngine with the provided API client.
func NewAnalysisEngine(api APIClient, opts EngineOpts) *AnalysisEngine {
	logger := discardIfNil(opts.Logger)

	syncOpts := SyncOpts{
		Pull:   func() Channel { return NewPullChannel(api, opts.PollInterval, logger) },
		Logger: logger,
	}
	if !opts.DisablePush {
		syncOpts.Push = func() Channel { return NewPushChannel(api, opts.Dialer, logger) }
	}

	return &AnalysisEngine{api: api, sync: NewSynchronizer(syncOpts), logger: logger}
}

// Analyze submits req and tracks the task.
//
// A submission error is reported in the returned state with submit re-enabled, and no channel is started.
func (e *AnalysisEngine) Analyze(ctx context.Context, req models.AnalysisRequest, updates chan<- State) (*State, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: analysis API not initialized", shared.ErrServiceUnavailable)
	}

	state := submittingState()
	sendState(updates, state)

	taskID, err := e.api.Submit(ctx, req)
	if err == nil && taskID == "" {
		err = fmt.Errorf("%w: server returned an empty task id", shared.ErrAPIRequest)
	}
	if err != nil {
		state = submitFailedState(state, err)
		sendState(updates, state)
		e.logger.Error("submission failed", "error", err)
		return &state, fmt.Errorf("%w: %v", shared.ErrSubmitFailed, err)
	}

	e.logger.Info("analysis submitted", "task_id", taskID, "db_type", req.DBType, "database", req.Database)
	return e.sync.track(ctx, trackingState(state, taskID), updates)
}

// Watch tracks an existing task.
func (e *AnalysisEngine) Watch(ctx context.Context, taskID string, updates chan<- State) (*State, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: analysis API not initialized", shared.ErrServiceUnavailable)
	}
	return e.sync.Track(ctx, taskID, updates)
}
