package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/schemax/internal/models"
)

// DefaultPollInterval is the pull channel cadence.
const DefaultPollInterval = time.Second

// TaskFetcher retrieves the current snapshot of a task.
type TaskFetcher interface {
	GetTask(ctx context.Context, taskID string) (*models.Snapshot, error)
}

// PullChannel polls the task endpoint on a fixed interval.
//
// The first poll happens one interval after Start. Failed polls are logged and retried on the
// next tick. Polling stops after a terminal snapshot is delivered.
type PullChannel struct {
	fetcher  TaskFetcher
	interval time.Duration
	logger   *log.Logger
	lifecycle
}

// NewPullChannel creates a pull channel. A non-positive interval uses [DefaultPollInterval].
func NewPullChannel(fetcher TaskFetcher, interval time.Duration, logger *log.Logger) *PullChannel {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PullChannel{fetcher: fetcher, interval: interval, logger: discardIfNil(logger)}
}

func (p *PullChannel) Kind() ChannelKind { return PullKind }

func (p *PullChannel) Start(ctx context.Context, taskID string, sink Sink) error {
	return p.launch(ctx, func(ctx context.Context) { p.poll(ctx, taskID, sink) })
}

func (p *PullChannel) Stop() { p.stop() }

func (p *PullChannel) poll(ctx context.Context, taskID string, sink Sink) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snapshot, err := p.fetcher.GetTask(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("poll failed", "task_id", taskID, "error", err)
			continue
		}

		sink.OnSnapshot(*snapshot)

		if snapshot.Status.IsTerminal() {
			return
		}
	}
}
