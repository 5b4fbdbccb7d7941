package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/schemax/internal/models"
	"github.com/desertthunder/schemax/internal/shared"
)

// ChannelKind names a delivery channel.
type ChannelKind string

const (
	PushKind ChannelKind = "push"
	PullKind ChannelKind = "pull"
)

// Sink receives the events of a running channel.
//
// Implementations must not block indefinitely once the channel is stopped.
type Sink interface {
	OnSnapshot(s models.Snapshot)
	OnTransportError(err error)
}

// Channel delivers the snapshots of one task until a terminal snapshot or Stop.
type Channel interface {
	Kind() ChannelKind

	// Start begins delivery in the background and returns immediately.
	Start(ctx context.Context, taskID string, sink Sink) error

	// Stop cancels delivery and waits for the background work to exit. It is idempotent.
	Stop()
}

// lifecycle runs a single background loop and tears it down once.
type lifecycle struct {
	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

func (l *lifecycle) launch(ctx context.Context, run func(ctx context.Context)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		return fmt.Errorf("%w: channel already started", shared.ErrInvalidInput)
	}
	l.started = true

	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	go func() {
		defer close(l.done)
		run(ctx)
	}()
	return nil
}

func (l *lifecycle) stop() {
	l.once.Do(func() {
		l.mu.Lock()
		cancel, done := l.cancel, l.done
		l.mu.Unlock()

		if cancel == nil {
			return
		}
		cancel()
		<-done
	})
}
