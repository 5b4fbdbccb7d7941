package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/schemax/internal/models"
	"github.com/desertthunder/schemax/internal/shared"
)

// SyncOpts configures a [Synchronizer].
type SyncOpts struct {
	Push   func() Channel // Nil starts tracking on the pull channel
	Pull   func() Channel
	Logger *log.Logger
}

// Synchronizer keeps exactly one channel active for a task and converges on its terminal outcome.
type Synchronizer struct {
	push   func() Channel
	pull   func() Channel
	logger *log.Logger
}

// NewSynchronizer creates a synchronizer from channel factories.
func NewSynchronizer(opts SyncOpts) *Synchronizer {
	return &Synchronizer{push: opts.Push, pull: opts.Pull, logger: discardIfNil(opts.Logger)}
}

type event struct {
	sink     *channelSink
	snapshot *models.Snapshot
	err      error
}

// channelSink forwards one channel's events to the tracking loop until it is retired.
type channelSink struct {
	events chan<- event
	quit   chan struct{}
	once   sync.Once
}

func newChannelSink(events chan<- event) *channelSink {
	return &channelSink{events: events, quit: make(chan struct{})}
}

func (s *channelSink) OnSnapshot(snapshot models.Snapshot) {
	s.send(event{sink: s, snapshot: &snapshot})
}

func (s *channelSink) OnTransportError(err error) {
	s.send(event{sink: s, err: err})
}

func (s *channelSink) send(e event) {
	select {
	case s.events <- e:
	case <-s.quit:
	}
}

func (s *channelSink) retire() { s.once.Do(func() { close(s.quit) }) }

// active is the channel currently delivering, with the sink it reports to.
type active struct {
	channel Channel
	sink    *channelSink
}

func (a *active) stop() {
	if a == nil {
		return
	}
	a.sink.retire()
	a.channel.Stop()
}

// Track follows taskID until a terminal snapshot or ctx is done, sending state copies to updates.
//
// A completed task returns its final state. A failed task returns the state with
// [shared.ErrTaskFailed]. Cancellation returns ctx.Err().
func (s *Synchronizer) Track(ctx context.Context, taskID string, updates chan<- State) (*State, error) {
	return s.track(ctx, trackingState(State{}, taskID), updates)
}

func (s *Synchronizer) track(ctx context.Context, state State, updates chan<- State) (*State, error) {
	if state.TaskID == "" {
		return nil, fmt.Errorf("%w: task id is empty", shared.ErrMissingArgument)
	}

	logger := shared.WithLogger(s.logger, "task_id", state.TaskID)
	events := make(chan event)
	guard := NewGuard()

	cur, err := s.open(ctx, state.TaskID, events, logger)
	if err != nil {
		state = failedState(state, err.Error())
		sendState(updates, state)
		return &state, err
	}
	state.Channel = cur.channel.Kind()
	sendState(updates, state)

	for {
		select {
		case <-ctx.Done():
			cur.stop()
			state = cancelledState(state)
			sendState(updates, state)
			logger.Info("tracking cancelled")
			return &state, ctx.Err()

		case ev := <-events:
			if ev.sink != cur.sink {
				continue
			}

			if ev.err != nil {
				if cur.channel.Kind() != PushKind || s.pull == nil {
					logger.Warn("channel failed", "channel", cur.channel.Kind(), "error", ev.err)
					continue
				}

				logger.Warn("push channel failed, falling back to polling", "error", ev.err)
				cur.stop()
				cur, err = s.start(ctx, s.pull(), state.TaskID, events)
				if err != nil {
					state = failedState(state, err.Error())
					sendState(updates, state)
					return &state, err
				}
				state.Channel = PullKind
				sendState(updates, state)
				continue
			}

			snapshot := *ev.snapshot
			state = Project(state, snapshot)

			var outcome *Outcome
			guard, outcome = guard.Observe(snapshot)
			if outcome == nil {
				sendState(updates, state)
				continue
			}

			cur.stop()

			if outcome.Completed() {
				state = completedState(state, NewResultView(snapshot.Result, logger))
				sendState(updates, state)
				logger.Info("analysis completed", "stats", state.Result.Stats.String())
				return &state, nil
			}

			message := ""
			if snapshot.Message != nil {
				message = *snapshot.Message
			}
			state = failedState(state, message)
			sendState(updates, state)
			logger.Error("analysis failed", "message", state.Err)
			return &state, fmt.Errorf("%w: %s", shared.ErrTaskFailed, state.Err)
		}
	}
}

// open starts the push channel, falling back to pull when push is disabled or cannot start.
func (s *Synchronizer) open(ctx context.Context, taskID string, events chan<- event, logger *log.Logger) (*active, error) {
	if s.push != nil {
		cur, err := s.start(ctx, s.push(), taskID, events)
		if err == nil {
			return cur, nil
		}
		if s.pull == nil {
			return nil, err
		}
		logger.Warn("push channel unavailable, polling instead", "error", err)
	}

	if s.pull == nil {
		return nil, fmt.Errorf("%w: no channel configured", shared.ErrServiceUnavailable)
	}
	return s.start(ctx, s.pull(), taskID, events)
}

func (s *Synchronizer) start(ctx context.Context, ch Channel, taskID string, events chan<- event) (*active, error) {
	sink := newChannelSink(events)
	if err := ch.Start(ctx, taskID, sink); err != nil {
		sink.retire()
		ch.Stop()
		return nil, err
	}
	return &active{channel: ch, sink: sink}, nil
}

// sendState sends a state update through the channel without blocking.
func sendState(updates chan<- State, state State) {
	if updates == nil {
		return
	}
	select {
	case updates <- state:
	default:
	}
}

// IsTaskFailure reports whether err is a task-level failure rather than a client error.
func IsTaskFailure(err error) bool { return errors.Is(err, shared.ErrTaskFailed) }

func discardIfNil(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}
