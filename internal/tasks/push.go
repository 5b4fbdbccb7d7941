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

// SocketResolver maps a task id to its streaming endpoint.
type SocketResolver interface {
	TaskSocketURL(taskID string) (string, error)
}

// PushChannel receives server-driven snapshots over a WebSocket.
type PushChannel struct {
	resolver SocketResolver
	dialer   *websocket.Dialer
	logger   *log.Logger
	lifecycle
}

// NewPushChannel creates a push channel. A nil dialer uses [websocket.DefaultDialer].
func NewPushChannel(resolver SocketResolver, dialer *websocket.Dialer, logger *log.Logger) *PushChannel {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	return &PushChannel{resolver: resolver, dialer: dialer, logger: discardIfNil(logger)}
}

func (p *PushChannel) Kind() ChannelKind { return PushKind }

// Start resolves the socket URL and dials it in the background.
//
// Dial, read and decode errors, and a close before a terminal snapshot, are reported once
// through [Sink.OnTransportError].
func (p *PushChannel) Start(ctx context.Context, taskID string, sink Sink) error {
	url, err := p.resolver.TaskSocketURL(taskID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	return p.launch(ctx, func(ctx context.Context) { p.listen(ctx, url, taskID, sink) })
}

func (p *PushChannel) Stop() { p.stop() }

func (p *PushChannel) listen(ctx context.Context, url, taskID string, sink Sink) {
	conn, _, err := p.dialer.DialContext(ctx, url, nil)
	if err != nil {
		if ctx.Err() == nil {
			sink.OnTransportError(fmt.Errorf("%w: dial %s: %v", shared.ErrTransport, url, err))
		}
		return
	}
	defer conn.Close()

	// Unblocks ReadMessage when the channel is stopped.
	release := context.AfterFunc(ctx, func() { conn.Close() })
	defer release()

	p.logger.Debug("push channel connected", "task_id", taskID, "url", url)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				sink.OnTransportError(fmt.Errorf("%w: %v", shared.ErrTransport, err))
			}
			return
		}

		snapshot, err := models.DecodeSnapshot(data, taskID)
		if err != nil {
			sink.OnTransportError(fmt.Errorf("%w: %v", shared.ErrTransport, err))
			return
		}

		sink.OnSnapshot(snapshot)

		if snapshot.Status.IsTerminal() {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}
	}
}
