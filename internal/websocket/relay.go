package websocket

import (
	"context"
	"errors"
	"strings"
	"time"

	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/pkg/agent"
	"sales-assistant-be/pkg/transcript"

	"github.com/gofiber/websocket/v2"
	"golang.org/x/sync/errgroup"
)

// Conn is the slice of the websocket connection the relay needs.
// *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v interface{}) error
	Close() error
}

// Relay pumps messages between a websocket client and a live agent session:
// one loop forwards agent events to the client, the other forwards client
// text frames into the session's request queue.
type Relay struct {
	log        logger.ILogger
	transcript transcript.Recorder
}

func NewRelay(log logger.ILogger, recorder transcript.Recorder) *Relay {
	return &Relay{
		log:        log,
		transcript: recorder,
	}
}

// Run blocks until the session ends: the client disconnects, the event stream
// closes, or ctx is cancelled. Either loop ending stops the other, and both
// are joined before Run returns. A normal client disconnect is not an error.
func (r *Relay) Run(ctx context.Context, sessionID string, conn Conn, session *agent.Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	// Closing the connection is the only way to unblock a pending ReadMessage.
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-watchDone:
		}
	}()

	g.Go(func() error {
		defer cancel()
		return r.pumpOutbound(ctx, sessionID, conn, session.Events)
	})
	g.Go(func() error {
		defer cancel()
		return r.pumpInbound(ctx, sessionID, conn, session.Queue)
	})

	err := g.Wait()
	close(watchDone)
	conn.Close()

	// Cancellation is how one loop stops the other, not a failure.
	if errors.Is(err, context.Canceled) || errors.Is(err, agent.ErrQueueClosed) {
		return nil
	}
	return err
}

func (r *Relay) pumpOutbound(ctx context.Context, sessionID string, conn Conn, events <-chan agent.Event) error {
	var reply strings.Builder

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}

			var frame map[string]interface{}
			switch ev.Kind {
			case agent.EventTurnComplete:
				frame = map[string]interface{}{"turn_complete": true}
				r.recordReply(ctx, sessionID, &reply)
			case agent.EventInterrupted:
				frame = map[string]interface{}{"interrupted": true}
				reply.Reset()
			case agent.EventPartialText:
				if ev.Text == "" {
					continue
				}
				frame = map[string]interface{}{"message": ev.Text}
				reply.WriteString(ev.Text)
			default:
				r.log.Warn("relay", "dropping event of unknown kind", map[string]interface{}{
					"session_id": sessionID,
					"kind":       int(ev.Kind),
				})
				continue
			}

			if err := conn.WriteJSON(frame); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
					return nil
				}
				r.log.Info("relay", "client connection closed during write", map[string]interface{}{
					"session_id": sessionID,
					"reason":     err.Error(),
				})
				return nil
			}
		}
	}
}

func (r *Relay) pumpInbound(ctx context.Context, sessionID string, conn Conn, queue *agent.RequestQueue) error {
	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return nil
			}
			r.log.Info("relay", "client connection closed", map[string]interface{}{
				"session_id": sessionID,
				"reason":     err.Error(),
			})
			return nil
		}

		if messageType != websocket.TextMessage {
			continue
		}

		text := string(payload)
		if err := queue.Send(agent.NewUserContent(text)); err != nil {
			return err
		}
		r.record(ctx, sessionID, transcript.Entry{Role: "user", Text: text, At: time.Now()})
	}
}

func (r *Relay) recordReply(ctx context.Context, sessionID string, reply *strings.Builder) {
	if reply.Len() == 0 {
		return
	}
	r.record(ctx, sessionID, transcript.Entry{Role: "model", Text: reply.String(), At: time.Now()})
	reply.Reset()
}

func (r *Relay) record(ctx context.Context, sessionID string, entry transcript.Entry) {
	if r.transcript == nil {
		return
	}
	if err := r.transcript.Append(ctx, sessionID, entry); err != nil {
		r.log.Warn("relay", "failed to record transcript entry", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}
