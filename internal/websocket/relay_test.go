package websocket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sales-assistant-be/pkg/agent"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{}) {}
func (nopLogger) Warn(module, message string, details map[string]interface{}) {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error { return nil }

var errConnClosed = errors.New("use of closed network connection")

type inboundFrame struct {
	messageType int
	payload     []byte
}

// fakeConn is an in-memory stand-in for a websocket connection.
type fakeConn struct {
	mu     sync.Mutex
	frames []map[string]interface{}

	inbound chan inboundFrame
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound: make(chan inboundFrame, 8),
		closed:  make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case frame, ok := <-c.inbound:
		if !ok {
			return 0, nil, errConnClosed
		}
		return frame.messageType, frame.payload, nil
	case <-c.closed:
		return 0, nil, errConnClosed
	}
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	select {
	case <-c.closed:
		return errConnClosed
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, v.(map[string]interface{}))
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) sentFrames() []map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]interface{}, len(c.frames))
	copy(out, c.frames)
	return out
}

func runRelay(t *testing.T, conn Conn, session *agent.Session) <-chan error {
	t.Helper()
	relay := NewRelay(nopLogger{}, nil)
	done := make(chan error, 1)
	go func() {
		done <- relay.Run(context.Background(), "s1", conn, session)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
		return nil
	}
}

func TestRelayMapsEventsToFrames(t *testing.T) {
	events := make(chan agent.Event, 8)
	session := &agent.Session{
		ID:     "s1",
		Queue:  agent.NewRequestQueue(4),
		Events: events,
	}
	conn := newFakeConn()

	events <- agent.Event{Kind: agent.EventPartialText, Text: "Hello"}
	events <- agent.Event{Kind: agent.EventPartialText, Text: ""}
	events <- agent.Event{Kind: agent.EventKind(99)}
	events <- agent.Event{Kind: agent.EventTurnComplete}
	events <- agent.Event{Kind: agent.EventInterrupted}
	close(events)

	done := runRelay(t, conn, session)
	require.NoError(t, waitDone(t, done))

	frames := conn.sentFrames()
	require.Len(t, frames, 3, "empty partials and unknown events must be dropped")
	assert.Equal(t, map[string]interface{}{"message": "Hello"}, frames[0])
	assert.Equal(t, map[string]interface{}{"turn_complete": true}, frames[1])
	assert.Equal(t, map[string]interface{}{"interrupted": true}, frames[2])
}

func TestRelayForwardsClientTextToQueue(t *testing.T) {
	events := make(chan agent.Event)
	queue := agent.NewRequestQueue(4)
	session := &agent.Session{ID: "s1", Queue: queue, Events: events}
	conn := newFakeConn()

	conn.inbound <- inboundFrame{messageType: websocket.TextMessage, payload: []byte("how much is it?")}
	conn.inbound <- inboundFrame{messageType: websocket.BinaryMessage, payload: []byte{0x01}}

	done := runRelay(t, conn, session)

	// The relay loop is the queue's only producer in this test.
	var got agent.Content
	select {
	case got = <-queue.Recv():
	case <-time.After(2 * time.Second):
		t.Fatal("message never reached the queue")
	}
	assert.Equal(t, agent.RoleUser, got.Role)
	assert.Equal(t, "how much is it?", got.Text)

	conn.Close()
	require.NoError(t, waitDone(t, done))
}

func TestRelayStopsBothLoopsOnDisconnect(t *testing.T) {
	events := make(chan agent.Event) // never closed: outbound must be cancelled
	session := &agent.Session{ID: "s1", Queue: agent.NewRequestQueue(4), Events: events}
	conn := newFakeConn()

	done := runRelay(t, conn, session)

	conn.Close()
	require.NoError(t, waitDone(t, done))
}

// writeFailConn fails every write, as a connection torn down mid-send does.
type writeFailConn struct {
	*fakeConn
}

func (c *writeFailConn) WriteJSON(v interface{}) error {
	return errConnClosed
}

func TestRelayDisconnectDuringWriteIsNormalTeardown(t *testing.T) {
	events := make(chan agent.Event, 1)
	session := &agent.Session{ID: "s1", Queue: agent.NewRequestQueue(4), Events: events}
	conn := &writeFailConn{fakeConn: newFakeConn()}

	events <- agent.Event{Kind: agent.EventPartialText, Text: "Hello"}

	done := runRelay(t, conn, session)

	require.NoError(t, waitDone(t, done), "a disconnect hit on the write side is not a session error")
}

func TestRelayStopsWhenEventStreamEnds(t *testing.T) {
	events := make(chan agent.Event)
	session := &agent.Session{ID: "s1", Queue: agent.NewRequestQueue(4), Events: events}
	conn := newFakeConn()

	done := runRelay(t, conn, session)

	close(events)
	require.NoError(t, waitDone(t, done))
}

func TestRelayStopsWhenQueueIsClosed(t *testing.T) {
	events := make(chan agent.Event)
	queue := agent.NewRequestQueue(4)
	session := &agent.Session{ID: "s1", Queue: queue, Events: events}
	conn := newFakeConn()

	done := runRelay(t, conn, session)

	queue.Close()
	conn.inbound <- inboundFrame{messageType: websocket.TextMessage, payload: []byte("late")}

	require.NoError(t, waitDone(t, done))
}
