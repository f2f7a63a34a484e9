package agent

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sales-assistant-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{}) {}
func (nopLogger) Warn(module, message string, details map[string]interface{}) {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error { return nil }

// scriptedLLM replays canned replies in order.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []string
	calls   [][]llm.Message
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, history)
	if len(s.replies) == 0 {
		return "", context.Canceled
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
}

func nextEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "event channel closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func collectTurn(t *testing.T, events <-chan Event) (string, []Event) {
	t.Helper()
	var text strings.Builder
	var all []Event
	for {
		ev := nextEvent(t, events)
		all = append(all, ev)
		if ev.Kind == EventPartialText {
			text.WriteString(ev.Text)
		}
		if ev.Kind == EventTurnComplete {
			return text.String(), all
		}
	}
}

func TestRunLivePlainAnswer(t *testing.T) {
	provider := &scriptedLLM{replies: []string{"Hi! How can I help?"}}
	runner := NewRunner(provider, &Config{Name: "helper", Instruction: "be helpful"}, nopLogger{})

	session := runner.RunLive(context.Background(), "s1")
	defer session.Close()

	require.NoError(t, session.Queue.Send(NewUserContent("hello")))

	text, all := collectTurn(t, session.Events)
	assert.Equal(t, "Hi! How can I help?", text)
	assert.Equal(t, EventTurnComplete, all[len(all)-1].Kind)
}

func TestRunLiveChunksLongAnswers(t *testing.T) {
	long := strings.Repeat("lorem ipsum ", 50)
	provider := &scriptedLLM{replies: []string{long}}
	runner := NewRunner(provider, &Config{Name: "helper"}, nopLogger{})
	runner.chunkSize = 100

	session := runner.RunLive(context.Background(), "s1")
	defer session.Close()

	require.NoError(t, session.Queue.Send(NewUserContent("tell me everything")))

	text, all := collectTurn(t, session.Events)
	assert.Equal(t, long, text)
	assert.Greater(t, len(all), 2, "expected multiple partial chunks")
	for _, ev := range all[:len(all)-1] {
		assert.Equal(t, EventPartialText, ev.Kind)
		assert.NotEmpty(t, ev.Text)
	}
}

func TestRunLiveToolCall(t *testing.T) {
	provider := &scriptedLLM{replies: []string{
		"```json\n{\"tool\": \"lookup\", \"input\": \"pricing\"}\n```",
		"Plans start at $49 per month.",
	}}

	var gotInput string
	cfg := &Config{
		Name:        "helper",
		Instruction: "answer from the knowledge base",
		Tools: []Tool{{
			Name:        "lookup",
			Description: "search the knowledge base",
			Run: func(ctx context.Context, input string) (string, error) {
				gotInput = input
				return `{"status":"success"}`, nil
			},
		}},
	}
	runner := NewRunner(provider, cfg, nopLogger{})

	session := runner.RunLive(context.Background(), "s1")
	defer session.Close()

	require.NoError(t, session.Queue.Send(NewUserContent("how much is it?")))

	text, _ := collectTurn(t, session.Events)
	assert.Equal(t, "Plans start at $49 per month.", text)
	assert.Equal(t, "pricing", gotInput)

	// Second LLM call must carry the tool result back to the model.
	provider.mu.Lock()
	defer provider.mu.Unlock()
	require.Len(t, provider.calls, 2)
	last := provider.calls[1][len(provider.calls[1])-1]
	assert.Contains(t, last.Content, "lookup")
}

func TestRunLiveDelegatesToSubAgent(t *testing.T) {
	provider := &scriptedLLM{replies: []string{
		`{"tool": "delegate_to_specialist", "input": "deep question"}`,
		"specialist says: 42",
		"The answer is 42.",
	}}
	cfg := &Config{
		Name: "coordinator",
		SubAgents: []*Config{{
			Name:        "specialist",
			Description: "handles deep questions",
			Instruction: "be precise",
		}},
	}
	runner := NewRunner(provider, cfg, nopLogger{})

	session := runner.RunLive(context.Background(), "s1")
	defer session.Close()

	require.NoError(t, session.Queue.Send(NewUserContent("what is the answer?")))

	text, _ := collectTurn(t, session.Events)
	assert.Equal(t, "The answer is 42.", text)
}

// blockingLLM hangs on the first call until its context is cancelled, then
// answers normally.
type blockingLLM struct {
	started chan struct{}
	calls   int32
}

func (b *blockingLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if atomic.AddInt32(&b.calls, 1) == 1 {
		close(b.started)
		<-ctx.Done()
		return "", ctx.Err()
	}
	return "answer to the second question", nil
}

func (b *blockingLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return b.Chat(ctx, nil)
}

func TestRunLiveInterruptsInFlightTurn(t *testing.T) {
	provider := &blockingLLM{started: make(chan struct{})}
	runner := NewRunner(provider, &Config{Name: "helper"}, nopLogger{})

	session := runner.RunLive(context.Background(), "s1")
	defer session.Close()

	require.NoError(t, session.Queue.Send(NewUserContent("first question")))

	select {
	case <-provider.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first turn never started")
	}

	require.NoError(t, session.Queue.Send(NewUserContent("second question")))

	ev := nextEvent(t, session.Events)
	assert.Equal(t, EventInterrupted, ev.Kind)

	text, _ := collectTurn(t, session.Events)
	assert.Equal(t, "answer to the second question", text)
}

func TestSessionCloseEndsEventStream(t *testing.T) {
	provider := &scriptedLLM{replies: []string{"bye"}}
	runner := NewRunner(provider, &Config{Name: "helper"}, nopLogger{})

	session := runner.RunLive(context.Background(), "s1")
	session.Close()

	assert.ErrorIs(t, session.Queue.Send(NewUserContent("too late")), ErrQueueClosed)

	select {
	case _, ok := <-session.Events:
		assert.False(t, ok, "expected closed event channel")
	case <-time.After(2 * time.Second):
		t.Fatal("event channel did not close")
	}
}

func TestParseToolCall(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		wantTool string
		wantOK   bool
	}{
		{"bare json", `{"tool": "lookup", "input": "x"}`, "lookup", true},
		{"fenced json", "```json\n{\"tool\": \"lookup\", \"input\": \"x\"}\n```", "lookup", true},
		{"plain text", "here is your answer", "", false},
		{"json without tool field", `{"message": "hi"}`, "", false},
		{"malformed json", `{"tool": `, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, ok := parseToolCall(tt.reply)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTool, call.Tool)
		})
	}
}

func TestSplitChunks(t *testing.T) {
	chunks := splitChunks("abcdefghij", 4)
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, chunks)

	assert.Empty(t, splitChunks("", 4))
}
