package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/pkg/llm"
)

const (
	defaultMaxToolSteps = 4
	defaultChunkSize    = 120
	defaultQueueSize    = 16
	defaultEventBuffer  = 32
)

// Runner drives an agent tree against an LLM provider.
type Runner struct {
	provider     llm.LLMProvider
	cfg          *Config
	log          logger.ILogger
	maxToolSteps int
	chunkSize    int
}

func NewRunner(provider llm.LLMProvider, cfg *Config, log logger.ILogger) *Runner {
	return &Runner{
		provider:     provider,
		cfg:          cfg,
		log:          log,
		maxToolSteps: defaultMaxToolSteps,
		chunkSize:    defaultChunkSize,
	}
}

// Session is one live conversation. Push input through Queue, consume Events
// until it closes. Close cancels everything.
type Session struct {
	ID     string
	Queue  *RequestQueue
	Events <-chan Event

	cancel context.CancelFunc
}

func (s *Session) Close() {
	s.Queue.Close()
	s.cancel()
}

type turnResult struct {
	text string
	err  error
}

// RunLive starts the session loop. Each queued message begins a turn; input
// arriving while a turn is in flight cancels it and an Interrupted event is
// emitted before the new turn starts. The event channel closes when the
// session ends.
func (r *Runner) RunLive(ctx context.Context, sessionID string) *Session {
	ctx, cancel := context.WithCancel(ctx)
	queue := NewRequestQueue(defaultQueueSize)
	events := make(chan Event, defaultEventBuffer)

	session := &Session{
		ID:     sessionID,
		Queue:  queue,
		Events: events,
		cancel: cancel,
	}

	go r.loop(ctx, sessionID, queue, events)

	return session
}

func (r *Runner) loop(ctx context.Context, sessionID string, queue *RequestQueue, events chan<- Event) {
	defer close(events)

	var history []llm.Message
	var turnCancel context.CancelFunc
	var turnDone chan turnResult

	stopTurn := func() {
		if turnCancel != nil {
			turnCancel()
			<-turnDone
			turnCancel = nil
			turnDone = nil
		}
	}
	defer stopTurn()

	startTurn := func() {
		turnCtx, cancel := context.WithCancel(ctx)
		turnCancel = cancel
		done := make(chan turnResult, 1)
		turnDone = done
		msgs := make([]llm.Message, len(history))
		copy(msgs, history)
		go func() {
			text, err := r.runAgent(turnCtx, r.cfg, msgs)
			done <- turnResult{text: text, err: err}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-queue.closed():
			return

		case content := <-queue.Recv():
			if turnDone != nil {
				stopTurn()
				if !r.emit(ctx, events, Event{Kind: EventInterrupted}) {
					return
				}
				r.log.Info("agent", "turn interrupted by new input", map[string]interface{}{
					"session_id": sessionID,
				})
			}
			history = append(history, llm.Message{Role: llm.RoleUser, Content: content.Text})
			startTurn()

		case result := <-turnDone:
			turnCancel()
			turnCancel = nil
			turnDone = nil

			if result.err != nil {
				if errors.Is(result.err, context.Canceled) {
					continue
				}
				r.log.Error("agent", "turn failed", map[string]interface{}{
					"session_id": sessionID,
					"error":      result.err.Error(),
				})
				result.text = "Sorry, I ran into a problem answering that. Please try again."
			}

			history = append(history, llm.Message{Role: llm.RoleAssistant, Content: result.text})
			if !r.stream(ctx, events, result.text) {
				return
			}
		}
	}
}

// stream chunks the answer into partial events followed by a turn marker.
func (r *Runner) stream(ctx context.Context, events chan<- Event, text string) bool {
	for _, chunk := range splitChunks(text, r.chunkSize) {
		if chunk == "" {
			continue
		}
		if !r.emit(ctx, events, Event{Kind: EventPartialText, Text: chunk}) {
			return false
		}
	}
	return r.emit(ctx, events, Event{Kind: EventTurnComplete})
}

func (r *Runner) emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// runAgent executes one turn of an agent: a bounded loop of LLM calls where
// each response is either a tool invocation or the final answer.
func (r *Runner) runAgent(ctx context.Context, cfg *Config, history []llm.Message) (string, error) {
	tools := cfg.effectiveTools(r.delegate)

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: systemPrompt(cfg.Instruction, tools),
	})
	messages = append(messages, history...)

	var last string
	for step := 0; step < r.maxToolSteps; step++ {
		reply, err := r.provider.Chat(ctx, messages, llm.WithModel(cfg.Model))
		if err != nil {
			return "", err
		}
		last = reply

		call, ok := parseToolCall(reply)
		if !ok {
			return reply, nil
		}

		output := r.invokeTool(ctx, cfg.Name, tools, call)
		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: reply},
			llm.Message{Role: llm.RoleUser, Content: "Tool " + call.Tool + " returned: " + output},
		)
	}

	// Tool budget exhausted; hand back whatever the model said last.
	return last, nil
}

// delegate runs a sub-agent as a single-shot turn. Sub-agents see only the
// delegated input, not the parent's history.
func (r *Runner) delegate(ctx context.Context, sub *Config, input string) (string, error) {
	return r.runAgent(ctx, sub, []llm.Message{{Role: llm.RoleUser, Content: input}})
}

func (r *Runner) invokeTool(ctx context.Context, agentName string, tools []Tool, call toolCall) string {
	for _, tool := range tools {
		if tool.Name != call.Tool {
			continue
		}
		output, err := tool.Run(ctx, call.Input)
		if err != nil {
			r.log.Warn("agent", "tool call failed", map[string]interface{}{
				"agent": agentName,
				"tool":  call.Tool,
				"error": err.Error(),
			})
			return "the tool failed: " + err.Error()
		}
		return output
	}
	return "unknown tool: " + call.Tool
}

type toolCall struct {
	Tool  string `json:"tool"`
	Input string `json:"input"`
}

// parseToolCall recognizes a reply that is exactly a tool invocation. Models
// often wrap JSON in markdown fences, so those are stripped first.
func parseToolCall(reply string) (toolCall, bool) {
	cleaned := trimFences(reply)
	if !strings.HasPrefix(cleaned, "{") {
		return toolCall{}, false
	}
	var call toolCall
	if err := json.Unmarshal([]byte(cleaned), &call); err != nil || call.Tool == "" {
		return toolCall{}, false
	}
	return call, true
}

func trimFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func splitChunks(text string, size int) []string {
	if size <= 0 {
		return []string{text}
	}
	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
