package agent

import (
	"errors"
	"sync"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content is one message pushed into a session's request queue.
type Content struct {
	Role string
	Text string
}

func NewUserContent(text string) Content {
	return Content{Role: RoleUser, Text: text}
}

var ErrQueueClosed = errors.New("agent: request queue closed")

// RequestQueue is the inbound side of a live session. Closing it tells the
// runner no more input is coming.
type RequestQueue struct {
	ch   chan Content
	done chan struct{}
	once sync.Once
}

func NewRequestQueue(size int) *RequestQueue {
	return &RequestQueue{
		ch:   make(chan Content, size),
		done: make(chan struct{}),
	}
}

func (q *RequestQueue) Send(content Content) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.ch <- content:
		return nil
	case <-q.done:
		return ErrQueueClosed
	}
}

func (q *RequestQueue) Close() {
	q.once.Do(func() { close(q.done) })
}

// Recv exposes the consuming side of the queue.
func (q *RequestQueue) Recv() <-chan Content {
	return q.ch
}

func (q *RequestQueue) closed() <-chan struct{} {
	return q.done
}
