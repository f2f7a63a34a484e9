package entity

import (
	"time"

	"github.com/google/uuid"
)

// Lead is a sales prospect captured by the assistant during a conversation.
type Lead struct {
	Id          uuid.UUID
	SessionId   string
	Name        string
	Email       string
	Company     string
	ProjectIdea string
	CreatedAt   time.Time
}
