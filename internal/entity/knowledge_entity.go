package entity

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeDocument is a source document in the assistant's knowledge base.
type KnowledgeDocument struct {
	Id        uuid.UUID
	Title     string
	Source    string // e.g. file name or URL the content came from
	Content   string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// KnowledgeChunk is one embedded slice of a document, stored in the vector index.
type KnowledgeChunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Content    string
	Metadata   map[string]interface{}
	Embedding  []float32
	ChunkIndex int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
