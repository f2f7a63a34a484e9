package dto

import (
	"time"

	"github.com/google/uuid"
)

// PublishEmbedDocumentMessage is the payload queued for the indexer when a
// document needs (re)embedding.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

type CreateKnowledgeDocumentRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=255"`
	Source  string `json:"source" validate:"omitempty,max=255"`
	Content string `json:"content" validate:"required,min=1"`
}

type UpdateKnowledgeDocumentRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=255"`
	Source  string `json:"source" validate:"omitempty,max=255"`
	Content string `json:"content" validate:"required,min=1"`
}

type KnowledgeDocumentResponse struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type KnowledgeStatusResponse struct {
	Status            string `json:"status"`
	Documents         int    `json:"documents"`
	Chunks            int64  `json:"chunks"`
	EmbeddingProvider string `json:"embedding_provider"`
}
