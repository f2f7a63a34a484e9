package contract

import (
	"context"

	"sales-assistant-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredKnowledgeChunk pairs a chunk with its cosine similarity to a query vector.
type ScoredKnowledgeChunk struct {
	Chunk      *entity.KnowledgeChunk
	Similarity float64
}

type KnowledgeDocumentRepository interface {
	Create(ctx context.Context, doc *entity.KnowledgeDocument) error
	Update(ctx context.Context, doc *entity.KnowledgeDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.KnowledgeDocument, error)
	FindAll(ctx context.Context) ([]*entity.KnowledgeDocument, error)
}

type KnowledgeChunkRepository interface {
	// ReplaceForDocument transactionally swaps a document's chunk rows.
	ReplaceForDocument(ctx context.Context, documentId uuid.UUID, chunks []*entity.KnowledgeChunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	Count(ctx context.Context) (int64, error)

	// SearchTopK returns the k nearest chunks with similarity scores in
	// descending order. No threshold is applied here; score filtering is
	// the retriever's responsibility.
	SearchTopK(ctx context.Context, embedding []float32, limit int) ([]*ScoredKnowledgeChunk, error)
}
