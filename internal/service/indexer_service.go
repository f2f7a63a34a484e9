package service

import (
	"context"
	"encoding/json"
	"time"

	"sales-assistant-be/internal/dto"
	"sales-assistant-be/internal/entity"
	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/internal/repository/contract"
	"sales-assistant-be/pkg/embedding"
	"sales-assistant-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const (
	chunkSize    = 1500
	chunkOverlap = 200
)

// IIndexerService consumes embed-document messages and keeps the vector
// index in sync with the knowledge base.
type IIndexerService interface {
	Consume(ctx context.Context) error
}

type indexerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	documents         contract.KnowledgeDocumentRepository
	chunks            contract.KnowledgeChunkRepository
	embeddingProvider embedding.EmbeddingProvider
	log               logger.ILogger
}

func NewIndexerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	documents contract.KnowledgeDocumentRepository,
	chunks contract.KnowledgeChunkRepository,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IIndexerService {
	return &indexerService{
		pubSub:            pubSub,
		topicName:         topicName,
		documents:         documents,
		chunks:            chunks,
		embeddingProvider: embeddingProvider,
		log:               log,
	}
}

func (s *indexerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *indexerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.log.Error("indexer", "failed to unmarshal embed message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed messages would retry forever
		return
	}

	doc, err := s.documents.FindById(ctx, payload.DocumentId)
	if err != nil {
		s.log.Error("indexer", "failed to load document", map[string]interface{}{
			"document_id": payload.DocumentId.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	if doc == nil {
		// Deleted between publish and consume.
		msg.Ack()
		return
	}

	chunks, err := s.buildChunks(doc)
	if err != nil {
		s.log.Error("indexer", "failed to embed document", map[string]interface{}{
			"document_id": doc.Id.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	if err := s.chunks.ReplaceForDocument(ctx, doc.Id, chunks); err != nil {
		s.log.Error("indexer", "failed to store chunks", map[string]interface{}{
			"document_id": doc.Id.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	s.log.Info("indexer", "document indexed", map[string]interface{}{
		"document_id": doc.Id.String(),
		"chunks":      len(chunks),
	})
	msg.Ack()
}

func (s *indexerService) buildChunks(doc *entity.KnowledgeDocument) ([]*entity.KnowledgeChunk, error) {
	parts := utils.SplitText(doc.Content, chunkSize, chunkOverlap)

	chunks := make([]*entity.KnowledgeChunk, 0, len(parts))
	for i, part := range parts {
		resp, err := s.embeddingProvider.Generate(part, embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, &entity.KnowledgeChunk{
			Id:         uuid.New(),
			DocumentId: doc.Id,
			Content:    part,
			Metadata: map[string]interface{}{
				"title":       doc.Title,
				"source":      doc.Source,
				"chunk_index": i,
			},
			Embedding:  resp.Embedding.Values,
			ChunkIndex: i,
			CreatedAt:  time.Now(),
		})
	}
	return chunks, nil
}
