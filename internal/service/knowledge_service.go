package service

import (
	"context"
	"encoding/json"
	"time"

	"sales-assistant-be/internal/dto"
	"sales-assistant-be/internal/entity"
	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/internal/pkg/serverutils"
	"sales-assistant-be/internal/repository/contract"
	"sales-assistant-be/pkg/embedding"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IKnowledgeService interface {
	Create(ctx context.Context, req *dto.CreateKnowledgeDocumentRequest) (*dto.KnowledgeDocumentResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateKnowledgeDocumentRequest) (*dto.KnowledgeDocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Show(ctx context.Context, id uuid.UUID) (*dto.KnowledgeDocumentResponse, error)
	List(ctx context.Context) ([]*dto.KnowledgeDocumentResponse, error)
	Status(ctx context.Context) (*dto.KnowledgeStatusResponse, error)
}

type knowledgeService struct {
	documents         contract.KnowledgeDocumentRepository
	chunks            contract.KnowledgeChunkRepository
	publisherService  IPublisherService
	embeddingProvider embedding.EmbeddingProvider
	log               logger.ILogger
}

func NewKnowledgeService(
	documents contract.KnowledgeDocumentRepository,
	chunks contract.KnowledgeChunkRepository,
	publisherService IPublisherService,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		documents:         documents,
		chunks:            chunks,
		publisherService:  publisherService,
		embeddingProvider: embeddingProvider,
		log:               log,
	}
}

func (s *knowledgeService) Create(ctx context.Context, req *dto.CreateKnowledgeDocumentRequest) (*dto.KnowledgeDocumentResponse, error) {
	doc := &entity.KnowledgeDocument{
		Id:        uuid.New(),
		Title:     req.Title,
		Source:    req.Source,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.queueEmbedding(ctx, doc.Id); err != nil {
		return nil, err
	}

	return toDocumentResponse(doc), nil
}

func (s *knowledgeService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateKnowledgeDocumentRequest) (*dto.KnowledgeDocumentResponse, error) {
	doc, err := s.documents.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, serverutils.NewAppError(fiber.StatusNotFound, "document not found")
	}

	doc.Title = req.Title
	doc.Source = req.Source
	doc.Content = req.Content

	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, err
	}

	// Content changed, so the old chunks must be re-embedded.
	if err := s.queueEmbedding(ctx, doc.Id); err != nil {
		return nil, err
	}

	return toDocumentResponse(doc), nil
}

func (s *knowledgeService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.documents.FindById(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return serverutils.NewAppError(fiber.StatusNotFound, "document not found")
	}

	if err := s.chunks.DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	return s.documents.Delete(ctx, id)
}

func (s *knowledgeService) Show(ctx context.Context, id uuid.UUID) (*dto.KnowledgeDocumentResponse, error) {
	doc, err := s.documents.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, serverutils.NewAppError(fiber.StatusNotFound, "document not found")
	}
	return toDocumentResponse(doc), nil
}

func (s *knowledgeService) List(ctx context.Context) ([]*dto.KnowledgeDocumentResponse, error) {
	docs, err := s.documents.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.KnowledgeDocumentResponse, len(docs))
	for i, doc := range docs {
		out[i] = toDocumentResponse(doc)
	}
	return out, nil
}

func (s *knowledgeService) Status(ctx context.Context) (*dto.KnowledgeStatusResponse, error) {
	docs, err := s.documents.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	chunkCount, err := s.chunks.Count(ctx)
	if err != nil {
		return nil, err
	}

	status := "ready"
	if chunkCount == 0 {
		status = "empty"
	}

	return &dto.KnowledgeStatusResponse{
		Status:            status,
		Documents:         len(docs),
		Chunks:            chunkCount,
		EmbeddingProvider: s.embeddingProvider.Name(),
	}, nil
}

func (s *knowledgeService) queueEmbedding(ctx context.Context, documentId uuid.UUID) error {
	payload, err := json.Marshal(dto.PublishEmbedDocumentMessage{DocumentId: documentId})
	if err != nil {
		return err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		return err
	}
	s.log.Info("knowledge", "queued document for embedding", map[string]interface{}{
		"document_id": documentId.String(),
	})
	return nil
}

func toDocumentResponse(doc *entity.KnowledgeDocument) *dto.KnowledgeDocumentResponse {
	return &dto.KnowledgeDocumentResponse{
		Id:        doc.Id.String(),
		Title:     doc.Title,
		Source:    doc.Source,
		Content:   doc.Content,
		CreatedAt: doc.CreatedAt,
	}
}
