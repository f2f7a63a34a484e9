package implementation

import (
	"context"

	"sales-assistant-be/internal/entity"
	"sales-assistant-be/internal/mapper"
	"sales-assistant-be/internal/model"
	"sales-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeChunkRepository(db *gorm.DB) contract.KnowledgeChunkRepository {
	return &KnowledgeChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *KnowledgeChunkRepositoryImpl) ReplaceForDocument(ctx context.Context, documentId uuid.UUID, chunks []*entity.KnowledgeChunk) error {
	models := r.mapper.ChunksToModels(chunks)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentId).Delete(&model.KnowledgeChunk{}).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.Create(models).Error; err != nil {
			return err
		}
		for i, m := range models {
			*chunks[i] = *r.mapper.ChunkToEntity(m)
		}
		return nil
	})
}

func (r *KnowledgeChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.KnowledgeChunk{}).Error
}

func (r *KnowledgeChunkRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.KnowledgeChunk{}).Count(&count).Error
	return count, err
}

// SearchTopK runs a cosine-similarity nearest-neighbour query.
// pgvector's <=> operator yields cosine distance, so similarity = 1 - distance.
func (r *KnowledgeChunkRepositoryImpl) SearchTopK(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredKnowledgeChunk, error) {
	if limit <= 0 {
		limit = 3
	}

	type result struct {
		model.KnowledgeChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("knowledge_chunks").
		Select("knowledge_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN knowledge_documents ON knowledge_documents.id = knowledge_chunks.document_id").
		Where("knowledge_chunks.deleted_at IS NULL").
		Where("knowledge_documents.deleted_at IS NULL").
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredKnowledgeChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredKnowledgeChunk{
			Chunk:      r.mapper.ChunkToEntity(&res.KnowledgeChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
