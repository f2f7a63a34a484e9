package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"sales-assistant-be/internal/dto"
	"sales-assistant-be/internal/entity"
	"sales-assistant-be/internal/pkg/serverutils"
	"sales-assistant-be/internal/repository/contract"
	"sales-assistant-be/pkg/embedding"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{}) {}
func (nopLogger) Warn(module, message string, details map[string]interface{}) {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error { return nil }

type fakeDocumentRepo struct {
	docs map[uuid.UUID]*entity.KnowledgeDocument
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[uuid.UUID]*entity.KnowledgeDocument)}
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *entity.KnowledgeDocument) error {
	r.docs[doc.Id] = doc
	return nil
}

func (r *fakeDocumentRepo) Update(ctx context.Context, doc *entity.KnowledgeDocument) error {
	r.docs[doc.Id] = doc
	return nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.docs, id)
	return nil
}

func (r *fakeDocumentRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.KnowledgeDocument, error) {
	return r.docs[id], nil
}

func (r *fakeDocumentRepo) FindAll(ctx context.Context) ([]*entity.KnowledgeDocument, error) {
	out := make([]*entity.KnowledgeDocument, 0, len(r.docs))
	for _, doc := range r.docs {
		out = append(out, doc)
	}
	return out, nil
}

type fakeChunkRepo struct {
	count   int64
	deleted []uuid.UUID
}

func (r *fakeChunkRepo) ReplaceForDocument(ctx context.Context, documentId uuid.UUID, chunks []*entity.KnowledgeChunk) error {
	return nil
}

func (r *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	r.deleted = append(r.deleted, documentId)
	return nil
}

func (r *fakeChunkRepo) Count(ctx context.Context) (int64, error) { return r.count, nil }

func (r *fakeChunkRepo) SearchTopK(ctx context.Context, emb []float32, limit int) ([]*contract.ScoredKnowledgeChunk, error) {
	return nil, errors.New("not implemented")
}

type fakePublisher struct {
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{}, nil
}

func (fakeEmbedder) Name() string { return "fake" }

func newKnowledgeServiceForTest() (IKnowledgeService, *fakeDocumentRepo, *fakeChunkRepo, *fakePublisher) {
	docs := newFakeDocumentRepo()
	chunks := &fakeChunkRepo{}
	pub := &fakePublisher{}
	svc := NewKnowledgeService(docs, chunks, pub, fakeEmbedder{}, nopLogger{})
	return svc, docs, chunks, pub
}

func TestKnowledgeCreateQueuesEmbedding(t *testing.T) {
	svc, docs, _, pub := newKnowledgeServiceForTest()

	res, err := svc.Create(context.Background(), &dto.CreateKnowledgeDocumentRequest{
		Title:   "Pricing",
		Content: "Plans start at $49.",
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	id, err := uuid.Parse(res.Id)
	require.NoError(t, err)
	assert.Contains(t, docs.docs, id)

	require.Len(t, pub.payloads, 1)
	var msg dto.PublishEmbedDocumentMessage
	require.NoError(t, json.Unmarshal(pub.payloads[0], &msg))
	assert.Equal(t, id, msg.DocumentId)
}

func TestKnowledgeUpdateMissingDocument(t *testing.T) {
	svc, _, _, _ := newKnowledgeServiceForTest()

	_, err := svc.Update(context.Background(), uuid.New(), &dto.UpdateKnowledgeDocumentRequest{
		Title:   "x",
		Content: "y",
	})

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, fiber.StatusNotFound, appErr.Code)
}

func TestKnowledgeUpdateRequeuesEmbedding(t *testing.T) {
	svc, _, _, pub := newKnowledgeServiceForTest()

	created, err := svc.Create(context.Background(), &dto.CreateKnowledgeDocumentRequest{
		Title:   "Pricing",
		Content: "old",
	})
	require.NoError(t, err)

	id, _ := uuid.Parse(created.Id)
	updated, err := svc.Update(context.Background(), id, &dto.UpdateKnowledgeDocumentRequest{
		Title:   "Pricing",
		Content: "new",
	})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Content)
	assert.Len(t, pub.payloads, 2)
}

func TestKnowledgeDeleteRemovesChunks(t *testing.T) {
	svc, _, chunks, _ := newKnowledgeServiceForTest()

	created, err := svc.Create(context.Background(), &dto.CreateKnowledgeDocumentRequest{
		Title:   "Doc",
		Content: "content",
	})
	require.NoError(t, err)
	id, _ := uuid.Parse(created.Id)

	require.NoError(t, svc.Delete(context.Background(), id))
	assert.Equal(t, []uuid.UUID{id}, chunks.deleted)

	_, err = svc.Show(context.Background(), id)
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, fiber.StatusNotFound, appErr.Code)
}

func TestKnowledgeStatus(t *testing.T) {
	svc, _, chunks, _ := newKnowledgeServiceForTest()

	res, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "empty", res.Status)
	assert.Equal(t, "fake", res.EmbeddingProvider)

	chunks.count = 12
	res, err = svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ready", res.Status)
	assert.Equal(t, int64(12), res.Chunks)
}
