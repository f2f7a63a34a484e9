package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"sales-assistant-be/internal/entity"
	"sales-assistant-be/internal/repository/contract"
	"sales-assistant-be/pkg/embedding"

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

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

func (f *fakeEmbedder) Name() string { return "fake" }

type fakeIndex struct {
	scored []*contract.ScoredKnowledgeChunk
	err    error
}

func (f *fakeIndex) ReplaceForDocument(ctx context.Context, documentId uuid.UUID, chunks []*entity.KnowledgeChunk) error {
	return nil
}

func (f *fakeIndex) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error { return nil }

func (f *fakeIndex) Count(ctx context.Context) (int64, error) { return int64(len(f.scored)), nil }

func (f *fakeIndex) SearchTopK(ctx context.Context, emb []float32, limit int) ([]*contract.ScoredKnowledgeChunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.scored, nil
}

func scoredChunk(content string, similarity float64) *contract.ScoredKnowledgeChunk {
	return &contract.ScoredKnowledgeChunk{
		Chunk:      &entity.KnowledgeChunk{Content: content, Metadata: map[string]interface{}{"source": "test"}},
		Similarity: similarity,
	}
}

func TestFilterByScore(t *testing.T) {
	docs := func(scores ...float64) []Document {
		out := make([]Document, len(scores))
		for i, s := range scores {
			out[i] = Document{Content: "doc", Score: s}
		}
		return out
	}

	tests := []struct {
		name      string
		input     []Document
		threshold float64
		want      []float64
	}{
		{
			name:      "drops scores below threshold",
			input:     docs(0.6, 0.5, 0.3),
			threshold: 0.4,
			want:      []float64{0.6, 0.5},
		},
		{
			name:      "exact threshold is kept",
			input:     docs(0.4, 0.39999),
			threshold: 0.4,
			want:      []float64{0.4},
		},
		{
			name:      "zero threshold keeps everything",
			input:     docs(0.9, 0.1, 0.0),
			threshold: 0.0,
			want:      []float64{0.9, 0.1, 0.0},
		},
		{
			name:      "threshold of 1.0 keeps only perfect matches",
			input:     docs(1.0, 0.99),
			threshold: 1.0,
			want:      []float64{1.0},
		},
		{
			name:      "empty input stays empty",
			input:     nil,
			threshold: 0.4,
			want:      []float64{},
		},
		{
			name:      "preserves input order",
			input:     docs(0.5, 0.9, 0.7),
			threshold: 0.4,
			want:      []float64{0.5, 0.9, 0.7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByScore(tt.input, tt.threshold)
			require.Len(t, got, len(tt.want))
			for i, score := range tt.want {
				assert.Equal(t, score, got[i].Score)
			}
		})
	}
}

func TestRetrieveFiltersByThreshold(t *testing.T) {
	index := &fakeIndex{scored: []*contract.ScoredKnowledgeChunk{
		scoredChunk("pricing overview", 0.6),
		scoredChunk("case study", 0.5),
		scoredChunk("unrelated blog post", 0.3),
	}}
	r := NewRetriever(&fakeEmbedder{}, index, 3, 0.4, nopLogger{})

	result := r.Retrieve(context.Background(), "what does it cost?")

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	require.Len(t, result.Documents, 2)
	assert.Equal(t, "pricing overview", result.Documents[0].Content)
	assert.Equal(t, "case study", result.Documents[1].Content)
}

func TestRetrieveAllBelowThreshold(t *testing.T) {
	index := &fakeIndex{scored: []*contract.ScoredKnowledgeChunk{
		scoredChunk("a", 0.2),
		scoredChunk("b", 0.1),
	}}
	r := NewRetriever(&fakeEmbedder{}, index, 3, 0.4, nopLogger{})

	result := r.Retrieve(context.Background(), "query")

	assert.Equal(t, OutcomeBelowThreshold, result.Outcome)
	assert.False(t, result.HasResults())
}

func TestRetrieveEmptyIndex(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeIndex{}, 3, 0.4, nopLogger{})

	result := r.Retrieve(context.Background(), "query")

	assert.Equal(t, OutcomeNoCandidates, result.Outcome)
	assert.Empty(t, result.Documents)
}

func TestRetrieveBlankQuery(t *testing.T) {
	// A backend call would surface as OutcomeBackendError, so a
	// no-candidates outcome proves neither was reached.
	embedder := &fakeEmbedder{err: errors.New("must not be called")}
	index := &fakeIndex{err: errors.New("must not be called")}
	r := NewRetriever(embedder, index, 3, 0.4, nopLogger{})

	for _, query := range []string{"", "   ", "\t\n"} {
		result := r.Retrieve(context.Background(), query)
		assert.Equal(t, OutcomeNoCandidates, result.Outcome)
		assert.False(t, result.HasResults())
	}
}

func TestRetrieveDegradesOnEmbeddingFailure(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{err: errors.New("quota exceeded")}, &fakeIndex{}, 3, 0.4, nopLogger{})

	result := r.Retrieve(context.Background(), "query")

	assert.Equal(t, OutcomeBackendError, result.Outcome)
	assert.False(t, result.HasResults())
}

func TestRetrieveDegradesOnSearchFailure(t *testing.T) {
	index := &fakeIndex{err: errors.New("connection refused")}
	r := NewRetriever(&fakeEmbedder{}, index, 3, 0.4, nopLogger{})

	result := r.Retrieve(context.Background(), "query")

	assert.Equal(t, OutcomeBackendError, result.Outcome)
	assert.False(t, result.HasResults())
}

func TestToolPayloadNoResults(t *testing.T) {
	payload := ToolPayload(Result{Query: "anything", Outcome: OutcomeBelowThreshold})

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
	assert.Equal(t, "no_results", decoded["status"])
	assert.Equal(t, "anything", decoded["query"])
	assert.Equal(t, "No relevant documents found", decoded["message"])
	assert.NotContains(t, decoded, "results")
}

func TestToolPayloadSuccess(t *testing.T) {
	result := Result{
		Query: "pricing",
		Documents: []Document{
			{Content: "plans start at $49", Metadata: map[string]interface{}{"source": "pricing.md"}, Score: 0.82},
		},
		Outcome: OutcomeSuccess,
	}

	payload := ToolPayload(result)

	var decoded struct {
		Status  string     `json:"status"`
		Query   string     `json:"query"`
		Results []Document `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
	assert.Equal(t, "success", decoded.Status)
	assert.Equal(t, "pricing", decoded.Query)
	require.Len(t, decoded.Results, 1)
	assert.Equal(t, "plans start at $49", decoded.Results[0].Content)
	assert.Equal(t, 0.82, decoded.Results[0].Score)
}
