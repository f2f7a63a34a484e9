package retrieval

import (
	"context"
	"strings"

	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/internal/repository/contract"
	"sales-assistant-be/pkg/embedding"
)

// Outcome classifies why a retrieval returned the documents it did. The wire
// payload only distinguishes success from no_results, but the finer grain is
// kept for logging.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNoCandidates
	OutcomeBelowThreshold
	OutcomeBackendError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoCandidates:
		return "no_candidates"
	case OutcomeBelowThreshold:
		return "below_threshold"
	case OutcomeBackendError:
		return "backend_error"
	default:
		return "unknown"
	}
}

// Document is a retrieved chunk with its similarity score.
type Document struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
	Score    float64                `json:"score"`
}

// Result is what a retrieval produced. Documents is empty unless Outcome is
// OutcomeSuccess.
type Result struct {
	Query     string
	Documents []Document
	Outcome   Outcome
}

func (r Result) HasResults() bool {
	return len(r.Documents) > 0
}

const (
	DefaultTopK           = 3
	DefaultScoreThreshold = 0.4
)

// Retriever embeds a query, searches the vector index, and keeps only
// documents whose similarity clears the threshold.
type Retriever struct {
	embedder  embedding.EmbeddingProvider
	index     contract.KnowledgeChunkRepository
	topK      int
	threshold float64
	log       logger.ILogger
}

func NewRetriever(embedder embedding.EmbeddingProvider, index contract.KnowledgeChunkRepository, topK int, threshold float64, log logger.ILogger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		embedder:  embedder,
		index:     index,
		topK:      topK,
		threshold: threshold,
		log:       log,
	}
}

// Retrieve never returns an error: embedding or index failures degrade to an
// empty result so the caller can answer "no relevant documents" instead of
// surfacing infrastructure problems to the conversation. A blank query is
// answered as no candidates without touching the embedder or the index.
func (r *Retriever) Retrieve(ctx context.Context, query string) Result {
	if strings.TrimSpace(query) == "" {
		return Result{Query: query, Outcome: OutcomeNoCandidates}
	}

	embedResp, err := r.embedder.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		r.log.Error("retrieval", "failed to embed query", map[string]interface{}{
			"error": err.Error(),
		})
		return Result{Query: query, Outcome: OutcomeBackendError}
	}

	scored, err := r.index.SearchTopK(ctx, embedResp.Embedding.Values, r.topK)
	if err != nil {
		r.log.Error("retrieval", "vector search failed", map[string]interface{}{
			"error": err.Error(),
		})
		return Result{Query: query, Outcome: OutcomeBackendError}
	}

	if len(scored) == 0 {
		return Result{Query: query, Outcome: OutcomeNoCandidates}
	}

	candidates := make([]Document, len(scored))
	for i, s := range scored {
		candidates[i] = Document{
			Content:  s.Chunk.Content,
			Metadata: s.Chunk.Metadata,
			Score:    s.Similarity,
		}
	}

	kept := FilterByScore(candidates, r.threshold)
	if len(kept) == 0 {
		r.log.Info("retrieval", "all candidates below threshold", map[string]interface{}{
			"candidates": len(candidates),
			"threshold":  r.threshold,
		})
		return Result{Query: query, Outcome: OutcomeBelowThreshold}
	}

	return Result{Query: query, Documents: kept, Outcome: OutcomeSuccess}
}

// FilterByScore keeps documents whose score is >= threshold, preserving the
// input order. The threshold is a strict lower bound on exclusion: a document
// scoring exactly the threshold is kept.
func FilterByScore(docs []Document, threshold float64) []Document {
	kept := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Score >= threshold {
			kept = append(kept, doc)
		}
	}
	return kept
}
