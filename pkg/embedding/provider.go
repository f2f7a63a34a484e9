package embedding

// Task types passed to providers that distinguish indexing from querying.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)

	// Name identifies the backing provider, for the index status endpoint.
	Name() string
}
