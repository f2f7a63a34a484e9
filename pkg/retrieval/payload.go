package retrieval

import "encoding/json"

// ToolPayload renders a retrieval result as the JSON the agent's tool call
// returns. Empty outcomes all collapse to "no_results" on the wire; the
// distinction between an empty index and a below-threshold miss stays
// internal.
func ToolPayload(result Result) string {
	if !result.HasResults() {
		payload, _ := json.Marshal(map[string]interface{}{
			"status":  "no_results",
			"query":   result.Query,
			"message": "No relevant documents found",
		})
		return string(payload)
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"status":  "success",
		"query":   result.Query,
		"results": result.Documents,
	})
	return string(payload)
}
