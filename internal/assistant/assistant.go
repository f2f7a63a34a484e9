package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"sales-assistant-be/internal/constant"
	"sales-assistant-be/internal/dto"
	"sales-assistant-be/pkg/agent"
	"sales-assistant-be/pkg/retrieval"
	"sales-assistant-be/pkg/websearch"
)

// LeadCapturer persists a lead collected mid-conversation.
type LeadCapturer interface {
	CaptureFromConversation(ctx context.Context, sessionID string, req dto.CaptureLeadRequest) error
}

// Deps are the capabilities the assistant's tools reach into.
type Deps struct {
	Retriever *retrieval.Retriever
	Search    *websearch.Client
	Leads     LeadCapturer
	Model     string
}

// New builds the sales assistant agent tree for one session: a coordinator
// that captures leads and delegates to a knowledge-base specialist and a web
// researcher.
func New(sessionID string, deps Deps) *agent.Config {
	model := deps.Model
	if model == "" {
		model = constant.AssistantModelDefault
	}

	ragAgent := &agent.Config{
		Name:        constant.RagAgentName,
		Model:       model,
		Description: constant.RagAgentDescription,
		Instruction: constant.RagInstruction,
		Tools: []agent.Tool{{
			Name:        "retrieve_documents",
			Description: constant.RetrieveDocumentsToolDescription,
			Run: func(ctx context.Context, input string) (string, error) {
				result := deps.Retriever.Retrieve(ctx, input)
				return retrieval.ToolPayload(result), nil
			},
		}},
	}

	searchAgent := &agent.Config{
		Name:        constant.SearchAgentName,
		Model:       model,
		Description: constant.SearchAgentDescription,
		Instruction: constant.SearchInstruction,
		Tools: []agent.Tool{{
			Name:        "web_search",
			Description: constant.WebSearchToolDescription,
			Run: func(ctx context.Context, input string) (string, error) {
				items, err := deps.Search.Search(ctx, input, 5)
				if err != nil {
					return "", fmt.Errorf("web search: %w", err)
				}
				return websearch.FormatResults(items), nil
			},
		}},
	}

	return &agent.Config{
		Name:        constant.CoordinatorAgentName,
		Model:       model,
		Instruction: constant.CoordinatorInstruction,
		Tools: []agent.Tool{{
			Name:        "save_lead",
			Description: constant.SaveLeadToolDescription,
			Run: func(ctx context.Context, input string) (string, error) {
				var req dto.CaptureLeadRequest
				if err := json.Unmarshal([]byte(input), &req); err != nil {
					return "", fmt.Errorf("parse lead payload: %w", err)
				}
				if err := deps.Leads.CaptureFromConversation(ctx, sessionID, req); err != nil {
					return "", fmt.Errorf("save lead: %w", err)
				}
				return `{"status":"saved"}`, nil
			},
		}},
		SubAgents: []*agent.Config{ragAgent, searchAgent},
	}
}
