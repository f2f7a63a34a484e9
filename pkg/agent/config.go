package agent

import (
	"context"
	"fmt"
	"strings"
)

// Tool is a named capability the model can invoke mid-turn.
type Tool struct {
	Name        string
	Description string
	Run         func(ctx context.Context, input string) (string, error)
}

// Config declares an agent: its identity, the model it runs on, and the
// tools and sub-agents it can reach. Sub-agents are exposed to the parent
// as delegation tools.
type Config struct {
	Name        string
	Model       string
	Description string
	Instruction string
	Tools       []Tool
	SubAgents   []*Config
}

// effectiveTools flattens sub-agents into delegation tools alongside the
// agent's own tools.
func (c *Config) effectiveTools(run func(ctx context.Context, sub *Config, input string) (string, error)) []Tool {
	tools := make([]Tool, 0, len(c.Tools)+len(c.SubAgents))
	tools = append(tools, c.Tools...)
	for _, sub := range c.SubAgents {
		sub := sub
		tools = append(tools, Tool{
			Name:        "delegate_to_" + sub.Name,
			Description: sub.Description,
			Run: func(ctx context.Context, input string) (string, error) {
				return run(ctx, sub, input)
			},
		})
	}
	return tools
}

// systemPrompt renders the instruction plus the tool-calling protocol the
// model must follow.
func systemPrompt(instruction string, tools []Tool) string {
	if len(tools) == 0 {
		return instruction
	}

	var sb strings.Builder
	sb.WriteString(instruction)
	sb.WriteString("\n\nYou have access to the following tools:\n")
	for _, tool := range tools {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", tool.Name, tool.Description))
	}
	sb.WriteString("\nTo call a tool, respond with ONLY a JSON object and nothing else:\n")
	sb.WriteString(`{"tool": "<tool name>", "input": "<input for the tool>"}`)
	sb.WriteString("\nWhen you have enough information, respond with your final answer as plain text.")
	return sb.String()
}
