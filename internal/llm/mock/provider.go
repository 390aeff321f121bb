package mock

import (
	"context"

	"github.com/weaver-labs/weaver/internal/llm"
)

// Provider is a test double implementing llm.Provider.
type Provider struct {
	NameValue string
	ChatFn    func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error)
}

func (p *Provider) Name() string {
	if p.NameValue != "" {
		return p.NameValue
	}
	return "mock"
}

func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	if p.ChatFn != nil {
		return p.ChatFn(ctx, req)
	}
	return llm.ChatResponse{
		Message: llm.ChatMessage{
			Role:    llm.RoleAssistant,
			Content: "mock",
		},
	}, nil
}

// Text builds a final assistant response.
func Text(content string) llm.ChatResponse {
	return llm.ChatResponse{Message: llm.ChatMessage{Role: llm.RoleAssistant, Content: content}}
}

// Calls builds an assistant response requesting the given tool calls.
func Calls(calls ...llm.ToolCall) llm.ChatResponse {
	return llm.ChatResponse{Message: llm.ChatMessage{Role: llm.RoleAssistant, ToolCalls: calls}}
}

// Call builds a function tool call with raw JSON arguments.
func Call(id, name, arguments string) llm.ToolCall {
	return llm.ToolCall{
		ID:       id,
		Type:     "function",
		Function: llm.ToolFunctionCall{Name: name, Arguments: arguments},
	}
}
