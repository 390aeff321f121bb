package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/weaver-labs/weaver/internal/llm"
)

// Provider implements a minimal Ollama chat client.
type Provider struct {
	name    string
	client  *http.Client
	baseURL string
}

// NewProvider constructs an Ollama provider.
func NewProvider(name, baseURL string, timeout time.Duration) *Provider {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:11434"
	}
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &Provider{
		name:    name,
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name returns provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Chat executes a non-streaming chat completion.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	model := req.Model
	if model == "" {
		return llm.ChatResponse{}, fmt.Errorf("model is required")
	}

	options := map[string]interface{}{
		"temperature": req.Temperature,
	}
	if req.TopP > 0 {
		options["top_p"] = req.TopP
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	body := chatRequest{
		Model:    model,
		Messages: toMessages(req.Messages),
		Stream:   false,
		Options:  options,
		Tools:    toTools(req.Tools),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return llm.ChatResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return llm.ChatResponse{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(httpReq)
	if err != nil {
		return llm.ChatResponse{}, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return llm.ChatResponse{}, fmt.Errorf("ollama: status %d: %s", res.StatusCode, string(b))
	}

	var resp chatResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return llm.ChatResponse{}, llm.DecodeError(err)
	}

	role := llm.Role(resp.Message.Role)
	if role == "" {
		role = llm.RoleAssistant
	}
	return llm.ChatResponse{
		Message: llm.ChatMessage{
			Role:      role,
			Content:   resp.Message.Content,
			ToolCalls: fromToolCalls(resp.Message.ToolCalls),
		},
		FinishReason: resp.DoneReason,
		Usage: llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
		ProviderName: p.name,
		Model:        model,
	}, nil
}

type chatRequest struct {
	Model    string                 `json:"model"`
	Messages []message              `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
	Tools    []tool                 `json:"tools,omitempty"`
}

type message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
}

type tool struct {
	Type     string             `json:"type"`
	Function llm.ToolDefinition `json:"function"`
}

// toolCall arguments travel as a JSON object, not a string.
type toolCall struct {
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

type chatResponse struct {
	Message         message `json:"message"`
	DoneReason      string  `json:"done_reason"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
}

func toMessages(msgs []llm.ChatMessage) []message {
	out := make([]message, 0, len(msgs))
	for _, m := range msgs {
		wire := message{
			Role:    string(m.Role),
			Content: m.Content,
		}
		for _, c := range m.ToolCalls {
			var tc toolCall
			tc.Function.Name = c.Function.Name
			tc.Function.Arguments = argumentsObject(c.Function.Arguments)
			wire.ToolCalls = append(wire.ToolCalls, tc)
		}
		out = append(out, wire)
	}
	return out
}

func toTools(defs []llm.ToolDefinition) []tool {
	if len(defs) == 0 {
		return nil
	}
	out := make([]tool, 0, len(defs))
	for _, d := range defs {
		out = append(out, tool{Type: "function", Function: d})
	}
	return out
}

func fromToolCalls(calls []toolCall) []llm.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]llm.ToolCall, 0, len(calls))
	for _, c := range calls {
		args := "{}"
		if raw := bytes.TrimSpace(c.Function.Arguments); len(raw) > 0 && string(raw) != "null" {
			args = string(raw)
			// some models double-encode the object as a string
			var s string
			if json.Unmarshal(raw, &s) == nil {
				args = s
			}
		}
		out = append(out, llm.ToolCall{
			ID:   "call_" + uuid.NewString(),
			Type: "function",
			Function: llm.ToolFunctionCall{
				Name:      c.Function.Name,
				Arguments: args,
			},
		})
	}
	return out
}

func argumentsObject(raw string) json.RawMessage {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	encoded, _ := json.Marshal(trimmed)
	return encoded
}
