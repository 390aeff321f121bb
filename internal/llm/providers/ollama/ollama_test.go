package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weaver-labs/weaver/internal/llm"
)

func TestChat(t *testing.T) {
	t.Parallel()

	p := NewProvider("ollama", "http://mock", 0)
	p.client = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			require.Equal(t, "/api/chat", r.URL.Path)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, false, body["stream"])
			opts := body["options"].(map[string]interface{})
			require.Equal(t, 0.7, opts["temperature"])
			require.Equal(t, 1.0, opts["top_p"])

			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     make(http.Header),
				Body:       io.NopCloser(strings.NewReader(`{"message":{"role":"assistant","content":"pong"},"done_reason":"stop"}`)),
			}, nil
		}),
	}

	resp, err := p.Chat(context.Background(), llm.ChatRequest{
		Model:       "llama3",
		Temperature: 0.7,
		TopP:        1.0,
		Messages: []llm.ChatMessage{
			{Role: llm.RoleUser, Content: "ping"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "pong", resp.Message.Content)
	require.Equal(t, "stop", resp.FinishReason)
}

func TestChatToolCallsReencodeArguments(t *testing.T) {
	t.Parallel()

	p := NewProvider("ollama", "http://mock", 0)
	p.client = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			var body struct {
				Tools []struct {
					Type     string `json:"type"`
					Function struct {
						Name string `json:"name"`
					} `json:"function"`
				} `json:"tools"`
				Messages []struct {
					Role      string `json:"role"`
					ToolCalls []struct {
						Function struct {
							Arguments map[string]interface{} `json:"arguments"`
						} `json:"function"`
					} `json:"tool_calls"`
				} `json:"messages"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Len(t, body.Tools, 1)
			require.Equal(t, "function", body.Tools[0].Type)
			require.Equal(t, "read_file_full", body.Tools[0].Function.Name)
			require.Len(t, body.Messages, 2)
			require.Equal(t, "notes.txt", body.Messages[1].ToolCalls[0].Function.Arguments["path"])

			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     make(http.Header),
				Body: io.NopCloser(strings.NewReader(`{"message":{"role":"assistant","content":"",
					"tool_calls":[{"function":{"name":"list_directory","arguments":{"path":"src"}}}]}}`)),
			}, nil
		}),
	}

	resp, err := p.Chat(context.Background(), llm.ChatRequest{
		Model: "llama3",
		Tools: []llm.ToolDefinition{{Name: "read_file_full", Parameters: json.RawMessage(`{"type":"object"}`)}},
		Messages: []llm.ChatMessage{
			{Role: llm.RoleUser, Content: "read"},
			{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{
				ID:       "call_1",
				Function: llm.ToolFunctionCall{Name: "read_file_full", Arguments: `{"path":"notes.txt"}`},
			}}},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Message.ToolCalls, 1)
	call := resp.Message.ToolCalls[0]
	require.Equal(t, "list_directory", call.Function.Name)
	require.JSONEq(t, `{"path":"src"}`, call.Function.Arguments)
	require.True(t, strings.HasPrefix(call.ID, "call_"))
}

func TestChatStatusError(t *testing.T) {
	t.Parallel()

	p := NewProvider("ollama", "http://mock", 0)
	p.client = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusInternalServerError,
				Header:     make(http.Header),
				Body:       io.NopCloser(strings.NewReader(`boom`)),
			}, nil
		}),
	}

	_, err := p.Chat(context.Background(), llm.ChatRequest{Model: "llama3"})
	require.ErrorContains(t, err, "status 500")
}

type roundTripFunc func(r *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestChatMalformedBodyIsInvalidResponse(t *testing.T) {
	t.Parallel()

	p := NewProvider("ollama", "http://mock", 0)
	p.client = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     make(http.Header),
				Body:       io.NopCloser(strings.NewReader(`{"message":"not an object"}`)),
			}, nil
		}),
	}

	_, err := p.Chat(context.Background(), llm.ChatRequest{Model: "llama3"})
	require.ErrorIs(t, err, llm.ErrInvalidResponse)
}
