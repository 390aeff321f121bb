package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/weaver-labs/weaver/internal/llm"
	"github.com/weaver-labs/weaver/internal/tools"
)

// execute runs one tool call and always returns the JSON text of either the
// tool's payload or a tool_error payload.
func (r *reader) execute(ctx context.Context, call llm.ToolCall) string {
	name := call.Function.Name
	raw := call.Function.Arguments

	args, err := parseArguments(raw)
	if err != nil {
		return r.toolError(name, raw, fmt.Errorf("invalid JSON arguments: %w", err))
	}

	def, handler, ok := r.tools.Lookup(name)
	if !ok {
		return r.toolError(name, raw, fmt.Errorf("unknown tool %q", name))
	}
	if err := tools.ValidateArgs(def.Parameters, args); err != nil {
		return r.toolError(name, raw, fmt.Errorf("invalid arguments for %s: %w", name, err))
	}

	payload, err := handler(ctx, args)
	if err != nil {
		return r.toolError(name, raw, err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return r.toolError(name, raw, fmt.Errorf("encode result: %w", err))
	}

	r.agent.metrics.RecordToolCall(name, StatusOK)
	r.logger.Info("tool_call", append([]zap.Field{zap.String("tool", name)}, payloadFields(payload)...)...)
	return string(encoded)
}

func parseArguments(raw string) (tools.Args, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return tools.Args{}, nil
	}
	var args tools.Args
	if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = tools.Args{}
	}
	return args, nil
}

func (r *reader) toolError(name, raw string, err error) string {
	r.agent.metrics.RecordToolCall(name, StatusError)
	r.logger.Warn("tool_error", zap.String("tool", name), zap.Error(err))

	var arguments interface{} = raw
	if strings.TrimSpace(raw) == "" {
		arguments = map[string]interface{}{}
	} else {
		var parsed interface{}
		if json.Unmarshal([]byte(raw), &parsed) == nil {
			arguments = parsed
		}
	}

	encoded, encErr := json.Marshal(ToolError{
		Type:      "tool_error",
		Tool:      name,
		Arguments: arguments,
		Message:   err.Error(),
	})
	if encErr != nil {
		return fmt.Sprintf(`{"type":"tool_error","tool":%q,"message":%q}`, name, err.Error())
	}
	return string(encoded)
}

// payloadFields picks the salient size of each tool payload for logging.
func payloadFields(payload interface{}) []zap.Field {
	switch p := payload.(type) {
	case tools.Listing:
		return []zap.Field{zap.Int("entry_count", len(p.Entries))}
	case tools.FileContent:
		return []zap.Field{zap.String("path", p.Path), zap.Int("bytes", len(p.Content))}
	case tools.FileRange:
		return []zap.Field{zap.String("path", p.Path), zap.Int("start_line", p.StartLine), zap.Int("end_line", p.EndLine)}
	case tools.SearchMatches:
		return []zap.Field{zap.Int("match_count", len(p.Matches))}
	case DelegationBatch:
		return []zap.Field{zap.Int("requested", p.Requested), zap.Int("max_concurrency", p.MaxConcurrency)}
	default:
		return nil
	}
}
