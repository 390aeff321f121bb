package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weaver-labs/weaver/internal/config"
	"github.com/weaver-labs/weaver/internal/llm"
	"github.com/weaver-labs/weaver/internal/observability"
	"github.com/weaver-labs/weaver/internal/tools"
)

const defaultRequestTimeout = 120 * time.Second

// Agent answers prompts by driving a tool-calling conversation against a
// backend resolved from the registry. It holds no per-run state and may serve
// concurrent Run calls.
type Agent struct {
	registry       *llm.Registry
	cfg            config.AgentConfig
	fs             *tools.Filesystem
	requestTimeout time.Duration
	logger         *zap.Logger
	metrics        *observability.Metrics
	sleep          func(ctx context.Context, d time.Duration) error
}

// Option customises an Agent.
type Option func(*Agent)

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics sets the Prometheus recorders.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Agent) { a.metrics = m }
}

// WithRequestTimeout bounds every backend request.
func WithRequestTimeout(d time.Duration) Option {
	return func(a *Agent) {
		if d > 0 {
			a.requestTimeout = d
		}
	}
}

// New creates an Agent rooted at cfg.WorkspaceRoot, which must exist.
func New(registry *llm.Registry, cfg config.AgentConfig, opts ...Option) (*Agent, error) {
	if registry == nil {
		return nil, errors.New("llm registry is required")
	}
	fs, err := tools.NewFilesystem(cfg.WorkspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	a := &Agent{
		registry:       registry,
		cfg:            normalize(cfg),
		fs:             fs,
		requestTimeout: defaultRequestTimeout,
		logger:         zap.NewNop(),
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func normalize(cfg config.AgentConfig) config.AgentConfig {
	if cfg.MaxSubdelegations < 0 {
		cfg.MaxSubdelegations = 0
	}
	cfg.DelegationParallelism = config.ClampParallelism(cfg.DelegationParallelism)
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 60
	}
	if cfg.TopP <= 0 {
		cfg.TopP = 1
	}
	return cfg
}

// Root returns the canonical workspace root.
func (a *Agent) Root() string {
	return a.fs.Root()
}

// Run answers a prompt with a fresh top-level conversation.
func (a *Agent) Run(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return Response{}, fmt.Errorf("prompt is required")
	}

	provider, route, err := a.registry.Resolve(req.Model)
	if err != nil {
		return Response{}, err
	}

	runID := uuid.NewString()
	r := a.newReader(provider, route, 0, runID, runID, a.logger)

	answer, err := r.answer(ctx, req.Prompt)
	if err != nil {
		a.metrics.RecordAgentRun("error")
		return Response{}, err
	}
	a.metrics.RecordAgentRun("ok")

	return Response{
		Answer:   answer,
		RunID:    runID,
		Model:    route.Model,
		Provider: provider.Name(),
	}, nil
}

// reader is one conversation participant at a fixed delegation depth. It is
// immutable once built; children are new readers one level deeper.
type reader struct {
	agent    *Agent
	provider llm.Provider
	route    llm.ModelRoute
	depth    int
	runID    string
	rootID   string
	tools    *tools.Registry
	defs     []llm.ToolDefinition
	logger   *zap.Logger
}

func (a *Agent) newReader(provider llm.Provider, route llm.ModelRoute, depth int, runID, rootID string, logger *zap.Logger) *reader {
	r := &reader{
		agent:    a,
		provider: provider,
		route:    route,
		depth:    depth,
		runID:    runID,
		rootID:   rootID,
		logger:   logger.With(zap.String("run_id", runID), zap.Int("depth", depth)),
	}
	r.tools = tools.NewWorkspaceRegistry(a.fs)
	for _, def := range tools.Catalog() {
		if def.Name == tools.ToolDelegateSubtask {
			r.tools.Register(def, r.delegate)
		}
	}
	r.defs = toolDefinitions(r.tools.Definitions())
	return r
}

// child builds a reader one level deeper whose records link back to this run
// and to the top-level run.
func (r *reader) child() *reader {
	logger := r.agent.logger.With(zap.String("parent_run_id", r.runID), zap.String("root_run_id", r.rootID))
	return r.agent.newReader(r.provider, r.route, r.depth+1, uuid.NewString(), r.rootID, logger)
}

func (r *reader) answer(ctx context.Context, prompt string) (string, error) {
	messages := []llm.ChatMessage{
		{Role: llm.RoleSystem, Content: buildSystemPrompt(r.agent.fs.Root(), r.depth, r.agent.cfg.MaxSubdelegations)},
		{Role: llm.RoleUser, Content: prompt},
	}
	return r.converse(ctx, messages)
}

// converse drives the conversation until the backend produces a final answer.
// Turns and retries share the same iteration budget.
func (r *reader) converse(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	cfg := r.agent.cfg
	for iteration := 0; iteration < cfg.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		log := r.logger.With(zap.Int("iteration", iteration))
		log.Info("llm_request_start", zap.Int("messages", len(messages)))

		resp, err := r.request(ctx, messages, log)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if errors.Is(err, llm.ErrInvalidResponse) {
				return "", err
			}
			if err := r.agent.sleep(ctx, Backoff(iteration)); err != nil {
				return "", err
			}
			continue
		}

		msg := resp.Message
		if len(msg.ToolCalls) > 0 {
			calls := assignCallIDs(msg.ToolCalls)
			messages = append(messages, llm.ChatMessage{
				Role:      llm.RoleAssistant,
				Content:   msg.Content,
				ToolCalls: calls,
			})
			for _, call := range calls {
				messages = append(messages, llm.ChatMessage{
					Role:       llm.RoleTool,
					ToolCallID: call.ID,
					Content:    r.execute(ctx, call),
				})
			}
			continue
		}

		if strings.TrimSpace(msg.Content) != "" {
			return msg.Content, nil
		}
		log.Warn("llm_empty_response")
	}
	return "", fmt.Errorf("%w (%d)", ErrMaxIterations, cfg.MaxIterations)
}

func (r *reader) request(ctx context.Context, messages []llm.ChatMessage, log *zap.Logger) (llm.ChatResponse, error) {
	timeout := r.agent.requestTimeout
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := r.provider.Chat(reqCtx, llm.ChatRequest{
		Model:       r.route.Model,
		Messages:    messages,
		MaxTokens:   r.route.MaxTokens,
		Temperature: r.agent.cfg.Temperature,
		TopP:        r.agent.cfg.TopP,
		Tools:       r.defs,
	})
	elapsed := time.Since(start)

	switch {
	case err == nil:
		r.agent.metrics.RecordBackendRequest("ok", elapsed)
		log.Info("llm_request_ok", zap.Duration("elapsed", elapsed), zap.Int("tool_calls", len(resp.Message.ToolCalls)))
	case errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		r.agent.metrics.RecordBackendRequest("timeout", elapsed)
		log.Warn("llm_request_timeout", zap.Duration("timeout", timeout))
	default:
		r.agent.metrics.RecordBackendRequest("error", elapsed)
		log.Warn("llm_request_error", zap.Error(err))
	}
	return resp, err
}

func assignCallIDs(calls []llm.ToolCall) []llm.ToolCall {
	out := make([]llm.ToolCall, len(calls))
	for i, c := range calls {
		if c.ID == "" {
			c.ID = "call_" + uuid.NewString()
		}
		if c.Type == "" {
			c.Type = "function"
		}
		out[i] = c
	}
	return out
}

func toolDefinitions(defs []tools.Definition) []llm.ToolDefinition {
	out := make([]llm.ToolDefinition, 0, len(defs))
	for _, d := range defs {
		params, err := json.Marshal(d.Parameters)
		if err != nil {
			continue
		}
		out = append(out, llm.ToolDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  params,
		})
	}
	return out
}
