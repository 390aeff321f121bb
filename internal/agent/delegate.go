package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/weaver-labs/weaver/internal/tools"
)

// subtaskFields are read in order; each may hold a string or an array of strings.
var subtaskFields = []string{"subtask", "subtasks", "prompt", "prompts", "task", "tasks"}

// delegate is the delegate_subtask handler. It runs every subtask in a child
// reader one level deeper, at most DelegationParallelism at a time, and
// reports results in input order.
func (r *reader) delegate(ctx context.Context, args tools.Args) (interface{}, error) {
	maxDepth := r.agent.cfg.MaxSubdelegations
	if r.depth >= maxDepth {
		return nil, fmt.Errorf("depth %d >= %d: %w", r.depth, maxDepth, ErrDepthCeiling)
	}

	subtasks, err := collectSubtasks(args)
	if err != nil {
		return nil, err
	}

	limit := min(r.agent.cfg.DelegationParallelism, len(subtasks))
	r.logger.Info("delegation_start", zap.Int("child_depth", r.depth+1), zap.Int("requested", len(subtasks)), zap.Int("max_concurrency", limit))

	results := make([]SubtaskResult, len(subtasks))
	err = runBounded(ctx, limit, len(subtasks), func(ctx context.Context, i int) error {
		results[i] = r.runSubtask(ctx, subtasks[i])
		return nil
	})
	if err != nil {
		return nil, err
	}

	failed := 0
	for _, res := range results {
		if res.Status == StatusError {
			failed++
		}
	}
	r.logger.Info("delegation_done", zap.Int("child_depth", r.depth+1), zap.Int("requested", len(subtasks)), zap.Int("failed", failed))

	return DelegationBatch{
		Type:           "delegation_batch_result",
		Depth:          r.depth + 1,
		Requested:      len(subtasks),
		MaxConcurrency: limit,
		Results:        results,
	}, nil
}

func (r *reader) runSubtask(ctx context.Context, subtask string) SubtaskResult {
	r.agent.metrics.IncDelegations()
	defer r.agent.metrics.DecDelegations()

	content, err := r.child().answer(ctx, subtask)
	if err != nil {
		return SubtaskResult{Subtask: subtask, Status: StatusError, Error: err.Error()}
	}
	return SubtaskResult{Subtask: subtask, Status: StatusOK, Content: content}
}

// runBounded calls fn for every index in [0,n) with at most limit calls in
// flight; a finishing call admits the next pending index. A panicking call is
// reported as ErrSchedulingFault and stops further admissions.
func runBounded(ctx context.Context, limit, n int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, limit))
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("subtask %d panicked: %v: %w", i, rec, ErrSchedulingFault)
				}
			}()
			return fn(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func collectSubtasks(args tools.Args) ([]string, error) {
	var out []string
	for _, field := range subtaskFields {
		raw, ok := args[field]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case string:
			out = appendTrimmed(out, v)
		case []interface{}:
			for i, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%s[%d] must be a string", field, i)
				}
				out = appendTrimmed(out, s)
			}
		case []string:
			for _, s := range v {
				out = appendTrimmed(out, s)
			}
		default:
			return nil, fmt.Errorf("%s must be a string or an array of strings", field)
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyBatch
	}
	return out, nil
}

func appendTrimmed(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}
