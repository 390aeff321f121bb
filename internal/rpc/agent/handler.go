package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	coreagent "github.com/weaver-labs/weaver/internal/agent"
	"github.com/weaver-labs/weaver/internal/llm"
	"github.com/weaver-labs/weaver/internal/rpc"
)

// Asker runs a top-level agent conversation.
type Asker interface {
	Run(ctx context.Context, req coreagent.Request) (coreagent.Response, error)
}

// Handler serves POST /agent/ask.
type Handler struct {
	asker  Asker
	logger *zap.Logger
}

// NewHandler constructs a handler instance.
func NewHandler(asker Asker, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{asker: asker, logger: logger}
}

// ServeHTTP decodes an AskRequest and answers with an AskResponse.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	var req rpc.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, errors.New("prompt is required"))
		return
	}

	resp, err := h.asker.Run(r.Context(), coreagent.Request{Prompt: req.Prompt, Model: req.Model})
	if err != nil {
		h.logger.Warn("ask_failed", zap.String("transport", "http"), zap.Error(err))
		writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rpc.AskResponse{Answer: resp.Answer, RunID: resp.RunID, Model: resp.Model})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, coreagent.ErrMaxIterations), errors.Is(err, llm.ErrInvalidResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rpc.ErrorResponse{Error: err.Error()})
}
