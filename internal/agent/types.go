package agent

import "errors"

var (
	// ErrMaxIterations is returned when a conversation exhausts its iteration budget.
	ErrMaxIterations = errors.New("exceeded maximum iterations")
	// ErrDepthCeiling is returned by delegate_subtask at the maximum delegation depth.
	ErrDepthCeiling = errors.New("delegation depth ceiling reached")
	// ErrEmptyBatch is returned when delegate_subtask receives no usable subtasks.
	ErrEmptyBatch = errors.New("delegate_subtask requires at least one non-empty subtask")
	// ErrSchedulingFault is returned when a child agent cannot be driven to completion.
	ErrSchedulingFault = errors.New("delegation scheduling fault")
)

// Request is a single agent invocation.
type Request struct {
	Model  string
	Prompt string
}

// Response carries the final answer and the route that produced it.
type Response struct {
	Answer   string
	RunID    string
	Model    string
	Provider string
}

// Subtask result statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// SubtaskResult is the outcome of one delegated subtask.
type SubtaskResult struct {
	Subtask string `json:"subtask"`
	Status  string `json:"status"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DelegationBatch is the delegate_subtask payload. Depth is the children's depth.
type DelegationBatch struct {
	Type           string          `json:"type"`
	Depth          int             `json:"depth"`
	Requested      int             `json:"requested"`
	MaxConcurrency int             `json:"max_concurrency"`
	Results        []SubtaskResult `json:"results"`
}

// ToolError is the payload sent back to the backend when a tool call fails.
type ToolError struct {
	Type      string      `json:"type"`
	Tool      string      `json:"tool"`
	Arguments interface{} `json:"arguments"`
	Message   string      `json:"message"`
}
