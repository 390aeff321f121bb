package rpc

// AskRequest asks the agent to answer a prompt against its workspace.
type AskRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

// AskResponse carries the final answer of a top-level agent run.
type AskResponse struct {
	Answer string `json:"answer"`
	RunID  string `json:"run_id,omitempty"`
	Model  string `json:"model,omitempty"`
}

// ErrorResponse is the JSON body of a failed HTTP call.
type ErrorResponse struct {
	Error string `json:"error"`
}
