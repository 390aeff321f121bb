package tools

// Tool identifiers exposed to the backend.
const (
	ToolListDirectory   = "list_directory"
	ToolReadFileFull    = "read_file_full"
	ToolReadFileRange   = "read_file_range"
	ToolSearchText      = "search_text"
	ToolDelegateSubtask = "delegate_subtask"
)

// Definition describes a tool for JSON schema/tool-calling.
type Definition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Schema `json:"parameters"`
}

// Schema is the JSON Schema object describing a tool's arguments.
type Schema struct {
	Type       string              `json:"type"`
	Required   []string            `json:"required,omitempty"`
	Properties map[string]Property `json:"properties"`
}

// Property describes a single argument.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Minimum     *int      `json:"minimum,omitempty"`
	Items       *Property `json:"items,omitempty"`

	// HandlerTyped leaves the value's type to the tool handler, which accepts
	// more shapes than the advertised type.
	HandlerTyped bool `json:"-"`
}

func minimum(v int) *int { return &v }

// Catalog returns the fixed tool catalog in presentation order.
func Catalog() []Definition {
	return []Definition{
		{
			Name:        ToolListDirectory,
			Description: "List the entries of a directory relative to the workspace root.",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"path": {Type: "string", Description: `Directory path relative to workspace root. Defaults to "."`},
				},
			},
		},
		{
			Name:        ToolReadFileFull,
			Description: "Read the full contents of a UTF-8 text file.",
			Parameters: Schema{
				Type:     "object",
				Required: []string{"path"},
				Properties: map[string]Property{
					"path": {Type: "string", Description: "File path relative to workspace root."},
				},
			},
		},
		{
			Name:        ToolReadFileRange,
			Description: "Read a specific inclusive line range from a UTF-8 text file.",
			Parameters: Schema{
				Type:     "object",
				Required: []string{"path", "start_line", "end_line"},
				Properties: map[string]Property{
					"path":       {Type: "string", Description: "File path relative to workspace root."},
					"start_line": {Type: "integer", Minimum: minimum(1)},
					"end_line":   {Type: "integer", Minimum: minimum(1)},
				},
			},
		},
		{
			Name:        ToolSearchText,
			Description: "Run a regex search (ripgrep-style) within the workspace.",
			Parameters: Schema{
				Type:     "object",
				Required: []string{"pattern"},
				Properties: map[string]Property{
					"pattern": {Type: "string", Description: "Regular expression (RE2 syntax)."},
					"path":    {Type: "string", Description: "Optional directory to scope the search. Defaults to root."},
				},
			},
		},
		{
			Name:        ToolDelegateSubtask,
			Description: "Delegate one or more independent file-reading subtasks to nested agents that run in parallel.",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"subtask": {Type: "string", Description: "Instruction for a single delegated agent.", HandlerTyped: true},
					"subtasks": {
						Type:         "array",
						Description:  "Independent instructions, one delegated agent each. Results come back in the same order.",
						Items:        &Property{Type: "string"},
						HandlerTyped: true,
					},
				},
			},
		},
	}
}
