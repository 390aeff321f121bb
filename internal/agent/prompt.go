package agent

import (
	"fmt"
	"strings"
)

const systemPromptBase = `You are Weaver's file-reading assistant.
Always stay within the workspace and rely on the provided tools to inspect files.
Call list_directory whenever you need to confirm the current structure.
Never assume content from file names alone: use read_file_full or read_file_range to inspect material before describing or citing it.
Answer only after gathering the necessary context through tool calls, and reference the specific files you actually examined.`

// buildSystemPrompt states the workspace root and the delegation budget left at depth.
func buildSystemPrompt(root string, depth, maxDepth int) string {
	var b strings.Builder
	b.WriteString(systemPromptBase)
	fmt.Fprintf(&b, "\n\nWorkspace root: %s\nDelegation depth: %d of %d.", root, depth, maxDepth)
	if depth < maxDepth {
		b.WriteString("\nUse delegate_subtask with a `subtasks` array to hand independent file-reading work to helpers that run in parallel; results return in the same order.")
	} else {
		b.WriteString("\nFurther delegation is unavailable at this depth; complete the work yourself.")
	}
	return b.String()
}
