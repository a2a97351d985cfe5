// ABOUTME: Natural-language rendering of structured task collections
// ABOUTME: Ordinal lines with checked markers, full IDs, and priority

package chat

import (
	"fmt"
	"strings"

	"github.com/taskline/taskline/internal/tools"
)

// emptyListReply is the explicit empty state, never an empty enumeration.
const emptyListReply = "You don't have any tasks."

// renderTaskList formats a task collection for the chat reply. Tasks are
// shown in insertion order with 1-based ordinals and full identifiers so
// the user can quote them back in complete/update/delete commands.
func renderTaskList(tasks []tools.TaskView) string {
	if len(tasks) == 0 {
		return emptyListReply
	}

	var b strings.Builder
	b.WriteString("Here are your tasks:\n")
	for i, task := range tasks {
		marker := "[ ]"
		if task.Completed {
			marker = "[X]"
		}
		fmt.Fprintf(&b, "%d. %s %s (ID: %s)\n", i+1, marker, task.Title, task.ID)
		if task.Description != "" {
			fmt.Fprintf(&b, "    Description: %s\n", task.Description)
		}
		fmt.Fprintf(&b, "    Priority: %s\n\n", task.Priority)
	}
	return strings.TrimSpace(b.String())
}
