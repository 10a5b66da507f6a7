// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"tasksync/internal/local"
	"tasksync/internal/tasksync"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	// completedMark replaces the number of a completed task.
	completedMark = "x"
)

// FormatTask formats a task line for the default list.
// Format: "{N:>4}  {TITLE}\n" (4-wide right-aligned number, two spaces, title)
func FormatTask(w io.Writer, num int, task local.Task) {
	fmt.Fprintf(w, "%4d  %s\n", num, taskTitle(task))
}

// FormatTaskWithLetter formats a task line inside a lettered list section.
// Format: "    {LN:>4}  {TITLE}\n", e.g. "      a1  Buy bread".
func FormatTaskWithLetter(w io.Writer, letter rune, num int, task local.Task) {
	ref := fmt.Sprintf("%c%d", letter, num)
	fmt.Fprintf(w, "    %4s  %s\n", ref, taskTitle(task))
}

// FormatTaskIndented formats a task line for a named list section.
// Format: "    {N:>4}  {TITLE}\n" (4 spaces indent + 4-wide number + 2 spaces + title)
func FormatTaskIndented(w io.Writer, num int, task local.Task) {
	fmt.Fprintf(w, "    %4d  %s\n", num, taskTitle(task))
}

// FormatCompletedTask formats a completed task; it has no reference number.
func FormatCompletedTask(w io.Writer, indent bool, task local.Task) {
	prefix := ""
	if indent {
		prefix = "    "
	}
	fmt.Fprintf(w, "%s%4s  %s\n", prefix, completedMark, taskTitle(task))
}

// FormatListHeader formats a list section header.
func FormatListHeader(w io.Writer, title string, isDefault bool) {
	displayTitle := normalizeListTitle(title)
	if isDefault {
		displayTitle += " [default]"
	}
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, displayTitle)
	fmt.Fprintln(w, ListSeparator)
}

// FormatListName formats a list name for the lists command.
// Lists bound to a remote list are marked [synced].
func FormatListName(w io.Writer, list local.TaskList, isDefault bool) {
	title := normalizeListTitle(list.Title)
	if isDefault {
		title += " [default]"
	}
	if list.RemoteID != "" {
		title += " [synced]"
	}
	fmt.Fprintln(w, title)
}

// FormatSyncSummary formats the counts of one sync cycle.
// Format: "added N, updated N, deleted N[, failed N]\n", prefixed by the list
// title when label is set.
func FormatSyncSummary(w io.Writer, label string, res tasksync.Result) {
	line := fmt.Sprintf("added %d, updated %d, deleted %d",
		res.Counts.Added, res.Counts.Updated, res.Counts.Deleted)
	if res.PartialFailures > 0 {
		line += fmt.Sprintf(", failed %d", res.PartialFailures)
	}
	if label != "" {
		line = normalizeListTitle(label) + ": " + line
	}
	fmt.Fprintln(w, line)
}

func taskTitle(task local.Task) string {
	title := normalizeTitle(task.Title)
	if task.DueDate != "" {
		title += " (due " + dueDay(task.DueDate) + ")"
	}
	return title
}

// dueDay shortens a stored due timestamp to its calendar date.
func dueDay(due string) string {
	if len(due) >= len("2006-01-02") {
		return due[:len("2006-01-02")]
	}
	return due
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	// Replace newlines with spaces
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	// Trim and check for empty
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeListTitle normalizes a list title for display.
// Empty or whitespace-only titles become "(untitled)".
func normalizeListTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
