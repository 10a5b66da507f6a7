package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tasksync/internal/exitcode"
	"tasksync/internal/local"
	"tasksync/internal/store"
)

// errTaskOutOfRange is returned when a task number exceeds the open tasks of its list.
var errTaskOutOfRange = errors.New("task number out of range")

// taskLookup finds tasks by reference. Open tasks are read once per list so
// that every reference of one command sees the numbering printed by list.
type taskLookup struct {
	st       *store.Store
	listName string // --list flag; empty means default list or letter
	open     map[string][]local.Task
}

func newTaskLookup(st *store.Store, listName string) *taskLookup {
	return &taskLookup{st: st, listName: listName, open: make(map[string][]local.Task)}
}

// list resolves the list a reference points at.
func (l *taskLookup) list(ctx context.Context, ref TaskRef) (local.TaskList, error) {
	switch {
	case l.listName != "":
		return l.st.ResolveList(ctx, l.listName)
	case ref.HasLetter:
		return ResolveListByLetter(ctx, l.st, ref.Letter)
	default:
		return l.st.DefaultList(ctx)
	}
}

// find returns the task a reference points at.
func (l *taskLookup) find(ctx context.Context, ref TaskRef) (local.Task, error) {
	list, err := l.list(ctx, ref)
	if err != nil {
		return local.Task{}, err
	}

	tasks, ok := l.open[list.ID]
	if !ok {
		tasks, err = l.st.OpenTasks(ctx, list.ID)
		if err != nil {
			return local.Task{}, err
		}
		l.open[list.ID] = tasks
	}

	if ref.TaskNum < 1 || ref.TaskNum > len(tasks) {
		return local.Task{}, fmt.Errorf("%w: %d", errTaskOutOfRange, ref.TaskNum)
	}
	return tasks[ref.TaskNum-1], nil
}

// findAll resolves every reference before anything is changed.
func (l *taskLookup) findAll(ctx context.Context, refs []TaskRef) ([]local.Task, error) {
	seen := make(map[string]bool, len(refs))
	var out []local.Task
	for _, ref := range refs {
		t, err := l.find(ctx, ref)
		if err != nil {
			return nil, err
		}
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out, nil
}

// parseRefs validates the references given to done, rm and edit.
func parseRefs(args []string, listName string, errOut io.Writer) ([]TaskRef, int) {
	refs, err := ParseTaskRefs(args)
	if err != nil {
		if errors.Is(err, ErrTaskRefRequired) {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return nil, exitcode.UserError
	}
	for _, ref := range refs {
		// --list flag and list letter cannot both be used
		if listName != "" && ref.HasLetter {
			fmt.Fprintln(errOut, "error: cannot use both --list and list letter")
			return nil, exitcode.UserError
		}
		if ref.TaskNum < 1 {
			fmt.Fprintf(errOut, "error: task number out of range: %d\n", ref.TaskNum)
			return nil, exitcode.UserError
		}
	}
	return refs, exitcode.Success
}

// reportLookupError prints a failed task lookup and returns the exit code.
func reportLookupError(errOut io.Writer, listName string, err error) int {
	switch {
	case errors.Is(err, errTaskOutOfRange), errors.Is(err, errLetterNotFound):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return reportListError(errOut, listName, err)
}
