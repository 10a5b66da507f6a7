package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"tasksync/internal/local"
	"tasksync/internal/store"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Letter    rune // 0 if no letter, 'a'-'z' otherwise
	TaskNum   int  // 1-based task number
	HasLetter bool // true if a list letter was provided
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the first argument as a task reference.
//
//  1. all digits (e.g. 3) refers to the default list
//  2. <letter><digits> (e.g. a1, b12) refers to a lettered list
//  3. anything else is an invalid task reference
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	return parseToken(args[0])
}

// ParseTaskRefs parses every argument as a task reference.
func ParseTaskRefs(args []string) ([]TaskRef, error) {
	if len(args) == 0 {
		return nil, ErrTaskRefRequired
	}
	refs := make([]TaskRef, 0, len(args))
	for _, arg := range args {
		ref, err := parseToken(arg)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func parseToken(tok string) (TaskRef, error) {
	if isAllDigits(tok) {
		num, err := strconv.Atoi(tok)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", tok)
		}
		return TaskRef{TaskNum: num}, nil
	}

	if len(tok) > 1 && isLetter(rune(tok[0])) && isAllDigits(tok[1:]) {
		num, err := strconv.Atoi(tok[1:])
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", tok)
		}
		return TaskRef{Letter: rune(tok[0]), TaskNum: num, HasLetter: true}, nil
	}

	return TaskRef{}, fmt.Errorf("invalid task reference: %s", tok)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isLetter returns true if r is a lowercase letter a-z.
func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// errLetterNotFound is returned when no list carries the requested letter.
var errLetterNotFound = errors.New("list letter not found")

// letteredLists returns the lists shown with a letter by the list command:
// every list except the default one that has open tasks, in store order.
func letteredLists(ctx context.Context, st *store.Store) ([]local.TaskList, error) {
	def, err := st.DefaultList(ctx)
	if err != nil {
		return nil, err
	}
	lists, err := st.Lists(ctx)
	if err != nil {
		return nil, err
	}

	var out []local.TaskList
	for _, list := range lists {
		if list.ID == def.ID {
			continue
		}
		open, err := st.OpenTasks(ctx, list.ID)
		if err != nil {
			return nil, err
		}
		if len(open) == 0 {
			continue
		}
		out = append(out, list)
	}
	return out, nil
}

// ResolveListByLetter resolves a list letter to a TaskList.
func ResolveListByLetter(ctx context.Context, st *store.Store, letter rune) (local.TaskList, error) {
	lists, err := letteredLists(ctx, st)
	if err != nil {
		return local.TaskList{}, err
	}
	idx := int(letter - 'a')
	if idx < 0 || idx >= len(lists) {
		return local.TaskList{}, fmt.Errorf("%w: %c", errLetterNotFound, letter)
	}
	return lists[idx], nil
}
