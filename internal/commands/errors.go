package commands

import (
	"errors"
	"fmt"
	"io"

	"tasksync/internal/exitcode"
	"tasksync/internal/service"
	"tasksync/internal/store"
)

// reportListError prints a failed list lookup and returns the exit code.
func reportListError(errOut io.Writer, name string, err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintf(errOut, "error: list not found: %s\n", name)
		return exitcode.UserError
	case errors.Is(err, store.ErrAmbiguous):
		fmt.Fprintf(errOut, "error: ambiguous list name: %s\n", name)
		return exitcode.UserError
	}
	return reportStoreError(errOut, err)
}

func reportStoreError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: store error: %v\n", err)
	return exitcode.BackendError
}

// reportRemoteError prints a remote failure and returns the exit code.
func reportRemoteError(errOut io.Writer, err error) int {
	if service.IsAuth(err) {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}
