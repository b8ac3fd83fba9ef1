package commands

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to errors returned by Handler.Execute.
const (
	CodeInvalidMessage = "WPMIGRATE_COMMAND_INVALID"
	CodeCanceled       = "WPMIGRATE_COMMAND_CANCELED"
	CodeTimeout        = "WPMIGRATE_COMMAND_TIMEOUT"
	CodeFailed         = "WPMIGRATE_COMMAND_FAILED"
)

// invalidMessage tags a message validation failure for the named command.
func invalidMessage(name string, err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, fmt.Sprintf("%s: invalid message", name)).
		WithTextCode(CodeInvalidMessage)
}

// failed tags an execution error. Cancellation and deadlines get their own
// codes so callers can tell an aborted run from a broken one.
func failed(name string, err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	code, reason := CodeFailed, "execution failed"
	switch {
	case errors.Is(err, context.Canceled):
		code, reason = CodeCanceled, "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		code, reason = CodeTimeout, "deadline exceeded"
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, fmt.Sprintf("%s: %s", name, reason)).
		WithTextCode(code)
}
