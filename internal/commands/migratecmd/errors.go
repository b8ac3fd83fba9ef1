package migratecmd

import (
	"errors"
	"fmt"
)

// ErrInvalidContent is returned by the validate handler when files fail to
// load or validate.
var ErrInvalidContent = errors.New("migrate command: content failed validation")

func invalidContentError(invalid, unreadable int) error {
	return fmt.Errorf("%w: %d invalid, %d unreadable", ErrInvalidContent, invalid, unreadable)
}
