package domain

import (
	"errors"
	"fmt"
	"strings"

	m "langtest.dev/pkg/langtest/internal/model"
)

// ErrInvalidUTF8 is returned when a child writes output that is not UTF-8.
var ErrInvalidUTF8 = errors.New("output is not valid UTF-8")

// ErrNoReport is returned when no run has been recorded yet.
var ErrNoReport = errors.New("no saved report")

// NameMismatchError is returned when a file describes stages that no
// command will ever run.
type NameMismatchError struct {
	File  m.Path
	Names []string
}

func (e *NameMismatchError) Error() string {
	return fmt.Sprintf("%s: command name(s) '%s' in tests are not found in the actual commands",
		e.File, strings.Join(e.Names, ", "))
}
