// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package ngxconf

import (
	"errors"
	"fmt"
)

// ErrIncludeCycle is returned when a file includes itself, directly or not.
var ErrIncludeCycle = errors.New("include cycle")

// SyntaxError reports malformed configuration text.
type SyntaxError struct {
	File   string
	Line   int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
}

func syntaxError(file string, line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{File: file, Line: line, Reason: fmt.Sprintf(format, args...)}
}
