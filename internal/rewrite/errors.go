// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package rewrite

import (
	"fmt"
	"strings"

	"github.com/ngxspec/ngxspec/internal/ngxconf"
)

// ConfigError reports a directive or path that cannot be evaluated.
type ConfigError struct {
	File   string
	Line   int
	Reason string
}

func (e *ConfigError) Error() string {
	if e.File == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
}

func configError(d *ngxconf.Directive, format string, args ...any) *ConfigError {
	e := &ConfigError{Reason: fmt.Sprintf(format, args...)}
	if d != nil {
		e.File = d.File
		e.Line = d.Line
	}
	return e
}

// InversionError reports a rewrite that cannot be run backwards.
type InversionError struct {
	Rule   Rule
	Reason string
}

func (e *InversionError) Error() string {
	return fmt.Sprintf("cannot invert %s: %s", e.Rule, e.Reason)
}

func inversionError(r Rule, format string, args ...any) *InversionError {
	return &InversionError{Rule: r, Reason: fmt.Sprintf(format, args...)}
}

// OperationError ties a failure to the API operation being processed.
type OperationError struct {
	// Action is "revert" or "rewrite"
	Action      string
	Method      string
	Path        string
	OperationID string
	Err         error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("failed to %s path: %s %s, operationId = %s: %v",
		e.Action, strings.ToUpper(e.Method), e.Path, e.OperationID, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
