// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package plugins

import (
	"fmt"
	"io"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/ngxspec/ngxspec/pkg/types"
)

// AssignOperationIDs renders format for every route without an operation
// id. The placeholders are {{className}}, {{methodName}}, {{httpMethod}}
// (lower case) and {{package}}. Duplicates get a numeric suffix: the
// second getUser becomes getUser_1.
func AssignOperationIDs(routes []types.Route, format string) error {
	seen := make(map[string]int)
	for i := range routes {
		r := &routes[i]
		if r.OperationID == "" {
			id, err := renderOperationID(format, r)
			if err != nil {
				return err
			}
			r.OperationID = id
		}

		base := r.OperationID
		if n := seen[base]; n > 0 {
			r.OperationID = fmt.Sprintf("%s_%d", base, n)
		}
		seen[base]++
	}
	return nil
}

func renderOperationID(format string, r *types.Route) (string, error) {
	id, err := fasttemplate.ExecuteFuncStringWithErr(format, "{{", "}}", func(w io.Writer, tag string) (int, error) {
		switch strings.TrimSpace(tag) {
		case "className":
			return io.WriteString(w, r.Class)
		case "methodName":
			return io.WriteString(w, r.Handler)
		case "httpMethod":
			return io.WriteString(w, strings.ToLower(r.Method))
		case "package":
			return io.WriteString(w, r.Package)
		default:
			return 0, fmt.Errorf("unknown operation id placeholder {{%s}}", tag)
		}
	})
	if err != nil {
		return "", fmt.Errorf("failed to render operation id for %s %s: %w", r.Method, r.Path, err)
	}
	return id, nil
}
