// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package ngxconf

import (
	"fmt"
	"io"
	"strings"

	"github.com/valyala/fasttemplate"
)

// Render substitutes {{ name }} placeholders in text with values from props.
// Names are matched case-insensitively. Unknown names render empty unless
// strict is set, in which case they are an error.
func Render(text string, props map[string]string, strict bool) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	lookup := make(map[string]string, len(props))
	for k, v := range props {
		lookup[strings.ToLower(k)] = v
	}

	out, err := fasttemplate.ExecuteFuncStringWithErr(text, "{{", "}}", func(w io.Writer, tag string) (int, error) {
		name := strings.TrimSpace(tag)
		value, ok := lookup[strings.ToLower(name)]
		if !ok && strict {
			return 0, fmt.Errorf("undefined template variable %q", name)
		}
		return io.WriteString(w, value)
	})
	if err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return out, nil
}
