// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

// Framework plugins register themselves with the global registry.
import (
	_ "github.com/ngxspec/ngxspec/internal/plugins/jaxrs"
	_ "github.com/ngxspec/ngxspec/internal/plugins/spring"
)
