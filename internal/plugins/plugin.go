// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package plugins provides framework plugin infrastructure for route and schema extraction.
package plugins

import (
	"github.com/ngxspec/ngxspec/internal/scanner"
	"github.com/ngxspec/ngxspec/pkg/types"
)

// FrameworkPlugin defines the interface for framework-specific route and schema extraction.
type FrameworkPlugin interface {
	// Name returns the plugin identifier (e.g., "jaxrs", "spring").
	Name() string

	// Extensions returns the file extensions this plugin handles.
	Extensions() []string

	// Detect checks if this framework is used in the project, typically by
	// looking at the build files.
	Detect(projectRoot string) (bool, error)

	// ExtractRoutes parses source files and extracts route definitions.
	// Routes carry Class, Handler and Package so that operation ids can be
	// rendered afterwards.
	ExtractRoutes(files []scanner.SourceFile) ([]types.Route, error)

	// ExtractSchemas extracts schemas for the types handlers accept and
	// return.
	ExtractSchemas(files []scanner.SourceFile) ([]types.Schema, error)
}

// PluginInfo provides metadata about a plugin.
type PluginInfo struct {
	Name        string
	Version     string
	Description string

	// SupportedFrameworks lists the framework implementations covered
	SupportedFrameworks []string
}

// InfoProvider is an optional interface plugins can implement to provide metadata.
type InfoProvider interface {
	Info() PluginInfo
}
