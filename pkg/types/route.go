// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package types provides core data structures for OpenAPI specification generation.
package types

// Route represents an HTTP operation extracted from source code.
type Route struct {
	// Method is the HTTP method (GET, POST, PUT, DELETE, PATCH, etc.)
	Method string `json:"method" yaml:"method"`

	// Path is the URL path as the upstream service sees it (e.g., "/users/{id}")
	Path string `json:"path" yaml:"path"`

	// Handler is the name of the handler method
	Handler string `json:"handler,omitempty" yaml:"handler,omitempty"`

	// Class is the simple name of the declaring class
	Class string `json:"class,omitempty" yaml:"class,omitempty"`

	// Package is the Java package of the declaring class
	Package string `json:"package,omitempty" yaml:"package,omitempty"`

	Summary     string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Tags are used to group routes in the OpenAPI spec
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	OperationID string `json:"operationId,omitempty" yaml:"operationId,omitempty"`

	// Parameters are the route parameters (path, query, header, cookie)
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	RequestBody *RequestBody        `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses,omitempty" yaml:"responses,omitempty"`
	Deprecated  bool                `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`

	// SourceFile and SourceLine locate the handler declaration
	SourceFile string `json:"sourceFile,omitempty" yaml:"sourceFile,omitempty"`
	SourceLine int    `json:"sourceLine,omitempty" yaml:"sourceLine,omitempty"`
}

// Parameter represents an OpenAPI parameter.
type Parameter struct {
	Name string `json:"name" yaml:"name"`

	// In is the location of the parameter (path, query, header, cookie)
	In string `json:"in" yaml:"in"`

	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool    `json:"required,omitempty" yaml:"required,omitempty"`
	Deprecated  bool    `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Schema      *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// RequestBody represents an OpenAPI request body.
type RequestBody struct {
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`

	// Content maps media types to their schemas
	Content map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

// Response represents an OpenAPI response.
type Response struct {
	Description string               `json:"description" yaml:"description"`
	Content     map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

// MediaType represents an OpenAPI media type.
type MediaType struct {
	Schema *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}
