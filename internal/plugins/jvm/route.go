// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package jvm

import (
	"slices"
	"strings"

	"github.com/ngxspec/ngxspec/internal/parser"
	"github.com/ngxspec/ngxspec/pkg/types"
)

const defaultMediaType = "application/json"

// Binding says where a handler parameter comes from.
type Binding struct {
	// In is path, query, header, cookie or body. Empty skips the parameter.
	In       string
	Name     string
	Required bool
}

// Handler is one resolved endpoint method.
type Handler struct {
	File   *parser.JavaFile
	Type   *parser.JavaType
	Method *parser.JavaMethod

	Verb     string
	Path     string
	Consumes []string
	Produces []string

	Bind func(parser.JavaParameter) Binding
}

// BuildRoute turns h into a route. Path parameters named in the template
// but not bound by any handler parameter are still declared, as strings.
func BuildRoute(h Handler, schemas *Schemas) types.Route {
	path, patterns := CleanTemplate(h.Path)

	r := types.Route{
		Method:     h.Verb,
		Path:       path,
		Handler:    h.Method.Name,
		Class:      h.Type.Name,
		Package:    h.File.Package,
		Tags:       []string{DefaultTag(h.Type.Name)},
		Deprecated: h.Method.HasAnnotation("Deprecated") || h.Type.HasAnnotation("Deprecated"),
		SourceFile: h.File.Path,
		SourceLine: h.Method.Line,
	}

	bound := make(map[string]bool)
	for _, p := range h.Method.Parameters {
		b := h.Bind(p)
		switch b.In {
		case "":
			continue
		case "body":
			r.RequestBody = &types.RequestBody{
				Required: true,
				Content:  content(h.Consumes, schemas.orObject(p.Type)),
			}
			continue
		}
		if b.Name == "" {
			b.Name = p.Name
		}
		param := types.Parameter{
			Name:       b.Name,
			In:         b.In,
			Required:   b.Required || b.In == "path",
			Deprecated: parser.FindAnnotation(p.Annotations, "Deprecated") != nil,
			Schema:     schemas.orObject(p.Type),
		}
		if b.In == "path" {
			bound[b.Name] = true
			if pat, ok := patterns[b.Name]; ok && param.Schema.Ref == "" {
				param.Schema.Pattern = pat
			}
		}
		r.Parameters = append(r.Parameters, param)
	}

	var implicit []types.Parameter
	for _, name := range PathParams(path) {
		if bound[name] {
			continue
		}
		bound[name] = true
		implicit = append(implicit, types.Parameter{
			Name:     name,
			In:       "path",
			Required: true,
			Schema:   &types.Schema{Type: "string", Pattern: patterns[name]},
		})
	}
	r.Parameters = append(implicit, r.Parameters...)

	r.Responses = responses(h, schemas)
	return r
}

func responses(h Handler, schemas *Schemas) map[string]types.Response {
	ret := parser.Unwrap(h.Method.ReturnType)
	if ret == "void" || ret == "Void" {
		return map[string]types.Response{"204": {Description: "No Content"}}
	}
	schema := schemas.For(ret)
	if schema == nil {
		// raw Response objects say nothing about the body
		return nil
	}
	return map[string]types.Response{
		"200": {Description: "OK", Content: content(h.Produces, schema)},
	}
}

func content(mediaTypes []string, schema *types.Schema) map[string]types.MediaType {
	if len(mediaTypes) == 0 {
		mediaTypes = []string{defaultMediaType}
	}
	out := make(map[string]types.MediaType, len(mediaTypes))
	for _, mt := range slices.Compact(slices.Sorted(slices.Values(mediaTypes))) {
		out[mt] = types.MediaType{Schema: schema}
	}
	return out
}

// FirstNonEmpty returns the first non-empty slice, for annotations that
// may sit on the method or the class.
func FirstNonEmpty(lists ...[]string) []string {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}

var mediaTypeConstants = map[string]string{
	"APPLICATION_JSON":            "application/json",
	"APPLICATION_XML":             "application/xml",
	"TEXT_PLAIN":                  "text/plain",
	"TEXT_HTML":                   "text/html",
	"TEXT_XML":                    "text/xml",
	"APPLICATION_FORM_URLENCODED": "application/x-www-form-urlencoded",
	"MULTIPART_FORM_DATA":         "multipart/form-data",
	"APPLICATION_OCTET_STREAM":    "application/octet-stream",
	"APPLICATION_PROBLEM_JSON":    "application/problem+json",
	"SERVER_SENT_EVENTS":          "text/event-stream",
	"TEXT_EVENT_STREAM":           "text/event-stream",
	"APPLICATION_NDJSON":          "application/x-ndjson",
	"WILDCARD":                    "*/*",
	"ALL":                         "*/*",
}

// MediaType resolves MediaType.APPLICATION_JSON and
// MediaType.APPLICATION_JSON_VALUE references. Anything else is returned
// unchanged.
func MediaType(v string) string {
	name := v
	if i := strings.LastIndexByte(v, '.'); i >= 0 {
		name = v[i+1:]
	}
	name = strings.TrimSuffix(name, "_VALUE")
	name = strings.TrimSuffix(name, "_TYPE")
	if mt, ok := mediaTypeConstants[name]; ok && strings.Contains(v, "MediaType") {
		return mt
	}
	return v
}

// IsRequired reports whether a bean validation annotation marks the value
// as mandatory.
func IsRequired(annos []parser.JavaAnnotation) bool {
	return parser.FindAnnotation(annos, requiredAnnotations...) != nil
}
