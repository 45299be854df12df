// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package jaxrs provides a plugin for extracting routes from JAX-RS
// resources (Jersey, RESTEasy, Quarkus, Dropwizard).
package jaxrs

import (
	"github.com/ngxspec/ngxspec/internal/parser"
	"github.com/ngxspec/ngxspec/internal/plugins"
	"github.com/ngxspec/ngxspec/internal/plugins/jvm"
	"github.com/ngxspec/ngxspec/internal/scanner"
	"github.com/ngxspec/ngxspec/pkg/types"
)

var verbs = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"}

var paramLocations = map[string]string{
	"PathParam":   "path",
	"QueryParam":  "query",
	"HeaderParam": "header",
	"CookieParam": "cookie",
}

// injected parameters that never reach the request body
var skipped = []string{"Context", "Suspended", "BeanParam", "FormParam", "MatrixParam", "Auth"}

var dependencyMarkers = []string{
	"jakarta.ws.rs",
	"javax.ws.rs",
	"jersey",
	"resteasy",
	"quarkus-rest",
	"dropwizard",
}

// Plugin implements the FrameworkPlugin interface for JAX-RS.
type Plugin struct {
	javaParser *parser.JavaParser
}

// New creates a new JAX-RS plugin instance.
func New() *Plugin {
	return &Plugin{javaParser: parser.NewJavaParser()}
}

func (p *Plugin) Name() string {
	return "jaxrs"
}

func (p *Plugin) Extensions() []string {
	return []string{".java"}
}

// Info returns plugin metadata.
func (p *Plugin) Info() plugins.PluginInfo {
	return plugins.PluginInfo{
		Name:                "jaxrs",
		Version:             "1.0.0",
		Description:         "Extracts routes from JAX-RS resources",
		SupportedFrameworks: []string{"Jersey", "RESTEasy", "Quarkus", "Dropwizard"},
	}
}

// Detect looks for a JAX-RS implementation in the Maven or Gradle build.
func (p *Plugin) Detect(projectRoot string) (bool, error) {
	return jvm.DetectDependency(projectRoot, dependencyMarkers...)
}

// ExtractRoutes extracts one route per resource method.
func (p *Plugin) ExtractRoutes(files []scanner.SourceFile) ([]types.Route, error) {
	routes, _, err := jvm.Extract(p.javaParser, files, p.Name(), findHandlers)
	return routes, err
}

// ExtractSchemas returns the DTOs resource methods accept or return.
func (p *Plugin) ExtractSchemas(files []scanner.SourceFile) ([]types.Schema, error) {
	_, schemas, err := jvm.Extract(p.javaParser, files, p.Name(), findHandlers)
	if err != nil {
		return nil, err
	}
	return schemas.Components(), nil
}

func findHandlers(files []*parser.JavaFile) []jvm.Handler {
	// an interface carrying the annotations wins over its implementations
	annotated := make(map[string]bool)
	for _, f := range files {
		for _, t := range f.Types {
			if t.Kind == parser.KindInterface && t.HasAnnotation("Path") {
				annotated[t.Name] = true
			}
		}
	}

	var handlers []jvm.Handler
	for _, f := range files {
		for i := range f.Types {
			t := &f.Types[i]
			if !isResource(t, annotated) {
				continue
			}
			handlers = append(handlers, resourceHandlers(f, t)...)
		}
	}
	return handlers
}

func isResource(t *parser.JavaType, annotated map[string]bool) bool {
	if !t.HasAnnotation("Path") {
		return false
	}
	if t.Kind == parser.KindInterface {
		return true
	}
	for _, iface := range t.Interfaces {
		raw, _ := parser.SplitGeneric(iface)
		if annotated[raw] {
			return false
		}
	}
	return true
}

func resourceHandlers(f *parser.JavaFile, t *parser.JavaType) []jvm.Handler {
	base := t.GetAnnotation("Path").Value()
	consumes := mediaTypes(t.Annotations, "Consumes")
	produces := mediaTypes(t.Annotations, "Produces")

	var out []jvm.Handler
	for i := range t.Methods {
		m := &t.Methods[i]
		verb := httpVerb(m)
		if verb == "" {
			// sub-resource locators have @Path but no verb
			continue
		}
		path := base
		if a := m.GetAnnotation("Path"); a != nil {
			path = jvm.JoinPaths(base, a.Value())
		}
		out = append(out, jvm.Handler{
			File:     f,
			Type:     t,
			Method:   m,
			Verb:     verb,
			Path:     jvm.JoinPaths(path),
			Consumes: jvm.FirstNonEmpty(mediaTypes(m.Annotations, "Consumes"), consumes),
			Produces: jvm.FirstNonEmpty(mediaTypes(m.Annotations, "Produces"), produces),
			Bind:     bind,
		})
	}
	return out
}

func httpVerb(m *parser.JavaMethod) string {
	for _, v := range verbs {
		if m.HasAnnotation(v) {
			return v
		}
	}
	if a := m.GetAnnotation("HttpMethod"); a != nil {
		return a.Value()
	}
	return ""
}

func mediaTypes(annos []parser.JavaAnnotation, name string) []string {
	if a := parser.FindAnnotation(annos, name); a != nil {
		return mediaTypeConstants(a.Values("value"))
	}
	return nil
}

// mediaTypeConstants resolves MediaType.APPLICATION_JSON style references
// the parser could not fold into literals.
func mediaTypeConstants(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, jvm.MediaType(v))
	}
	return out
}

func bind(p parser.JavaParameter) jvm.Binding {
	for name, in := range paramLocations {
		if a := parser.FindAnnotation(p.Annotations, name); a != nil {
			return jvm.Binding{
				In:       in,
				Name:     a.Value(),
				Required: in == "path" || jvm.IsRequired(p.Annotations),
			}
		}
	}
	if parser.FindAnnotation(p.Annotations, skipped...) != nil {
		return jvm.Binding{}
	}
	return jvm.Binding{In: "body"}
}

func init() {
	plugins.MustRegister(New())
}
