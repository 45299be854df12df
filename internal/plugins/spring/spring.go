// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package spring provides a plugin for extracting routes from Spring MVC
// and Spring Boot controllers.
package spring

import (
	"strings"

	"github.com/ngxspec/ngxspec/internal/parser"
	"github.com/ngxspec/ngxspec/internal/plugins"
	"github.com/ngxspec/ngxspec/internal/plugins/jvm"
	"github.com/ngxspec/ngxspec/internal/scanner"
	"github.com/ngxspec/ngxspec/pkg/types"
)

// httpMethods maps Spring annotations to HTTP methods.
var httpMethods = map[string]string{
	"GetMapping":     "GET",
	"PostMapping":    "POST",
	"PutMapping":     "PUT",
	"DeleteMapping":  "DELETE",
	"PatchMapping":   "PATCH",
	"RequestMapping": "", // method determined by the method attribute
}

// mappingOrder keeps annotation lookup deterministic.
var mappingOrder = []string{"GetMapping", "PostMapping", "PutMapping", "DeleteMapping", "PatchMapping", "RequestMapping"}

var paramLocations = []struct {
	annotation string
	in         string
}{
	{"PathVariable", "path"},
	{"RequestParam", "query"},
	{"RequestHeader", "header"},
	{"CookieValue", "cookie"},
}

// Plugin implements the FrameworkPlugin interface for Spring.
type Plugin struct {
	javaParser *parser.JavaParser
}

// New creates a new Spring plugin instance.
func New() *Plugin {
	return &Plugin{
		javaParser: parser.NewJavaParser(),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "spring"
}

// Extensions returns the file extensions this plugin handles.
func (p *Plugin) Extensions() []string {
	return []string{".java"}
}

// Info returns plugin metadata.
func (p *Plugin) Info() plugins.PluginInfo {
	return plugins.PluginInfo{
		Name:        "spring",
		Version:     "1.0.0",
		Description: "Extracts routes from Spring MVC controllers",
		SupportedFrameworks: []string{
			"Spring Boot",
			"Spring MVC",
		},
	}
}

// Detect checks if Spring Web is used in the project.
func (p *Plugin) Detect(projectRoot string) (bool, error) {
	return jvm.DetectDependency(projectRoot, "spring-boot", "spring-webmvc", "spring-web")
}

// ExtractRoutes parses source files and extracts controller routes.
func (p *Plugin) ExtractRoutes(files []scanner.SourceFile) ([]types.Route, error) {
	routes, _, err := jvm.Extract(p.javaParser, files, p.Name(), findHandlers)
	return routes, err
}

// ExtractSchemas returns the DTOs controller methods accept or return.
func (p *Plugin) ExtractSchemas(files []scanner.SourceFile) ([]types.Schema, error) {
	_, schemas, err := jvm.Extract(p.javaParser, files, p.Name(), findHandlers)
	if err != nil {
		return nil, err
	}
	return schemas.Components(), nil
}

func findHandlers(files []*parser.JavaFile) []jvm.Handler {
	var handlers []jvm.Handler
	for _, f := range files {
		for i := range f.Types {
			t := &f.Types[i]
			if isController(t) {
				handlers = append(handlers, controllerHandlers(f, t)...)
			}
		}
	}
	return handlers
}

// isController checks if a class is a Spring controller.
func isController(t *parser.JavaType) bool {
	return t.HasAnnotation("RestController") || t.HasAnnotation("Controller")
}

func controllerHandlers(f *parser.JavaFile, t *parser.JavaType) []jvm.Handler {
	bases := []string{""}
	var consumes, produces []string
	if a := t.GetAnnotation("RequestMapping"); a != nil {
		if v := a.Values("value", "path"); len(v) > 0 {
			bases = v
		}
		consumes = mediaTypes(a, "consumes")
		produces = mediaTypes(a, "produces")
	}

	var out []jvm.Handler
	for i := range t.Methods {
		m := &t.Methods[i]
		a, verbs := mapping(m)
		if a == nil {
			continue
		}
		paths := a.Values("value", "path")
		if len(paths) == 0 {
			paths = []string{""}
		}
		for _, base := range bases {
			for _, path := range paths {
				for _, verb := range verbs {
					out = append(out, jvm.Handler{
						File:     f,
						Type:     t,
						Method:   m,
						Verb:     verb,
						Path:     jvm.JoinPaths(base, path),
						Consumes: jvm.FirstNonEmpty(mediaTypes(a, "consumes"), consumes),
						Produces: jvm.FirstNonEmpty(mediaTypes(a, "produces"), produces),
						Bind:     bind,
					})
				}
			}
		}
	}
	return out
}

// mapping returns the request mapping annotation of m and the HTTP
// methods it serves. A @RequestMapping without a method attribute is
// treated as GET.
func mapping(m *parser.JavaMethod) (*parser.JavaAnnotation, []string) {
	for _, name := range mappingOrder {
		a := m.GetAnnotation(name)
		if a == nil {
			continue
		}
		if verb := httpMethods[name]; verb != "" {
			return a, []string{verb}
		}
		var verbs []string
		for _, v := range a.Values("method") {
			verbs = append(verbs, parseRequestMethod(v))
		}
		if len(verbs) == 0 {
			verbs = []string{"GET"}
		}
		return a, verbs
	}
	return nil, nil
}

// parseRequestMethod parses the HTTP method from a RequestMethod enum value.
func parseRequestMethod(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	if i := strings.LastIndexByte(value, '.'); i >= 0 {
		value = value[i+1:]
	}
	switch value {
	case "GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS", "TRACE":
		return value
	default:
		return "GET"
	}
}

func mediaTypes(a *parser.JavaAnnotation, key string) []string {
	values := a.Values(key)
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, jvm.MediaType(v))
	}
	return out
}

func bind(p parser.JavaParameter) jvm.Binding {
	if parser.FindAnnotation(p.Annotations, "RequestBody") != nil {
		return jvm.Binding{In: "body"}
	}
	for _, loc := range paramLocations {
		a := parser.FindAnnotation(p.Annotations, loc.annotation)
		if a == nil {
			continue
		}
		name := a.Value()
		if name == "" {
			name = a.First("name")
		}
		return jvm.Binding{
			In:       loc.in,
			Name:     name,
			Required: required(a) && !strings.HasPrefix(p.Type, "Optional<") || jvm.IsRequired(p.Annotations),
		}
	}
	// servlet requests, models, principals and the like
	return jvm.Binding{}
}

// required follows Spring's defaults: required unless required=false or
// a defaultValue is given.
func required(a *parser.JavaAnnotation) bool {
	if a.First("defaultValue") != "" {
		return false
	}
	return a.First("required") != "false"
}

// Register registers the Spring plugin with the global registry.
func Register() {
	plugins.MustRegister(New())
}

func init() {
	Register()
}
