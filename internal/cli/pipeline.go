// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ngxspec/ngxspec/internal/config"
	"github.com/ngxspec/ngxspec/internal/logging"
	"github.com/ngxspec/ngxspec/internal/ngxconf"
	"github.com/ngxspec/ngxspec/internal/openapi"
	"github.com/ngxspec/ngxspec/internal/plugins"
	"github.com/ngxspec/ngxspec/internal/rewrite"
	"github.com/ngxspec/ngxspec/internal/scanner"
	"github.com/ngxspec/ngxspec/pkg/types"
)

// loadConfig loads the configuration and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if output != "" {
		cfg.Output = output
	}
	if format != "" {
		cfg.Format = format
	}
	if framework != "" {
		cfg.Framework = framework
	}
	return cfg, nil
}

// loadNginx reads the nginx configuration with its includes resolved.
func loadNginx(cfg *config.Config) (*ngxconf.Directive, error) {
	loader := &ngxconf.Loader{
		Properties:     cfg.Nginx.Properties,
		StrictTemplate: cfg.Nginx.StrictTemplate,
		Exclude:        ngxconf.ExcludeLocations(cfg.Nginx.ExcludeLocations),
	}
	root, err := loader.Load(cfg.Nginx.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to load nginx config: %w", err)
	}
	return root, nil
}

// mapperOptions translates the nginx section of the configuration.
func mapperOptions(cfg *config.Config) rewrite.MapperOptions {
	opts := rewrite.MapperOptions{
		Options: rewrite.Options{
			InversionPolicy:    rewrite.InversionPolicy(cfg.Nginx.InversionPolicy),
			NotFoundPrecedence: cfg.Nginx.NotFoundPrecedence,
		},
		Direction:   rewrite.Direction(cfg.Nginx.Direction),
		Concurrency: cfg.Nginx.Concurrency,
	}
	for _, r := range cfg.Nginx.AdditionalRewrites {
		opts.AdditionalRewrites = append(opts.AdditionalRewrites, rewrite.Rule{Regex: r.Regex, Replace: r.Replace})
	}
	for _, t := range cfg.Nginx.Tags {
		opts.Tags = append(opts.Tags, rewrite.TagRule{Name: t.Name, URLs: t.URLs})
	}
	return opts
}

// buildMapper loads and compiles the nginx configuration. Directives that
// cannot be evaluated are reported but only fail the operations reaching
// them.
func buildMapper(cfg *config.Config) (*rewrite.Mapper, error) {
	root, err := loadNginx(cfg)
	if err != nil {
		return nil, err
	}

	log := logging.Logger("cli")
	prog := rewrite.Compile(root)
	if err := prog.Problems(); err != nil {
		log.Warn("nginx config has directives that cannot be evaluated", slog.Any("error", err))
	}
	for _, inv := range prog.Uninvertible() {
		log.Debug("rewrite cannot be inverted", slog.String("rule", inv.Rule.String()), slog.String("reason", inv.Reason))
	}

	m, err := rewrite.NewMapper(prog, mapperOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare nginx mapping: %w", err)
	}
	return m, nil
}

// extract runs the framework plugins over the source paths.
func extract(cfg *config.Config, paths []string) ([]types.Route, []types.Schema, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	projectRoot, err := filepath.Abs(paths[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to determine project root: %w", err)
	}

	found, err := plugins.Resolve(cfg.Framework, projectRoot)
	if err != nil {
		return nil, nil, err
	}

	s := scanner.New(scanner.Config{
		BasePath:        projectRoot,
		IncludePatterns: cfg.Source.Include,
		ExcludePatterns: cfg.Source.Exclude,
	})
	files, err := s.ScanPaths(paths)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan sources: %w", err)
	}
	printVerbose("Scanned %d source files", len(files))

	var routes []types.Route
	var schemas []types.Schema
	for _, p := range found {
		printVerbose("Using framework: %s", p.Name())
		if cfg.Generation.Mode != "schemas-only" {
			r, err := p.ExtractRoutes(files)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to extract %s routes: %w", p.Name(), err)
			}
			routes = append(routes, r...)
		}
		if cfg.Generation.Mode != "routes-only" {
			sc, err := p.ExtractSchemas(files)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to extract %s schemas: %w", p.Name(), err)
			}
			schemas = append(schemas, sc...)
		}
	}

	if err := plugins.AssignOperationIDs(routes, cfg.Generation.OperationIDFormat); err != nil {
		return nil, nil, err
	}
	printVerbose("Found %d routes and %d schemas", len(routes), len(schemas))
	return routes, schemas, nil
}

// mapRoutes maps every route through nginx. Routes dropped by a tag rule or
// rewritten to the 404 location are removed, a matching tag rule replaces
// the route's tags. Failures keep the original path unless strict mode is
// on.
func mapRoutes(ctx context.Context, cfg *config.Config, m *rewrite.Mapper, routes []types.Route) ([]types.Route, error) {
	ops := make([]rewrite.Operation, len(routes))
	for i, r := range routes {
		ops[i] = rewrite.Operation{Method: r.Method, Path: r.Path, OperationID: r.OperationID}
	}

	mappings, err := m.MapAll(ctx, ops)
	if err != nil {
		if cfg.Generation.StrictMode || errors.Is(err, context.Canceled) {
			return nil, err
		}
		logging.Logger("cli").Warn("some operations keep their upstream path", slog.Any("error", err))
	}

	out := make([]types.Route, 0, len(routes))
	for i, r := range routes {
		mp := mappings[i]
		if mp.Excluded {
			printVerbose("Excluded %s %s", r.Method, r.Path)
			continue
		}
		if mp.Path != r.Path {
			printVerbose("Mapped %s %s -> %s", r.Method, r.Path, mp.Path)
		}
		r.Path = mp.Path
		if mp.Tag != "" {
			r.Tags = []string{mp.Tag}
		}
		out = append(out, r)
	}
	return out, nil
}

// generateSpec extracts, maps and builds a document.
func generateSpec(ctx context.Context, cfg *config.Config, paths []string) (*types.OpenAPI, error) {
	routes, schemas, err := extract(cfg, paths)
	if err != nil {
		return nil, err
	}

	if cfg.Nginx.Enabled {
		m, err := buildMapper(cfg)
		if err != nil {
			return nil, err
		}
		if routes, err = mapRoutes(ctx, cfg, m, routes); err != nil {
			return nil, err
		}
	}

	doc, err := openapi.NewBuilder(cfg).Build(routes, schemas)
	if err != nil {
		return nil, fmt.Errorf("failed to build OpenAPI spec: %w", err)
	}
	return doc, nil
}
