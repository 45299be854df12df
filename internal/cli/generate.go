// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ngxspec/ngxspec/internal/config"
	"github.com/ngxspec/ngxspec/internal/openapi"
)

var (
	generateMode     string
	generateMerge    bool
	generateDryRun   bool
	generateNoNginx  bool
	generateInclude  []string
	generateExclude  []string
	generateSet      map[string]string
	generateNginxCfg string
)

var generateCmd = &cobra.Command{
	Use:   "generate [paths...]",
	Short: "Generate OpenAPI specification from source code",
	Long: `Generate an OpenAPI specification by analyzing your Java source code.

The generate command scans your source files, extracts JAX-RS or Spring MVC
handlers, maps every operation through the nginx configuration when nginx
is enabled, and writes an OpenAPI 3.0/3.1 document.

Modes:
  full         Generate complete spec with routes and schemas (default)
  routes-only  Generate only route definitions
  schemas-only Generate only schema definitions

Example:
  ngxspec generate                               # Generate from current directory
  ngxspec generate ./service                     # Generate from specific paths
  ngxspec generate --nginx deploy/nginx.conf     # Map paths through nginx
  ngxspec generate --set upstream=orders         # Fill {{upstream}} in nginx files
  ngxspec generate --merge                       # Keep hand written metadata
  ngxspec generate --dry-run                     # Preview without writing`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateMode, "mode", "m", "", "generation mode: full, routes-only, schemas-only")
	generateCmd.Flags().BoolVar(&generateMerge, "merge", false, "merge with existing spec file")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "preview output without writing to file")
	generateCmd.Flags().BoolVar(&generateNoNginx, "no-nginx", false, "keep upstream paths even if nginx is enabled")
	generateCmd.Flags().StringSliceVarP(&generateInclude, "include", "i", nil, "glob patterns to include")
	generateCmd.Flags().StringSliceVarP(&generateExclude, "exclude", "e", nil, "glob patterns to exclude")
	generateCmd.Flags().StringToStringVar(&generateSet, "set", nil, "nginx template property as key=value")
	generateCmd.Flags().StringVar(&generateNginxCfg, "nginx", "", "nginx config file, enables nginx mapping")
}

// applyNginxFlags applies the nginx related flags shared by several commands.
func applyNginxFlags(cfg *config.Config, location string, props map[string]string) {
	if location != "" {
		cfg.Nginx.Enabled = true
		cfg.Nginx.Location = location
	}
	if len(props) > 0 && cfg.Nginx.Properties == nil {
		cfg.Nginx.Properties = make(map[string]string, len(props))
	}
	for k, v := range props {
		cfg.Nginx.Properties[k] = v
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if generateMode != "" {
		cfg.Generation.Mode = generateMode
	}
	if len(generateInclude) > 0 {
		cfg.Source.Include = generateInclude
	}
	if len(generateExclude) > 0 {
		cfg.Source.Exclude = generateExclude
	}
	applyNginxFlags(cfg, generateNginxCfg, generateSet)
	if generateNoNginx {
		cfg.Nginx.Enabled = false
	}

	// Determine paths to scan
	paths := args
	if len(paths) == 0 {
		paths = cfg.Source.Paths
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	printVerbose("Configuration:")
	printVerbose("  Framework: %s", cfg.Framework)
	printVerbose("  Mode: %s", cfg.Generation.Mode)
	printVerbose("  Output: %s", cfg.Output)
	printVerbose("  Format: %s", cfg.Format)
	printVerbose("  Paths: %s", strings.Join(paths, ", "))
	if cfg.Nginx.Enabled {
		printVerbose("  Nginx: %s (%s)", cfg.Nginx.Location, cfg.Nginx.Direction)
	}

	doc, err := generateSpec(cmd.Context(), cfg, paths)
	if err != nil {
		return err
	}

	if generateMerge {
		if existing, err := openapi.ReadFile(cfg.Output); err == nil {
			printVerbose("Merging with existing spec %s", cfg.Output)
			if doc, err = openapi.NewMerger(openapi.DefaultMergeOptions()).Merge(existing, doc); err != nil {
				return fmt.Errorf("failed to merge with %s: %w", cfg.Output, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read existing spec: %w", err)
		}
	}

	w := openapi.NewWriter()
	if generateDryRun {
		printVerbose("Dry run mode - no files will be written")
		return w.Write(doc, cmd.OutOrStdout(), cfg.Format)
	}

	if err := w.WriteFile(doc, cfg.Output, cfg.Format); err != nil {
		return err
	}
	printInfo("Wrote %d paths to %s", len(doc.Paths), cfg.Output)
	return nil
}
