// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package cli provides the command-line interface for ngxspec.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ngxspec/ngxspec/internal/logging"
)

// Global flags
var (
	cfgFile   string
	output    string
	format    string
	framework string
	verbose   bool
	quiet     bool
)

// stdout and stderr are swapped in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ngxspec",
	Short: "OpenAPI generator that sees your API through nginx",
	Long: `ngxspec generates OpenAPI specifications from Java source code and maps
every operation through the nginx configuration in front of the service, so
the document shows the paths clients actually call.

It supports JAX-RS (Jersey, RESTEasy, Quarkus, Dropwizard) and Spring MVC.

Example:
  ngxspec generate                         # Generate OpenAPI spec from current directory
  ngxspec apply upstream.yaml -o public.yaml
  ngxspec rewrite GET /api/users/42        # Probe a single path
  ngxspec nginx dump                       # Show the resolved nginx config
  ngxspec check                            # Validate spec against code
  ngxspec watch                            # Watch for changes and regenerate`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(logging.New(stderr, logging.Level(verbose, quiet)))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ngxspec.yaml)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output file path (default: openapi.yaml)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "output format: yaml, json (default: yaml)")
	rootCmd.PersistentFlags().StringVar(&framework, "framework", "", "web framework: auto, jaxrs, spring")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(nginxCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(printCmd)
}

// printInfo prints a message if not in quiet mode.
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(stdout, format+"\n", args...)
	}
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(stdout, format+"\n", args...)
	}
}

// printError prints an error message.
func printError(format string, args ...any) {
	fmt.Fprintf(stderr, "Error: "+format+"\n", args...)
}
