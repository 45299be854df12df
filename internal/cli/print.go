// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ngxspec/ngxspec/internal/openapi"
)

var printCmd = &cobra.Command{
	Use:   "print [file]",
	Short: "Print the OpenAPI specification to stdout",
	Long: `Print the OpenAPI specification to standard output.

If a file is provided, it is printed in the requested format, which makes
this a YAML/JSON converter that keeps every field. Otherwise the
specification is generated from the current source code.

Example:
  ngxspec print                       # Generate and print
  ngxspec print openapi.yaml -f json  # Convert an existing file
  ngxspec print | yq '.paths'         # Pipe to other tools`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPrint,
}

func runPrint(cmd *cobra.Command, args []string) error {
	outputFormat := format
	if outputFormat == "" {
		outputFormat = "yaml"
	}
	printVerbose("Format: %s", outputFormat)

	w := openapi.NewWriter()
	if len(args) > 0 {
		doc, err := openapi.ReadNode(args[0])
		if err != nil {
			return err
		}
		return w.Write(doc, cmd.OutOrStdout(), outputFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	doc, err := generateSpec(cmd.Context(), cfg, cfg.Source.Paths)
	if err != nil {
		return err
	}
	return w.Write(doc, cmd.OutOrStdout(), outputFormat)
}
