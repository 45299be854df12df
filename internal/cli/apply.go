// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ngxspec/ngxspec/internal/openapi"
)

var (
	applyNginxCfg string
	applySet      map[string]string
	applyDryRun   bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <spec>",
	Short: "Map an existing OpenAPI document through nginx",
	Long: `Apply reads an OpenAPI document describing an upstream service and maps
every operation through the nginx configuration. Paths are replaced by the
paths clients call, tag rules assign tags, and excluded operations are
dropped. Everything else in the document is kept as is.

The result is written to --output, or back to the input file when no output
is given.

Example:
  ngxspec apply upstream.yaml -o public.yaml
  ngxspec apply upstream.json --nginx deploy/nginx.conf --set env=prod
  ngxspec apply upstream.yaml --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyNginxCfg, "nginx", "", "nginx config file (default: from config)")
	applyCmd.Flags().StringToStringVar(&applySet, "set", nil, "nginx template property as key=value")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "print the result instead of writing it")
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyNginxFlags(cfg, applyNginxCfg, applySet)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	input := args[0]
	target := output
	if target == "" {
		target = input
	}
	outFormat := format
	if outFormat == "" {
		outFormat = openapi.FormatFor(target)
	}

	doc, err := openapi.ReadNode(input)
	if err != nil {
		return err
	}

	m, err := buildMapper(cfg)
	if err != nil {
		return err
	}

	res, err := openapi.Apply(cmd.Context(), doc, m)
	if err != nil {
		if cfg.Generation.StrictMode {
			return err
		}
		printError("%v", err)
	}
	printVerbose("Mapped %d operations: %d moved, %d excluded, %d failed",
		res.Operations, res.Moved, res.Excluded, res.Failed)

	w := openapi.NewWriter()
	if applyDryRun {
		return w.Write(doc, cmd.OutOrStdout(), outFormat)
	}
	if err := w.WriteFile(doc, target, outFormat); err != nil {
		return err
	}
	printInfo("Wrote %s (%d moved, %d excluded)", target, res.Moved, res.Excluded)
	return nil
}
