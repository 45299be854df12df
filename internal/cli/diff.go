// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ngxspec/ngxspec/internal/openapi"
	"github.com/ngxspec/ngxspec/pkg/types"
)

var diffFailOnBreaking bool

// errBreakingChanges is returned by diff --fail-on-breaking.
var errBreakingChanges = errors.New("breaking changes detected")

var diffCmd = &cobra.Command{
	Use:   "diff <old> [new]",
	Short: "Compare two OpenAPI specifications",
	Long: `Compare two OpenAPI specifications and show the differences.

Operations that keep their operation id but appear under another path are
reported as moved, which is what a changed nginx rewrite usually looks like.

If only one file is provided, it is compared against the specification
generated from the current source code.

Example:
  ngxspec diff old.yaml new.yaml              # Compare two files
  ngxspec diff openapi.yaml                   # Compare file vs generated
  ngxspec diff old.yaml new.yaml --fail-on-breaking`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().BoolVar(&diffFailOnBreaking, "fail-on-breaking", false, "exit with an error when operations were removed or moved")
}

func runDiff(cmd *cobra.Command, args []string) error {
	before, err := openapi.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	var after *types.OpenAPI
	if len(args) == 2 {
		printVerbose("Comparing %s against %s", args[0], args[1])
		if after, err = openapi.ReadFile(args[1]); err != nil {
			return fmt.Errorf("failed to read %s: %w", args[1], err)
		}
	} else {
		printVerbose("Comparing %s against generated", args[0])
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if after, err = generateSpec(cmd.Context(), cfg, cfg.Source.Paths); err != nil {
			return err
		}
	}

	result, err := openapi.NewDiffer().Diff(before, after)
	if err != nil {
		return fmt.Errorf("failed to compare specs: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), openapi.FormatDiff(result))
	if result.IsEmpty() {
		fmt.Fprintln(cmd.OutOrStdout())
	}

	if diffFailOnBreaking && result.HasBreakingChanges {
		return errBreakingChanges
	}
	return nil
}
