// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ngxspec/ngxspec/internal/ngxconf"
	"github.com/ngxspec/ngxspec/internal/rewrite"
)

var (
	nginxCfgFile string
	nginxSet     map[string]string
)

var nginxCmd = &cobra.Command{
	Use:   "nginx",
	Short: "Inspect the nginx configuration",
	Long: `Inspect the nginx configuration the way ngxspec reads it: templates
rendered, includes resolved and excluded locations skipped.`,
}

var nginxDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the resolved nginx configuration",
	Args:  cobra.NoArgs,
	RunE:  runNginxDump,
}

var nginxLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Report directives that cannot be evaluated or inverted",
	Long: `Lint lists every location block, the directives ngxspec cannot evaluate,
and the rewrites it cannot run backwards. It fails when a directive cannot be
evaluated at all.`,
	Args: cobra.NoArgs,
	RunE: runNginxLint,
}

// errNginxProblems is returned by lint when the configuration has problems.
var errNginxProblems = errors.New("nginx configuration has problems")

func init() {
	nginxCmd.PersistentFlags().StringVar(&nginxCfgFile, "nginx", "", "nginx config file (default: from config)")
	nginxCmd.PersistentFlags().StringToStringVar(&nginxSet, "set", nil, "nginx template property as key=value")

	nginxCmd.AddCommand(nginxDumpCmd)
	nginxCmd.AddCommand(nginxLintCmd)
}

func loadNginxForInspection() (*ngxconf.Directive, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	applyNginxFlags(cfg, nginxCfgFile, nginxSet)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	printVerbose("Reading %s", cfg.Nginx.Location)
	return loadNginx(cfg)
}

func runNginxDump(cmd *cobra.Command, args []string) error {
	root, err := loadNginxForInspection()
	if err != nil {
		return err
	}
	return ngxconf.Format(cmd.OutOrStdout(), root)
}

func runNginxLint(cmd *cobra.Command, args []string) error {
	root, err := loadNginxForInspection()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	prog := rewrite.Compile(root)

	locations := prog.Locations()
	fmt.Fprintf(out, "%d location(s)\n", len(locations))
	for _, loc := range locations {
		fmt.Fprintf(out, "  %s\n", loc)
	}

	if inv := prog.Uninvertible(); len(inv) > 0 {
		fmt.Fprintf(out, "%d rewrite(s) cannot be inverted\n", len(inv))
		for _, e := range inv {
			fmt.Fprintf(out, "  %s: %s\n", e.Rule, e.Reason)
		}
	}

	problems := prog.Problems()
	if problems == nil {
		return nil
	}
	fmt.Fprintln(out, "problems:")
	for _, e := range unjoin(problems) {
		fmt.Fprintf(out, "  %v\n", e)
	}
	return errNginxProblems
}

func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
