// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ngxspec/ngxspec/internal/rewrite"
)

var (
	rewriteReverse  bool
	rewriteNginxCfg string
	rewriteSet      map[string]string
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <method> <path>",
	Short: "Show how nginx maps a single path",
	Long: `Rewrite runs one request through the nginx configuration and prints the
resulting path. With --reverse it goes the other way: the path is taken as
the upstream path and the public path a client would call is printed.

Paths that end in a 404 location print @404.

Example:
  ngxspec rewrite GET /api/users/42
  ngxspec rewrite POST /internal/orders --reverse
  ngxspec rewrite GET /v1/health --nginx deploy/nginx.conf --set env=prod`,
	Args: cobra.ExactArgs(2),
	RunE: runRewrite,
}

func init() {
	rewriteCmd.Flags().BoolVarP(&rewriteReverse, "reverse", "r", false, "map an upstream path back to the public path")
	rewriteCmd.Flags().StringVar(&rewriteNginxCfg, "nginx", "", "nginx config file (default: from config)")
	rewriteCmd.Flags().StringToStringVar(&rewriteSet, "set", nil, "nginx template property as key=value")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyNginxFlags(cfg, rewriteNginxCfg, rewriteSet)

	cfg.Nginx.Direction = string(rewrite.DirectionForward)
	if rewriteReverse {
		cfg.Nginx.Direction = string(rewrite.DirectionReverse)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	m, err := buildMapper(cfg)
	if err != nil {
		return err
	}

	method := strings.ToUpper(args[0])
	res, err := m.Map(rewrite.Operation{Method: method, Path: args[1]})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Path)
	if res.Tag != "" {
		printVerbose("tag: %s", res.Tag)
	}
	if res.Excluded {
		printVerbose("excluded from the document")
	}
	return nil
}
