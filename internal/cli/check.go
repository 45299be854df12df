// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/ngxspec/ngxspec/internal/openapi"
)

// Exit codes for check command
const (
	ExitCodeMatch      = 0 // Spec matches implementation
	ExitCodeDifference = 1 // Spec differs from implementation
	ExitCodeCheckError = 2 // Error during analysis
)

var (
	checkStrict bool
	checkIgnore []string
	checkCI     bool
)

// errSpecDiffers is returned by check when the documents differ.
var errSpecDiffers = errors.New("spec differs from implementation")

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check if spec matches current implementation",
	Long: `Check validates that your OpenAPI specification matches your current code
as seen through nginx.

This command generates a spec from your source code, maps it through the
nginx configuration when enabled, and compares it with the existing spec
file. It's useful for CI pipelines to catch gateway changes that move or
hide operations.

Exit codes:
  0  Spec matches implementation
  1  Spec differs from implementation
  2  Error during analysis

Example:
  ngxspec check                        # Basic validation
  ngxspec check --ci                   # CI mode with appropriate exit codes
  ngxspec check --ignore '/internal/**'  # Ignore matching paths and schemas`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkStrict, "strict", true, "fail on any difference")
	checkCmd.Flags().StringSliceVar(&checkIgnore, "ignore", nil, "glob patterns of paths or schema names to ignore")
	checkCmd.Flags().BoolVar(&checkCI, "ci", false, "CI mode: use exit codes for status")
}

func runCheck(cmd *cobra.Command, args []string) error {
	code, err := check(cmd, args)
	if checkCI {
		if err != nil && code == ExitCodeCheckError {
			printError("%v", err)
		}
		os.Exit(code)
	}
	return err
}

// check runs the comparison and returns the exit code matching its outcome.
func check(cmd *cobra.Command, args []string) (int, error) {
	cfg, err := loadConfig()
	if err != nil {
		return ExitCodeCheckError, err
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Source.Paths
	}

	if err := cfg.Validate(); err != nil {
		return ExitCodeCheckError, fmt.Errorf("invalid configuration: %w", err)
	}

	printVerbose("Check configuration:")
	printVerbose("  Strict mode: %t", checkStrict)
	printVerbose("  CI mode: %t", checkCI)
	if len(checkIgnore) > 0 {
		printVerbose("  Ignored patterns: %s", strings.Join(checkIgnore, ", "))
	}
	printVerbose("  Paths: %s", strings.Join(paths, ", "))
	printVerbose("  Spec file: %s", cfg.Output)

	existingSpec, err := openapi.ReadFile(cfg.Output)
	if errors.Is(err, fs.ErrNotExist) {
		printError("Spec file not found: %s", cfg.Output)
		printInfo("Run 'ngxspec generate' first to create the spec file")
		return ExitCodeDifference, fmt.Errorf("spec file not found: %s", cfg.Output)
	}
	if err != nil {
		return ExitCodeCheckError, fmt.Errorf("failed to read existing spec: %w", err)
	}

	generatedSpec, err := generateSpec(cmd.Context(), cfg, paths)
	if err != nil {
		return ExitCodeCheckError, fmt.Errorf("failed to generate spec from code: %w", err)
	}

	diffResult, err := openapi.NewDiffer().Diff(existingSpec, generatedSpec)
	if err != nil {
		return ExitCodeCheckError, fmt.Errorf("failed to compare specs: %w", err)
	}
	diffResult = applyIgnorePatterns(diffResult, checkIgnore)

	if diffResult.IsEmpty() {
		printInfo("Spec is in sync with implementation")
		return ExitCodeMatch, nil
	}

	printInfo("Spec differs from implementation:\n")
	printInfo(diffResult.Summary)
	printInfo("")

	if len(diffResult.PathChanges) > 0 {
		printInfo("Operation changes:")
		for _, change := range diffResult.PathChanges {
			printInfo("  %s %s", getChangeSymbol(change.Type), change.Description)
		}
		printInfo("")
	}

	if len(diffResult.SchemaChanges) > 0 {
		printInfo("Schema changes:")
		for _, change := range diffResult.SchemaChanges {
			printInfo("  %s %s", getChangeSymbol(change.Type), change.Name)
		}
		printInfo("")
	}

	if diffResult.HasBreakingChanges {
		printError("Breaking changes detected!")
	}

	printInfo("Run 'ngxspec generate' to update the spec file")

	if checkStrict || checkCI {
		return ExitCodeDifference, errSpecDiffers
	}
	return ExitCodeMatch, nil
}

// applyIgnorePatterns filters out changes that match ignore patterns.
func applyIgnorePatterns(result *openapi.DiffResult, patterns []string) *openapi.DiffResult {
	if len(patterns) == 0 {
		return result
	}

	filtered := &openapi.DiffResult{
		PathChanges:   make([]openapi.PathChange, 0),
		SchemaChanges: make([]openapi.SchemaChange, 0),
	}

	for _, change := range result.PathChanges {
		// a move is ignored only when both ends are
		if matchesAnyPattern(change.Path, patterns) && (change.From == "" || matchesAnyPattern(change.From, patterns)) {
			continue
		}
		filtered.PathChanges = append(filtered.PathChanges, change)
		if change.Type == openapi.DiffTypeRemoved || change.Type == openapi.DiffTypeMoved {
			filtered.HasBreakingChanges = true
		}
	}

	for _, change := range result.SchemaChanges {
		if matchesAnyPattern(change.Name, patterns) {
			continue
		}
		filtered.SchemaChanges = append(filtered.SchemaChanges, change)
		if change.Type == openapi.DiffTypeRemoved {
			filtered.HasBreakingChanges = true
		}
	}

	filtered.Summary = generateFilteredSummary(filtered)
	return filtered
}

// matchesAnyPattern checks if a path or name matches any doublestar pattern.
func matchesAnyPattern(s string, patterns []string) bool {
	for _, pattern := range patterns {
		if s == pattern {
			return true
		}
		if ok, _ := doublestar.Match(pattern, s); ok {
			return true
		}
		// patterns without a leading slash also match absolute paths
		if ok, _ := doublestar.Match(pattern, strings.TrimPrefix(s, "/")); ok {
			return true
		}
	}
	return false
}

// generateFilteredSummary generates a summary for filtered results.
func generateFilteredSummary(result *openapi.DiffResult) string {
	if result.IsEmpty() {
		return "No changes detected (after applying filters)"
	}

	operations := make(map[openapi.DiffType]int)
	for _, c := range result.PathChanges {
		operations[c.Type]++
	}
	schemas := make(map[openapi.DiffType]int)
	for _, c := range result.SchemaChanges {
		schemas[c.Type]++
	}

	var parts []string
	for _, t := range []openapi.DiffType{openapi.DiffTypeAdded, openapi.DiffTypeRemoved, openapi.DiffTypeMoved, openapi.DiffTypeModified} {
		if n := operations[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d operation(s) %s", n, t))
		}
	}
	for _, t := range []openapi.DiffType{openapi.DiffTypeAdded, openapi.DiffTypeRemoved, openapi.DiffTypeModified} {
		if n := schemas[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d schema(s) %s", n, t))
		}
	}

	summary := strings.Join(parts, ", ")
	if result.HasBreakingChanges {
		summary += " [BREAKING CHANGES DETECTED]"
	}
	return summary
}

// getChangeSymbol returns a symbol for the change type.
func getChangeSymbol(t openapi.DiffType) string {
	switch t {
	case openapi.DiffTypeAdded:
		return "+"
	case openapi.DiffTypeRemoved:
		return "-"
	case openapi.DiffTypeModified:
		return "~"
	case openapi.DiffTypeMoved:
		return ">"
	default:
		return " "
	}
}
