// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ngxspec/ngxspec/internal/plugins"
)

// Version information set via ldflags during build. Binaries installed with
// go install fall back to the module build info.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit hash, build date, Go version and supported frameworks.`,
	Run: func(cmd *cobra.Command, args []string) {
		version, commit, date := buildInfo()
		cmd.Printf("ngxspec %s\n", version)
		cmd.Printf("  Commit:     %s\n", commit)
		cmd.Printf("  Build Date: %s\n", date)
		cmd.Printf("  Go Version: %s\n", runtime.Version())
		cmd.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		cmd.Printf("  Frameworks: %s\n", strings.Join(plugins.List(), ", "))
	},
}

// buildInfo returns the ldflags values, completed from the embedded module
// and VCS information where they were not set.
func buildInfo() (version, commit, date string) {
	version, commit, date = Version, Commit, BuildDate
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && commit == "unknown":
			commit = s.Value
		case s.Key == "vcs.time" && date == "unknown":
			date = s.Value
		}
	}
	return
}

// GetVersionInfo returns formatted version information.
func GetVersionInfo() string {
	version, commit, date := buildInfo()
	return fmt.Sprintf("ngxspec %s (commit: %s, built: %s)", version, commit, date)
}
