// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag of cmd and its children to its default.
// Key=value map flags are left alone since pflag merges into them.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		switch v := f.Value.(type) {
		case pflag.SliceValue:
			_ = v.Replace(nil)
		default:
			if f.Value.Type() != "stringToString" {
				_ = f.Value.Set(f.DefValue)
			}
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs a command and returns output and error.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	resetFlags(root)

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	oldOut, oldErr := stdout, stderr
	stdout, stderr = buf, buf
	defer func() { stdout, stderr = oldOut, oldErr }()

	err := root.Execute()
	return buf.String(), err
}

func TestRootCommand_Help(t *testing.T) {
	output, err := executeCommand(rootCmd, "--help")
	require.NoError(t, err)

	assert.Contains(t, output, "ngxspec")
	assert.Contains(t, output, "nginx configuration")
	assert.Contains(t, output, "Available Commands")
	for _, name := range []string{"generate", "apply", "init", "check", "diff", "rewrite", "nginx", "watch", "print", "version"} {
		assert.Contains(t, output, name)
	}
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		expected string
	}{
		{name: "config flag short", flag: "-c", expected: "config file"},
		{name: "config flag long", flag: "--config", expected: "ngxspec.yaml"},
		{name: "output flag short", flag: "-o", expected: "output file path"},
		{name: "output flag long", flag: "--output", expected: "output file path"},
		{name: "format flag short", flag: "-f", expected: "output format"},
		{name: "format flag long", flag: "--format", expected: "output format"},
		{name: "framework flag", flag: "--framework", expected: "auto, jaxrs, spring"},
		{name: "verbose flag short", flag: "-v", expected: "verbose output"},
		{name: "verbose flag long", flag: "--verbose", expected: "verbose output"},
		{name: "quiet flag short", flag: "-q", expected: "suppress"},
		{name: "quiet flag long", flag: "--quiet", expected: "suppress"},
	}

	output, err := executeCommand(rootCmd, "--help")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, output, tt.flag)
			assert.Contains(t, output, tt.expected)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	output, err := executeCommand(rootCmd, "version")
	require.NoError(t, err)

	assert.Contains(t, output, "ngxspec")
	assert.Contains(t, output, "Commit")
	assert.Contains(t, output, "Build Date")
	assert.Contains(t, output, "Go Version")
	assert.Contains(t, output, "OS/Arch")
	assert.Contains(t, output, "Frameworks: jaxrs, spring")
}

func TestCommand_Help(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{
			args: []string{"init", "--help"},
			want: []string{"Initialize a new ngxspec configuration file", "--framework", "--force", "--nginx"},
		},
		{
			args: []string{"generate", "--help"},
			want: []string{"Generate an OpenAPI specification", "--mode", "--merge", "--dry-run", "--include", "--exclude", "--set", "--no-nginx"},
		},
		{
			args: []string{"apply", "--help"},
			want: []string{"maps", "--nginx", "--dry-run"},
		},
		{
			args: []string{"check", "--help"},
			want: []string{"Check validates that your OpenAPI specification matches your current code", "--strict", "--ignore", "--ci"},
		},
		{
			args: []string{"diff", "--help"},
			want: []string{"Compare two OpenAPI specifications", "moved", "--fail-on-breaking"},
		},
		{
			args: []string{"rewrite", "--help"},
			want: []string{"@404", "--reverse"},
		},
		{
			args: []string{"nginx", "--help"},
			want: []string{"dump", "lint"},
		},
		{
			args: []string{"watch", "--help"},
			want: []string{"Watch for file changes", "--mode", "--debounce"},
		},
		{
			args: []string{"print", "--help"},
			want: []string{"Print the OpenAPI specification"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			output, err := executeCommand(rootCmd, tt.args...)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, output, want)
			}
		})
	}
}

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Contains(t, info, "ngxspec")
	assert.Contains(t, info, "commit")
	assert.Contains(t, info, "built")
}
