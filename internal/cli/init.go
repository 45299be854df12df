// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/ngxspec/ngxspec/internal/config"
	"github.com/ngxspec/ngxspec/internal/plugins"
)

var (
	initFramework   string
	initForce       bool
	initInteractive bool
	initTitle       string
	initVersion     string
	initDescription string
	initNginx       string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new ngxspec configuration file",
	Long: `Initialize a new ngxspec configuration file in the current directory.

This command creates an ngxspec.yaml file with sensible defaults
that you can customize for your project.

Features:
  - Auto-detects JAX-RS or Spring from pom.xml and build.gradle
  - Infers API title from the Maven artifact or Gradle project name
  - Finds Java source roots, including multi-module builds
  - Finds a checked-in nginx.conf and enables path mapping

Example:
  ngxspec init                          # Auto-detect everything
  ngxspec init --framework spring       # Create config for Spring MVC
  ngxspec init --nginx deploy/gw.conf   # Use a specific nginx config
  ngxspec init --force                  # Overwrite existing config
  ngxspec init --interactive            # Interactive mode with prompts`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initFramework, "framework", "", "web framework to use. If not specified, auto-detects from build files")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "interactive mode with prompts")
	initCmd.Flags().StringVar(&initTitle, "title", "", "API title for OpenAPI info")
	initCmd.Flags().StringVar(&initVersion, "version", "", "API version for OpenAPI info")
	initCmd.Flags().StringVar(&initDescription, "description", "", "API description for OpenAPI info")
	initCmd.Flags().StringVar(&initNginx, "nginx", "", "nginx config file to map paths through")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := "ngxspec.yaml"

	if _, err := os.Stat(configFile); err == nil && !initForce {
		return fmt.Errorf("config file %s already exists, use --force to overwrite", configFile)
	}

	projectRoot, err := filepath.Abs(".")
	if err != nil {
		return fmt.Errorf("failed to determine project root: %w", err)
	}

	cfg := config.Default()

	fw := initFramework
	if framework != "" {
		fw = framework
	}
	if fw == "" {
		fw = detectFramework(projectRoot)
	} else if fw != "auto" && plugins.Get(fw) == nil {
		return fmt.Errorf("unsupported framework %q, must be one of: %s, auto", fw, strings.Join(plugins.List(), ", "))
	}
	cfg.Framework = fw

	info := detectProjectInfo(projectRoot)
	if initTitle != "" {
		cfg.OpenAPI.Info.Title = initTitle
	} else if info.Title != "" {
		cfg.OpenAPI.Info.Title = info.Title
	}
	if initVersion != "" {
		cfg.OpenAPI.Info.Version = initVersion
	} else if info.Version != "" {
		cfg.OpenAPI.Info.Version = info.Version
	}
	if initDescription != "" {
		cfg.OpenAPI.Info.Description = initDescription
	} else if info.Description != "" {
		cfg.OpenAPI.Info.Description = info.Description
	}

	entryPoints := detectEntryPoints(projectRoot)
	cfg.Source.Paths = entryPoints
	printVerbose("Detected source roots: %s", strings.Join(entryPoints, ", "))

	nginxConf := initNginx
	if nginxConf == "" {
		nginxConf = detectNginxConfig(projectRoot)
	}
	if nginxConf != "" {
		cfg.Nginx.Enabled = true
		cfg.Nginx.Location = nginxConf
		printInfo("Mapping paths through %s", nginxConf)
	}

	if initInteractive && isTerminal() {
		cfg = interactiveInit(cfg, os.Stdin, stdout)
	}

	out, err := buildConfigYAML(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFile, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	printInfo("Created %s", configFile)
	printVerbose("Framework: %s", cfg.Framework)
	printVerbose("Output: %s", cfg.Output)
	return nil
}

func detectFramework(projectRoot string) string {
	printVerbose("Auto-detecting framework...")
	detected, err := plugins.Global().Detect(projectRoot)
	if err != nil {
		printVerbose("Framework detection failed: %v", err)
		printInfo("No framework auto-detected. Using 'auto' mode.")
		return "auto"
	}
	if len(detected) > 1 {
		printInfo("Detected several frameworks, using 'auto' mode.")
		return "auto"
	}
	printInfo("Detected framework: %s", detected[0].Name())
	return detected[0].Name()
}

// projectInfo holds information detected from the build files.
type projectInfo struct {
	Title       string
	Name        string
	Version     string
	Description string
}

type pomProject struct {
	ArtifactID  string `xml:"artifactId"`
	Name        string `xml:"name"`
	Version     string `xml:"version"`
	Description string `xml:"description"`
}

var gradleProjectName = regexp.MustCompile(`rootProject\.name\s*=\s*["']([^"']+)["']`)

// detectProjectInfo reads the Maven pom.xml or the Gradle settings file.
func detectProjectInfo(projectRoot string) projectInfo {
	var info projectInfo

	if data, err := os.ReadFile(filepath.Join(projectRoot, "pom.xml")); err == nil {
		var pom pomProject
		if xml.Unmarshal(data, &pom) == nil {
			info.Name = pom.ArtifactID
			info.Version = strings.TrimSuffix(pom.Version, "-SNAPSHOT")
			info.Description = strings.TrimSpace(pom.Description)
			if pom.Name != "" && !strings.Contains(pom.Name, "${") {
				info.Title = pom.Name
			}
		}
	} else {
		for _, name := range []string{"settings.gradle", "settings.gradle.kts"} {
			if n := readGradleName(filepath.Join(projectRoot, name)); n != "" {
				info.Name = n
				break
			}
		}
	}

	if info.Title == "" && info.Name != "" {
		// e.g. "order-service" -> "Order Service API"
		name := strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(info.Name)
		info.Title = cases.Title(language.English).String(name) + " API"
	}
	return info
}

func readGradleName(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		if m := gradleProjectName.FindStringSubmatch(s.Text()); m != nil {
			return m[1]
		}
	}
	return ""
}

// detectEntryPoints returns the Java source roots of the project, one per
// module, or "." when the layout is not the Maven/Gradle one.
func detectEntryPoints(projectRoot string) []string {
	var paths []string
	for _, pattern := range []string{"src/main/java", "*/src/main/java"} {
		matches, err := doublestar.Glob(os.DirFS(projectRoot), pattern)
		if err != nil {
			continue
		}
		for _, m := range matches {
			paths = append(paths, "./"+m)
		}
	}
	if len(paths) == 0 {
		return []string{"."}
	}
	slices.Sort(paths)
	return paths
}

var nginxCandidates = []string{
	"nginx.conf",
	"nginx/nginx.conf",
	"conf/nginx.conf",
	"deploy/nginx.conf",
	"docker/nginx.conf",
	"deploy/nginx/nginx.conf",
}

// detectNginxConfig returns the first checked-in nginx.conf, relative to
// projectRoot.
func detectNginxConfig(projectRoot string) string {
	for _, c := range nginxCandidates {
		if info, err := os.Stat(filepath.Join(projectRoot, c)); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// isTerminal checks if stdin is a terminal.
func isTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// interactiveInit prompts for the settings most projects change.
func interactiveInit(cfg *config.Config, in io.Reader, out io.Writer) *config.Config {
	reader := bufio.NewReader(in)
	ask := func(label string, value *string) {
		fmt.Fprintf(out, "%s [%s]: ", label, *value)
		answer, _ := reader.ReadString('\n')
		if answer = strings.TrimSpace(answer); answer != "" {
			*value = answer
		}
	}

	ask("API Title", &cfg.OpenAPI.Info.Title)
	ask("API Version", &cfg.OpenAPI.Info.Version)
	ask("API Description", &cfg.OpenAPI.Info.Description)
	ask("Framework", &cfg.Framework)
	ask("Output file", &cfg.Output)
	ask("Output format (yaml/json)", &cfg.Format)
	ask("Nginx config", &cfg.Nginx.Location)
	if _, err := os.Stat(cfg.Nginx.Location); err == nil {
		cfg.Nginx.Enabled = true
	}

	return cfg
}

// buildConfigYAML builds a YAML config with a header comment.
func buildConfigYAML(cfg *config.Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	header := `# ngxspec configuration file
# https://github.com/ngxspec/ngxspec

`
	return header + string(data), nil
}
