// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package config loads and validates the ngxspec configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the ngxspec configuration.
type Config struct {
	// Framework selects the extraction plugin (auto, jaxrs, spring)
	Framework string `mapstructure:"framework" yaml:"framework" json:"framework"`

	// Output is the path of the generated OpenAPI document
	Output string `mapstructure:"output" yaml:"output" json:"output"`

	// Format is the output format (yaml, json)
	Format string `mapstructure:"format" yaml:"format" json:"format"`

	OpenAPI    OpenAPIConfig    `mapstructure:"openapi" yaml:"openapi" json:"openapi"`
	Source     SourceConfig     `mapstructure:"source" yaml:"source" json:"source"`
	Generation GenerationConfig `mapstructure:"generation" yaml:"generation" json:"generation"`
	Watch      WatchConfig      `mapstructure:"watch" yaml:"watch" json:"watch"`
	Nginx      NginxConfig      `mapstructure:"nginx" yaml:"nginx" json:"nginx"`
}

// OpenAPIConfig holds document level metadata.
type OpenAPIConfig struct {
	// Version is the OpenAPI version to generate (3.0.3, 3.1.0)
	Version  string         `mapstructure:"version" yaml:"version" json:"version"`
	Info     InfoConfig     `mapstructure:"info" yaml:"info" json:"info"`
	Servers  []ServerConfig `mapstructure:"servers" yaml:"servers" json:"servers"`
	Tags     []TagConfig    `mapstructure:"tags" yaml:"tags" json:"tags"`
	Security SecurityConfig `mapstructure:"security" yaml:"security" json:"security"`
}

// InfoConfig contains API metadata.
type InfoConfig struct {
	Title       string        `mapstructure:"title" yaml:"title" json:"title"`
	Description string        `mapstructure:"description" yaml:"description" json:"description"`
	Version     string        `mapstructure:"version" yaml:"version" json:"version"`
	Contact     ContactConfig `mapstructure:"contact" yaml:"contact" json:"contact"`
	License     LicenseConfig `mapstructure:"license" yaml:"license" json:"license"`
}

// ContactConfig contains contact information.
type ContactConfig struct {
	Name  string `mapstructure:"name" yaml:"name" json:"name"`
	URL   string `mapstructure:"url" yaml:"url" json:"url"`
	Email string `mapstructure:"email" yaml:"email" json:"email"`
}

// LicenseConfig contains license information.
type LicenseConfig struct {
	Name string `mapstructure:"name" yaml:"name" json:"name"`
	URL  string `mapstructure:"url" yaml:"url" json:"url"`
}

// ServerConfig is one entry of the document's servers list.
type ServerConfig struct {
	URL         string `mapstructure:"url" yaml:"url" json:"url"`
	Description string `mapstructure:"description" yaml:"description" json:"description"`
}

// TagConfig declares a tag with its description. Tags assigned by nginx tag
// rules are added after these.
type TagConfig struct {
	Name        string `mapstructure:"name" yaml:"name" json:"name"`
	Description string `mapstructure:"description" yaml:"description" json:"description"`
}

// SecurityConfig contains security scheme configuration.
type SecurityConfig struct {
	// Schemes maps scheme names to their definitions
	Schemes map[string]SecuritySchemeConfig `mapstructure:"schemes" yaml:"schemes" json:"schemes"`

	// Default lists the schemes required by every operation
	Default []string `mapstructure:"default" yaml:"default" json:"default"`
}

// SecuritySchemeConfig contains security scheme configuration.
type SecuritySchemeConfig struct {
	// Type is apiKey, http, oauth2 or openIdConnect
	Type         string `mapstructure:"type" yaml:"type" json:"type"`
	Name         string `mapstructure:"name" yaml:"name" json:"name"`
	In           string `mapstructure:"in" yaml:"in" json:"in"`
	Scheme       string `mapstructure:"scheme" yaml:"scheme" json:"scheme"`
	BearerFormat string `mapstructure:"bearerFormat" yaml:"bearerFormat" json:"bearerFormat"`
	Description  string `mapstructure:"description" yaml:"description" json:"description"`
}

// SourceConfig contains source code scanning configuration.
type SourceConfig struct {
	// Paths is a list of paths to scan
	Paths []string `mapstructure:"paths" yaml:"paths" json:"paths"`

	// Include is a list of glob patterns to include
	Include []string `mapstructure:"include" yaml:"include" json:"include"`

	// Exclude is a list of glob patterns to exclude
	Exclude []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
}

// GenerationConfig contains generation behavior configuration.
type GenerationConfig struct {
	// Mode is the generation mode (full, routes-only, schemas-only)
	Mode string `mapstructure:"mode" yaml:"mode" json:"mode"`

	// StrictMode fails generation when any operation cannot be mapped
	StrictMode bool `mapstructure:"strictMode" yaml:"strictMode" json:"strictMode"`

	// OperationIDFormat is a template over {{className}}, {{methodName}},
	// {{httpMethod}} and {{package}}
	OperationIDFormat string `mapstructure:"operationIdFormat" yaml:"operationIdFormat" json:"operationIdFormat"`

	// DefaultResponses is a list of default response codes to include
	DefaultResponses []string `mapstructure:"defaultResponses" yaml:"defaultResponses" json:"defaultResponses"`
}

// WatchConfig contains file watching configuration.
type WatchConfig struct {
	// Debounce is the debounce duration in milliseconds
	Debounce int `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
}

// NginxConfig describes the nginx configuration operations are mapped through.
type NginxConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Location is the main nginx configuration file. Relative paths are
	// resolved against the directory of the config file.
	Location string `mapstructure:"location" yaml:"location" json:"location"`

	// Properties fill {{name}} placeholders in the nginx files
	Properties map[string]string `mapstructure:"properties" yaml:"properties" json:"properties"`

	// StrictTemplate rejects placeholders without a property
	StrictTemplate bool `mapstructure:"strictTemplate" yaml:"strictTemplate" json:"strictTemplate"`

	// ExcludeLocations lists include files to skip
	ExcludeLocations []string `mapstructure:"excludeLocations" yaml:"excludeLocations" json:"excludeLocations"`

	// AdditionalRewrites run before the nginx configuration
	AdditionalRewrites []RewriteConfig `mapstructure:"additionalRewrites" yaml:"additionalRewrites" json:"additionalRewrites"`

	// Tags assign tags by mapped path; a tag without a name drops operations
	Tags []TagRuleConfig `mapstructure:"tags" yaml:"tags" json:"tags"`

	// Direction is reverse (upstream to public paths) or forward
	Direction string `mapstructure:"direction" yaml:"direction" json:"direction"`

	// InversionPolicy is keep or fail
	InversionPolicy string `mapstructure:"inversionPolicy" yaml:"inversionPolicy" json:"inversionPolicy"`

	// NotFoundPrecedence applies return 404 locations only when they outrank
	// the rewriting location
	NotFoundPrecedence bool `mapstructure:"notFoundPrecedence" yaml:"notFoundPrecedence" json:"notFoundPrecedence"`

	// Concurrency bounds parallel path mapping, 0 means GOMAXPROCS
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency" json:"concurrency"`
}

// RewriteConfig is a rewrite applied in addition to the nginx configuration.
type RewriteConfig struct {
	Regex   string `mapstructure:"regex" yaml:"regex" json:"regex"`
	Replace string `mapstructure:"replace" yaml:"replace" json:"replace"`
}

// TagRuleConfig tags operations whose path fully matches one of URLs.
type TagRuleConfig struct {
	Name string   `mapstructure:"name" yaml:"name" json:"name"`
	URLs []string `mapstructure:"urls" yaml:"urls" json:"urls"`
}

// configFileNames is the list of config file names to search for (in order).
var configFileNames = []string{
	"ngxspec.yaml",
	"ngxspec.json",
	".ngxspec.yaml",
	".ngxspec.json",
}

var (
	supportedFrameworks = []string{"auto", "jaxrs", "spring"}
	supportedFormats    = []string{"yaml", "json"}
	supportedModes      = []string{"full", "routes-only", "schemas-only"}
	supportedDirections = []string{"reverse", "forward"}
	supportedPolicies   = []string{"keep", "fail"}
)

var (
	defaultInclude = []string{"**/*.java"}
	defaultExclude = []string{
		".git/**",
		"**/target/**",
		"**/build/**",
		"**/out/**",
		"**/src/test/**",
		"**/generated-sources/**",
	}
	defaultResponses = []string{"200", "400", "500"}
)

// DefaultOperationIDFormat names operations after their handler.
const DefaultOperationIDFormat = "{{className}}.{{methodName}}"

// ErrConfigNotFound is returned when an explicit config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return "no validation errors"
	case 1:
		return e[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("config validation errors:\n")
	for _, err := range e {
		fmt.Fprintf(&sb, "  - %s: %s\n", err.Field, err.Message)
	}
	return sb.String()
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Framework: "auto",
		Output:    "openapi.yaml",
		Format:    "yaml",
		OpenAPI: OpenAPIConfig{
			Version: "3.0.3",
			Info: InfoConfig{
				Title:   "API",
				Version: "1.0.0",
			},
		},
		Source: SourceConfig{
			Paths:   []string{"."},
			Include: slices.Clone(defaultInclude),
			Exclude: slices.Clone(defaultExclude),
		},
		Generation: GenerationConfig{
			Mode:              "full",
			OperationIDFormat: DefaultOperationIDFormat,
			DefaultResponses:  slices.Clone(defaultResponses),
		},
		Watch: WatchConfig{
			Debounce: 500,
		},
		Nginx: NginxConfig{
			Location:        "nginx.conf",
			Direction:       "reverse",
			InversionPolicy: "keep",
		},
	}
}

// Load reads the configuration. Without configPath the working directory
// is searched for ngxspec.yaml, ngxspec.json, .ngxspec.yaml and
// .ngxspec.json in that order, and the defaults are returned when none
// exists.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = ConfigFilePath()
		if configPath == "" {
			return Default(), nil
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.resolvePaths(filepath.Dir(configPath))
	return &cfg, nil
}

// LoadFromPath loads the first config file found in dir.
func LoadFromPath(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

func (c *Config) resolvePaths(dir string) {
	if c.Nginx.Location != "" && !filepath.IsAbs(c.Nginx.Location) && dir != "." && dir != "" {
		c.Nginx.Location = filepath.Join(dir, c.Nginx.Location)
	}
}

// setDefaults mirrors Default for viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("framework", "auto")
	v.SetDefault("output", "openapi.yaml")
	v.SetDefault("format", "yaml")
	v.SetDefault("openapi.version", "3.0.3")
	v.SetDefault("openapi.info.title", "API")
	v.SetDefault("openapi.info.version", "1.0.0")
	v.SetDefault("source.paths", []string{"."})
	v.SetDefault("source.include", defaultInclude)
	v.SetDefault("source.exclude", defaultExclude)
	v.SetDefault("generation.mode", "full")
	v.SetDefault("generation.operationIdFormat", DefaultOperationIDFormat)
	v.SetDefault("generation.defaultResponses", defaultResponses)
	v.SetDefault("watch.debounce", 500)
	v.SetDefault("nginx.location", "nginx.conf")
	v.SetDefault("nginx.direction", "reverse")
	v.SetDefault("nginx.inversionPolicy", "keep")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}
	oneOf := func(field, value string, allowed []string) {
		if value != "" && !slices.Contains(allowed, value) {
			add(field, "unsupported value %q, must be one of: %s", value, strings.Join(allowed, ", "))
		}
	}

	oneOf("framework", c.Framework, supportedFrameworks)
	oneOf("format", c.Format, supportedFormats)
	oneOf("generation.mode", c.Generation.Mode, supportedModes)

	if v := c.OpenAPI.Version; v != "" && v != "3.0.3" && v != "3.1.0" {
		add("openapi.version", "unsupported OpenAPI version %q, must be 3.0.3 or 3.1.0", v)
	}
	if c.OpenAPI.Info.Title == "" {
		add("openapi.info.title", "title is required")
	}
	if c.OpenAPI.Info.Version == "" {
		add("openapi.info.version", "version is required")
	}
	if c.Watch.Debounce < 0 {
		add("watch.debounce", "debounce must be non-negative")
	}
	if f := c.Generation.OperationIDFormat; f != "" && !strings.Contains(f, "{{") {
		add("generation.operationIdFormat", "format %q has no placeholder", f)
	}

	oneOf("nginx.direction", c.Nginx.Direction, supportedDirections)
	oneOf("nginx.inversionPolicy", c.Nginx.InversionPolicy, supportedPolicies)
	errs = append(errs, c.Nginx.validate()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (n *NginxConfig) validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if n.Enabled && n.Location == "" {
		add("nginx.location", "location is required when nginx is enabled")
	}
	if n.Concurrency < 0 {
		add("nginx.concurrency", "concurrency must be non-negative")
	}

	for i, r := range n.AdditionalRewrites {
		field := fmt.Sprintf("nginx.additionalRewrites[%d]", i)
		if r.Regex == "" || r.Replace == "" {
			add(field, "regex and replace are required")
			continue
		}
		if _, err := regexp.Compile(r.Regex); err != nil {
			add(field+".regex", "invalid regex: %v", err)
		}
	}

	for i, t := range n.Tags {
		field := fmt.Sprintf("nginx.tags[%d].urls", i)
		if len(t.URLs) == 0 {
			add(field, "at least one url is required")
		}
		for _, u := range t.URLs {
			if _, err := regexp.Compile(u); err != nil {
				add(field, "invalid url regex %q: %v", u, err)
			}
		}
	}
	return errs
}

// ConfigFilePath returns the config file found in the working directory,
// or "" when there is none.
func ConfigFilePath() string {
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}
