// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package plugins

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ErrNoFramework is returned by Detect when no plugin recognizes the project.
var ErrNoFramework = errors.New("no framework detected")

// Registry manages framework plugins.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]FrameworkPlugin
}

var globalRegistry = NewRegistry()

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]FrameworkPlugin)}
}

// Register adds a plugin to the registry.
// It returns an error if a plugin with the same name is already registered.
func (r *Registry) Register(plugin FrameworkPlugin) error {
	if plugin == nil {
		return fmt.Errorf("cannot register nil plugin")
	}
	name := plugin.Name()
	if name == "" {
		return fmt.Errorf("plugin name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin %q is already registered", name)
	}
	r.plugins[name] = plugin
	return nil
}

// MustRegister adds a plugin to the registry, panicking on error.
func (r *Registry) MustRegister(plugin FrameworkPlugin) {
	if err := r.Register(plugin); err != nil {
		panic(fmt.Sprintf("failed to register plugin: %v", err))
	}
}

// Get returns a plugin by name, or nil if not found.
func (r *Registry) Get(name string) FrameworkPlugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.plugins[name]
}

// Detect returns every plugin that recognizes the project, in name order.
// Plugins whose detection fails are skipped.
func (r *Registry) Detect(projectRoot string) ([]FrameworkPlugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var detected []FrameworkPlugin
	for _, name := range slices.Sorted(maps.Keys(r.plugins)) {
		ok, err := r.plugins[name].Detect(projectRoot)
		if err == nil && ok {
			detected = append(detected, r.plugins[name])
		}
	}
	if len(detected) == 0 {
		return nil, fmt.Errorf("%w in project %s", ErrNoFramework, projectRoot)
	}
	return detected, nil
}

// Resolve returns the plugins for a framework setting: the named plugin,
// or every detected plugin for "auto".
func (r *Registry) Resolve(framework, projectRoot string) ([]FrameworkPlugin, error) {
	if framework == "" || framework == "auto" {
		return r.Detect(projectRoot)
	}
	p := r.Get(framework)
	if p == nil {
		return nil, fmt.Errorf("unknown framework %q, available: %v", framework, r.List())
	}
	return []FrameworkPlugin{p}, nil
}

// List returns a sorted list of registered plugin names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.plugins))
}

// Has checks if a plugin is registered.
func (r *Registry) Has(name string) bool {
	return r.Get(name) != nil
}

// Unregister removes a plugin from the registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; !exists {
		return fmt.Errorf("plugin %q is not registered", name)
	}
	delete(r.plugins, name)
	return nil
}

// Register adds a plugin to the global registry.
func Register(plugin FrameworkPlugin) error {
	return globalRegistry.Register(plugin)
}

// MustRegister adds a plugin to the global registry, panicking on error.
func MustRegister(plugin FrameworkPlugin) {
	globalRegistry.MustRegister(plugin)
}

// Get returns a plugin by name from the global registry.
func Get(name string) FrameworkPlugin {
	return globalRegistry.Get(name)
}

// Resolve resolves a framework setting against the global registry.
func Resolve(framework, projectRoot string) ([]FrameworkPlugin, error) {
	return globalRegistry.Resolve(framework, projectRoot)
}

// List returns all registered plugin names from the global registry.
func List() []string {
	return globalRegistry.List()
}

// Global returns the global registry instance.
func Global() *Registry {
	return globalRegistry
}
