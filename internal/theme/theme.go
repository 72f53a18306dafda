// Package theme supplies the flattened style properties a frame snapshot
// carries to the renderer.
package theme

import (
	"fmt"
	"sort"
)

// StyleProperty is one flattened key-value style pair.
type StyleProperty struct {
	Key   string
	Value string
}

// Provider yields the ordered style pairs for one theme.
type Provider interface {
	Name() string
	ToStyleProperties() []StyleProperty
}

// Static is a Provider backed by a fixed property list.
type Static struct {
	ThemeName  string
	Properties []StyleProperty
}

func (s Static) Name() string { return s.ThemeName }

func (s Static) ToStyleProperties() []StyleProperty {
	return append([]StyleProperty(nil), s.Properties...)
}

var builtin = map[string]Static{
	"dark": {
		ThemeName: "dark",
		Properties: []StyleProperty{
			{Key: "background", Value: "#0f1115"},
			{Key: "surface", Value: "#1a1d24"},
			{Key: "text-primary", Value: "#e8eaed"},
			{Key: "text-secondary", Value: "#9aa0a6"},
			{Key: "accent", Value: "#8ab4f8"},
			{Key: "positive", Value: "#81c995"},
			{Key: "negative", Value: "#f28b82"},
			{Key: "font-family", Value: "Inter, sans-serif"},
			{Key: "font-mono", Value: "JetBrains Mono, monospace"},
		},
	},
	"light": {
		ThemeName: "light",
		Properties: []StyleProperty{
			{Key: "background", Value: "#ffffff"},
			{Key: "surface", Value: "#f1f3f4"},
			{Key: "text-primary", Value: "#202124"},
			{Key: "text-secondary", Value: "#5f6368"},
			{Key: "accent", Value: "#1a73e8"},
			{Key: "positive", Value: "#188038"},
			{Key: "negative", Value: "#d93025"},
			{Key: "font-family", Value: "Inter, sans-serif"},
			{Key: "font-mono", Value: "JetBrains Mono, monospace"},
		},
	},
}

// Lookup returns a built-in theme by name.
func Lookup(name string) (Provider, error) {
	if name == "" {
		name = "dark"
	}
	provider, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("unknown theme %q (available: %v)", name, Names())
	}
	return provider, nil
}

// Names lists the built-in theme names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
