// Package preset serves the built-in color presets for email styling.
package preset

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var builtin []byte

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type ColorPreset struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Description  string `yaml:"description" json:"description"`
	PrimaryColor string `yaml:"primary_color" json:"primaryColor"`
	AccentColor  string `yaml:"accent_color" json:"accentColor"`
	UseCase      string `yaml:"use_case" json:"useCase"`
	Effect       string `yaml:"effect" json:"psychologicalEffect"`
}

// Catalog is an ordered, read-only list of presets.
type Catalog struct {
	presets []ColorPreset
}

// Load parses a YAML preset list and checks ids and colors.
func Load(data []byte) (*Catalog, error) {
	var presets []ColorPreset
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}
	if len(presets) == 0 {
		return nil, fmt.Errorf("no presets defined")
	}
	seen := map[string]bool{}
	for _, p := range presets {
		if p.ID == "" || seen[p.ID] {
			return nil, fmt.Errorf("preset id %q is empty or duplicated", p.ID)
		}
		seen[p.ID] = true
		if !hexColor.MatchString(p.PrimaryColor) || !hexColor.MatchString(p.AccentColor) {
			return nil, fmt.Errorf("preset %s: colors must be #RRGGBB", p.ID)
		}
	}
	return &Catalog{presets: presets}, nil
}

// Builtin returns the embedded catalogue.
func Builtin() (*Catalog, error) {
	return Load(builtin)
}

func (c *Catalog) All() []ColorPreset {
	return append([]ColorPreset(nil), c.presets...)
}

func (c *Catalog) Get(id string) (ColorPreset, bool) {
	for _, p := range c.presets {
		if p.ID == id {
			return p, true
		}
	}
	return ColorPreset{}, false
}

func (c *Catalog) Default() ColorPreset {
	return c.presets[0]
}
