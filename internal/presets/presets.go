// Package presets holds predefined feeling maps as plain link tables.
package presets

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/easeaico/feelings/internal/feelings"
)

// Link is one configured effect.
type Link struct {
	Source string  `yaml:"source"`
	Target string  `yaml:"target"`
	Ratio  float64 `yaml:"ratio"`
}

// Preset is a named table of links applied in order.
type Preset struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Links       []Link `yaml:"links"`
}

// Apply configures every link of p on g in table order.
func (p Preset) Apply(g *feelings.Graph) error {
	for i, l := range p.Links {
		if err := g.SetEffect(l.Source, l.Target, l.Ratio); err != nil {
			return fmt.Errorf("preset %s link %d: %w", p.Name, i, err)
		}
	}
	return nil
}

// Build returns a new graph populated with p.
func (p Preset) Build(opts ...feelings.Option) (*feelings.Graph, error) {
	g := feelings.NewGraph(opts...)
	if err := p.Apply(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Lookup returns the built-in preset called name (case-insensitive).
func Lookup(name string) (Preset, bool) {
	p, ok := builtin[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Names lists the built-in presets.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadYAML reads a preset definition and checks every link.
func LoadYAML(r io.Reader) (Preset, error) {
	var p Preset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Preset{}, fmt.Errorf("failed to decode preset: %w", err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return Preset{}, fmt.Errorf("preset name is required")
	}
	if len(p.Links) == 0 {
		return Preset{}, fmt.Errorf("preset %s has no links", p.Name)
	}
	if _, err := p.Build(); err != nil {
		return Preset{}, err
	}
	return p, nil
}
