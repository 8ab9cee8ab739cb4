package formatter

import (
	"fmt"
	"strings"
)

// Preset represents a template preset with name, template string, and description.
type Preset struct {
	Name        string
	Template    string
	Description string
}

// PresetRegistry manages template presets.
type PresetRegistry interface {
	// Get returns a preset by name.
	Get(name string) (*Preset, error)

	// List returns all available presets.
	List() []Preset

	// Register adds a new preset.
	Register(preset Preset) error
}

type presetRegistry struct {
	presets map[string]Preset
	order   []string
}

// DefaultPreset is the preset used when none is named.
const DefaultPreset = "default"

// NewPresetRegistry creates a new preset registry with the default presets.
func NewPresetRegistry() PresetRegistry {
	registry := &presetRegistry{presets: make(map[string]Preset)}
	for _, p := range []Preset{
		{
			Name:        DefaultPreset,
			Template:    "module {{module-id}} {{module-name}}: {{status}}{{error-suffix}}",
			Description: "Module id, name and status",
		},
		{
			Name:        "compact",
			Template:    "{{module-name}} {{status}}",
			Description: "Module name and status only",
		},
		{
			Name:        "verbose",
			Template:    "{{time}} {{workflow-name}} r{{revision}} module {{module-id}} {{module-name}}: {{status}}{{error-suffix}}",
			Description: "Time, workflow and revision before the default line",
		},
		{
			Name:        "tsv",
			Template:    "{{timestamp}}\t{{module-id}}\t{{status}}\t{{error}}",
			Description: "Tab separated, for scripts",
		},
	} {
		// Defaults are distinct and non-empty.
		_ = registry.Register(p)
	}
	return registry
}

func (pr *presetRegistry) Get(name string) (*Preset, error) {
	p, ok := pr.presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(pr.order, ", "))
	}
	return &p, nil
}

func (pr *presetRegistry) List() []Preset {
	out := make([]Preset, 0, len(pr.order))
	for _, name := range pr.order {
		out = append(out, pr.presets[name])
	}
	return out
}

func (pr *presetRegistry) Register(preset Preset) error {
	if preset.Name == "" {
		return fmt.Errorf("preset name cannot be empty")
	}
	if preset.Template == "" {
		return fmt.Errorf("preset %q has an empty template", preset.Name)
	}
	if _, exists := pr.presets[preset.Name]; exists {
		return fmt.Errorf("preset %q already registered", preset.Name)
	}
	pr.presets[preset.Name] = preset
	pr.order = append(pr.order, preset.Name)
	return nil
}

// Resolve picks the template for a watch line: an explicit template wins
// over a preset name, and an empty preset name means DefaultPreset.
func Resolve(registry PresetRegistry, presetName, template string) (string, error) {
	if template != "" {
		if _, err := NewTemplateEngine().Parse(template); err != nil {
			return "", err
		}
		return template, nil
	}
	if presetName == "" {
		presetName = DefaultPreset
	}
	p, err := registry.Get(presetName)
	if err != nil {
		return "", err
	}
	return p.Template, nil
}
