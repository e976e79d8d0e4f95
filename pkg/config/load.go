package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// overlayFile is the YAML shape of an override file. Every section is
// optional; omitted sections keep their compiled-in defaults.
type overlayFile struct {
	Rules    *Rules             `yaml:"rules"`
	Profiles map[string]Profile `yaml:"profiles"`
	Terms    *TermCatalog       `yaml:"terms"`
	Cultures map[string]Culture `yaml:"cultures"`
	Periods  map[string]Period  `yaml:"periods"`
}

// LoadCatalog returns the default catalog with the YAML file at path
// overlaid on top, validated. An empty path returns the validated
// defaults.
func LoadCatalog(path string) (Catalog, error) {
	catalog := DefaultCatalog()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Catalog{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		var overlay overlayFile
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			return Catalog{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		catalog.apply(overlay)
	}
	if err := catalog.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("config: %w", err)
	}
	return catalog, nil
}

func (c *Catalog) apply(overlay overlayFile) {
	if overlay.Rules != nil {
		c.Rules = *overlay.Rules
	}
	if overlay.Terms != nil {
		c.Terms = *overlay.Terms
	}
	// Named entries replace or extend the default maps entry by entry.
	for key, p := range overlay.Profiles {
		c.Profiles[key] = p
	}
	for key, culture := range overlay.Cultures {
		c.Cultures[key] = culture
	}
	for key, period := range overlay.Periods {
		c.Periods[key] = period
	}
}
