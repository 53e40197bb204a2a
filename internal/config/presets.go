package config

import "sort"

// Presets are named overrides applied on top of a loaded config.
var Presets = map[string]func(*Config){
	// classroom: slow enough to narrate, Spanish labels.
	"classroom": func(c *Config) {
		c.Speed = 0.5
		c.Language = "es"
		c.Theme = "paper"
	},
	"demo": func(c *Config) {
		c.Speed = 2
		c.Lesson = "smart_pointers"
		c.Scenario = "reference_counting"
	},
	"lowpower": func(c *Config) {
		c.FPS = 15
		c.Record.FPS = 15
		c.Theme = "phosphor"
	},
}

// ApplyPreset applies the named preset and reports whether it exists.
func (c *Config) ApplyPreset(name string) bool {
	p, ok := Presets[name]
	if ok {
		p(c)
	}
	return ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
