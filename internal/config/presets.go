package config

import (
	"maps"
	"slices"

	"github.com/san-kum/dominoes/internal/physics"
)

// Presets tweak the default scene. Each entry is applied to a fresh
// DefaultConfig so presets never share state.
var Presets = map[string]func(*Config){
	"default": func(*Config) {},
	"arc": func(c *Config) {
		c.Layout.StraightCount = 0
	},
	"rows": func(c *Config) {
		c.Layout.ArcCount = 0
	},
	"empty": func(c *Config) {
		c.Layout.ArcCount = 0
		c.Layout.StraightCount = 0
	},
	"long": func(c *Config) {
		c.Layout.StraightCount = 30
		c.Layout.StraightMinX = -12
		c.Duration = 20
	},
	"sap": func(c *Config) {
		c.Layout.StraightCount = 30
		c.Layout.StraightMinX = -12
		c.Physics.Broadphase = physics.BroadphaseSAP
	},
	"awake": func(c *Config) {
		c.Physics.AllowSleep = false
	},
}

func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
