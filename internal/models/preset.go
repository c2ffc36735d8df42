package models

import "strings"

type Preset string

const (
	PresetBalanced Preset = "balanced"
	PresetStrong   Preset = "strong"
	PresetMax      Preset = "max"

	DefaultPreset = PresetBalanced
)

// Presets lists the closed preset enumeration in increasing strength.
var Presets = []Preset{PresetBalanced, PresetStrong, PresetMax}

// ParsePreset returns the preset for name and whether it is a known preset.
func ParsePreset(name string) (Preset, bool) {
	p := Preset(strings.TrimSpace(name))
	for _, known := range Presets {
		if p == known {
			return p, true
		}
	}
	return p, false
}

func (p Preset) Valid() bool {
	_, ok := ParsePreset(string(p))
	return ok
}
