package processor

import (
	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/internal/models"
)

// Profile is the concrete tool configuration behind a preset.
type Profile struct {
	// PDFSettings is the Ghostscript -dPDFSETTINGS value.
	PDFSettings string
	// JPEGQuality applies to re-encoded JPEG images.
	JPEGQuality int
	// MaxDimension bounds the longest image side; 0 leaves it unbounded.
	MaxDimension int
}

var profiles = map[models.Preset]Profile{
	models.PresetBalanced: {PDFSettings: "/printer", JPEGQuality: 85, MaxDimension: 0},
	models.PresetStrong:   {PDFSettings: "/ebook", JPEGQuality: 70, MaxDimension: 2560},
	models.PresetMax:      {PDFSettings: "/screen", JPEGQuality: 50, MaxDimension: 1600},
}

// ProfileFor returns the profile of p, using the default preset for unknown values.
func ProfileFor(p models.Preset) Profile {
	if profile, ok := profiles[p]; ok {
		return profile
	}
	return profiles[models.DefaultPreset]
}

// ResolvePreset maps a requested preset name onto the closed enumeration.
// Unknown names resolve to the default preset unless strict is set, in which
// case they are rejected. The boolean reports whether name was known.
func ResolvePreset(name string, strict bool) (models.Preset, bool, error) {
	preset, ok := models.ParsePreset(name)
	if ok {
		return preset, true, nil
	}
	if strict {
		return "", false, apperrors.New(apperrors.KindValidation, "processor.ResolvePreset",
			"unknown preset: "+name)
	}
	return models.DefaultPreset, false, nil
}
