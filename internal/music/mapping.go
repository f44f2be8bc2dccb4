package music

import "github.com/soundcanvas/soundcanvas-api/internal/models"

// MapFeaturesToControls is the heuristic fallback when the model service is
// unavailable. It derives the full control vector from pixel statistics:
// brighter images run faster, the blue channel proxies pitch, and the hue
// wheel picks scale and pattern.
func MapFeaturesToControls(f models.ImageFeatures) models.ControlVector {
	brightness := clampFloat(f.Brightness, 0, 1)

	control := models.ControlVector{
		TempoBPM:      40.0 + brightness*60.0,  // 40-100 BPM
		BaseFrequency: 110.0 + f.AvgB*220.0,    // 110-330 Hz
		Brightness:    brightness,
		Energy:        clampFloat(0.5*f.Saturation+0.5*f.Contrast, 0, 1),
		Reverb:        clampFloat(1.0-f.Colorfulness*500.0, 0, 1),
	}

	// Scale from the hue wheel: warm hues bright, cool hues dark.
	switch {
	case f.Hue < 0.15 || f.Hue > 0.9:
		control.ScaleType = int(ScaleMajor)
	case f.Hue < 0.45:
		control.ScaleType = int(ScaleLydian)
	case f.Hue < 0.7:
		control.ScaleType = int(ScaleMinor)
	default:
		control.ScaleType = int(ScaleDorian)
	}

	// Pattern: pads for calm images, arps for busy ones, chords otherwise.
	switch {
	case control.Energy < 0.3:
		control.PatternType = 0
	case control.Energy > 0.6:
		control.PatternType = 1
	default:
		control.PatternType = 2
	}

	return control
}
