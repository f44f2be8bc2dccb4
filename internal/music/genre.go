package music

import (
	"fmt"

	"github.com/soundcanvas/soundcanvas-api/internal/models"
)

// Genre identifies one of the built-in genre profiles.
type Genre int

const (
	GenreEDMChill Genre = iota
	GenreEDMDrop
	GenreHouse
	GenreCinematic
	GenreRap
	GenreRnB
)

// String returns the display name used in logs, file names and API responses.
func (g Genre) String() string {
	switch g {
	case GenreEDMChill:
		return "EDM_Chill"
	case GenreEDMDrop:
		return "EDM_Drop"
	case GenreHouse:
		return "House"
	case GenreCinematic:
		return "Cinematic"
	case GenreRap:
		return "Rap"
	case GenreRnB:
		return "RnB"
	default:
		return "Unknown"
	}
}

// ParseGenre converts a display name back to a Genre.
func ParseGenre(name string) (Genre, error) {
	for _, g := range AllGenres() {
		if g.String() == name {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown genre: %s", name)
}

// AllGenres lists every genre in the catalog, in catalog order.
func AllGenres() []Genre {
	return []Genre{GenreEDMChill, GenreEDMDrop, GenreHouse, GenreCinematic, GenreRap, GenreRnB}
}

// SectionKind classifies a section within a song structure.
type SectionKind int

const (
	SectionIntro SectionKind = iota
	SectionBuild
	SectionDrop
	SectionBreak
	SectionOutro
)

// Name returns the lowercase section name used in SongSpec sections.
func (k SectionKind) Name() string {
	switch k {
	case SectionIntro:
		return "intro"
	case SectionBuild:
		return "build"
	case SectionDrop:
		return "drop"
	case SectionBreak:
		return "break"
	case SectionOutro:
		return "outro"
	default:
		return "unknown"
	}
}

// SectionTemplate is one entry in a genre's section plan.
type SectionTemplate struct {
	Kind         SectionKind
	Bars         int
	Energy       float64 // target energy level, 0-1
	DropEligible bool    // may become a drop if the control energy allows it
}

// InstrumentLayer describes one instrument in a genre's palette.
type InstrumentLayer struct {
	Role      string  // "kick", "bass", "lead", ...
	Program   int     // GM program number or drum note for percussion roles
	MinEnergy float64 // layer is active only when control energy >= this
	Sidechain bool    // should be ducked by the kick during mixing
}

// GenreProfile is a complete, immutable genre definition.
type GenreProfile struct {
	Genre    Genre
	Name     string
	MinTempo int
	MaxTempo int

	Sections []SectionTemplate
	Layers   []InstrumentLayer

	// Drops are added only when the control energy reaches this threshold.
	DropEnergyThreshold float64

	PreferredScales []ScaleType

	// Rhythmic feel.
	UseSwing    bool
	SwingAmount float64 // fraction of an eighth note to delay off-beats
	DrumPattern string  // key into the genre drum pattern tables
}

// PrefersScale reports whether s is in the profile's preferred scale set.
func (p GenreProfile) PrefersScale(s ScaleType) bool {
	for _, ps := range p.PreferredScales {
		if ps == s {
			return true
		}
	}
	return false
}

var genreCatalog = map[Genre]GenreProfile{
	GenreEDMChill: {
		Genre:    GenreEDMChill,
		Name:     "EDM_Chill",
		MinTempo: 100,
		MaxTempo: 115,
		Sections: []SectionTemplate{
			{SectionIntro, 4, 0.2, false},
			{SectionBuild, 8, 0.5, false},
			{SectionDrop, 8, 0.7, true},
			{SectionBreak, 4, 0.4, false},
			{SectionOutro, 4, 0.2, false},
		},
		Layers: []InstrumentLayer{
			{"kick", 36, 0.0, false},
			{"hihat", 42, 0.0, false},
			{"snare", 38, 0.3, false},
			{"bass", 38, 0.2, true},
			{"pad", 89, 0.0, true},
			{"lead", 81, 0.5, true},
			{"arp", 88, 0.6, true},
		},
		DropEnergyThreshold: 0.4,
		PreferredScales:     []ScaleType{ScaleMajor, ScaleLydian},
		DrumPattern:         "chill",
	},
	GenreEDMDrop: {
		Genre:    GenreEDMDrop,
		Name:     "EDM_Drop",
		MinTempo: 125,
		MaxTempo: 135,
		Sections: []SectionTemplate{
			{SectionIntro, 4, 0.3, false},
			{SectionBuild, 8, 0.6, false},
			{SectionDrop, 8, 1.0, true},
			{SectionBuild, 4, 0.7, false},
			{SectionDrop, 8, 1.0, true},
			{SectionOutro, 4, 0.3, false},
		},
		Layers: []InstrumentLayer{
			{"kick", 36, 0.0, false},
			{"snare", 40, 0.0, false},
			{"hihat", 42, 0.0, false},
			{"bass", 38, 0.0, true},
			{"lead", 80, 0.5, true},
			{"pluck", 25, 0.6, true},
			{"pad", 89, 0.3, true},
			{"fx", 99, 0.8, false},
		},
		DropEnergyThreshold: 0.7,
		PreferredScales:     []ScaleType{ScaleMinor, ScaleDorian},
		DrumPattern:         "edm",
	},
	GenreHouse: {
		Genre:    GenreHouse,
		Name:     "House",
		MinTempo: 90,
		MaxTempo: 110,
		Sections: []SectionTemplate{
			{SectionIntro, 4, 0.3, false},
			{SectionBuild, 8, 0.5, false},
			{SectionDrop, 8, 0.8, true},
			{SectionBreak, 8, 0.5, false},
			{SectionDrop, 8, 0.8, true},
			{SectionOutro, 4, 0.3, false},
		},
		Layers: []InstrumentLayer{
			{"kick", 36, 0.0, false},
			{"snare", 40, 0.3, false},
			{"hihat", 42, 0.0, false},
			{"bass", 38, 0.0, false},
			{"lead", 81, 0.4, false},
			{"pad", 89, 0.2, false},
			{"arp", 88, 0.6, false},
		},
		DropEnergyThreshold: 0.6,
		PreferredScales:     []ScaleType{ScaleMajor, ScaleLydian},
		DrumPattern:         "house",
	},
	GenreCinematic: {
		Genre:    GenreCinematic,
		Name:     "Cinematic",
		MinTempo: 70,
		MaxTempo: 90,
		Sections: []SectionTemplate{
			{SectionIntro, 8, 0.2, false},
			{SectionBuild, 12, 0.5, false},
			{SectionDrop, 8, 0.9, true},
			{SectionBreak, 8, 0.4, false},
			{SectionOutro, 8, 0.2, false},
		},
		Layers: []InstrumentLayer{
			{"perc", 47, 0.3, false},
			{"strings", 49, 0.0, false},
			{"brass", 61, 0.5, false},
			{"choir", 52, 0.4, false},
			{"pad", 89, 0.0, false},
			{"piano", 0, 0.6, false},
		},
		DropEnergyThreshold: 0.5,
		PreferredScales:     []ScaleType{ScaleMinor, ScaleDorian},
		DrumPattern:         "cinematic",
	},
	GenreRap: {
		Genre:    GenreRap,
		Name:     "Rap",
		MinTempo: 80,
		MaxTempo: 100,
		Sections: []SectionTemplate{
			{SectionIntro, 4, 0.3, false},
			{SectionBuild, 8, 0.6, false},
			{SectionDrop, 8, 0.9, true},
			{SectionBreak, 4, 0.5, false},
			{SectionDrop, 8, 0.9, true},
			{SectionOutro, 4, 0.3, false},
		},
		Layers: []InstrumentLayer{
			{"kick", 36, 0.0, false},
			{"snare", 40, 0.0, false},
			{"hihat", 42, 0.0, false},
			{"bass", 38, 0.0, true},
			{"piano", 4, 0.3, false},
			{"lead", 81, 0.6, false},
			{"pad", 89, 0.4, true},
		},
		DropEnergyThreshold: 0.6,
		PreferredScales:     []ScaleType{ScaleMinor, ScaleDorian},
		UseSwing:            true,
		SwingAmount:         0.18,
		DrumPattern:         "trap",
	},
	GenreRnB: {
		Genre:    GenreRnB,
		Name:     "RnB",
		MinTempo: 70,
		MaxTempo: 95,
		Sections: []SectionTemplate{
			{SectionIntro, 4, 0.2, false},
			{SectionBuild, 8, 0.5, false},
			{SectionDrop, 8, 0.8, true},
			{SectionBreak, 4, 0.4, false},
			{SectionOutro, 4, 0.2, false},
		},
		Layers: []InstrumentLayer{
			{"kick", 36, 0.0, false},
			{"snare", 38, 0.0, false},
			{"hihat", 42, 0.0, false},
			{"bass", 33, 0.0, true},
			{"piano", 4, 0.2, false},
			{"lead", 11, 0.5, false},
			{"pad", 89, 0.2, true},
		},
		DropEnergyThreshold: 0.65,
		PreferredScales:     []ScaleType{ScaleMinor, ScaleDorian},
		UseSwing:            true,
		SwingAmount:         0.25,
		DrumPattern:         "rnb",
	},
}

// Lookup returns the profile for a genre. Unknown genres are a configuration
// error and fail immediately.
func Lookup(g Genre) (GenreProfile, error) {
	profile, ok := genreCatalog[g]
	if !ok {
		return GenreProfile{}, fmt.Errorf("unknown genre type: %d", int(g))
	}
	return profile, nil
}

// SelectGenre maps image features and a control energy to a genre.
//
// The energy is clamped to [0.3, 0.9] before any threshold comparison, and
// the clause ordering below is a hard contract: first match wins, and
// reordering changes classification outcomes.
func SelectGenre(f models.ImageFeatures, energy float64) Genre {
	safeEnergy := clampFloat(energy, 0.3, 0.9)

	// Very dark image: safe, moody.
	if f.Brightness < 0.2 {
		return GenreCinematic
	}

	// Very bright + high energy: prefer House over EDM_Drop to avoid
	// unplayable tempo extremes.
	if f.Brightness > 0.9 && safeEnergy > 0.7 {
		return GenreHouse
	}

	// Near-grayscale image.
	if f.Saturation < 0.15 && f.Colorfulness < 0.2 {
		return GenreCinematic
	}

	// Warm colors (red/orange) + high energy.
	if safeEnergy > 0.6 && (f.Hue < 0.15 || f.Hue > 0.9) {
		return GenreEDMDrop
	}

	// Bright + medium saturation.
	if f.Brightness > 0.6 && f.Saturation > 0.4 && f.Saturation < 0.7 {
		return GenreHouse
	}

	// Low colorfulness + high contrast: dramatic.
	if f.Colorfulness < 0.3 && f.Contrast > 0.5 {
		return GenreCinematic
	}

	// Cool colors (blue/cyan).
	if f.Hue > 0.5 && f.Hue < 0.7 {
		return GenreEDMChill
	}

	// Fall back on energy buckets.
	if safeEnergy > 0.7 {
		return GenreEDMDrop
	}
	if safeEnergy > 0.4 {
		return GenreHouse
	}
	if f.Brightness < 0.4 {
		return GenreCinematic
	}
	return GenreEDMChill
}
