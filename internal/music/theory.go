package music

import "math"

// ScaleType selects one of the four supported scales.
type ScaleType int

const (
	ScaleMajor ScaleType = iota
	ScaleMinor
	ScaleDorian
	ScaleLydian
)

// String returns the human-readable scale name.
func (s ScaleType) String() string {
	switch s {
	case ScaleMajor:
		return "Major"
	case ScaleMinor:
		return "Minor"
	case ScaleDorian:
		return "Dorian"
	case ScaleLydian:
		return "Lydian"
	default:
		return "Unknown"
	}
}

// ScaleIntervals returns the semitone offsets from the root for a scale.
// Unknown scale types fall back to Major.
func ScaleIntervals(s ScaleType) []int {
	switch s {
	case ScaleMajor:
		return []int{0, 2, 4, 5, 7, 9, 11}
	case ScaleMinor:
		return []int{0, 2, 3, 5, 7, 8, 10}
	case ScaleDorian:
		return []int{0, 2, 3, 5, 7, 9, 10}
	case ScaleLydian:
		return []int{0, 2, 4, 6, 7, 9, 11}
	default:
		return []int{0, 2, 4, 5, 7, 9, 11}
	}
}

// ChordProgression is a repeating cycle of scale degrees (0-6), one per bar.
type ChordProgression struct {
	Name    string
	Degrees []int
}

// Progressions returns the chord progression set for a scale family.
// Major and Lydian share the bright set; Minor and Dorian share the dark set.
func Progressions(s ScaleType) []ChordProgression {
	if s == ScaleMajor || s == ScaleLydian {
		return []ChordProgression{
			{Name: "I-vi-IV-V", Degrees: []int{0, 5, 3, 4}},
			{Name: "I-V-I-vi", Degrees: []int{0, 4, 0, 5}},
			{Name: "I-IV-V-V", Degrees: []int{0, 3, 4, 4}},
		}
	}
	return []ChordProgression{
		{Name: "i-iv-VI-VI", Degrees: []int{0, 3, 5, 5}},
		{Name: "i-v-iv-VI", Degrees: []int{0, 4, 3, 5}},
		{Name: "i-VI-iv-iv", Degrees: []int{0, 5, 3, 3}},
	}
}

// General MIDI drum map (channel 10).
const (
	DrumKick      = 36
	DrumSnare     = 38
	DrumSnareElec = 40
	DrumClosedHat = 42
	DrumOpenHat   = 46
	DrumLowTom    = 45
	DrumMidTom    = 47
	DrumCrash     = 49
	DrumRide      = 51
)

// FreqToMIDINote converts a frequency in Hz to the nearest MIDI note number
// (A4 = 440Hz = MIDI 69). Non-positive frequencies default to C4.
func FreqToMIDINote(freq float64) int {
	if freq <= 0 {
		return 60
	}
	return int(math.Round(69.0 + 12.0*math.Log2(freq/440.0)))
}

// rolePrograms maps instrument layer roles to General MIDI program numbers.
var rolePrograms = map[string]int{
	"kick":    36,
	"snare":   38,
	"hihat":   42,
	"bass":    38, // Synth bass
	"lead":    81, // Square lead
	"pad":     89, // Warm pad
	"arp":     88, // New age pad (arp-like)
	"pluck":   25, // Steel guitar (pluck)
	"fx":      99, // FX atmosphere
	"strings": 49, // String ensemble
	"brass":   61, // Brass section
	"choir":   52, // Choir aahs
	"piano":   0,  // Acoustic piano
	"perc":    47, // Timpani
}

// ProgramForRole returns the GM program for an instrument layer role.
// Unknown roles default to acoustic piano.
func ProgramForRole(role string) int {
	if p, ok := rolePrograms[role]; ok {
		return p
	}
	return 0
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
