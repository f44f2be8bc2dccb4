package music

import (
	"math"

	"github.com/soundcanvas/soundcanvas-api/internal/models"
)

// GrooveType selects the drum generator family.
type GrooveType int

const (
	GrooveStraight GrooveType = iota
	GrooveChill
	GrooveDriving
)

func (g GrooveType) String() string {
	switch g {
	case GrooveStraight:
		return "Straight"
	case GrooveChill:
		return "Chill"
	case GrooveDriving:
		return "Driving"
	default:
		return "Unknown"
	}
}

// TrackRole classifies what a track does in the arrangement. The composer
// dispatches on the role, never on the instrument name.
type TrackRole int

const (
	RoleDrums TrackRole = iota
	RoleBass
	RoleChords
	RoleLead
	RolePad
	RoleFX
)

func (r TrackRole) String() string {
	switch r {
	case RoleDrums:
		return "drums"
	case RoleBass:
		return "bass"
	case RoleChords:
		return "chords"
	case RoleLead:
		return "lead"
	case RolePad:
		return "pad"
	case RoleFX:
		return "fx"
	default:
		return "unknown"
	}
}

// TrackSpec is one instrument track in the renderer-facing spec.
type TrackSpec struct {
	Role       TrackRole `json:"role"`
	Name       string    `json:"name"` // source instrument name, used for stems
	BaseVolume float64   `json:"base_volume"`
	Complexity float64   `json:"complexity"`
	Channel    int       `json:"channel"` // 0-15, drums always 9
	Program    int       `json:"program"` // 0-127
}

// SectionSpec is one named section with its bar count and target energy.
type SectionSpec struct {
	Name   string  `json:"name"`
	Bars   int     `json:"bars"`
	Energy float64 `json:"energy"`
}

// SongSpec is the normalized form consumed by the composer. Invariants: track
// roles are unique, section bars sum to TotalBars, channels and programs are
// in MIDI range.
type SongSpec struct {
	TempoBPM  int       `json:"tempo_bpm"`
	Scale     ScaleType `json:"scale"`
	RootNote  int       `json:"root_note"`
	TotalBars int       `json:"total_bars"`

	Groove    GrooveType `json:"groove"`
	MoodScore float64    `json:"mood_score"`

	// Carried from the genre profile; zero for the direct path.
	Genre       Genre   `json:"-"`
	GenreName   string  `json:"genre,omitempty"`
	UseSwing    bool    `json:"use_swing"`
	SwingAmount float64 `json:"swing_amount"`
	DrumPattern string  `json:"drum_pattern,omitempty"`

	Sections []SectionSpec `json:"sections"`
	Tracks   []TrackSpec   `json:"tracks"`
}

// layerRoles maps instrument layer names to composer roles. Several layers
// collapse onto one role; tracks are deduped by role preserving order.
var layerRoles = map[string]TrackRole{
	"kick":    RoleDrums,
	"snare":   RoleDrums,
	"hihat":   RoleDrums,
	"perc":    RoleDrums,
	"bass":    RoleBass,
	"piano":   RoleChords,
	"pluck":   RoleChords,
	"choir":   RoleChords,
	"brass":   RoleChords,
	"lead":    RoleLead,
	"arp":     RoleLead,
	"melody":  RoleLead,
	"pad":     RolePad,
	"strings": RolePad,
	"fx":      RoleFX,
}

// PlanToSpec lowers a SongPlan into a SongSpec: genre mapped to a groove,
// sections copied verbatim, and one track per distinct role with fixed
// volume/complexity defaults. Drums go on channel 9; melodic tracks take
// sequential channels skipping 9.
func PlanToSpec(plan SongPlan) SongSpec {
	spec := SongSpec{
		TempoBPM:    plan.TempoBPM,
		Scale:       plan.Scale,
		RootNote:    plan.RootNote,
		TotalBars:   plan.TotalBars,
		MoodScore:   0.7,
		Genre:       plan.Genre,
		GenreName:   plan.GenreName,
		UseSwing:    plan.UseSwing,
		SwingAmount: plan.SwingAmount,
		DrumPattern: plan.DrumPattern,
	}

	switch plan.Genre {
	case GenreEDMChill, GenreHouse, GenreRap, GenreRnB:
		spec.Groove = GrooveChill
	case GenreEDMDrop:
		spec.Groove = GrooveDriving
	default:
		spec.Groove = GrooveStraight
	}

	for _, sec := range plan.Sections {
		spec.Sections = append(spec.Sections, SectionSpec{
			Name:   sec.Name,
			Bars:   sec.Bars,
			Energy: sec.Energy,
		})
	}

	seen := map[TrackRole]bool{}
	melodicChannel := 0
	for _, name := range plan.ActiveRoles {
		role, ok := layerRoles[name]
		if !ok {
			role = RoleChords
		}
		if seen[role] {
			continue
		}
		seen[role] = true

		track := TrackSpec{
			Role:       role,
			Name:       name,
			BaseVolume: 0.7,
			Complexity: 0.5,
			Program:    clampInt(ProgramForRole(name), 0, 127),
		}
		if role == RoleDrums {
			track.Channel = 9
		} else {
			if melodicChannel == 9 {
				melodicChannel++
			}
			track.Channel = clampInt(melodicChannel, 0, 15)
			melodicChannel++
		}
		spec.Tracks = append(spec.Tracks, track)
	}

	return spec
}

// SpecFromControls is the direct path for callers without a genre: it derives
// a complete spec from image features and the control vector alone, with
// volume and complexity computed from mood, brightness and energy.
func SpecFromControls(f models.ImageFeatures, control models.ControlVector) SongSpec {
	spec := SongSpec{
		Scale:  ScaleType(control.ScaleType),
		Groove: GrooveStraight,
	}

	// Quantize tempo to multiples of 5 for better feel.
	spec.TempoBPM = clampInt(int(math.Round(control.TempoBPM/5.0))*5, 40, 140)

	root := FreqToMIDINote(control.BaseFrequency)
	for root < 36 {
		root += 12
	}
	for root > 72 {
		root -= 12
	}
	spec.RootNote = root

	// Mood: pleasant colors plus lightness, penalized by roughness.
	pleasantColor := (f.Saturation + math.Min(f.Colorfulness*500.0, 1.0)) * 0.5
	spec.MoodScore = clampFloat(0.6*pleasantColor+0.4*f.Brightness-0.2*f.Contrast, 0.0, 1.0)

	energy := control.Energy

	// Low energy and mood keep it short; lush, energetic scenes run longer.
	switch {
	case energy < 0.3 && spec.MoodScore < 0.4:
		spec.TotalBars = 16
		spec.Sections = []SectionSpec{
			{"intro", 4, energy * 0.5},
			{"A", 8, energy},
			{"outro", 4, energy * 0.6},
		}
	case energy < 0.6 || spec.MoodScore < 0.6:
		spec.TotalBars = 24
		spec.Sections = []SectionSpec{
			{"intro", 4, energy * 0.5},
			{"A", 8, energy},
			{"B", 8, energy * 0.9},
			{"outro", 4, energy * 0.6},
		}
	default:
		spec.TotalBars = 32
		spec.Sections = []SectionSpec{
			{"intro", 4, energy * 0.5},
			{"A", 12, energy},
			{"B", 12, energy * 0.95},
			{"outro", 4, energy * 0.6},
		}
	}

	if energy < 0.2 && spec.TempoBPM < 70 {
		spec.Groove = GrooveChill
	} else if energy > 0.4 || spec.TempoBPM > 90 {
		spec.Groove = GrooveDriving
	}

	melodicChannel := 0
	nextChannel := func() int {
		if melodicChannel == 9 {
			melodicChannel++
		}
		ch := clampInt(melodicChannel, 0, 15)
		melodicChannel++
		return ch
	}

	// Drums: skipped for very low energy or ambient pad-only moods.
	if energy > 0.25 && (spec.Groove != GrooveChill || energy > 0.5) {
		spec.Tracks = append(spec.Tracks, TrackSpec{
			Role:       RoleDrums,
			Name:       "drums",
			BaseVolume: 0.6 + energy*0.3,
			Complexity: energy,
			Channel:    9,
			Program:    0,
		})
	}

	if spec.MoodScore > 0.2 || energy > 0.3 {
		spec.Tracks = append(spec.Tracks, TrackSpec{
			Role:       RoleBass,
			Name:       "bass",
			BaseVolume: 0.7,
			Complexity: energy * 0.6,
			Channel:    nextChannel(),
			Program:    clampInt(32+control.ScaleType%4, 0, 127),
		})
	}

	// Chords always play: the harmonic foundation.
	spec.Tracks = append(spec.Tracks, TrackSpec{
		Role:       RoleChords,
		Name:       "chords",
		BaseVolume: 0.5 + spec.MoodScore*0.2,
		Complexity: 0.5 + energy*0.3,
		Channel:    nextChannel(),
		Program:    chordProgram(ScaleType(control.ScaleType), control.Brightness),
	})

	// Melody only when the scene is lush enough to deserve one.
	if spec.MoodScore > 0.4 {
		spec.Tracks = append(spec.Tracks, TrackSpec{
			Role:       RoleLead,
			Name:       "melody",
			BaseVolume: 0.4 + spec.MoodScore*0.3,
			Complexity: spec.MoodScore,
			Channel:    nextChannel(),
			Program:    leadProgram(ScaleType(control.ScaleType), spec.MoodScore, control.Brightness),
		})
	}

	if spec.MoodScore > 0.3 || control.PatternType == 0 {
		spec.Tracks = append(spec.Tracks, TrackSpec{
			Role:       RolePad,
			Name:       "pad",
			BaseVolume: 0.3 + spec.MoodScore*0.2,
			Complexity: 0.3,
			Channel:    nextChannel(),
			Program:    89,
		})
	}

	return spec
}

// chordProgram picks the harmonic instrument: bright major scales get piano
// or harp, darker scales get vibraphone or electric piano.
func chordProgram(scale ScaleType, brightness float64) int {
	if scale == ScaleMajor || scale == ScaleLydian {
		if brightness > 0.5 {
			return 0 // Acoustic piano
		}
		return 46 // Orchestral harp
	}
	if brightness > 0.5 {
		return 11 // Vibraphone
	}
	return 4 // Electric piano
}

func leadProgram(scale ScaleType, mood, brightness float64) int {
	if mood > 0.7 {
		return 11 // Vibraphone
	}
	if brightness > 0.6 {
		return 46 // Orchestral harp
	}
	if scale == ScaleMajor || scale == ScaleLydian {
		return 0 // Acoustic piano
	}
	return 4 // Electric piano
}

// ActivityFlags says which roles sound in a section. The composer consumes
// these flags and never re-derives activity on its own.
type ActivityFlags struct {
	Drums  bool
	Bass   bool
	Chords bool
	Lead   bool
	Pad    bool
	FX     bool

	// HalfLead restricts the lead to the second half of the section,
	// used during builds.
	HalfLead bool
}

// ActivityFor returns the activity table entry for a named section. Sections
// outside the genre vocabulary (the direct path's "A"/"B") fall back to
// energy thresholds.
func ActivityFor(name string, energy, mood float64) ActivityFlags {
	switch name {
	case "intro":
		return ActivityFlags{Bass: true, Chords: true, Pad: true}
	case "build":
		return ActivityFlags{Drums: true, Bass: true, Chords: true, Lead: true, Pad: true, HalfLead: true}
	case "drop":
		return ActivityFlags{Drums: true, Bass: true, Chords: true, Lead: true, Pad: true, FX: true}
	case "break":
		return ActivityFlags{Bass: true, Chords: true, Pad: true, FX: true}
	case "outro":
		return ActivityFlags{Bass: true, Chords: true, Pad: true}
	default:
		return ActivityFlags{
			Drums:  energy > 0.25,
			Bass:   true,
			Chords: true,
			Lead:   mood > 0.4,
			Pad:    true,
			FX:     energy > 0.8,
		}
	}
}

// RoleActive applies the flags to a role.
func (a ActivityFlags) RoleActive(r TrackRole) bool {
	switch r {
	case RoleDrums:
		return a.Drums
	case RoleBass:
		return a.Bass
	case RoleChords:
		return a.Chords
	case RoleLead:
		return a.Lead
	case RolePad:
		return a.Pad
	case RoleFX:
		return a.FX
	default:
		return false
	}
}
