package music

import (
	"math"

	"github.com/soundcanvas/soundcanvas-api/internal/models"
)

// PlannedSection is one section in a planned arrangement.
type PlannedSection struct {
	Kind     SectionKind `json:"kind"`
	Name     string      `json:"name"`
	StartBar int         `json:"start_bar"`
	Bars     int         `json:"bars"`
	Energy   float64     `json:"energy"`
	HasDrop  bool        `json:"has_drop"`

	// Automation hints for build sections.
	FilterSweep bool `json:"filter_sweep"`
	VolumeBuild bool `json:"volume_build"`
}

// SongPlan is the arrangement produced by PlanSong. It is built once per
// request and never mutated afterwards.
type SongPlan struct {
	Genre     Genre            `json:"-"`
	GenreName string           `json:"genre"`
	TempoBPM  int              `json:"tempo_bpm"`
	RootNote  int              `json:"root_note"`
	Scale     ScaleType        `json:"scale"`
	TotalBars int              `json:"total_bars"`
	Sections  []PlannedSection `json:"sections"`

	// Roles of every instrument layer active at this energy level.
	ActiveRoles []string `json:"active_roles"`

	UseSwing    bool    `json:"use_swing"`
	SwingAmount float64 `json:"swing_amount"`
	DrumPattern string  `json:"drum_pattern"`
}

// PlanSong maps a control vector onto a genre profile and produces the full
// arrangement: tempo clamped into the genre range, root note shifted into a
// playable octave, the section timeline with drops resolved, and the set of
// active instrument layers.
func PlanSong(control models.ControlVector, profile GenreProfile) SongPlan {
	plan := SongPlan{
		Genre:       profile.Genre,
		GenreName:   profile.Name,
		UseSwing:    profile.UseSwing,
		SwingAmount: profile.SwingAmount,
		DrumPattern: profile.DrumPattern,
	}

	plan.TempoBPM = clampInt(int(math.Round(control.TempoBPM)), profile.MinTempo, profile.MaxTempo)

	// Keep the requested scale only if the genre likes it.
	requested := ScaleType(control.ScaleType)
	if profile.PrefersScale(requested) {
		plan.Scale = requested
	} else {
		plan.Scale = profile.PreferredScales[0]
	}

	// Shift the root into C3..C5 so bass and lead both have headroom.
	root := FreqToMIDINote(control.BaseFrequency)
	for root < 48 {
		root += 12
	}
	for root > 72 {
		root -= 12
	}
	plan.RootNote = root

	startBar := 0
	for _, tmpl := range profile.Sections {
		sec := PlannedSection{
			Kind:     tmpl.Kind,
			Name:     tmpl.Kind.Name(),
			StartBar: startBar,
			Bars:     tmpl.Bars,
			Energy:   tmpl.Energy,
		}
		if tmpl.DropEligible {
			// Drop sections always absorb the control energy; the flag alone
			// is gated by the genre threshold.
			sec.Energy = math.Min(1.0, tmpl.Energy+0.3*control.Energy)
			sec.HasDrop = control.Energy >= profile.DropEnergyThreshold
		}
		if tmpl.Kind == SectionBuild {
			sec.FilterSweep = true
			sec.VolumeBuild = true
		}
		plan.Sections = append(plan.Sections, sec)
		startBar += tmpl.Bars
	}
	plan.TotalBars = startBar

	for _, layer := range profile.Layers {
		if control.Energy >= layer.MinEnergy {
			plan.ActiveRoles = append(plan.ActiveRoles, layer.Role)
		}
	}
	// A plan with no rhythm section is useless downstream, so kick and bass
	// are always present.
	plan.ActiveRoles = ensureRole(plan.ActiveRoles, "kick")
	plan.ActiveRoles = ensureRole(plan.ActiveRoles, "bass")

	return plan
}

func ensureRole(roles []string, role string) []string {
	for _, r := range roles {
		if r == role {
			return roles
		}
	}
	return append(roles, role)
}
