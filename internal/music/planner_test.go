package music

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcanvas/soundcanvas-api/internal/models"
)

func TestPlanSong_TempoClampedToGenreRange(t *testing.T) {
	for _, g := range AllGenres() {
		profile, err := Lookup(g)
		require.NoError(t, err)

		for _, tempo := range []float64{20, 60, 100, 128, 200} {
			plan := PlanSong(models.ControlVector{TempoBPM: tempo, BaseFrequency: 220, Energy: 0.5}, profile)
			assert.GreaterOrEqual(t, plan.TempoBPM, profile.MinTempo, "%s tempo %.0f", g, tempo)
			assert.LessOrEqual(t, plan.TempoBPM, profile.MaxTempo, "%s tempo %.0f", g, tempo)
		}
	}
}

func TestPlanSong_ScalePreference(t *testing.T) {
	profile, err := Lookup(GenreEDMChill) // prefers Major, Lydian
	require.NoError(t, err)

	// Requested scale in the preferred set is kept.
	plan := PlanSong(models.ControlVector{TempoBPM: 110, BaseFrequency: 220, ScaleType: int(ScaleLydian)}, profile)
	assert.Equal(t, ScaleLydian, plan.Scale)

	// Otherwise the genre's first preference wins.
	plan = PlanSong(models.ControlVector{TempoBPM: 110, BaseFrequency: 220, ScaleType: int(ScaleMinor)}, profile)
	assert.Equal(t, ScaleMajor, plan.Scale)
}

func TestPlanSong_RootNoteInPlayableOctave(t *testing.T) {
	profile, err := Lookup(GenreHouse)
	require.NoError(t, err)

	for _, freq := range []float64{20, 55, 110, 440, 880, 3520, 0} {
		plan := PlanSong(models.ControlVector{TempoBPM: 100, BaseFrequency: freq}, profile)
		assert.GreaterOrEqual(t, plan.RootNote, 48, "freq %.0f", freq)
		assert.LessOrEqual(t, plan.RootNote, 72, "freq %.0f", freq)
	}

	// A440 maps straight to MIDI 69.
	plan := PlanSong(models.ControlVector{TempoBPM: 100, BaseFrequency: 440}, profile)
	assert.Equal(t, 69, plan.RootNote)
}

func TestPlanSong_SectionTimeline(t *testing.T) {
	profile, err := Lookup(GenreEDMDrop)
	require.NoError(t, err)

	plan := PlanSong(models.ControlVector{TempoBPM: 128, BaseFrequency: 220, Energy: 0.5}, profile)

	startBar := 0
	for i, sec := range plan.Sections {
		assert.Equal(t, startBar, sec.StartBar, "section %d", i)
		assert.Equal(t, profile.Sections[i].Bars, sec.Bars)
		startBar += sec.Bars
	}
	assert.Equal(t, startBar, plan.TotalBars)
}

func TestPlanSong_DropEnergyBoost(t *testing.T) {
	profile, err := Lookup(GenreEDMChill) // drop template 0.7, threshold 0.4
	require.NoError(t, err)

	plan := PlanSong(models.ControlVector{TempoBPM: 110, BaseFrequency: 220, Energy: 0.9}, profile)

	var drop *PlannedSection
	for i := range plan.Sections {
		if plan.Sections[i].Kind == SectionDrop {
			drop = &plan.Sections[i]
			break
		}
	}
	require.NotNil(t, drop)
	assert.True(t, drop.HasDrop)
	assert.InDelta(t, math.Min(1.0, 0.7+0.3*0.9), drop.Energy, 1e-9)
}

func TestPlanSong_NoDropBelowThreshold(t *testing.T) {
	profile, err := Lookup(GenreEDMDrop) // threshold 0.7
	require.NoError(t, err)

	plan := PlanSong(models.ControlVector{TempoBPM: 128, BaseFrequency: 220, Energy: 0.5}, profile)
	for _, sec := range plan.Sections {
		assert.False(t, sec.HasDrop, "section %s", sec.Name)
	}
}

func TestPlanSong_DropEnergyBoostBelowThreshold(t *testing.T) {
	// Drop sections absorb the control energy even when the drop flag does
	// not fire.
	profile, err := Lookup(GenreEDMChill) // drop template 0.7, threshold 0.4
	require.NoError(t, err)

	plan := PlanSong(models.ControlVector{TempoBPM: 110, BaseFrequency: 220, Energy: 0.3}, profile)

	var drop *PlannedSection
	for i := range plan.Sections {
		if plan.Sections[i].Kind == SectionDrop {
			drop = &plan.Sections[i]
			break
		}
	}
	require.NotNil(t, drop)
	assert.False(t, drop.HasDrop)
	assert.InDelta(t, 0.7+0.3*0.3, drop.Energy, 1e-9)
}

func TestPlanSong_BuildSectionsGetAutomation(t *testing.T) {
	profile, err := Lookup(GenreHouse)
	require.NoError(t, err)

	plan := PlanSong(models.ControlVector{TempoBPM: 100, BaseFrequency: 220, Energy: 0.7}, profile)
	for _, sec := range plan.Sections {
		if sec.Kind == SectionBuild {
			assert.True(t, sec.FilterSweep)
			assert.True(t, sec.VolumeBuild)
		} else {
			assert.False(t, sec.FilterSweep)
		}
	}
}

func TestPlanSong_KickAndBassAlwaysActive(t *testing.T) {
	for _, g := range AllGenres() {
		profile, err := Lookup(g)
		require.NoError(t, err)

		plan := PlanSong(models.ControlVector{TempoBPM: 100, BaseFrequency: 220, Energy: 0.0}, profile)
		assert.Contains(t, plan.ActiveRoles, "kick", "%s", g)
		assert.Contains(t, plan.ActiveRoles, "bass", "%s", g)
	}
}

func TestPlanSong_LayersGatedByEnergy(t *testing.T) {
	profile, err := Lookup(GenreEDMChill)
	require.NoError(t, err)

	low := PlanSong(models.ControlVector{TempoBPM: 110, BaseFrequency: 220, Energy: 0.1}, profile)
	high := PlanSong(models.ControlVector{TempoBPM: 110, BaseFrequency: 220, Energy: 0.9}, profile)

	assert.NotContains(t, low.ActiveRoles, "lead")
	assert.Contains(t, high.ActiveRoles, "lead")
	assert.Contains(t, high.ActiveRoles, "arp")
	assert.Greater(t, len(high.ActiveRoles), len(low.ActiveRoles))
}
