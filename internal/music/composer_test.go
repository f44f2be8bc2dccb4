package music

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcanvas/soundcanvas-api/internal/midi"
	"github.com/soundcanvas/soundcanvas-api/internal/models"
)

func testSpec(t *testing.T, g Genre, energy float64) SongSpec {
	t.Helper()
	profile, err := Lookup(g)
	require.NoError(t, err)
	plan := PlanSong(models.ControlVector{TempoBPM: 120, BaseFrequency: 220, Energy: energy}, profile)
	return PlanToSpec(plan)
}

func composeBytes(spec SongSpec, seed int64) []byte {
	wr := midi.NewWriter(midi.TicksPerQuarter)
	Compose(spec, wr, seed)
	return wr.Bytes()
}

func TestCompose_DeterministicForSeed(t *testing.T) {
	spec := testSpec(t, GenreHouse, 0.7)

	a := composeBytes(spec, 42)
	b := composeBytes(spec, 42)
	if !bytes.Equal(a, b) {
		t.Fatal("same spec and seed must produce identical output")
	}
}

func TestCompose_SeedChangesOutput(t *testing.T) {
	spec := testSpec(t, GenreHouse, 0.7)

	a := composeBytes(spec, 1)
	b := composeBytes(spec, 2)
	if bytes.Equal(a, b) {
		t.Fatal("different seeds should humanize differently")
	}
}

func TestCompose_HeaderAndTrackCount(t *testing.T) {
	spec := testSpec(t, GenreEDMDrop, 0.8)
	out := composeBytes(spec, DefaultSeed)

	require.Greater(t, len(out), 14)
	assert.Equal(t, []byte("MThd"), out[:4])
	assert.Equal(t, uint16(1), uint16(out[8])<<8|uint16(out[9]), "format")
	assert.Equal(t, uint16(len(spec.Tracks)), uint16(out[10])<<8|uint16(out[11]), "ntracks")
	assert.Equal(t, uint16(midi.TicksPerQuarter), uint16(out[12])<<8|uint16(out[13]), "division")
}

func TestCompose_EmptySpecProducesNoNotes(t *testing.T) {
	wr := midi.NewWriter(midi.TicksPerQuarter)
	Compose(SongSpec{TempoBPM: 120, Scale: ScaleMajor}, wr, DefaultSeed)

	assert.Equal(t, 0, wr.TrackCount())
	// Header plus nothing else.
	assert.Equal(t, 14, len(wr.Bytes()))
}

func TestCompose_AllGenresAllEnergies(t *testing.T) {
	for _, g := range AllGenres() {
		for _, energy := range []float64{0.1, 0.5, 0.9} {
			spec := testSpec(t, g, energy)
			out := composeBytes(spec, DefaultSeed)
			assert.Greater(t, len(out), 100, "%s at energy %.1f produced a near-empty file", g, energy)
		}
	}
}

func TestCompose_DirectPathSpec(t *testing.T) {
	f := models.ImageFeatures{Saturation: 0.8, Colorfulness: 0.002, Brightness: 0.7, Contrast: 0.2}
	spec := SpecFromControls(f, models.ControlVector{TempoBPM: 110, BaseFrequency: 220, Energy: 0.7, PatternType: 1})

	out := composeBytes(spec, DefaultSeed)
	assert.Equal(t, []byte("MThd"), out[:4])
	assert.Greater(t, len(out), 100)
}

func TestComposeToStems(t *testing.T) {
	spec := testSpec(t, GenreRnB, 0.6)

	dir := t.TempDir()
	stems, err := ComposeToStems(spec, dir, DefaultSeed)
	require.NoError(t, err)
	require.Len(t, stems, len(spec.Tracks))

	for _, tr := range spec.Tracks {
		path, ok := stems[tr.Role.String()]
		require.True(t, ok, "missing stem for %s", tr.Role)
		assert.FileExists(t, path)
	}
}

func TestApplySwing(t *testing.T) {
	tests := []struct {
		name    string
		relTick int
		unit    int
		amount  float64
		want    int
	}{
		{"odd subdivision is delayed", 120, 120, 0.2, 144},
		{"even subdivision unchanged", 240, 120, 0.2, 240},
		{"bar start unchanged", 0, 120, 0.2, 0},
		{"off the grid unchanged", 100, 120, 0.3, 100},
		{"third subdivision delayed", 360, 120, 0.5, 420},
		{"zero amount is identity", 120, 120, 0.0, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applySwing(tt.relTick, tt.unit, tt.amount)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStepTick_SwingUsesGridSubdivision(t *testing.T) {
	// Pattern grids place hits at multiples of ticksPerBar/16; the swing unit
	// must be that same subdivision or no grid hit would ever shift.
	ticksPerBar := midi.TicksPerQuarter * 4

	tests := []struct {
		name   string
		step   int
		swing  bool
		amount float64
		want   int
	}{
		{"step 1 swung lands at 144", 1, true, 0.2, 144},
		{"step 2 on the beat unchanged", 2, true, 0.2, 240},
		{"step 3 swung", 3, true, 0.2, 384},
		{"step 1 without swing", 1, false, 0.2, 120},
		{"bar start never shifts", 0, true, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stepTick(tt.step, ticksPerBar, tt.swing, tt.amount)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompose_SwingShiftsOffbeatHits(t *testing.T) {
	// Same pattern composed with and without swing must differ: the odd grid
	// steps move later while the downbeats stay put.
	base := SongSpec{
		TempoBPM:    90,
		Scale:       ScaleMinor,
		RootNote:    60,
		Groove:      GrooveChill,
		DrumPattern: "trap",
		Sections:    []SectionSpec{{Name: "drop", Bars: 2, Energy: 0.8}},
		Tracks: []TrackSpec{
			{Role: RoleDrums, Name: "kick", BaseVolume: 0.7, Complexity: 0.5, Channel: 9},
		},
		TotalBars: 2,
		MoodScore: 0.5,
	}

	swung := base
	swung.UseSwing = true
	swung.SwingAmount = 0.2

	if bytes.Equal(composeBytes(base, DefaultSeed), composeBytes(swung, DefaultSeed)) {
		t.Fatal("swing must change drum timing for grid patterns with off-beat hits")
	}
}

func TestCompose_BuildHoldsLeadForFirstHalf(t *testing.T) {
	// One build section, lead only: the first half of the section must be
	// silent, so the first note-on lands at or after the halfway tick.
	spec := SongSpec{
		TempoBPM: 120,
		Scale:    ScaleMajor,
		RootNote: 60,
		Groove:   GrooveStraight,
		Sections: []SectionSpec{{Name: "build", Bars: 4, Energy: 0.8}},
		Tracks: []TrackSpec{
			{Role: RoleLead, Name: "lead", BaseVolume: 0.7, Complexity: 0.5, Channel: 0, Program: 80},
		},
		TotalBars: 4,
		MoodScore: 0.7,
	}

	wr := midi.NewWriter(midi.TicksPerQuarter)
	Compose(spec, wr, DefaultSeed)

	out := wr.Bytes()
	assert.Greater(t, len(out), 30, "lead should still play in the second half")

	// Re-compose bar counts: halving 4 bars means bars 0 and 1 are skipped,
	// so composing just the second half from bar 2 gives the same notes.
	half := spec
	half.Sections = []SectionSpec{{Name: "drop", Bars: 4, Energy: 0.8}}
	wrFull := midi.NewWriter(midi.TicksPerQuarter)
	Compose(half, wrFull, DefaultSeed)
	assert.Greater(t, len(wrFull.Bytes()), len(out), "full-section lead must emit more events")
}
