package music

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcanvas/soundcanvas-api/internal/models"
)

func TestLookup_AllGenres(t *testing.T) {
	for _, g := range AllGenres() {
		profile, err := Lookup(g)
		require.NoError(t, err, "genre %s", g)

		assert.Equal(t, g, profile.Genre)
		assert.Equal(t, g.String(), profile.Name)
		assert.Less(t, profile.MinTempo, profile.MaxTempo)
		assert.NotEmpty(t, profile.Sections)
		assert.NotEmpty(t, profile.Layers)
		assert.NotEmpty(t, profile.PreferredScales)
		assert.Greater(t, profile.DropEnergyThreshold, 0.0)

		// Every profile's pattern key must resolve to a drum table.
		_, ok := drumPatterns[profile.DrumPattern]
		assert.True(t, ok, "missing drum pattern table %q for %s", profile.DrumPattern, g)
	}
}

func TestLookup_UnknownGenre(t *testing.T) {
	_, err := Lookup(Genre(99))
	require.Error(t, err)
}

func TestParseGenre(t *testing.T) {
	for _, g := range AllGenres() {
		parsed, err := ParseGenre(g.String())
		require.NoError(t, err)
		assert.Equal(t, g, parsed)
	}

	_, err := ParseGenre("Polka")
	assert.Error(t, err)
}

func TestDrumPatterns_GridShape(t *testing.T) {
	for key, grids := range drumPatterns {
		for _, g := range grids {
			assert.Len(t, g.grid, 16, "pattern %s note %d", key, g.note)
		}
	}
}

func TestSelectGenre(t *testing.T) {
	tests := []struct {
		name     string
		features models.ImageFeatures
		energy   float64
		want     Genre
	}{
		{
			name:     "very dark image is cinematic",
			features: models.ImageFeatures{Brightness: 0.1, Saturation: 0.5, Colorfulness: 0.5},
			energy:   0.9,
			want:     GenreCinematic,
		},
		{
			name:     "very bright high energy prefers house over drop",
			features: models.ImageFeatures{Brightness: 0.95, Saturation: 0.5, Colorfulness: 0.5, Hue: 0.1},
			energy:   0.9,
			want:     GenreHouse,
		},
		{
			name:     "near grayscale is cinematic",
			features: models.ImageFeatures{Brightness: 0.5, Saturation: 0.1, Colorfulness: 0.1},
			energy:   0.5,
			want:     GenreCinematic,
		},
		{
			name:     "warm hue with high energy drops",
			features: models.ImageFeatures{Brightness: 0.5, Saturation: 0.5, Colorfulness: 0.5, Hue: 0.05},
			energy:   0.8,
			want:     GenreEDMDrop,
		},
		{
			name:     "bright mid saturation is house",
			features: models.ImageFeatures{Brightness: 0.7, Saturation: 0.5, Colorfulness: 0.5, Hue: 0.3},
			energy:   0.5,
			want:     GenreHouse,
		},
		{
			name:     "low colorfulness high contrast is cinematic",
			features: models.ImageFeatures{Brightness: 0.5, Saturation: 0.3, Colorfulness: 0.2, Contrast: 0.7, Hue: 0.3},
			energy:   0.5,
			want:     GenreCinematic,
		},
		{
			name:     "cool hue band is chill",
			features: models.ImageFeatures{Brightness: 0.5, Saturation: 0.3, Colorfulness: 0.5, Hue: 0.6},
			energy:   0.5,
			want:     GenreEDMChill,
		},
		{
			name:     "fallback high energy drops",
			features: models.ImageFeatures{Brightness: 0.5, Saturation: 0.3, Colorfulness: 0.5, Hue: 0.3},
			energy:   0.8,
			want:     GenreEDMDrop,
		},
		{
			name:     "fallback medium energy is house",
			features: models.ImageFeatures{Brightness: 0.5, Saturation: 0.3, Colorfulness: 0.5, Hue: 0.3},
			energy:   0.5,
			want:     GenreHouse,
		},
		{
			name: "fallback low energy dark is cinematic",
			// Raw energy 0.1 clamps to 0.3, below every bucket.
			features: models.ImageFeatures{Brightness: 0.3, Saturation: 0.3, Colorfulness: 0.5, Hue: 0.3},
			energy:   0.1,
			want:     GenreCinematic,
		},
		{
			name:     "fallback low energy bright is chill",
			features: models.ImageFeatures{Brightness: 0.5, Saturation: 0.3, Colorfulness: 0.5, Hue: 0.3},
			energy:   0.1,
			want:     GenreEDMChill,
		},
		{
			name: "energy above one clamps to 0.9",
			// Clamped to 0.9 the warm-hue clause still fires.
			features: models.ImageFeatures{Brightness: 0.5, Saturation: 0.5, Colorfulness: 0.5, Hue: 0.95},
			energy:   5.0,
			want:     GenreEDMDrop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectGenre(tt.features, tt.energy)
			assert.Equal(t, tt.want, got)
		})
	}
}
