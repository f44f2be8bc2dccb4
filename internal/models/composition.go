package models

// CompositionRequest is the body of POST /api/v1/compositions. The caller
// supplies either precomputed features or an image path to extract them from;
// genre and seed are optional.
type CompositionRequest struct {
	Features  *ImageFeatures `json:"features,omitempty"`
	ImagePath string         `json:"image_path,omitempty"`

	// Optional explicit control vector; skips the model / heuristic mapping.
	Controls *ControlVector `json:"controls,omitempty"`

	// Optional genre display name ("House", "Rap", ...). Empty means the
	// genre is selected from the features.
	Genre string `json:"genre,omitempty"`

	// Humanization seed. Zero means the default seed.
	Seed int64 `json:"seed,omitempty"`

	// Render asks the renderer service to bounce the MIDI to audio.
	Render bool `json:"render,omitempty"`
}

// StemsRequest extends a composition request with the mixdown options for the
// producer service.
type StemsRequest struct {
	CompositionRequest

	// Produce asks the audio producer to mix the stems after export.
	Produce        bool `json:"produce,omitempty"`
	ApplyMastering bool `json:"apply_mastering,omitempty"`
	ApplySidechain bool `json:"apply_sidechain,omitempty"`
}

// SectionSummary is one section in a composition response.
type SectionSummary struct {
	Name    string  `json:"name"`
	Bars    int     `json:"bars"`
	Energy  float64 `json:"energy"`
	HasDrop bool    `json:"has_drop"`
}

// CompositionResponse summarizes a finished composition.
type CompositionResponse struct {
	RequestID string `json:"request_id"`
	MidiPath  string `json:"midi_path"`
	AudioPath string `json:"audio_path,omitempty"`
	Rendered  bool   `json:"rendered"`

	Genre     string           `json:"genre"`
	TempoBPM  int              `json:"tempo_bpm"`
	Scale     string           `json:"scale"`
	RootNote  int              `json:"root_note"`
	TotalBars int              `json:"total_bars"`
	Seed      int64            `json:"seed"`
	Sections  []SectionSummary `json:"sections"`
	Tracks    []string         `json:"tracks"`
}

// StemsResponse summarizes a stem export.
type StemsResponse struct {
	RequestID string            `json:"request_id"`
	Stems     map[string]string `json:"stems"`
	Genre     string            `json:"genre"`
	TempoBPM  int               `json:"tempo_bpm"`
	Seed      int64             `json:"seed"`
	Produced  bool              `json:"produced"`
}

// GenreSummary describes one catalog entry for GET /api/v1/genres.
type GenreSummary struct {
	Name          string   `json:"name"`
	MinTempo      int      `json:"min_tempo"`
	MaxTempo      int      `json:"max_tempo"`
	Sections      []string `json:"sections"`
	Layers        []string `json:"layers"`
	DropThreshold float64  `json:"drop_threshold"`
	UseSwing      bool     `json:"use_swing"`
	SwingAmount   float64  `json:"swing_amount,omitempty"`
}
