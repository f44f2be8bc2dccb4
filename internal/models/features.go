package models

// ImageFeatures is the 8-dimensional pixel statistics vector extracted from
// an input image. All values are normalized to [0,1] except colorfulness,
// which is a small raw variance-based measure.
type ImageFeatures struct {
	AvgR         float64 `json:"avg_r"`
	AvgG         float64 `json:"avg_g"`
	AvgB         float64 `json:"avg_b"`
	Brightness   float64 `json:"brightness"`
	Hue          float64 `json:"hue"`
	Saturation   float64 `json:"saturation"`
	Colorfulness float64 `json:"colorfulness"`
	Contrast     float64 `json:"contrast"`
}

// ControlVector is the 7-dimensional musical control vector produced by the
// feature-to-music mapping (heuristic or model). It is the external input to
// the composition pipeline and is immutable once built.
type ControlVector struct {
	TempoBPM      float64 `json:"tempo_bpm"`      // beats per minute
	BaseFrequency float64 `json:"base_frequency"` // root frequency in Hz
	Energy        float64 `json:"energy"`         // 0-1
	Brightness    float64 `json:"brightness"`     // 0-1
	Reverb        float64 `json:"reverb"`         // 0-1
	ScaleType     int     `json:"scale_type"`     // 0=Major 1=Minor 2=Dorian 3=Lydian
	PatternType   int     `json:"pattern_type"`   // 0=Pad 1=Arp 2=Chords
}
