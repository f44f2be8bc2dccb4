// Package midi serializes timestamped note events into Standard MIDI Files.
// It knows nothing about musical semantics; it is a pure format encoder.
package midi

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// TicksPerQuarter is the fixed tick resolution for all written files.
const TicksPerQuarter = 480

type event struct {
	tick int
	data []byte
}

type track struct {
	name   string
	events []event
}

// Writer accumulates per-track events and serializes them as SMF Format 1
// (combined) or Format 0 (one file per stem).
type Writer struct {
	ticksPerQuarter int
	tempoBPM        float64
	timeSigNum      int
	timeSigDenom    int
	tracks          []track
}

// NewWriter returns a Writer at the given tick resolution with 120 BPM 4/4
// defaults.
func NewWriter(ticksPerQuarter int) *Writer {
	return &Writer{
		ticksPerQuarter: ticksPerQuarter,
		tempoBPM:        120.0,
		timeSigNum:      4,
		timeSigDenom:    4,
	}
}

// SetTempo sets the BPM encoded in the tempo meta event.
func (w *Writer) SetTempo(bpm float64) { w.tempoBPM = bpm }

// SetTimeSignature sets the time signature meta event values.
func (w *Writer) SetTimeSignature(numerator, denominator int) {
	w.timeSigNum = numerator
	w.timeSigDenom = denominator
}

// AddTrack appends a named track and returns its index.
func (w *Writer) AddTrack(name string) int {
	w.tracks = append(w.tracks, track{name: name})
	return len(w.tracks) - 1
}

// TrackCount returns the number of tracks added so far.
func (w *Writer) TrackCount() int { return len(w.tracks) }

// NoteOn records a note-on. Out-of-range track indices are ignored; channel,
// note and velocity are masked into MIDI range.
func (w *Writer) NoteOn(trackIdx, tick, channel, note, velocity int) {
	if trackIdx < 0 || trackIdx >= len(w.tracks) {
		return
	}
	w.tracks[trackIdx].events = append(w.tracks[trackIdx].events, event{
		tick: tick,
		data: []byte{byte(0x90 | (channel & 0x0F)), byte(note & 0x7F), byte(velocity & 0x7F)},
	})
}

// NoteOff records a note-off with the default release velocity.
func (w *Writer) NoteOff(trackIdx, tick, channel, note int) {
	if trackIdx < 0 || trackIdx >= len(w.tracks) {
		return
	}
	w.tracks[trackIdx].events = append(w.tracks[trackIdx].events, event{
		tick: tick,
		data: []byte{byte(0x80 | (channel & 0x0F)), byte(note & 0x7F), 0x40},
	})
}

// ProgramChange records a program change.
func (w *Writer) ProgramChange(trackIdx, tick, channel, program int) {
	if trackIdx < 0 || trackIdx >= len(w.tracks) {
		return
	}
	w.tracks[trackIdx].events = append(w.tracks[trackIdx].events, event{
		tick: tick,
		data: []byte{byte(0xC0 | (channel & 0x0F)), byte(program & 0x7F)},
	})
}

// appendVarLen encodes v in the standard 7-bit-per-byte, high-bit-continuation
// scheme, most significant group first.
func appendVarLen(out []byte, v uint32) []byte {
	buf := v & 0x7F
	for {
		v >>= 7
		if v == 0 {
			break
		}
		buf <<= 8
		buf |= 0x80
		buf += v & 0x7F
	}
	for {
		out = append(out, byte(buf&0xFF))
		if buf&0x80 == 0 {
			break
		}
		buf >>= 8
	}
	return out
}

func appendU16(out []byte, v uint16) []byte {
	return append(out, byte(v>>8), byte(v))
}

func appendU32(out []byte, v uint32) []byte {
	return append(out, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// buildTrackBody renders one track chunk body. withMeta controls whether the
// name/tempo/time-signature meta events lead the body; they go on the first
// track of a combined file and on every stem.
func (w *Writer) buildTrackBody(trackIdx int, withMeta bool) []byte {
	trk := &w.tracks[trackIdx]

	// Stable sort keeps insertion order for simultaneous events.
	sort.SliceStable(trk.events, func(i, j int) bool {
		return trk.events[i].tick < trk.events[j].tick
	})

	var body []byte
	if withMeta {
		if trk.name != "" {
			body = appendVarLen(body, 0)
			body = append(body, 0xFF, 0x03)
			body = appendVarLen(body, uint32(len(trk.name)))
			body = append(body, trk.name...)
		}

		usPerQuarter := uint32(math.Round(60000000.0 / w.tempoBPM))
		body = appendVarLen(body, 0)
		body = append(body, 0xFF, 0x51, 0x03,
			byte(usPerQuarter>>16), byte(usPerQuarter>>8), byte(usPerQuarter))

		denomLog2 := 0
		for d := w.timeSigDenom; d > 1; d >>= 1 {
			denomLog2++
		}
		body = appendVarLen(body, 0)
		body = append(body, 0xFF, 0x58, 0x04,
			byte(w.timeSigNum), byte(denomLog2), 0x18, 0x08)
	}

	lastTick := 0
	for _, ev := range trk.events {
		delta := ev.tick - lastTick
		if delta < 0 {
			delta = 0
		}
		body = appendVarLen(body, uint32(delta))
		body = append(body, ev.data...)
		lastTick = ev.tick
	}

	// End of track.
	body = appendVarLen(body, 0)
	body = append(body, 0xFF, 0x2F, 0x00)

	return body
}

// Bytes renders the complete Format 1 file.
func (w *Writer) Bytes() []byte {
	var out []byte
	out = append(out, 'M', 'T', 'h', 'd')
	out = appendU32(out, 6)
	out = appendU16(out, 1)
	out = appendU16(out, uint16(len(w.tracks)))
	out = appendU16(out, uint16(w.ticksPerQuarter))

	for i := range w.tracks {
		body := w.buildTrackBody(i, i == 0)
		out = append(out, 'M', 'T', 'r', 'k')
		out = appendU32(out, uint32(len(body)))
		out = append(out, body...)
	}
	return out
}

// singleTrackBytes renders one track as a standalone Format 0 file.
func (w *Writer) singleTrackBytes(trackIdx int) []byte {
	var out []byte
	out = append(out, 'M', 'T', 'h', 'd')
	out = appendU32(out, 6)
	out = appendU16(out, 0)
	out = appendU16(out, 1)
	out = appendU16(out, uint16(w.ticksPerQuarter))

	body := w.buildTrackBody(trackIdx, true)
	out = append(out, 'M', 'T', 'r', 'k')
	out = appendU32(out, uint32(len(body)))
	out = append(out, body...)
	return out
}

// Write serializes all tracks to a single Format 1 file at path. Failure to
// write is fatal for the whole file; there is no partial recovery.
func (w *Writer) Write(path string) error {
	if err := os.WriteFile(path, w.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to create MIDI file %s: %w", path, err)
	}
	return nil
}

// WriteStems writes every track as its own Format 0 file under dir and
// returns a map from track name to file path. Unnamed tracks get a
// "trackN" fallback name.
func (w *Writer) WriteStems(dir string) (map[string]string, error) {
	result := make(map[string]string, len(w.tracks))
	for i := range w.tracks {
		name := w.tracks[i].name
		if name == "" {
			name = fmt.Sprintf("track%d", i)
		}
		path := filepath.Join(dir, name+".mid")
		if err := os.WriteFile(path, w.singleTrackBytes(i), 0o644); err != nil {
			return nil, fmt.Errorf("failed to create stem file %s: %w", path, err)
		}
		result[name] = path
	}
	return result, nil
}
