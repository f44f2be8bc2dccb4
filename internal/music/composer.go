package music

import (
	"math/rand"

	"github.com/soundcanvas/soundcanvas-api/internal/midi"
)

// DefaultSeed is used when the caller does not supply one.
const DefaultSeed int64 = 42

// barContext carries everything a generator needs for one bar.
type barContext struct {
	startTick   int
	ticksPerBar int
	rootNote    int
	chordDegree int
	scale       []int
	channel     int
	energy      float64
	complexity  float64
	mood        float64
	lastBar     bool // last bar of a section with another section following
}

// composer holds the per-request generation state. One instance per request;
// never shared.
type composer struct {
	wr    *midi.Writer
	spec  SongSpec
	rng   *rand.Rand
	drift int // melodic drift, clamped to [-3,4], carried across bars
}

type generatorFunc func(c *composer, trackIdx int, ctx barContext)

// generators dispatches a track role to its bar generator. FX tracks emit
// nothing yet; the role is reserved for riser/impact sweeps.
var generators = map[TrackRole]generatorFunc{
	RoleDrums:  (*composer).drumsBar,
	RoleBass:   (*composer).bassBar,
	RoleChords: (*composer).chordBar,
	RoleLead:   (*composer).leadBar,
	RolePad:    (*composer).padBar,
	RoleFX:     func(*composer, int, barContext) {},
}

// Compose walks the spec section by section, bar by bar, and emits note
// events for every active track into wr. All randomness comes from the
// supplied seed, so the same spec and seed produce identical output.
func Compose(spec SongSpec, wr *midi.Writer, seed int64) {
	wr.SetTempo(float64(spec.TempoBPM))
	wr.SetTimeSignature(4, 4)

	c := &composer{
		wr:    wr,
		spec:  spec,
		rng:   rand.New(rand.NewSource(seed)),
		drift: 2, // start on the third degree
	}

	scale := ScaleIntervals(spec.Scale)
	progression := Progressions(spec.Scale)[0]

	trackIdx := make([]int, len(spec.Tracks))
	for i, t := range spec.Tracks {
		trackIdx[i] = wr.AddTrack(t.Role.String())
		if t.Role != RoleDrums {
			wr.ProgramChange(trackIdx[i], 0, t.Channel, t.Program)
		}
	}

	ticksPerBar := midi.TicksPerQuarter * 4

	currentTick := 0
	for secIdx, section := range spec.Sections {
		isLastSection := secIdx == len(spec.Sections)-1
		activity := ActivityFor(section.Name, section.Energy, spec.MoodScore)

		for bar := 0; bar < section.Bars; bar++ {
			chordDegree := progression.Degrees[bar%len(progression.Degrees)]
			lastBarOfSection := bar == section.Bars-1 && !isLastSection

			for i, t := range spec.Tracks {
				if !activity.RoleActive(t.Role) {
					continue
				}
				if t.Role == RoleLead && activity.HalfLead && bar < section.Bars/2 {
					continue
				}

				gen, ok := generators[t.Role]
				if !ok {
					continue
				}
				gen(c, trackIdx[i], barContext{
					startTick:   currentTick,
					ticksPerBar: ticksPerBar,
					rootNote:    spec.RootNote,
					chordDegree: chordDegree,
					scale:       scale,
					channel:     t.Channel,
					energy:      section.Energy,
					complexity:  t.Complexity,
					mood:        spec.MoodScore,
					lastBar:     lastBarOfSection,
				})
			}

			currentTick += ticksPerBar
		}
	}
}

// ComposeToFile runs the full pipeline tail: compose the spec and write a
// Format 1 file at path.
func ComposeToFile(spec SongSpec, path string, seed int64) error {
	wr := midi.NewWriter(midi.TicksPerQuarter)
	Compose(spec, wr, seed)
	return wr.Write(path)
}

// ComposeToStems composes the spec and writes one Format 0 file per track
// under dir, returning track name to path.
func ComposeToStems(spec SongSpec, dir string, seed int64) (map[string]string, error) {
	wr := midi.NewWriter(midi.TicksPerQuarter)
	Compose(spec, wr, seed)
	return wr.WriteStems(dir)
}

// bassBar emits the bass line for one bar: root of the current chord an
// octave down, with density picked by the energy tier.
func (c *composer) bassBar(trackIdx int, ctx barContext) {
	ticksPerBeat := ctx.ticksPerBar / 4
	baseVel := 70 + int(ctx.energy*25)

	bassNote := ctx.rootNote - 12 + ctx.scale[ctx.chordDegree%len(ctx.scale)]
	fifthNote := ctx.rootNote - 12 + ctx.scale[(ctx.chordDegree+4)%len(ctx.scale)]
	octaveUp := bassNote + 12

	switch {
	case ctx.energy < 0.3:
		// Sustained whole note.
		c.wr.NoteOn(trackIdx, ctx.startTick, ctx.channel, bassNote, baseVel)
		c.wr.NoteOff(trackIdx, ctx.startTick+ctx.ticksPerBar-10, ctx.channel, bassNote)

	case ctx.energy < 0.6:
		// Root on 1 and 3, with an octave jump when complexity allows.
		c.wr.NoteOn(trackIdx, ctx.startTick, ctx.channel, bassNote, baseVel)
		c.wr.NoteOff(trackIdx, ctx.startTick+ticksPerBeat*2-10, ctx.channel, bassNote)

		note2 := bassNote
		if ctx.complexity > 0.4 {
			note2 = octaveUp
		}
		c.wr.NoteOn(trackIdx, ctx.startTick+ticksPerBeat*2, ctx.channel, note2, baseVel-5)
		c.wr.NoteOff(trackIdx, ctx.startTick+ctx.ticksPerBar-10, ctx.channel, note2)

	default:
		// Walking eighth pattern: root, fifth, root, octave, fifth, root.
		eighth := ticksPerBeat / 2

		c.wr.NoteOn(trackIdx, ctx.startTick, ctx.channel, bassNote, baseVel)
		c.wr.NoteOff(trackIdx, ctx.startTick+eighth-5, ctx.channel, bassNote)

		c.wr.NoteOn(trackIdx, ctx.startTick+eighth, ctx.channel, fifthNote, baseVel-10)
		c.wr.NoteOff(trackIdx, ctx.startTick+ticksPerBeat-5, ctx.channel, fifthNote)

		c.wr.NoteOn(trackIdx, ctx.startTick+ticksPerBeat, ctx.channel, bassNote, baseVel-5)
		c.wr.NoteOff(trackIdx, ctx.startTick+ticksPerBeat+eighth-5, ctx.channel, bassNote)

		c.wr.NoteOn(trackIdx, ctx.startTick+ticksPerBeat*2, ctx.channel, octaveUp, baseVel)
		c.wr.NoteOff(trackIdx, ctx.startTick+ticksPerBeat*2+eighth-5, ctx.channel, octaveUp)

		c.wr.NoteOn(trackIdx, ctx.startTick+ticksPerBeat*2+eighth, ctx.channel, fifthNote, baseVel-10)
		c.wr.NoteOff(trackIdx, ctx.startTick+ticksPerBeat*3-5, ctx.channel, fifthNote)

		c.wr.NoteOn(trackIdx, ctx.startTick+ticksPerBeat*3, ctx.channel, bassNote, baseVel-5)
		c.wr.NoteOff(trackIdx, ctx.startTick+ctx.ticksPerBar-5, ctx.channel, bassNote)
	}
}

// chordBar emits the harmonic voicing for one bar: a triad, extended with the
// 7th at high complexity, rendered as sustain, halves or syncopated stabs.
func (c *composer) chordBar(trackIdx int, ctx barContext) {
	ticksPerBeat := ctx.ticksPerBar / 4
	baseVel := 60 + int(ctx.energy*20)

	notes := []int{
		ctx.rootNote + ctx.scale[ctx.chordDegree%len(ctx.scale)],
		ctx.rootNote + ctx.scale[(ctx.chordDegree+2)%len(ctx.scale)],
		ctx.rootNote + ctx.scale[(ctx.chordDegree+4)%len(ctx.scale)],
	}
	if ctx.complexity > 0.6 {
		notes = append(notes, ctx.rootNote+ctx.scale[(ctx.chordDegree+6)%len(ctx.scale)])
	}

	switch {
	case ctx.energy < 0.3:
		for _, note := range notes {
			c.wr.NoteOn(trackIdx, ctx.startTick, ctx.channel, note, baseVel-10)
			c.wr.NoteOff(trackIdx, ctx.startTick+ctx.ticksPerBar-10, ctx.channel, note)
		}

	case ctx.energy < 0.7:
		for _, note := range notes {
			c.wr.NoteOn(trackIdx, ctx.startTick, ctx.channel, note, baseVel)
			c.wr.NoteOff(trackIdx, ctx.startTick+ticksPerBeat*2-10, ctx.channel, note)

			c.wr.NoteOn(trackIdx, ctx.startTick+ticksPerBeat*2, ctx.channel, note, baseVel-5)
			c.wr.NoteOff(trackIdx, ctx.startTick+ctx.ticksPerBar-10, ctx.channel, note)
		}

	default:
		// Syncopated stabs: 1, 1.5, 2, 2.5, 3, 4.
		eighth := ticksPerBeat / 2
		stabs := []int{0, eighth, ticksPerBeat, ticksPerBeat + eighth, ticksPerBeat * 2, ticksPerBeat * 3}
		vel := baseVel + 5
		for _, stab := range stabs {
			for _, note := range notes {
				c.wr.NoteOn(trackIdx, ctx.startTick+stab, ctx.channel, note, vel)
				c.wr.NoteOff(trackIdx, ctx.startTick+stab+eighth-10, ctx.channel, note)
			}
			vel -= 3
		}
	}
}

// leadBar renders a short fixed motif picked by mood tier, with the melodic
// drift nudging octaves across bars for continuity.
func (c *composer) leadBar(trackIdx int, ctx barContext) {
	ticksPerBeat := ctx.ticksPerBar / 4
	baseVel := 75 + int(ctx.mood*20)

	var motif []int
	switch {
	case ctx.mood > 0.6:
		motif = []int{0, 2, 4, 5, 4, 2} // up and back down
	case ctx.mood > 0.4:
		motif = []int{0, 2, 2, 4, 4, 2} // repetitive hook
	default:
		motif = []int{4, 2, 0, 2} // descending
	}

	noteDuration := ticksPerBeat / 2
	if ctx.mood > 0.7 {
		noteDuration = ticksPerBeat / 4
	}

	tick := ctx.startTick
	for i := 0; i < len(motif) && tick < ctx.startTick+ctx.ticksPerBar; i++ {
		degree := (ctx.chordDegree + motif[i]) % len(ctx.scale)
		note := ctx.rootNote + 12 + ctx.scale[degree]

		if c.drift > 3 {
			note += 12
		} else if c.drift < -2 {
			note -= 12
		}
		note = clampInt(note, 60, 84)

		duration := noteDuration
		velocity := baseVel
		if i == 0 || i == len(motif)-1 {
			velocity += 10
			duration = noteDuration * 3 / 2
		}
		velocity += c.randomInt(-5, 5)

		c.wr.NoteOn(trackIdx, tick, ctx.channel, note, velocity)
		c.wr.NoteOff(trackIdx, tick+duration-5, ctx.channel, note)

		tick += noteDuration
	}

	c.drift = clampInt(c.drift+c.randomInt(-1, 2), -3, 4)
}

// padBar sustains the root, plus the third when the mood is lush enough.
func (c *composer) padBar(trackIdx int, ctx barContext) {
	baseVel := 50 + int(ctx.mood*15)

	notes := []int{ctx.rootNote + ctx.scale[ctx.chordDegree%len(ctx.scale)]}
	if ctx.mood > 0.5 {
		notes = append(notes, ctx.rootNote+ctx.scale[(ctx.chordDegree+2)%len(ctx.scale)])
	}

	for _, note := range notes {
		c.wr.NoteOn(trackIdx, ctx.startTick, ctx.channel, note, baseVel)
		c.wr.NoteOff(trackIdx, ctx.startTick+ctx.ticksPerBar-10, ctx.channel, note)
	}
}

// randomInt returns a seeded uniform value in [min, max].
func (c *composer) randomInt(min, max int) int {
	return min + c.rng.Intn(max-min+1)
}
