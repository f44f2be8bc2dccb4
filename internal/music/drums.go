package music

import "math"

// drumGrid is a 16-step pattern, one character per 16th note:
// 'x' hit, 'X' accented hit, 'o' ghost note, '-' rest.
type drumGrid struct {
	note int
	grid string
}

// drumPatterns maps a profile's pattern key to its step grids. These are the
// genre vocabularies; the groove generators below cover specs without one.
var drumPatterns = map[string][]drumGrid{
	"chill": {
		{DrumKick, "x-------x-------"},
		{DrumSnare, "----x-------x---"},
		{DrumClosedHat, "x-x-x-x-x-x-x-x-"},
	},
	"edm": {
		{DrumKick, "x---x---x---x---"},
		{DrumSnareElec, "----X-------X---"},
		{DrumClosedHat, "x-x-x-x-x-x-x-x-"},
		{DrumOpenHat, "--x---x---x---x-"},
	},
	"house": {
		{DrumKick, "x---x---x---x---"},
		{DrumSnareElec, "----x-------x---"},
		{DrumClosedHat, "--x---x---x---x-"},
		{DrumOpenHat, "------x-------x-"},
	},
	"cinematic": {
		{DrumKick, "x-------x-------"},
		{DrumLowTom, "--------x---x---"},
		{DrumRide, "x---x---x---x---"},
	},
	"trap": {
		{DrumKick, "x------x--x-----"},
		{DrumSnareElec, "----x-------x---"},
		{DrumClosedHat, "x-xxx-x-xx-xx-xx"},
	},
	"rnb": {
		{DrumKick, "x-----x---x-----"},
		{DrumSnare, "----x--o----x--o"},
		{DrumClosedHat, "x-x-x-x-x-x-x-x-"},
	},
}

// applySwing delays a hit on an odd subdivision boundary by a fraction of the
// subdivision length. On-beat hits and hits off the grid are unchanged.
func applySwing(relTick, unitTicks int, amount float64) int {
	if unitTicks <= 0 || relTick%unitTicks != 0 {
		return relTick
	}
	if (relTick/unitTicks)%2 == 0 {
		return relTick
	}
	return relTick + int(math.Round(amount*float64(unitTicks)))
}

// stepTick places a 16-step grid position in the bar. The swing unit is the
// grid subdivision itself, so odd steps are the ones delayed.
func stepTick(step, ticksPerBar int, useSwing bool, amount float64) int {
	sixteenth := ticksPerBar / 16
	relTick := step * sixteenth
	if useSwing {
		relTick = applySwing(relTick, sixteenth, amount)
	}
	return relTick
}

// drumsBar emits one bar of drums. Profiles with a pattern key use the genre
// step tables with swing and humanization; everything else falls back to the
// groove generators.
func (c *composer) drumsBar(trackIdx int, ctx barContext) {
	if grids, ok := drumPatterns[c.spec.DrumPattern]; ok {
		c.patternDrumsBar(trackIdx, ctx, grids)
	} else {
		c.grooveDrumsBar(trackIdx, ctx)
	}

	if ctx.lastBar && ctx.energy > 0.3 {
		c.drumFill(trackIdx, ctx)
	}
}

// patternDrumsBar renders the 16-step grids for the current genre.
func (c *composer) patternDrumsBar(trackIdx int, ctx barContext, grids []drumGrid) {
	sixteenth := ctx.ticksPerBar / 16
	baseVel := 80 + int(ctx.energy*30)

	for _, g := range grids {
		for step := 0; step < 16 && step < len(g.grid); step++ {
			var vel int
			switch g.grid[step] {
			case 'x':
				vel = baseVel
			case 'X':
				vel = baseVel + 10
			case 'o':
				vel = baseVel - 25
			default:
				continue
			}

			relTick := stepTick(step, ctx.ticksPerBar, c.spec.UseSwing, c.spec.SwingAmount)

			// Humanize: small seeded jitter on velocity and timing.
			vel = clampInt(vel+c.randomInt(-5, 5), 1, 127)
			tick := ctx.startTick + relTick + c.randomInt(-3, 3)
			if tick < ctx.startTick {
				tick = ctx.startTick
			}

			c.wr.NoteOn(trackIdx, tick, 9, g.note, vel)
			c.wr.NoteOff(trackIdx, tick+sixteenth/2, 9, g.note)
		}
	}
}

// grooveDrumsBar is the procedural path keyed by the spec's groove.
func (c *composer) grooveDrumsBar(trackIdx int, ctx barContext) {
	ticksPerBeat := ctx.ticksPerBar / 4
	baseVel := 80 + int(ctx.energy*30)

	switch c.spec.Groove {
	case GrooveChill:
		// Sparse and laid back: kick on 1 and 3, soft quarter hats.
		c.wr.NoteOn(trackIdx, ctx.startTick, 9, DrumKick, baseVel)
		c.wr.NoteOff(trackIdx, ctx.startTick+ticksPerBeat/2, 9, DrumKick)

		c.wr.NoteOn(trackIdx, ctx.startTick+ticksPerBeat*2, 9, DrumKick, baseVel-10)
		c.wr.NoteOff(trackIdx, ctx.startTick+ticksPerBeat*2+ticksPerBeat/2, 9, DrumKick)

		if ctx.complexity > 0.3 {
			for beat := 0; beat < 4; beat++ {
				vel := baseVel - 20 + c.randomInt(-5, 5)
				c.wr.NoteOn(trackIdx, ctx.startTick+beat*ticksPerBeat, 9, DrumClosedHat, vel)
				c.wr.NoteOff(trackIdx, ctx.startTick+beat*ticksPerBeat+ticksPerBeat/4, 9, DrumClosedHat)
			}
		}

	case GrooveDriving:
		// Four on the floor with backbeat snare and eighth hats.
		for beat := 0; beat < 4; beat++ {
			vel := baseVel + c.randomInt(-5, 5)
			c.wr.NoteOn(trackIdx, ctx.startTick+beat*ticksPerBeat, 9, DrumKick, vel)
			c.wr.NoteOff(trackIdx, ctx.startTick+beat*ticksPerBeat+ticksPerBeat/2, 9, DrumKick)
		}

		for _, beat := range []int{1, 3} {
			c.wr.NoteOn(trackIdx, ctx.startTick+beat*ticksPerBeat, 9, DrumSnare, baseVel)
			c.wr.NoteOff(trackIdx, ctx.startTick+beat*ticksPerBeat+ticksPerBeat/2, 9, DrumSnare)
		}

		for i := 0; i < 8; i++ {
			vel := baseVel - 10 + c.randomInt(-5, 5)
			hat := DrumClosedHat
			if i%4 == 3 && ctx.complexity > 0.6 {
				hat = DrumOpenHat
			}
			c.wr.NoteOn(trackIdx, ctx.startTick+i*(ticksPerBeat/2), 9, hat, vel)
			c.wr.NoteOff(trackIdx, ctx.startTick+i*(ticksPerBeat/2)+ticksPerBeat/4, 9, hat)
		}

	default:
		// Straight rock/pop beat.
		c.wr.NoteOn(trackIdx, ctx.startTick, 9, DrumKick, baseVel)
		c.wr.NoteOff(trackIdx, ctx.startTick+ticksPerBeat/2, 9, DrumKick)

		c.wr.NoteOn(trackIdx, ctx.startTick+ticksPerBeat*2, 9, DrumKick, baseVel-5)
		c.wr.NoteOff(trackIdx, ctx.startTick+ticksPerBeat*2+ticksPerBeat/2, 9, DrumKick)

		for _, beat := range []int{1, 3} {
			c.wr.NoteOn(trackIdx, ctx.startTick+beat*ticksPerBeat, 9, DrumSnare, baseVel)
			c.wr.NoteOff(trackIdx, ctx.startTick+beat*ticksPerBeat+ticksPerBeat/2, 9, DrumSnare)
		}

		for beat := 0; beat < 4; beat++ {
			vel := baseVel - 15 + c.randomInt(-5, 5)
			c.wr.NoteOn(trackIdx, ctx.startTick+beat*ticksPerBeat, 9, DrumClosedHat, vel)
			c.wr.NoteOff(trackIdx, ctx.startTick+beat*ticksPerBeat+ticksPerBeat/4, 9, DrumClosedHat)
		}
	}
}

// drumFill rolls four crescendo 16th snares over the last beat of the bar,
// leading into the next section.
func (c *composer) drumFill(trackIdx int, ctx barContext) {
	ticksPerBeat := ctx.ticksPerBar / 4
	baseVel := 80 + int(ctx.energy*30)

	fillStart := ctx.startTick + ctx.ticksPerBar - ticksPerBeat
	sixteenth := ticksPerBeat / 4
	for i := 0; i < 4; i++ {
		vel := baseVel - 10 + i*5
		c.wr.NoteOn(trackIdx, fillStart+i*sixteenth, 9, DrumSnare, vel)
		c.wr.NoteOff(trackIdx, fillStart+i*sixteenth+sixteenth/2, 9, DrumSnare)
	}
}
