package simulation

import (
	"github.com/driftline/supportsim/api/schemas"
)

// AdjustForDifficulty rescales a simulation for the trainee's difficulty
// level and returns the new value. Beginners see slower typing, advanced
// trainees faster; intermediate is the identity transform.
func AdjustForDifficulty(sim Simulation, level schemas.DifficultyLevel) Simulation {
	multiplier := level.SpeedMultiplier()
	if multiplier == 1.0 {
		return sim.clone()
	}

	out := sim.clone()
	out.TotalDurationMs /= multiplier
	for i := range out.Chunks {
		out.Chunks[i].StartOffsetMs /= multiplier
		out.Chunks[i].DurationMs /= multiplier
		out.Chunks[i].WPM *= multiplier
	}
	for i := range out.PausePoints {
		out.PausePoints[i].DurationMs /= multiplier
	}
	for i := range out.Backtracks {
		out.Backtracks[i].DurationMs /= multiplier
	}
	return out
}

// ApplySettings rescales a simulation for per-session speed and pause
// multipliers and returns the new value. Speed divides typing time; the
// pause multiplier stretches or shrinks modeled pauses.
func ApplySettings(sim Simulation, speedMultiplier, pauseMultiplier float64) Simulation {
	out := sim.clone()
	if speedMultiplier <= 0 {
		speedMultiplier = 1.0
	}
	if pauseMultiplier <= 0 {
		pauseMultiplier = 1.0
	}

	out.TotalDurationMs /= speedMultiplier
	for i := range out.Chunks {
		out.Chunks[i].StartOffsetMs /= speedMultiplier
		out.Chunks[i].DurationMs /= speedMultiplier
		out.Chunks[i].WPM *= speedMultiplier
	}
	for i := range out.Backtracks {
		out.Backtracks[i].DurationMs /= speedMultiplier
	}
	for i := range out.PausePoints {
		out.PausePoints[i].DurationMs *= pauseMultiplier
	}
	return out
}

// InstantSimulation returns the degenerate timeline used when typing
// animation is disabled or accessibility mode is on: one chunk holding the
// whole message, delivered immediately, with the sentinel WPM.
func InstantSimulation(message string) Simulation {
	return Simulation{
		Chunks: []Chunk{{
			Text:          message,
			StartOffsetMs: 0,
			DurationMs:    0,
			WPM:           InstantWPM,
		}},
		TotalDurationMs: 0,
	}
}

// Collapse merges every chunk into a single chunk covering the whole message
// while keeping the overall duration. Used when chunked delivery is turned
// off but the typing delay itself is still wanted.
func Collapse(sim Simulation) Simulation {
	if len(sim.Chunks) <= 1 {
		return sim.clone()
	}
	var text string
	var wpm float64
	for _, c := range sim.Chunks {
		text += c.Text
		wpm += c.WPM
	}
	wpm /= float64(len(sim.Chunks))

	out := sim.clone()
	out.Chunks = []Chunk{{
		Text:          text,
		StartOffsetMs: 0,
		DurationMs:    sim.TotalDurationMs,
		WPM:           wpm,
	}}
	return out
}
