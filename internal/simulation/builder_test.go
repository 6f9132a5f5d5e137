package simulation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftline/supportsim/internal/persona"
)

// fixedRand always returns the midpoint draw, which makes jitter exactly 1.0
// and suppresses every probabilistic pause/backtrack whose threshold is below
// 0.5. Tests that need exact timelines use it.
type fixedRand struct{ v float64 }

func (f fixedRand) Float64() float64 { return f.v }
func (f fixedRand) Intn(n int) int   { return n / 2 }

func newTestBuilder(seed int64) *Builder {
	return NewBuilder(DefaultParams(), NewRand(seed))
}

func TestBuildEmptyMessageYieldsEmptySimulation(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(42)
	for _, message := range []string{"", "   ", "\t\n"} {
		sim := b.Build(message, "office_worker", 1.0, nil)
		assert.Empty(t, sim.Chunks, "message %q", message)
		assert.Empty(t, sim.PausePoints)
		assert.Empty(t, sim.Backtracks)
		assert.Zero(t, sim.TotalDurationMs)
	}
}

func TestBuildChunksCoverWholeMessage(t *testing.T) {
	t.Parallel()

	messages := []string{
		"Hi",
		"My printer is broken, please help!",
		"  leading and trailing whitespace  ",
		"line\nbreaks\tand tabs",
		"...",
		"The server keeps timing out when I upload report.pdf, is the VPN down?",
	}

	b := newTestBuilder(7)
	for _, message := range messages {
		sim := b.Build(message, "office_worker", 1.0, nil)
		require.NotEmpty(t, sim.Chunks, "message %q", message)

		var rebuilt strings.Builder
		for _, c := range sim.Chunks {
			rebuilt.WriteString(c.Text)
		}
		assert.Equal(t, message, rebuilt.String(), "chunks must concatenate to the message")
	}
}

func TestBuildOffsetsNonDecreasingAndDurationAccumulates(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(99)
	sim := b.Build("The router and the firewall both crash with a DNS error, urgent help needed now!!", "retiree", 1.0, nil)
	require.NotEmpty(t, sim.Chunks)

	var sumChunks float64
	prevOffset := -1.0
	for _, c := range sim.Chunks {
		assert.GreaterOrEqual(t, c.StartOffsetMs, prevOffset, "offsets must be non-decreasing")
		assert.Greater(t, c.DurationMs, 0.0)
		prevOffset = c.StartOffsetMs
		sumChunks += c.DurationMs
	}

	// Pauses and backtracks only add time.
	assert.GreaterOrEqual(t, sim.TotalDurationMs, sumChunks)

	last := sim.Chunks[len(sim.Chunks)-1]
	assert.GreaterOrEqual(t, sim.TotalDurationMs, last.DeliveryOffsetMs())
}

func TestBuildShortMessageForExecutive(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(1)
	sim := b.Build("Hi", "executive", 1.0, nil)

	require.Len(t, sim.Chunks, 1)
	assert.Equal(t, "Hi", sim.Chunks[0].Text)
	assert.Greater(t, sim.TotalDurationMs, 0.0)

	// The pre-jitter rate must land inside the executive's speed range.
	wpm := b.effectiveWPM(persona.Resolve("executive"), AnalyzeComplexity("Hi"), 1.0)
	assert.GreaterOrEqual(t, wpm, 50.0)
	assert.LessOrEqual(t, wpm, 65.0)
}

func TestBuildThinkingPausePrecedesNonSimpleMessages(t *testing.T) {
	t.Parallel()

	b := NewBuilder(DefaultParams(), fixedRand{v: 0.5})

	simple := b.Build("Hi there", "office_worker", 1.0, nil)
	assert.Empty(t, simple.PausePoints, "simple messages start immediately")
	assert.Zero(t, simple.Chunks[0].StartOffsetMs)

	moderate := b.Build("My router firewall and VPN are all broken", "office_worker", 1.0, nil)
	require.NotEmpty(t, moderate.PausePoints)
	first := moderate.PausePoints[0]
	assert.Equal(t, PauseThinking, first.Reason)
	assert.Zero(t, first.PositionChars)
	assert.Equal(t, 1000.0, first.DurationMs, "office_worker thinking multiplier is 1.0")
	assert.Equal(t, first.DurationMs, moderate.Chunks[0].StartOffsetMs, "first chunk starts after the thinking pause")
}

func TestBuildDeterministicTimelineWithFixedRand(t *testing.T) {
	t.Parallel()

	// Pin the speed to exactly 60 WPM: 60*5 chars/min = 200ms per char.
	pin := 60.0
	off := 0.0
	ov := &persona.Overrides{
		BaseWPM: &pin, MinWPM: &pin, MaxWPM: &pin,
		PauseFrequency: &off, BacktrackChance: &off,
	}

	b := NewBuilder(DefaultParams(), fixedRand{v: 0.5})
	sim := b.Build("ab cd", "office_worker", 1.0, ov)

	require.Len(t, sim.Chunks, 2)
	assert.Equal(t, "ab ", sim.Chunks[0].Text)
	assert.Equal(t, "cd", sim.Chunks[1].Text)
	assert.InDelta(t, 600.0, sim.Chunks[0].DurationMs, 1e-9)
	assert.InDelta(t, 600.0, sim.Chunks[1].StartOffsetMs, 1e-9)
	assert.InDelta(t, 400.0, sim.Chunks[1].DurationMs, 1e-9)
	assert.InDelta(t, 1000.0, sim.TotalDurationMs, 1e-9)
}

func TestBuildSameSeedSameTimeline(t *testing.T) {
	t.Parallel()

	message := "The VPN dropped again and I am getting really frustrated, please help ASAP!!"
	a := newTestBuilder(1234).Build(message, "angry_customer", 1.1, nil)
	b := newTestBuilder(1234).Build(message, "angry_customer", 1.1, nil)
	assert.Equal(t, a, b)
}

func TestEffectiveWPM(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(5)
	simple := MessageComplexity{Level: ComplexitySimple}

	testCases := []struct {
		name       string
		profile    persona.Profile
		complexity MessageComplexity
		mood       float64
		want       float64
	}{
		{
			name:    "neutral_simple_is_base",
			profile: persona.Profile{BaseWPM: 40, MinWPM: 10, MaxWPM: 100},
			complexity: simple, mood: 1.0, want: 40,
		},
		{
			name:    "complex_slows_by_20_percent",
			profile: persona.Profile{BaseWPM: 40, MinWPM: 10, MaxWPM: 100},
			complexity: MessageComplexity{Level: ComplexityComplex}, mood: 1.0, want: 32,
		},
		{
			name:    "moderate_slows_by_10_percent",
			profile: persona.Profile{BaseWPM: 40, MinWPM: 10, MaxWPM: 100},
			complexity: MessageComplexity{Level: ComplexityModerate}, mood: 1.0, want: 36,
		},
		{
			name:    "mood_scales_before_clamp",
			profile: persona.Profile{BaseWPM: 40, MinWPM: 10, MaxWPM: 100},
			complexity: simple, mood: 1.5, want: 60,
		},
		{
			name:    "emotional_slows_regular_personas",
			profile: persona.Profile{BaseWPM: 40, MinWPM: 10, MaxWPM: 100},
			complexity: MessageComplexity{Level: ComplexitySimple, EmotionalIntensity: 0.8},
			mood:    1.0, want: 34,
		},
		{
			name:    "emotional_speeds_anger_driven_personas",
			profile: persona.Profile{BaseWPM: 40, MinWPM: 10, MaxWPM: 100, AngerDriven: true},
			complexity: MessageComplexity{Level: ComplexitySimple, EmotionalIntensity: 0.8},
			mood:    1.0, want: 48,
		},
		{
			name:    "clamped_to_max",
			profile: persona.Profile{BaseWPM: 40, MinWPM: 10, MaxWPM: 45},
			complexity: simple, mood: 2.0, want: 45,
		},
		{
			name:    "clamped_to_min",
			profile: persona.Profile{BaseWPM: 40, MinWPM: 35, MaxWPM: 100},
			complexity: MessageComplexity{Level: ComplexityComplex}, mood: 0.5, want: 35,
		},
		{
			name:    "non_positive_mood_is_neutral",
			profile: persona.Profile{BaseWPM: 40, MinWPM: 10, MaxWPM: 100},
			complexity: simple, mood: 0, want: 40,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tc.want, b.effectiveWPM(tc.profile, tc.complexity, tc.mood), 1e-9)
		})
	}
}

func TestBuildBacktrackBounds(t *testing.T) {
	t.Parallel()

	// Force a backtrack after every token.
	always := 1.0
	never := 0.0
	ov := &persona.Overrides{BacktrackChance: &always, PauseFrequency: &never}

	b := newTestBuilder(21)
	sim := b.Build("hello wonderful support team", "office_worker", 1.0, ov)

	require.NotEmpty(t, sim.Backtracks)
	for _, bt := range sim.Backtracks {
		assert.GreaterOrEqual(t, bt.CharactersDeleted, 1)
		assert.LessOrEqual(t, bt.CharactersDeleted, 3)
		assert.Len(t, []rune(bt.CorrectionText), bt.CharactersDeleted)
		assert.GreaterOrEqual(t, bt.DurationMs, 200.0)
		assert.LessOrEqual(t, bt.DurationMs, 500.0)
	}
}

func TestBuildPauseReasonPrecedence(t *testing.T) {
	t.Parallel()

	// Force a pause after every token so reasons are observable.
	always := 1.0
	never := 0.0
	ov := &persona.Overrides{PauseFrequency: &always, BacktrackChance: &never}
	b := NewBuilder(DefaultParams(), fixedRand{v: 0.4})

	// "now" counts as an urgency indicator, so the message classifies as
	// non-simple and a leading thinking pause is inserted as well.
	sim := b.Build("please reboot now", "office_worker", 1.0, ov)
	require.Len(t, sim.Chunks, 3)
	require.Len(t, sim.PausePoints, 4)

	assert.Equal(t, PauseThinking, sim.PausePoints[0].Reason, "pre-message thinking pause")
	assert.Equal(t, PauseNatural, sim.PausePoints[1].Reason, "plain word")
	assert.Equal(t, PauseThinking, sim.PausePoints[2].Reason, "technical term")
	assert.Equal(t, PauseEmotional, sim.PausePoints[3].Reason, "urgency word")
}
