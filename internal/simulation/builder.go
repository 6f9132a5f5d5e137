package simulation

import (
	"math"
	"strings"
	"unicode"

	"github.com/driftline/supportsim/internal/persona"
)

// Params holds the builder's fixed timing constants. Values come from the
// simulator config section; DefaultParams matches the documented defaults.
type Params struct {
	// CharsPerWord converts WPM to a per-character rate.
	CharsPerWord float64
	// ThinkingPauseMs is the base pre-message pause for non-simple messages.
	ThinkingPauseMs float64
	// PauseBaseMs is the base duration of an inter-token pause.
	PauseBaseMs float64
	// BacktrackMinMs/BacktrackMaxMs bound a self-correction's duration.
	BacktrackMinMs float64
	BacktrackMaxMs float64
}

// DefaultParams returns the standard timing constants.
func DefaultParams() Params {
	return Params{
		CharsPerWord:    5,
		ThinkingPauseMs: 1000,
		PauseBaseMs:     500,
		BacktrackMinMs:  200,
		BacktrackMaxMs:  500,
	}
}

// Builder assembles typing simulations. It is safe for sequential reuse; the
// random source it carries is the only mutable state.
type Builder struct {
	params Params
	rng    Rand
}

// NewBuilder constructs a Builder. A nil rng falls back to a time-seeded
// production source.
func NewBuilder(params Params, rng Rand) *Builder {
	if rng == nil {
		rng = NewTimeSeededRand()
	}
	return &Builder{params: params, rng: rng}
}

// token is one whitespace-preserving span of the message. The spans
// concatenate back to the original text; core is the token with surrounding
// whitespace stripped, used for vocabulary matching and backtracks.
type token struct {
	text string
	core string
}

// tokenize splits a message into whitespace-preserving tokens. Leading
// whitespace attaches to the first token, trailing whitespace to the last.
// Whitespace-only input yields no tokens.
func tokenize(message string) []token {
	if strings.TrimSpace(message) == "" {
		return nil
	}
	runes := []rune(message)
	var tokens []token
	i := 0
	start := 0
	for i < len(runes) {
		// Skip the word itself.
		for i < len(runes) && !unicode.IsSpace(runes[i]) {
			i++
		}
		wordEnd := i
		// Absorb the whitespace run that follows it.
		for i < len(runes) && unicode.IsSpace(runes[i]) {
			i++
		}
		// A leading whitespace run produces an empty word; fold it into
		// the next token instead of emitting a blank one.
		if wordEnd == start && i < len(runes) {
			continue
		}
		text := string(runes[start:i])
		tokens = append(tokens, token{text: text, core: strings.TrimSpace(text)})
		start = i
	}
	return tokens
}

// Build combines the persona profile, message complexity, mood modifier, and
// per-build overrides into an immutable typing timeline.
//
// A mood modifier of 1.0 is neutral; values below slow the persona down,
// values above speed it up. Non-positive modifiers are treated as neutral.
func (b *Builder) Build(message, personaID string, mood float64, overrides *persona.Overrides) Simulation {
	profile := overrides.Apply(persona.Resolve(personaID))
	complexity := AnalyzeComplexity(message)

	wpm := b.effectiveWPM(profile, complexity, mood)
	msPerChar := 60000.0 / (wpm * b.params.CharsPerWord)

	tokens := tokenize(message)
	if len(tokens) == 0 {
		return Simulation{}
	}

	var sim Simulation
	clock := 0.0
	consumed := 0

	// Non-trivial messages start with a thinking pause before the first
	// keystroke.
	if complexity.Level != ComplexitySimple {
		pause := PausePoint{
			PositionChars: 0,
			DurationMs:    b.params.ThinkingPauseMs * profile.ThinkingPauseMultiplier,
			Reason:        PauseThinking,
		}
		sim.PausePoints = append(sim.PausePoints, pause)
		clock += pause.DurationMs
	}

	for _, tok := range tokens {
		jitter := uniform(b.rng, 0.8, 1.2)
		length := float64(len([]rune(tok.text)))
		duration := length * msPerChar * jitter

		sim.Chunks = append(sim.Chunks, Chunk{
			Text:          tok.text,
			StartOffsetMs: clock,
			DurationMs:    duration,
			WPM:           wpm / jitter,
		})
		clock += duration
		consumed += len([]rune(tok.text))

		if b.rng.Float64() < profile.PauseFrequency {
			pause := b.pauseAfter(tok, profile, complexity, consumed)
			sim.PausePoints = append(sim.PausePoints, pause)
			clock += pause.DurationMs
		}

		if b.rng.Float64() < profile.BacktrackChance {
			bt := b.backtrackAfter(tok, consumed)
			sim.Backtracks = append(sim.Backtracks, bt)
			clock += bt.DurationMs
		}
	}

	sim.TotalDurationMs = clock
	return sim
}

// effectiveWPM derives the clamped typing rate for this build.
func (b *Builder) effectiveWPM(profile persona.Profile, complexity MessageComplexity, mood float64) float64 {
	if mood <= 0 {
		mood = 1.0
	}
	wpm := profile.BaseWPM * mood

	switch complexity.Level {
	case ComplexityComplex:
		wpm *= 0.8
	case ComplexityModerate:
		wpm *= 0.9
	}

	if complexity.EmotionalIntensity > 0.5 {
		if profile.AngerDriven {
			// Angry personas hammer the keyboard.
			wpm *= 1.2
		} else {
			wpm *= 0.85
		}
	}

	return math.Min(profile.MaxWPM, math.Max(profile.MinWPM, wpm))
}

// pauseAfter models the hesitation following one token.
func (b *Builder) pauseAfter(tok token, profile persona.Profile, complexity MessageComplexity, position int) PausePoint {
	duration := b.params.PauseBaseMs * profile.PauseMultiplier

	technical := IsTechnicalToken(tok.core)
	urgent := IsUrgentToken(tok.core)
	if technical {
		duration *= 1.5
	}
	if urgent {
		duration *= 0.7
	}
	duration *= uniform(b.rng, 0.5, 1.5)

	reason := PauseNatural
	switch {
	case technical:
		reason = PauseThinking
	case urgent:
		reason = PauseEmotional
	case complexity.TechnicalTerms > 3:
		reason = PauseThinking
	}

	return PausePoint{PositionChars: position, DurationMs: duration, Reason: reason}
}

// backtrackAfter models a self-correction of the token just typed: the last
// few characters are deleted and retyped.
func (b *Builder) backtrackAfter(tok token, position int) BacktrackEvent {
	core := []rune(tok.core)
	limit := len(core)
	if limit > 3 {
		limit = 3
	}
	if limit < 1 {
		limit = 1
	}
	deleted := 1 + int(b.rng.Float64()*float64(limit))
	if deleted > len(core) {
		deleted = len(core)
	}
	if deleted < 1 {
		deleted = 1
	}

	correction := tok.core
	if deleted <= len(core) {
		correction = string(core[len(core)-deleted:])
	}

	return BacktrackEvent{
		PositionChars:     position,
		CharactersDeleted: deleted,
		CorrectionText:    correction,
		DurationMs:        uniform(b.rng, b.params.BacktrackMinMs, b.params.BacktrackMaxMs),
	}
}
