// Package simulation builds persona-driven typing timelines. A Simulation is
// an immutable value describing how one outgoing message is typed: timed
// chunks, pause points, and simulated self-corrections. Playing the timeline
// out in wall-clock time is the scheduler's job, not this package's.
package simulation

// Complexity buckets for an analyzed message.
type ComplexityLevel string

const (
	ComplexitySimple   ComplexityLevel = "simple"
	ComplexityModerate ComplexityLevel = "moderate"
	ComplexityComplex  ComplexityLevel = "complex"
)

// MessageComplexity is the analyzer's classification of one message.
type MessageComplexity struct {
	WordCount          int
	TechnicalTerms     int
	EmotionalIntensity float64
	QuestionCount      int
	Level              ComplexityLevel
}

// PauseReason labels why a pause point was inserted into the timeline.
type PauseReason string

const (
	PauseThinking   PauseReason = "thinking"
	PauseNatural    PauseReason = "natural"
	PauseCorrection PauseReason = "correction"
	PauseEmotional  PauseReason = "emotional"
)

// Chunk is a contiguous span of the message delivered as one timed unit.
// Offsets are non-decreasing and the chunk texts concatenate to the whole
// message.
type Chunk struct {
	Text          string  `json:"text"`
	StartOffsetMs float64 `json:"start_offset_ms"`
	DurationMs    float64 `json:"duration_ms"`
	WPM           float64 `json:"wpm"`
}

// DeliveryOffsetMs is the point on the timeline at which the chunk has
// finished being typed and is delivered.
func (c Chunk) DeliveryOffsetMs() float64 {
	return c.StartOffsetMs + c.DurationMs
}

// PausePoint is a modeled delay not associated with text delivery.
type PausePoint struct {
	PositionChars int         `json:"position_chars"`
	DurationMs    float64     `json:"duration_ms"`
	Reason        PauseReason `json:"reason"`
}

// BacktrackEvent is a simulated self-correction: the persona deletes the last
// few characters and retypes them, consuming extra simulated time.
type BacktrackEvent struct {
	PositionChars     int     `json:"position_chars"`
	CharactersDeleted int     `json:"characters_deleted"`
	CorrectionText    string  `json:"correction_text"`
	DurationMs        float64 `json:"duration_ms"`
}

// InstantWPM is the sentinel instantaneous rate marking "no animation".
// It is deliberately outside every profile's [MinWPM, MaxWPM] range.
const InstantWPM float64 = 0

// Simulation is an immutable typing timeline. Transforms return new values;
// nothing in this package mutates a Simulation after Build returns it.
type Simulation struct {
	Chunks          []Chunk          `json:"chunks"`
	PausePoints     []PausePoint     `json:"pause_points"`
	Backtracks      []BacktrackEvent `json:"backtracks"`
	TotalDurationMs float64          `json:"total_duration_ms"`
}

// Instant reports whether the simulation is a degenerate "deliver at once"
// timeline, as produced for accessibility mode or disabled simulation.
func (s Simulation) Instant() bool {
	return s.TotalDurationMs == 0 && len(s.Chunks) == 1 && s.Chunks[0].WPM == InstantWPM
}

// clone deep-copies the simulation so transforms never alias slices.
func (s Simulation) clone() Simulation {
	out := Simulation{TotalDurationMs: s.TotalDurationMs}
	out.Chunks = append([]Chunk(nil), s.Chunks...)
	out.PausePoints = append([]PausePoint(nil), s.PausePoints...)
	out.Backtracks = append([]BacktrackEvent(nil), s.Backtracks...)
	return out
}
