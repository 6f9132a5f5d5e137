package schemas

// -- Session Settings Schemas --

// DifficultyLevel is an external knob uniformly scaling simulation speed.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// SpeedMultiplier returns the playback speed factor for the level.
// Unknown levels behave as intermediate.
func (d DifficultyLevel) SpeedMultiplier() float64 {
	switch d {
	case DifficultyBeginner:
		return 0.7
	case DifficultyAdvanced:
		return 1.3
	default:
		return 1.0
	}
}

// SessionSettings carries the per-session knobs supplied by the host.
// Zero values are repaired by Normalize before use.
type SessionSettings struct {
	Enabled           bool    `json:"enabled"`
	SpeedMultiplier   float64 `json:"speed_multiplier"`
	PauseMultiplier   float64 `json:"pause_multiplier"`
	ChunkingEnabled   bool    `json:"chunking_enabled"`
	AccessibilityMode bool    `json:"accessibility_mode"`
}

// DefaultSessionSettings returns the documented defaults: simulation on,
// unscaled speed and pauses, chunked delivery, no accessibility override.
func DefaultSessionSettings() SessionSettings {
	return SessionSettings{
		Enabled:         true,
		SpeedMultiplier: 1.0,
		PauseMultiplier: 1.0,
		ChunkingEnabled: true,
	}
}

// Normalize repairs out-of-range values in place. Non-positive multipliers
// fall back to 1.0 rather than producing divide-by-zero timelines.
func (s *SessionSettings) Normalize() {
	if s.SpeedMultiplier <= 0 {
		s.SpeedMultiplier = 1.0
	}
	if s.PauseMultiplier <= 0 {
		s.PauseMultiplier = 1.0
	}
}

// SettingsPatch is a partial update applied to an in-flight session.
// Nil fields are left untouched.
type SettingsPatch struct {
	Enabled           *bool    `json:"enabled,omitempty"`
	SpeedMultiplier   *float64 `json:"speed_multiplier,omitempty"`
	PauseMultiplier   *float64 `json:"pause_multiplier,omitempty"`
	ChunkingEnabled   *bool    `json:"chunking_enabled,omitempty"`
	AccessibilityMode *bool    `json:"accessibility_mode,omitempty"`
}

// Apply merges the patch into a copy of base and returns it.
func (p SettingsPatch) Apply(base SessionSettings) SessionSettings {
	out := base
	if p.Enabled != nil {
		out.Enabled = *p.Enabled
	}
	if p.SpeedMultiplier != nil {
		out.SpeedMultiplier = *p.SpeedMultiplier
	}
	if p.PauseMultiplier != nil {
		out.PauseMultiplier = *p.PauseMultiplier
	}
	if p.ChunkingEnabled != nil {
		out.ChunkingEnabled = *p.ChunkingEnabled
	}
	if p.AccessibilityMode != nil {
		out.AccessibilityMode = *p.AccessibilityMode
	}
	out.Normalize()
	return out
}
