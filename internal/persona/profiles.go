// Package persona holds the fixed catalog of typing profiles used by the
// simulation builder. A profile captures how a simulated customer types:
// speed range, pause tendencies, and self-correction rate.
package persona

// Profile describes the typing characteristics of one persona.
// Profiles are immutable; the builder copies values out of them.
type Profile struct {
	BaseWPM float64 `json:"base_wpm" yaml:"base_wpm"`
	MinWPM  float64 `json:"min_wpm" yaml:"min_wpm"`
	MaxWPM  float64 `json:"max_wpm" yaml:"max_wpm"`

	// PauseFrequency is the per-token probability of inserting a pause, in [0,1].
	PauseFrequency  float64 `json:"pause_frequency" yaml:"pause_frequency"`
	PauseMultiplier float64 `json:"pause_multiplier" yaml:"pause_multiplier"`

	// BacktrackChance is the per-token probability of a self-correction, in [0,1].
	BacktrackChance float64 `json:"backtrack_chance" yaml:"backtrack_chance"`

	BurstTyping             bool    `json:"burst_typing" yaml:"burst_typing"`
	ThinkingPauseMultiplier float64 `json:"thinking_pause_multiplier" yaml:"thinking_pause_multiplier"`

	// AngerDriven marks personas whose typing speeds up, rather than slows
	// down, when the message is emotionally charged.
	AngerDriven bool `json:"anger_driven" yaml:"anger_driven"`
}

// Overrides replaces individual profile fields for one build. Nil fields
// keep the profile's value.
type Overrides struct {
	BaseWPM                 *float64
	MinWPM                  *float64
	MaxWPM                  *float64
	PauseFrequency          *float64
	PauseMultiplier         *float64
	BacktrackChance         *float64
	BurstTyping             *bool
	ThinkingPauseMultiplier *float64
}

// Apply merges the overrides into a copy of the profile.
func (o *Overrides) Apply(p Profile) Profile {
	if o == nil {
		return p
	}
	if o.BaseWPM != nil {
		p.BaseWPM = *o.BaseWPM
	}
	if o.MinWPM != nil {
		p.MinWPM = *o.MinWPM
	}
	if o.MaxWPM != nil {
		p.MaxWPM = *o.MaxWPM
	}
	if o.PauseFrequency != nil {
		p.PauseFrequency = *o.PauseFrequency
	}
	if o.PauseMultiplier != nil {
		p.PauseMultiplier = *o.PauseMultiplier
	}
	if o.BacktrackChance != nil {
		p.BacktrackChance = *o.BacktrackChance
	}
	if o.BurstTyping != nil {
		p.BurstTyping = *o.BurstTyping
	}
	if o.ThinkingPauseMultiplier != nil {
		p.ThinkingPauseMultiplier = *o.ThinkingPauseMultiplier
	}
	return p
}

// profiles is the fixed persona table. Keys are the persona ids supplied by
// the emotional-state collaborator.
var profiles = map[string]Profile{
	"executive": {
		BaseWPM: 58, MinWPM: 50, MaxWPM: 65,
		PauseFrequency: 0.10, PauseMultiplier: 0.8,
		BacktrackChance: 0.03, BurstTyping: true,
		ThinkingPauseMultiplier: 0.7,
	},
	"office_worker": {
		BaseWPM: 45, MinWPM: 35, MaxWPM: 55,
		PauseFrequency: 0.15, PauseMultiplier: 1.0,
		BacktrackChance: 0.06,
		ThinkingPauseMultiplier: 1.0,
	},
	"it_manager": {
		BaseWPM: 62, MinWPM: 52, MaxWPM: 75,
		PauseFrequency: 0.08, PauseMultiplier: 0.9,
		BacktrackChance: 0.04, BurstTyping: true,
		ThinkingPauseMultiplier: 0.8,
	},
	"retiree": {
		BaseWPM: 25, MinWPM: 18, MaxWPM: 32,
		PauseFrequency: 0.30, PauseMultiplier: 1.6,
		BacktrackChance: 0.12,
		ThinkingPauseMultiplier: 1.8,
	},
	"college_student": {
		BaseWPM: 70, MinWPM: 55, MaxWPM: 85,
		PauseFrequency: 0.07, PauseMultiplier: 0.7,
		BacktrackChance: 0.08, BurstTyping: true,
		ThinkingPauseMultiplier: 0.6,
	},
	"angry_customer": {
		BaseWPM: 50, MinWPM: 40, MaxWPM: 68,
		PauseFrequency: 0.12, PauseMultiplier: 0.9,
		BacktrackChance: 0.10, BurstTyping: true,
		ThinkingPauseMultiplier: 0.7,
		AngerDriven:             true,
	},
	"small_business_owner": {
		BaseWPM: 38, MinWPM: 28, MaxWPM: 48,
		PauseFrequency: 0.20, PauseMultiplier: 1.2,
		BacktrackChance: 0.07,
		ThinkingPauseMultiplier: 1.3,
	},
}

// DefaultProfile returns the fallback used for unknown persona ids.
// Lookup never fails; an unrecognized id types like an average user.
func DefaultProfile() Profile {
	return Profile{
		BaseWPM: 40, MinWPM: 30, MaxWPM: 50,
		PauseFrequency: 0.15, PauseMultiplier: 1.0,
		BacktrackChance: 0.05,
		ThinkingPauseMultiplier: 1.0,
	}
}

// Resolve returns the profile for the given persona id, or the default
// profile when the id is unknown.
func Resolve(personaID string) Profile {
	if p, ok := profiles[personaID]; ok {
		return p
	}
	return DefaultProfile()
}

// Known reports whether the persona id exists in the catalog.
func Known(personaID string) bool {
	_, ok := profiles[personaID]
	return ok
}

// IDs returns the catalog's persona ids. Order is unspecified.
func IDs() []string {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	return ids
}
