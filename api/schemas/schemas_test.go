package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDifficultySpeedMultiplier(t *testing.T) {
	assert.Equal(t, 0.7, DifficultyBeginner.SpeedMultiplier())
	assert.Equal(t, 1.0, DifficultyIntermediate.SpeedMultiplier())
	assert.Equal(t, 1.3, DifficultyAdvanced.SpeedMultiplier())
	assert.Equal(t, 1.0, DifficultyLevel("nightmare").SpeedMultiplier(), "unknown levels act as intermediate")
	assert.Equal(t, 1.0, DifficultyLevel("").SpeedMultiplier())
}

func TestNormalizeRepairsMultipliers(t *testing.T) {
	s := SessionSettings{Enabled: true, SpeedMultiplier: -2, PauseMultiplier: 0}
	s.Normalize()
	assert.Equal(t, 1.0, s.SpeedMultiplier)
	assert.Equal(t, 1.0, s.PauseMultiplier)

	s = SessionSettings{SpeedMultiplier: 2.5, PauseMultiplier: 0.25}
	s.Normalize()
	assert.Equal(t, 2.5, s.SpeedMultiplier)
	assert.Equal(t, 0.25, s.PauseMultiplier)
}

func TestSettingsPatchApply(t *testing.T) {
	base := DefaultSessionSettings()

	out := SettingsPatch{}.Apply(base)
	assert.Equal(t, base, out, "empty patch leaves settings untouched")

	speed := 1.5
	chunking := false
	out = SettingsPatch{SpeedMultiplier: &speed, ChunkingEnabled: &chunking}.Apply(base)
	assert.Equal(t, 1.5, out.SpeedMultiplier)
	assert.False(t, out.ChunkingEnabled)
	assert.True(t, out.Enabled, "unset fields keep base values")
	assert.Equal(t, 1.0, out.PauseMultiplier)
	assert.True(t, base.ChunkingEnabled, "base is not mutated")

	bad := -1.0
	out = SettingsPatch{PauseMultiplier: &bad}.Apply(base)
	assert.Equal(t, 1.0, out.PauseMultiplier, "patched values are normalized")
}

func TestEventTypeIsTerminal(t *testing.T) {
	assert.True(t, EventTypingStop.IsTerminal())
	assert.True(t, EventTypingInterrupted.IsTerminal())
	assert.False(t, EventTypingStart.IsTerminal())
	assert.False(t, EventTypingPause.IsTerminal())
	assert.False(t, EventTypingResume.IsTerminal())
	assert.False(t, EventChunkDelivered.IsTerminal())
}

func TestEventSinkFunc(t *testing.T) {
	var got []TypingEvent
	sink := EventSinkFunc(func(e TypingEvent) { got = append(got, e) })
	sink.Publish(TypingEvent{SessionID: "s1", Type: EventTypingStart})
	assert.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].SessionID)
}
