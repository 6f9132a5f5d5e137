package scheduler

import (
	"time"

	"github.com/driftline/supportsim/api/schemas"
	"github.com/driftline/supportsim/internal/simulation"
)

// Status is the lifecycle state of one session's delivery run. A session with
// no entry in the scheduler is "absent"; that state has no constant.
type Status string

const (
	StatusRunning     Status = "running"
	StatusPaused      Status = "paused"
	StatusInterrupted Status = "interrupted"
	StatusCompleted   Status = "completed"
)

// SessionState is the queryable snapshot of one session's typing run.
type SessionState struct {
	SessionID         string                   `json:"session_id"`
	Status            Status                   `json:"status"`
	IsTyping          bool                     `json:"is_typing"`
	IsPaused          bool                     `json:"is_paused"`
	WasInterrupted    bool                     `json:"was_interrupted"`
	CurrentMessage    string                   `json:"current_message"`
	CurrentChunkIndex int                      `json:"current_chunk_index"`
	StartTime         time.Time                `json:"start_time"`
	Difficulty        schemas.DifficultyLevel  `json:"difficulty"`
	Settings          schemas.SessionSettings  `json:"settings"`
	Simulation        simulation.Simulation    `json:"simulation"`
}

// scheduleItem is one future firing on a session's timeline: either a chunk
// delivery or the terminal stop at the end of the run.
type scheduleItem struct {
	atMs       float64
	chunkIndex int // -1 for the terminal stop
	text       string
	isLast     bool
}

// session is the scheduler-internal record. All fields are guarded by the
// scheduler mutex; nothing outside the scheduler touches a session.
type session struct {
	state SessionState

	// gen invalidates timer callbacks from superseded runs. Every Start for
	// the same id produces a new generation.
	gen uint64

	items []scheduleItem
	next  int

	// elapsed accumulates run time across pauses; resumedAt is the wall time
	// the current running stretch began.
	elapsed   time.Duration
	resumedAt time.Time

	// timer is the single armed handle for items[next]; purgeTimer removes
	// completed state after the grace period. Both are nil when unarmed.
	timer      Timer
	purgeTimer Timer

	terminalEmitted bool
}

// elapsedMs returns simulated-timeline progress in milliseconds.
func (s *session) elapsedMs(now time.Time) float64 {
	e := s.elapsed
	if s.state.Status == StatusRunning {
		e += now.Sub(s.resumedAt)
	}
	return float64(e) / float64(time.Millisecond)
}

// cancelTimers stops every outstanding handle for the session as one group.
// Any transition that suspends or ends a run must go through here; a leaked
// timer means a late chunk delivery.
func (s *session) cancelTimers() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.purgeTimer != nil {
		s.purgeTimer.Stop()
		s.purgeTimer = nil
	}
}

// buildItems lays out the firing schedule for a simulation: one delivery per
// chunk at the moment its typing finishes, then the terminal stop.
func buildItems(sim simulation.Simulation) []scheduleItem {
	items := make([]scheduleItem, 0, len(sim.Chunks)+1)
	for i, c := range sim.Chunks {
		items = append(items, scheduleItem{
			atMs:       c.DeliveryOffsetMs(),
			chunkIndex: i,
			text:       c.Text,
			isLast:     i == len(sim.Chunks)-1,
		})
	}
	items = append(items, scheduleItem{atMs: sim.TotalDurationMs, chunkIndex: -1})
	return items
}
