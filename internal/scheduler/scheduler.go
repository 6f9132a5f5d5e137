// Package scheduler plays typing simulations out in wall-clock time, one
// independent state machine per chat session. Every public operation returns
// immediately after arranging or cancelling timers; delivery happens in timer
// callbacks that re-check the session's generation, so a superseded or
// stopped run can never emit another event.
package scheduler

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftline/supportsim/api/schemas"
	"github.com/driftline/supportsim/internal/persona"
	"github.com/driftline/supportsim/internal/simulation"
)

// DefaultCompletionGrace is how long a naturally completed session stays
// queryable before its state is purged.
const DefaultCompletionGrace = 5 * time.Second

// Options tunes a Scheduler. Zero values select production defaults.
type Options struct {
	// Clock drives timers; nil selects the real clock.
	Clock Clock
	// CompletionGrace overrides DefaultCompletionGrace when positive.
	CompletionGrace time.Duration
	// Logger receives debug/warn logs; nil selects a no-op logger.
	Logger *zap.Logger
}

// StartRequest carries everything needed to begin a typing run.
type StartRequest struct {
	SessionID    string
	Message      string
	PersonaID    string
	MoodModifier float64
	Overrides    *persona.Overrides
	Difficulty   schemas.DifficultyLevel
	Settings     schemas.SessionSettings
}

// Scheduler owns the sessionId-keyed state and timer map. It is safe for
// concurrent use; each transition completes its mutation under the lock
// before any timer can observe it.
type Scheduler struct {
	mu       sync.Mutex
	sessions map[string]*session

	builder *simulation.Builder
	sink    schemas.EventSink
	clock   Clock
	grace   time.Duration
	logger  *zap.Logger
}

// New constructs a Scheduler pushing its ordered event stream into sink.
func New(builder *simulation.Builder, sink schemas.EventSink, opts Options) *Scheduler {
	clock := opts.Clock
	if clock == nil {
		clock = NewRealClock()
	}
	grace := opts.CompletionGrace
	if grace <= 0 {
		grace = DefaultCompletionGrace
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		sessions: make(map[string]*session),
		builder:  builder,
		sink:     sink,
		clock:    clock,
		grace:    grace,
		logger:   logger,
	}
}

// Start builds a simulation for the message and begins delivering it. Any
// pre-existing run for the session is superseded: its timers are cancelled
// before the new schedule is installed, so no stale delivery can leak across
// a restart. Zero-duration simulations complete synchronously.
func (s *Scheduler) Start(req StartRequest) SessionState {
	settings := req.Settings
	settings.Normalize()

	var sim simulation.Simulation
	if !settings.Enabled || settings.AccessibilityMode {
		sim = simulation.InstantSimulation(req.Message)
	} else {
		sim = s.builder.Build(req.Message, req.PersonaID, req.MoodModifier, req.Overrides)
		if !settings.ChunkingEnabled {
			sim = simulation.Collapse(sim)
		}
		sim = simulation.AdjustForDifficulty(sim, req.Difficulty)
		sim = simulation.ApplySettings(sim, settings.SpeedMultiplier, settings.PauseMultiplier)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var gen uint64
	if prev, ok := s.sessions[req.SessionID]; ok {
		// Supersede silently: the old run's timers die here and its
		// generation can never emit again.
		prev.cancelTimers()
		gen = prev.gen + 1
		delete(s.sessions, req.SessionID)
	}

	now := s.clock.Now()
	sess := &session{
		state: SessionState{
			SessionID:      req.SessionID,
			Status:         StatusRunning,
			IsTyping:       true,
			CurrentMessage: req.Message,
			StartTime:      now,
			Difficulty:     req.Difficulty,
			Settings:       settings,
			Simulation:     sim,
		},
		gen:       gen,
		items:     buildItems(sim),
		resumedAt: now,
	}
	s.sessions[req.SessionID] = sess

	s.logger.Debug("typing run started",
		zap.String("session_id", req.SessionID),
		zap.String("persona", req.PersonaID),
		zap.Int("chunks", len(sim.Chunks)),
		zap.Float64("total_ms", sim.TotalDurationMs))

	s.emit(sess, schemas.TypingEvent{Type: schemas.EventTypingStart})
	s.deliverDue(sess)
	return sess.state
}

// Pause suspends a running session, cancelling its pending timers. Returns
// false unless the session exists and is running.
func (s *Scheduler) Pause(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.state.Status != StatusRunning {
		return false
	}
	sess.cancelTimers()
	sess.elapsed += s.clock.Now().Sub(sess.resumedAt)
	sess.state.Status = StatusPaused
	sess.state.IsPaused = true
	sess.state.IsTyping = false
	s.emit(sess, schemas.TypingEvent{Type: schemas.EventTypingPause})
	return true
}

// Resume re-arms the remaining schedule of a paused session. Chunks already
// delivered never re-fire. Returns false unless the session is paused.
func (s *Scheduler) Resume(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.state.Status != StatusPaused {
		return false
	}
	sess.state.Status = StatusRunning
	sess.state.IsPaused = false
	sess.state.IsTyping = true
	sess.resumedAt = s.clock.Now()
	s.emit(sess, schemas.TypingEvent{Type: schemas.EventTypingResume})
	s.arm(sess)
	return true
}

// Interrupt aborts a running session, as when the trainee sends a message
// mid-delivery. The state stays queryable until Stop. Returns false unless
// the session is running.
func (s *Scheduler) Interrupt(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.state.Status != StatusRunning {
		return false
	}
	sess.cancelTimers()
	sess.state.Status = StatusInterrupted
	sess.state.WasInterrupted = true
	sess.state.IsTyping = false
	s.emitTerminal(sess, schemas.EventTypingInterrupted)
	return true
}

// Stop removes the session entirely, cancelling outstanding timers. A stop
// event is emitted only if the session was actively mid-run. Returns false
// if no such session exists.
func (s *Scheduler) Stop(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	sess.cancelTimers()
	if sess.state.Status == StatusRunning || sess.state.Status == StatusPaused {
		s.emitTerminal(sess, schemas.EventTypingStop)
	}
	delete(s.sessions, sessionID)
	return true
}

// UpdateSettings applies a partial settings update to the remaining portion
// of an in-flight run: undelivered firings are rescaled by the speed ratio,
// already-delivered chunks are untouched. Returns false for unknown sessions.
func (s *Scheduler) UpdateSettings(sessionID string, patch schemas.SettingsPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	oldSettings := sess.state.Settings
	newSettings := patch.Apply(oldSettings)
	sess.state.Settings = newSettings

	if sess.state.Status != StatusRunning && sess.state.Status != StatusPaused {
		return true
	}

	factor := oldSettings.SpeedMultiplier / newSettings.SpeedMultiplier
	if factor != 1.0 {
		elapsed := sess.elapsedMs(s.clock.Now())
		for i := sess.next; i < len(sess.items); i++ {
			remaining := sess.items[i].atMs - elapsed
			if remaining < 0 {
				remaining = 0
			}
			sess.items[i].atMs = elapsed + remaining*factor
		}
		if len(sess.items) > 0 {
			sess.state.Simulation.TotalDurationMs = sess.items[len(sess.items)-1].atMs
		}
	}

	if sess.state.Status == StatusRunning {
		if sess.timer != nil {
			sess.timer.Stop()
			sess.timer = nil
		}
		s.arm(sess)
	}
	return true
}

// GetState returns a snapshot of the session, or nil if absent.
func (s *Scheduler) GetState(sessionID string) *SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	snapshot := sess.state
	return &snapshot
}

// IsTyping reports whether the session is actively delivering chunks.
func (s *Scheduler) IsTyping(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	return ok && sess.state.IsTyping
}

// ActiveSessions lists the ids with live state, in no particular order.
func (s *Scheduler) ActiveSessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// StopAll tears down every session, as on host shutdown. Mid-run sessions
// emit their stop event.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Stop(id)
	}
}

// arm schedules the timer for the next undelivered item. Callers hold the
// lock and have verified the session is running.
func (s *Scheduler) arm(sess *session) {
	if sess.next >= len(sess.items) {
		return
	}
	delayMs := sess.items[sess.next].atMs - sess.elapsedMs(s.clock.Now())
	if delayMs < 0 {
		delayMs = 0
	}
	sessionID := sess.state.SessionID
	gen := sess.gen
	sess.timer = s.clock.AfterFunc(time.Duration(delayMs*float64(time.Millisecond)), func() {
		s.onTimer(sessionID, gen)
	})
}

// onTimer is the single delivery callback. The generation check discards
// firings that belong to a superseded or removed run.
func (s *Scheduler) onTimer(sessionID string, gen uint64) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("typing delivery panicked; session isolated",
				zap.String("session_id", sessionID), zap.Any("panic", r))
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.gen != gen || sess.state.Status != StatusRunning {
		return
	}
	sess.timer = nil
	s.deliverDue(sess)
}

// deliverDue emits, in order, every item whose time has come, then either
// completes the run or re-arms for the next item. Callers hold the lock.
func (s *Scheduler) deliverDue(sess *session) {
	elapsed := sess.elapsedMs(s.clock.Now())
	for sess.next < len(sess.items) && sess.items[sess.next].atMs <= elapsed {
		item := sess.items[sess.next]
		sess.next++
		if item.chunkIndex < 0 {
			s.complete(sess)
			return
		}
		sess.state.CurrentChunkIndex = item.chunkIndex + 1
		s.emit(sess, schemas.TypingEvent{
			Type:       schemas.EventChunkDelivered,
			Text:       item.text,
			ChunkIndex: item.chunkIndex,
			IsLast:     item.isLast,
		})
	}
	if sess.next < len(sess.items) {
		s.arm(sess)
	}
}

// complete finishes a run that played out naturally and schedules the
// grace-period purge. Callers hold the lock.
func (s *Scheduler) complete(sess *session) {
	sess.state.Status = StatusCompleted
	sess.state.IsTyping = false
	s.emitTerminal(sess, schemas.EventTypingStop)

	sessionID := sess.state.SessionID
	gen := sess.gen
	sess.purgeTimer = s.clock.AfterFunc(s.grace, func() {
		s.purge(sessionID, gen)
	})
}

// purge drops completed session state after the grace period.
func (s *Scheduler) purge(sessionID string, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok && sess.gen == gen {
		delete(s.sessions, sessionID)
	}
}

// emit publishes one event on the session's stream. Emission happens under
// the scheduler lock, which is what makes the per-session ordering strict.
func (s *Scheduler) emit(sess *session, event schemas.TypingEvent) {
	if sess.terminalEmitted {
		return
	}
	event.EventID = uuid.NewString()
	event.SessionID = sess.state.SessionID
	event.Timestamp = s.clock.Now()
	s.sink.Publish(event)
}

// emitTerminal publishes the session's final event and seals the stream.
func (s *Scheduler) emitTerminal(sess *session, typ schemas.EventType) {
	s.emit(sess, schemas.TypingEvent{Type: typ})
	sess.terminalEmitted = true
}
