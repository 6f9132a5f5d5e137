package schemas

import (
	"time"
)

// -- Typing Event Schemas --

// EventType identifies one entry in the per-session typing event stream.
type EventType string

const (
	EventTypingStart       EventType = "typing_start"
	EventTypingPause       EventType = "typing_pause"
	EventTypingResume      EventType = "typing_resume"
	EventChunkDelivered    EventType = "chunk_delivered"
	EventTypingInterrupted EventType = "typing_interrupted"
	EventTypingStop        EventType = "typing_stop"
)

// IsTerminal reports whether this event type ends a session's stream.
// No event for a session may follow its terminal event.
func (t EventType) IsTerminal() bool {
	return t == EventTypingStop || t == EventTypingInterrupted
}

// TypingEvent is one element of the ordered, sessionId-tagged stream the
// scheduler produces. It is intended to be forwarded verbatim to a remote UI.
type TypingEvent struct {
	EventID   string    `json:"event_id"`
	SessionID string    `json:"session_id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// Chunk payload, only set for EventChunkDelivered.
	Text       string `json:"text,omitempty"`
	ChunkIndex int    `json:"chunk_index,omitempty"`
	IsLast     bool   `json:"is_last,omitempty"`
}

// EventSink receives the scheduler's event stream. Publish is called
// synchronously while the scheduler performs the transition that produced
// the event, which is what guarantees strict per-session ordering.
// Implementations must be fast and must not call back into the scheduler.
type EventSink interface {
	Publish(event TypingEvent)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(event TypingEvent)

// Publish implements EventSink.
func (f EventSinkFunc) Publish(event TypingEvent) { f(event) }
