package model

import "time"

// EventKind enumerates progress event kinds.
type EventKind string

// Progress event kinds, in the order a session emits them.
const (
	EventStarted        EventKind = "started"
	EventSourceProgress EventKind = "sourceProgress"
	EventCompleted      EventKind = "completed"
	EventFailed         EventKind = "failed"
)

// Event is one progress notification. Delivery is at-least-once, so
// consumers drop repeats by ID.
type Event struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Kind      EventKind `json:"kind"`
	Payload   any       `json:"payload,omitempty"`
	At        time.Time `json:"at"`
}

// Terminal reports whether no further events follow for the session.
func (e Event) Terminal() bool {
	return e.Kind == EventCompleted || e.Kind == EventFailed
}

// StartedPayload accompanies EventStarted.
type StartedPayload struct {
	Tasks    int      `json:"tasks"`
	Sources  []string `json:"sources"`
	Variants []string `json:"variants"`
}

// ProgressPayload accompanies EventSourceProgress.
type ProgressPayload struct {
	Source      string       `json:"source"`
	Location    string       `json:"location"`
	Fetched     int          `json:"fetched"`
	Done        int          `json:"done"`
	Total       int          `json:"total"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// CompletedPayload accompanies EventCompleted.
type CompletedPayload struct {
	Results   int                    `json:"results"`
	Cancelled bool                   `json:"cancelled"`
	Sources   map[string]SourceStats `json:"sources"`
}

// FailedPayload accompanies EventFailed.
type FailedPayload struct {
	Cause string `json:"cause"`
}

// SourceStats summarizes one source over a session. Empty counts tasks that
// returned nothing; Failed counts the subset where every strategy failed.
type SourceStats struct {
	Tasks   int `json:"tasks"`
	Fetched int `json:"fetched"`
	Empty   int `json:"empty"`
	Failed  int `json:"failed"`
}
