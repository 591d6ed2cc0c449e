// Package session holds the search session record and its state machine.
package session

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobscout/internal/domain/model"
)

// Status is the lifecycle state of a session.
type Status string

// Session states. Completed and failed are terminal.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// transitions lists the states reachable from each state. Running to running
// is the per-task progress step.
var transitions = map[Status][]Status{
	StatusPending: {StatusRunning},
	StatusRunning: {StatusRunning, StatusCompleted, StatusFailed},
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Progress counts finished tasks.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Session is one search request and everything it produced. It is not safe
// for concurrent use; owners serialize access and hand out clones.
type Session struct {
	ID          string                       `json:"id"`
	Status      Status                       `json:"status"`
	Params      model.Parameters             `json:"parameters"`
	CreatedAt   time.Time                    `json:"created_at"`
	StartedAt   *time.Time                   `json:"started_at,omitempty"`
	FinishedAt  *time.Time                   `json:"finished_at,omitempty"`
	Progress    Progress                     `json:"progress"`
	Results     []model.ScoredPosting        `json:"results"`
	Sources     map[string]model.SourceStats `json:"sources"`
	Diagnostics []model.Diagnostic           `json:"diagnostics,omitempty"`
	Cause       string                       `json:"cause,omitempty"`
	Cancelled   bool                         `json:"cancelled"`
}

// New creates a pending session with a random ID.
func New(params model.Parameters, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Params:    params,
		CreatedAt: now,
		Results:   []model.ScoredPosting{},
		Sources:   map[string]model.SourceStats{},
	}
}

func (s *Session) moveTo(to Status) error {
	if !slices.Contains(transitions[s.Status], to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, to)
	}
	s.Status = to
	return nil
}

// Start moves a pending session to running.
func (s *Session) Start(now time.Time) error {
	if err := s.moveTo(StatusRunning); err != nil {
		return err
	}
	s.StartedAt = &now
	return nil
}

// Plan records how many tasks were scheduled.
func (s *Session) Plan(total int) error {
	if err := s.moveTo(StatusRunning); err != nil {
		return err
	}
	s.Progress.Total = total
	return nil
}

// RecordTask folds one finished task into the per-source counts.
func (s *Session) RecordTask(source string, fetched int, diags []model.Diagnostic) error {
	if err := s.moveTo(StatusRunning); err != nil {
		return err
	}
	st := s.Sources[source]
	st.Tasks++
	st.Fetched += fetched
	if fetched == 0 {
		st.Empty++
		if len(diags) > 0 {
			st.Failed++
		}
	}
	s.Sources[source] = st
	s.Diagnostics = append(s.Diagnostics, diags...)
	s.Progress.Done++
	return nil
}

// AddDiagnostic records a diagnostic not tied to a task.
func (s *Session) AddDiagnostic(d model.Diagnostic) {
	s.Diagnostics = append(s.Diagnostics, d)
}

// Complete freezes results. cancelled marks a run cut short by the caller or
// by the session deadline.
func (s *Session) Complete(results []model.ScoredPosting, cancelled bool, now time.Time) error {
	if err := s.moveTo(StatusCompleted); err != nil {
		return err
	}
	if results == nil {
		results = []model.ScoredPosting{}
	}
	s.Results = results
	s.Cancelled = cancelled
	s.FinishedAt = &now
	return nil
}

// Fail ends the session without results.
func (s *Session) Fail(cause string, now time.Time) error {
	if err := s.moveTo(StatusFailed); err != nil {
		return err
	}
	s.Cause = cause
	s.Results = []model.ScoredPosting{}
	s.FinishedAt = &now
	return nil
}

// Clone returns a deep enough copy for readers: slices and maps are not
// shared, postings themselves are immutable.
func (s *Session) Clone() *Session {
	c := *s
	c.Results = slices.Clone(s.Results)
	c.Diagnostics = slices.Clone(s.Diagnostics)
	c.Sources = maps.Clone(s.Sources)
	if s.StartedAt != nil {
		t := *s.StartedAt
		c.StartedAt = &t
	}
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}
