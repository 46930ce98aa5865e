package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the scoring lifecycle events downstream consumers
// (reporting, coaching, audit) subscribe to.
type EventType string

const (
	// Attempt events
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptFinalized EventType = "attempt.finalized"

	// Rotation events
	EventActiveSetGenerated EventType = "rotation.active_set_generated"

	// Psychometrics events
	EventCaseAnalyzed EventType = "psychometrics.case_analyzed"
)

// ScoringEvent is the base envelope for all published events.
type ScoringEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewScoringEvent wraps a payload in the standard envelope.
func NewScoringEvent(eventType EventType, data interface{}) *ScoringEvent {
	return &ScoringEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    "scoring-service",
		Version:   "1.0",
		Data:      data,
	}
}

// Attempt event payloads

type AttemptStartedEvent struct {
	AttemptID string    `json:"attempt_id"`
	CaseID    string    `json:"case_id"`
	StudentID string    `json:"student_id"`
	StartedAt time.Time `json:"started_at"`
}

type AttemptFinalizedEvent struct {
	AttemptID   string    `json:"attempt_id"`
	CaseID      string    `json:"case_id"`
	StudentID   string    `json:"student_id"`
	TotalPoints int       `json:"total_points"`
	MaxPoints   int       `json:"max_points"`
	FinalizedAt time.Time `json:"finalized_at"`
}

// Rotation event payloads

type ActiveSetGeneratedEvent struct {
	CaseID      string    `json:"case_id"`
	Seed        string    `json:"seed"`
	ItemCount   int       `json:"item_count"`
	Generation  int       `json:"generation"` // 1-based count including this one
	GeneratedBy string    `json:"generated_by"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Psychometrics event payloads

type CaseAnalyzedEvent struct {
	CaseID     string    `json:"case_id"`
	Attempts   int       `json:"attempts"`
	ItemCount  int       `json:"item_count"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}
