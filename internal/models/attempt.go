package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusFinalized  AttemptStatus = "finalized"
)

// Attempt is one examinee's interaction with one case. It is created at
// interaction start, mutated through submission events, and frozen on
// "end practical". Score details are always recomputable from the attempt
// plus the case/item banks.
type Attempt struct {
	ID        string        `json:"id" gorm:"primaryKey;size:64"`
	CaseID    string        `json:"case_id" gorm:"not null;size:64;index" validate:"required"`
	StudentID string        `json:"student_id" gorm:"not null;size:64;index" validate:"required"`
	SessionID string        `json:"session_id" gorm:"size:64"`
	Status    AttemptStatus `json:"status" gorm:"default:in_progress;index"`

	// DomainAnswers holds map[Domain]DomainAnswer.
	DomainAnswers datatypes.JSON `json:"domain_answers" gorm:"type:jsonb"`
	// ItemAnswers holds map[itemID]json.RawMessage; the raw shape depends on
	// the item type and is decoded leniently at grading time.
	ItemAnswers datatypes.JSON `json:"item_answers" gorm:"type:jsonb"`
	// ScoreDetails holds the derived ScoreReport. Never authoritative beyond
	// this attempt; recomputed on finalize.
	ScoreDetails datatypes.JSON `json:"score_details" gorm:"type:jsonb"`

	TotalPoints int `json:"total_points"`
	MaxPoints   int `json:"max_points"`

	StartedAt   time.Time  `json:"started_at"`
	FinalizedAt *time.Time `json:"finalized_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// DomainAnswer is the examinee's submission for one clinical domain.
type DomainAnswer struct {
	Selected []string `json:"selected"`
	FreeText string   `json:"free_text,omitempty"`
}

// ScoreDetail is the output of grading one domain or one item.
// Invariant: 0 <= Points <= Max.
type ScoreDetail struct {
	Points  int  `json:"points"`
	Max     int  `json:"max"`
	Correct bool `json:"correct"`

	// Selection diagnostics, present for domain grades and set-style items.
	CorrectSelections []string `json:"correct_selections,omitempty"`
	WrongSelections   []string `json:"wrong_selections,omitempty"`
	MissedSelections  []string `json:"missed_selections,omitempty"`

	// Gold targets the free text substantially covers. Feedback only; points
	// come from selections.
	FreeTextCovered []string `json:"free_text_covered,omitempty"`

	// Safety gate diagnostics; when capped the final points were clamped to 1.
	SafetyCapped     bool     `json:"safety_capped,omitempty"`
	SafetyViolations []string `json:"safety_violations,omitempty"`
}

// ScoreReport is the persisted derived-score payload of a finalized attempt.
type ScoreReport struct {
	Domains map[Domain]ScoreDetail `json:"domains"`
	Items   map[string]ScoreDetail `json:"items"`
	Points  int                    `json:"points"`
	Max     int                    `json:"max"`
}

// DecodeDomainAnswers decodes the per-domain submissions; empty column yields
// an empty map.
func (a *Attempt) DecodeDomainAnswers() (map[Domain]DomainAnswer, error) {
	answers := make(map[Domain]DomainAnswer)
	if len(a.DomainAnswers) == 0 {
		return answers, nil
	}
	if err := json.Unmarshal(a.DomainAnswers, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// DecodeItemAnswers decodes the raw per-item submissions keyed by item id.
func (a *Attempt) DecodeItemAnswers() (map[string]json.RawMessage, error) {
	answers := make(map[string]json.RawMessage)
	if len(a.ItemAnswers) == 0 {
		return answers, nil
	}
	if err := json.Unmarshal(a.ItemAnswers, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// DecodeScoreReport decodes the persisted score details, nil when the attempt
// has not been graded yet.
func (a *Attempt) DecodeScoreReport() (*ScoreReport, error) {
	if len(a.ScoreDetails) == 0 {
		return nil, nil
	}
	var report ScoreReport
	if err := json.Unmarshal(a.ScoreDetails, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
