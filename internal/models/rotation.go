package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ActiveSet is the administrator-curated, rotation-controlled subset of a
// case's item bank currently presented to examinees. Mutated only by an
// explicit "generate" action; every generation is recorded in History.
type ActiveSet struct {
	CaseID      string    `json:"case_id" gorm:"primaryKey;size:64"`
	Seed        string    `json:"seed" gorm:"not null;size:32"`
	GeneratedAt time.Time `json:"generated_at"`
	GeneratedBy string    `json:"generated_by" gorm:"size:64"`

	// QIDs holds []string, the current item ids.
	QIDs datatypes.JSON `json:"qids" gorm:"type:jsonb;not null"`
	// History holds []ActiveSetGeneration, append-only, oldest first;
	// after N generates it has N entries, the current generation last.
	History datatypes.JSON `json:"history" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ActiveSet) TableName() string {
	return "active_sets"
}

// ActiveSetGeneration is one generation in the history log.
type ActiveSetGeneration struct {
	QIDs        []string  `json:"qids"`
	Seed        string    `json:"seed"`
	GeneratedAt time.Time `json:"generated_at"`
	GeneratedBy string    `json:"generated_by,omitempty"`
}

// DecodeQIDs decodes the current item id list.
func (s *ActiveSet) DecodeQIDs() ([]string, error) {
	if len(s.QIDs) == 0 {
		return nil, nil
	}
	var qids []string
	if err := json.Unmarshal(s.QIDs, &qids); err != nil {
		return nil, err
	}
	return qids, nil
}

// DecodeHistory decodes the generation log, oldest first, current last.
func (s *ActiveSet) DecodeHistory() ([]ActiveSetGeneration, error) {
	if len(s.History) == 0 {
		return nil, nil
	}
	var history []ActiveSetGeneration
	if err := json.Unmarshal(s.History, &history); err != nil {
		return nil, err
	}
	return history, nil
}
