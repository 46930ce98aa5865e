package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Domain is one of the five clinical-reasoning phases graded per case.
type Domain string

const (
	DomainAssessment   Domain = "assessment"
	DomainPrioritize   Domain = "prioritize"
	DomainIntervention Domain = "intervention"
	DomainReassess     Domain = "reassess"
	DomainSBAR         Domain = "sbar"
)

// AllDomains returns the grading domains in report order (A-E).
func AllDomains() []Domain {
	return []Domain{
		DomainAssessment,
		DomainPrioritize,
		DomainIntervention,
		DomainReassess,
		DomainSBAR,
	}
}

// ClinicalCase is an immutable CaseBank entry: the per-domain gold-standard
// target lists authored offline for one patient scenario.
type ClinicalCase struct {
	ID    string `json:"id" gorm:"primaryKey;size:64"`
	Title string `json:"title" gorm:"size:200" validate:"max=200"`

	// GoldTargets holds map[Domain][]string
	GoldTargets datatypes.JSON `json:"gold_targets" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ClinicalCase) TableName() string {
	return "clinical_cases"
}

// DomainGold decodes the per-domain gold target lists. A missing or empty
// column yields an empty map, not an error.
func (c *ClinicalCase) DomainGold() (map[Domain][]string, error) {
	targets := make(map[Domain][]string)
	if len(c.GoldTargets) == 0 {
		return targets, nil
	}
	if err := json.Unmarshal(c.GoldTargets, &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// GoldFor returns the gold targets for one domain, nil when the domain has
// no authored targets.
func (c *ClinicalCase) GoldFor(domain Domain) []string {
	targets, err := c.DomainGold()
	if err != nil {
		return nil
	}
	return targets[domain]
}
