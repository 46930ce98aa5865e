package scoring

import (
	"github.com/vitalpath/scoring-service/internal/models"
)

// Session is the explicit grading state for one attempt. It is a value that
// every grading call takes and returns, never ambient process state, so
// concurrent examinees and unit tests need no coordination.
type Session struct {
	AttemptID string
	CaseID    string
	Domains   map[models.Domain]models.ScoreDetail
	Items     map[string]models.ScoreDetail
}

// NewSession starts an empty grading session for one attempt.
func NewSession(attemptID, caseID string) Session {
	return Session{
		AttemptID: attemptID,
		CaseID:    caseID,
		Domains:   make(map[models.Domain]models.ScoreDetail),
		Items:     make(map[string]models.ScoreDetail),
	}
}

// WithDomain returns a copy of the session with one domain grade recorded.
func (s Session) WithDomain(domain models.Domain, detail models.ScoreDetail) Session {
	next := s.clone()
	next.Domains[domain] = detail
	return next
}

// WithItem returns a copy of the session with one item grade recorded.
func (s Session) WithItem(itemID string, detail models.ScoreDetail) Session {
	next := s.clone()
	next.Items[itemID] = detail
	return next
}

// Totals folds the session into attempt-level points and max.
func (s Session) Totals() (points, max int) {
	for _, detail := range s.Domains {
		points += detail.Points
		max += detail.Max
	}
	for _, detail := range s.Items {
		points += detail.Points
		max += detail.Max
	}
	return points, max
}

// Report renders the session as the persistable score payload.
func (s Session) Report() models.ScoreReport {
	points, max := s.Totals()
	report := models.ScoreReport{
		Domains: make(map[models.Domain]models.ScoreDetail, len(s.Domains)),
		Items:   make(map[string]models.ScoreDetail, len(s.Items)),
		Points:  points,
		Max:     max,
	}
	for domain, detail := range s.Domains {
		report.Domains[domain] = detail
	}
	for itemID, detail := range s.Items {
		report.Items[itemID] = detail
	}
	return report
}

func (s Session) clone() Session {
	next := Session{
		AttemptID: s.AttemptID,
		CaseID:    s.CaseID,
		Domains:   make(map[models.Domain]models.ScoreDetail, len(s.Domains)+1),
		Items:     make(map[string]models.ScoreDetail, len(s.Items)+1),
	}
	for domain, detail := range s.Domains {
		next.Domains[domain] = detail
	}
	for itemID, detail := range s.Items {
		next.Items[itemID] = detail
	}
	return next
}
