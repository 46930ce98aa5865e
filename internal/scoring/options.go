package scoring

import (
	"fmt"
	"strings"

	"github.com/vitalpath/scoring-service/internal/models"
)

const (
	// MaxGoldTargets caps the required selection count per domain even when a
	// case authors more gold targets.
	MaxGoldTargets = 6
	// DefaultRequiredCount is the fallback selection count when a case has no
	// authored gold targets for a domain. This papers over a content gap; see
	// DESIGN.md before relying on it.
	DefaultRequiredCount = 4
)

type clinicalSystem string

const (
	systemCardiovascular clinicalSystem = "cardiovascular"
	systemRespiratory    clinicalSystem = "respiratory"
	systemNeurological   clinicalSystem = "neurological"
	systemGeneric        clinicalSystem = "generic"
)

var systemKeywords = map[clinicalSystem][]string{
	systemCardiovascular: {"cardiac", "chest pain", "ecg", "troponin", "blood pressure", "heart", "rhythm", "perfusion"},
	systemRespiratory:    {"oxygen", "airway", "breath", "respiratory", "sats", "spo2", "nebulizer", "ventilation"},
	systemNeurological:   {"neuro", "consciousness", "pupil", "stroke", "seizure", "orientation", "glasgow"},
}

var systemDistractors = map[clinicalSystem][]string{
	systemCardiovascular: {
		"Schedule a routine dietary consult",
		"Obtain a bladder scan",
		"Apply sequential compression devices",
		"Offer a warm blanket for comfort",
		"Request a physical therapy evaluation",
	},
	systemRespiratory: {
		"Order a routine urinalysis",
		"Ambulate the patient in the hallway",
		"Provide a high-protein snack",
		"Schedule discharge teaching for tomorrow",
		"Apply a cold compress to the forehead",
	},
	systemNeurological: {
		"Encourage increased oral fluid intake",
		"Document skin turgor findings",
		"Reposition for comfort and dim the lights",
		"Order a mechanical soft diet",
		"Schedule a social work consult",
	},
}

var genericDistractors = []string{
	"Update the whiteboard with the care team names",
	"Arrange the bedside table and call light",
	"File routine paperwork in the chart",
	"Restock bedside supplies",
	"Review tomorrow's staffing assignment",
	"Offer the patient a magazine",
	"Check the expiration date on saline flushes",
	"Tidy the medication room",
}

// inferSystem classifies the gold targets into a clinical system by keyword
// so distractors come from the same body system as the scenario.
func inferSystem(gold []string) clinicalSystem {
	joined := strings.ToLower(strings.Join(gold, " "))
	best := systemGeneric
	bestHits := 0
	for _, system := range []clinicalSystem{systemCardiovascular, systemRespiratory, systemNeurological} {
		hits := 0
		for _, keyword := range systemKeywords[system] {
			if strings.Contains(joined, keyword) {
				hits++
			}
		}
		if hits > bestHits {
			best = system
			bestHits = hits
		}
	}
	return best
}

// BuildOptions assembles the selectable option pool for one domain of one
// case: the effective gold targets plus plausible distractors, in a base
// order that is stable across reloads because it is keyed only on
// (caseID, domain). The second return value is the effective gold list whose
// length is the required selection count for the domain.
func BuildOptions(caseID string, domain models.Domain, gold []string, totalSize, distractorCount int) ([]string, []string) {
	effectiveGold := gold
	if len(effectiveGold) > MaxGoldTargets {
		effectiveGold = effectiveGold[:MaxGoldTargets]
	}

	goldSet := make(map[string]struct{}, len(effectiveGold))
	for _, target := range effectiveGold {
		goldSet[strings.ToLower(strings.TrimSpace(target))] = struct{}{}
	}

	system := inferSystem(effectiveGold)
	var distractors []string
	appendPool := func(pool []string) {
		for _, candidate := range pool {
			if len(distractors) >= distractorCount {
				return
			}
			if _, isGold := goldSet[strings.ToLower(strings.TrimSpace(candidate))]; isGold {
				continue
			}
			distractors = append(distractors, candidate)
		}
	}
	appendPool(systemDistractors[system])
	appendPool(genericDistractors)
	for i := 1; len(distractors) < distractorCount; i++ {
		distractors = append(distractors, fmt.Sprintf("Non-priority routine action %d", i))
	}

	pool := append(append([]string(nil), effectiveGold...), distractors...)
	if totalSize > 0 && len(pool) > totalSize {
		pool = pool[:totalSize]
	}

	seed := fmt.Sprintf("%s|%s|options", caseID, domain)
	return ShuffleDeterministic(pool, seed), effectiveGold
}

// RequiredCount is the number of selections a domain demands: the effective
// gold count, or the flagged fallback when the case has no authored targets.
func RequiredCount(gold []string) int {
	if len(gold) == 0 {
		return DefaultRequiredCount
	}
	if len(gold) > MaxGoldTargets {
		return MaxGoldTargets
	}
	return len(gold)
}
