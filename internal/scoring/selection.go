package scoring

import (
	"regexp"
	"strings"

	"github.com/vitalpath/scoring-service/internal/models"
)

// safetyCapPoints is the hard ceiling applied to a domain score when any
// unsafe free-text pattern is detected, regardless of how many gold options
// were otherwise correct.
const safetyCapPoints = 1

// freeTextCoverageThreshold is the token-overlap ratio at which a free-text
// answer counts as covering a gold target, for feedback purposes.
const freeTextCoverageThreshold = 0.6

// SafetyViolation records one unsafe-action pattern match found in free text.
type SafetyViolation struct {
	Rule  string `json:"rule"`
	Match string `json:"match"`
}

type safetyPattern struct {
	rule    string
	pattern *regexp.Regexp
}

// unsafePatterns is the static table of unsafe clinical actions. It is
// configuration, not runtime state; the scan is case-insensitive.
var unsafePatterns = []safetyPattern{
	{"unauthorized dose increase", regexp.MustCompile(`(?i)\b(double|doubling|increase[ds]?)\b.{0,30}\bdose\b`)},
	{"IV push potassium", regexp.MustCompile(`(?i)\bpotassium\b.{0,40}\b(iv|intravenous)\s*push\b|\b(iv|intravenous)\s*push\b.{0,40}\bpotassium\b`)},
	{"abrupt oxygen discontinuation", regexp.MustCompile(`(?i)\b(stop|discontinue|remove|turn(ed)?\s+off)\b.{0,30}\b(oxygen|o2)\b`)},
	{"restraint without order", regexp.MustCompile(`(?i)\brestrain(t|ts|ed)?\b.{0,40}\bwithout\b.{0,20}\border\b`)},
	{"medication without verification", regexp.MustCompile(`(?i)\b(give|administer(ed)?)\b.{0,50}\bwithout\b.{0,30}\b(verify(ing)?|checking|order|allerg)`)},
}

// ScoreSelection returns |selected ∩ gold| clamped to [0, maxPoints].
// maxPoints <= 0 defaults to len(gold). Wrong selections never subtract.
func ScoreSelection(selected, gold []string, maxPoints int) int {
	if maxPoints <= 0 {
		maxPoints = len(gold)
	}
	goldSet := normalizedSet(gold)

	points := 0
	seen := make(map[string]struct{}, len(selected))
	for _, choice := range selected {
		key := normalizeChoice(choice)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := goldSet[key]; ok {
			points++
		}
	}
	if points > maxPoints {
		points = maxPoints
	}
	return points
}

// SelectionDiff splits a submission into correct, wrong, and missed
// selections for feedback. Comparison is whitespace- and case-insensitive,
// but the returned strings preserve the original casing.
func SelectionDiff(selected, gold []string) (correct, wrong, missed []string) {
	goldSet := normalizedSet(gold)
	selectedSet := make(map[string]struct{}, len(selected))

	for _, choice := range selected {
		key := normalizeChoice(choice)
		if _, dup := selectedSet[key]; dup {
			continue
		}
		selectedSet[key] = struct{}{}
		if _, ok := goldSet[key]; ok {
			correct = append(correct, choice)
		} else {
			wrong = append(wrong, choice)
		}
	}
	for _, target := range gold {
		if _, ok := selectedSet[normalizeChoice(target)]; !ok {
			missed = append(missed, target)
		}
	}
	return correct, wrong, missed
}

// ScanSafety runs every free-text field against the unsafe-action table and
// returns all matches.
func ScanSafety(freeTexts []string) []SafetyViolation {
	var violations []SafetyViolation
	for _, text := range freeTexts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		for _, sp := range unsafePatterns {
			if match := sp.pattern.FindString(text); match != "" {
				violations = append(violations, SafetyViolation{Rule: sp.rule, Match: match})
			}
		}
	}
	return violations
}

// ApplySafetyCap clamps a domain score after normal scoring: any violation
// caps the final score at 1 point, independent of the raw score.
func ApplySafetyCap(points int, violations []SafetyViolation) int {
	if len(violations) == 0 {
		return points
	}
	if points > safetyCapPoints {
		return safetyCapPoints
	}
	return points
}

// ScoreDomain grades one domain submission end to end: selection scoring,
// diff diagnostics, then the safety gate over the associated free text.
func ScoreDomain(answer models.DomainAnswer, gold []string) models.ScoreDetail {
	maxPoints := RequiredCount(gold)
	raw := ScoreSelection(answer.Selected, gold, maxPoints)
	correct, wrong, missed := SelectionDiff(answer.Selected, gold)

	violations := ScanSafety([]string{answer.FreeText})
	points := ApplySafetyCap(raw, violations)

	detail := models.ScoreDetail{
		Points:            points,
		Max:               maxPoints,
		Correct:           points == maxPoints && len(wrong) == 0,
		CorrectSelections: correct,
		WrongSelections:   wrong,
		MissedSelections:  missed,
		FreeTextCovered:   coveredTargets(answer.FreeText, gold),
	}
	if len(violations) > 0 {
		detail.SafetyCapped = true
		for _, v := range violations {
			detail.SafetyViolations = append(detail.SafetyViolations, v.Rule)
		}
		detail.Correct = false
	}
	return detail
}

// coveredTargets reports which gold targets the free text substantially
// covers by token overlap. Coverage never awards points.
func coveredTargets(freeText string, gold []string) []string {
	if strings.TrimSpace(freeText) == "" {
		return nil
	}
	var covered []string
	for _, target := range gold {
		if OverlapRatio(freeText, target) >= freeTextCoverageThreshold {
			covered = append(covered, target)
		}
	}
	return covered
}

func normalizedSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[normalizeChoice(v)] = struct{}{}
	}
	return set
}

func normalizeChoice(v string) string {
	return strings.ToLower(strings.Join(strings.Fields(v), " "))
}
