// Package rotation decides which bank items a case presents: deterministic
// sampling of administrator-generated active sets and the presentation-time
// item selection rules.
package rotation

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/vitalpath/scoring-service/internal/models"
	"github.com/vitalpath/scoring-service/internal/scoring"
)

// NewSeed draws 8 bytes from crypto/rand, hex encoded. The seed is recorded
// on the active set so a generation can be reproduced exactly.
func NewSeed() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to draw rotation seed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// SampleQIDs draws a sample without replacement from the bank: the bank ids
// in deterministic shuffle order keyed on (seed, caseID), truncated to
// targetSize. A bank at or below targetSize yields a full shuffle.
func SampleQIDs(caseID, seed string, bankIDs []string, targetSize int) []string {
	shuffled := scoring.ShuffleDeterministic(bankIDs, seed+"|"+caseID)
	if targetSize > 0 && len(shuffled) > targetSize {
		shuffled = shuffled[:targetSize]
	}
	return shuffled
}

// Generation builds one new active-set generation for a case.
func Generation(caseID, seed, generatedBy string, bankIDs []string, targetSize int, now time.Time) models.ActiveSetGeneration {
	return models.ActiveSetGeneration{
		QIDs:        SampleQIDs(caseID, seed, bankIDs, targetSize),
		Seed:        seed,
		GeneratedAt: now,
		GeneratedBy: generatedBy,
	}
}

// PresentedItems resolves the item ids an examinee sees. With rotation
// enabled and an active set present, the set's qids are truncated or padded
// (from the bank's natural order) to count; otherwise the bank's natural
// order truncated to count.
func PresentedItems(qids, bankIDs []string, count int, rotationEnabled bool) []string {
	if count <= 0 || count > len(bankIDs) {
		count = len(bankIDs)
	}

	if !rotationEnabled || len(qids) == 0 {
		return append([]string(nil), bankIDs[:count]...)
	}

	presented := append([]string(nil), qids...)
	if len(presented) > count {
		return presented[:count]
	}

	// Pad from the bank's natural order, skipping ids already chosen.
	chosen := make(map[string]struct{}, len(presented))
	for _, qid := range presented {
		chosen[qid] = struct{}{}
	}
	for _, qid := range bankIDs {
		if len(presented) >= count {
			break
		}
		if _, ok := chosen[qid]; ok {
			continue
		}
		presented = append(presented, qid)
	}
	return presented
}
