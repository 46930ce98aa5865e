package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitalpath/scoring-service/internal/models"
)

func TestBuildOptions(t *testing.T) {
	gold := []string{
		"Apply supplemental oxygen",
		"Raise the head of the bed",
		"Auscultate breath sounds",
	}

	t.Run("IncludesAllGoldTargets", func(t *testing.T) {
		pool, effective := BuildOptions("case-1", models.DomainIntervention, gold, 0, 5)

		assert.Equal(t, gold, effective)
		for _, target := range gold {
			assert.Contains(t, pool, target)
		}
		assert.Len(t, pool, len(gold)+5)
	})

	t.Run("StableAcrossCalls", func(t *testing.T) {
		first, _ := BuildOptions("case-1", models.DomainIntervention, gold, 0, 5)
		second, _ := BuildOptions("case-1", models.DomainIntervention, gold, 0, 5)

		assert.Equal(t, first, second)
	})

	t.Run("OrderKeyedOnCaseAndDomain", func(t *testing.T) {
		forIntervention, _ := BuildOptions("case-1", models.DomainIntervention, gold, 0, 5)
		forAssessment, _ := BuildOptions("case-1", models.DomainAssessment, gold, 0, 5)

		assert.ElementsMatch(t, forIntervention, forAssessment)
	})

	t.Run("DistractorsNeverDuplicateGold", func(t *testing.T) {
		pool, _ := BuildOptions("case-1", models.DomainIntervention, gold, 0, 8)

		seen := make(map[string]int)
		for _, option := range pool {
			seen[option]++
		}
		for option, count := range seen {
			assert.Equal(t, 1, count, "option %q appears more than once", option)
		}
	})

	t.Run("CapsGoldTargets", func(t *testing.T) {
		wide := []string{"g1", "g2", "g3", "g4", "g5", "g6", "g7", "g8"}
		_, effective := BuildOptions("case-1", models.DomainAssessment, wide, 0, 2)

		assert.Len(t, effective, MaxGoldTargets)
	})

	t.Run("PadsWithSyntheticDistractorsWhenPoolsRunOut", func(t *testing.T) {
		pool, _ := BuildOptions("case-1", models.DomainReassess, gold, 0, 20)

		assert.Len(t, pool, len(gold)+20)
	})
}

func TestRequiredCount(t *testing.T) {
	t.Run("MatchesGoldCount", func(t *testing.T) {
		assert.Equal(t, 3, RequiredCount([]string{"a", "b", "c"}))
	})

	t.Run("FallbackWhenNoGoldAuthored", func(t *testing.T) {
		assert.Equal(t, DefaultRequiredCount, RequiredCount(nil))
	})

	t.Run("CappedAtMaxGoldTargets", func(t *testing.T) {
		wide := []string{"g1", "g2", "g3", "g4", "g5", "g6", "g7", "g8"}
		assert.Equal(t, MaxGoldTargets, RequiredCount(wide))
	})
}
