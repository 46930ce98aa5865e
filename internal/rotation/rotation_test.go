package rotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var bankIDs = []string{"q1", "q2", "q3", "q4", "q5", "q6"}

func TestNewSeed(t *testing.T) {
	first, err := NewSeed()
	assert.NoError(t, err)
	assert.Len(t, first, 16)

	second, err := NewSeed()
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestSampleQIDs(t *testing.T) {
	t.Run("DeterministicForSeedAndCase", func(t *testing.T) {
		first := SampleQIDs("case-1", "aabbccdd00112233", bankIDs, 4)
		second := SampleQIDs("case-1", "aabbccdd00112233", bankIDs, 4)

		assert.Equal(t, first, second)
		assert.Len(t, first, 4)
	})

	t.Run("SampleIsWithoutReplacement", func(t *testing.T) {
		sample := SampleQIDs("case-1", "aabbccdd00112233", bankIDs, 4)

		seen := make(map[string]struct{})
		for _, qid := range sample {
			assert.Contains(t, bankIDs, qid)
			assert.NotContains(t, seen, qid)
			seen[qid] = struct{}{}
		}
	})

	t.Run("DifferentSeedsDiverge", func(t *testing.T) {
		first := SampleQIDs("case-1", "aabbccdd00112233", bankIDs, 6)
		second := SampleQIDs("case-1", "ffeeddcc99887766", bankIDs, 6)

		assert.ElementsMatch(t, first, second)
		assert.NotEqual(t, first, second)
	})

	t.Run("SmallBankYieldsFullShuffle", func(t *testing.T) {
		sample := SampleQIDs("case-1", "aabbccdd00112233", bankIDs, 20)

		assert.Len(t, sample, len(bankIDs))
		assert.ElementsMatch(t, bankIDs, sample)
	})
}

func TestGeneration(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	generation := Generation("case-1", "aabbccdd00112233", "admin-7", bankIDs, 4, now)

	assert.Len(t, generation.QIDs, 4)
	assert.Equal(t, "aabbccdd00112233", generation.Seed)
	assert.Equal(t, "admin-7", generation.GeneratedBy)
	assert.Equal(t, now, generation.GeneratedAt)
	assert.Equal(t, SampleQIDs("case-1", "aabbccdd00112233", bankIDs, 4), generation.QIDs)
}

func TestPresentedItems(t *testing.T) {
	t.Run("RotationDisabledUsesBankOrder", func(t *testing.T) {
		presented := PresentedItems([]string{"q5", "q6"}, bankIDs, 3, false)

		assert.Equal(t, []string{"q1", "q2", "q3"}, presented)
	})

	t.Run("NoActiveSetFallsBackToBankOrder", func(t *testing.T) {
		presented := PresentedItems(nil, bankIDs, 3, true)

		assert.Equal(t, []string{"q1", "q2", "q3"}, presented)
	})

	t.Run("ActiveSetTruncatedToCount", func(t *testing.T) {
		presented := PresentedItems([]string{"q6", "q2", "q4", "q1"}, bankIDs, 3, true)

		assert.Equal(t, []string{"q6", "q2", "q4"}, presented)
	})

	t.Run("ShortActiveSetPaddedFromBankOrder", func(t *testing.T) {
		presented := PresentedItems([]string{"q6", "q2"}, bankIDs, 4, true)

		assert.Equal(t, []string{"q6", "q2", "q1", "q3"}, presented)
	})

	t.Run("CountAboveBankSizeClampsToBank", func(t *testing.T) {
		presented := PresentedItems(nil, bankIDs, 50, true)

		assert.Equal(t, bankIDs, presented)
	})

	t.Run("ZeroCountMeansWholeBank", func(t *testing.T) {
		presented := PresentedItems(nil, bankIDs, 0, false)

		assert.Equal(t, bankIDs, presented)
	})
}
