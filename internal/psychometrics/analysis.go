// Package psychometrics grades the items themselves: difficulty,
// discrimination, and internal-consistency reliability computed over
// accumulated finalized attempts. All functions are pure aggregations and
// never mutate attempt data.
package psychometrics

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	minAttemptsPointBiserial = 5
	minAttemptsTopBottom     = 10
	// extremeGroupFraction is the classic 27% extreme-group share used for
	// the outlier-robust discrimination index.
	extremeGroupFraction = 0.27
)

// Stat is a statistic that may be legitimately not computable. Insufficient
// or degenerate data must stay distinguishable from a true zero, so callers
// never misread "too little data" as "poor item".
type Stat struct {
	Value      float64 `json:"value"`
	Computable bool    `json:"computable"`
	Reason     string  `json:"reason,omitempty"`
}

func computed(v float64) Stat {
	return Stat{Value: v, Computable: true}
}

func notComputable(format string, args ...interface{}) Stat {
	return Stat{Reason: fmt.Sprintf(format, args...)}
}

// AttemptVector is one finalized attempt reduced to dichotomous item scores.
// ItemScores holds only the items the examinee was presented and answered.
type AttemptVector struct {
	AttemptID  string
	StudentID  string
	ItemScores map[string]int
}

// Policy carries the configurable reporting thresholds.
type Policy struct {
	MinAttemptsPerItem   int
	MinItemsIntersection int
}

// ItemSummary is the derived quality report for one item. Recomputed on
// demand, never persisted as ground truth.
type ItemSummary struct {
	ItemID         string `json:"item_id"`
	N              int    `json:"n"`
	PValue         Stat   `json:"p_value"`
	Discrimination Stat   `json:"discrimination_r"`
	TopBottomIndex Stat   `json:"top_bottom_index"`
}

// CaseSummary aggregates the item summaries and the reliability of the item
// intersection common to every attempt.
type CaseSummary struct {
	CaseID      string        `json:"case_id"`
	N           int           `json:"n"`
	CommonItems []string      `json:"common_items"`
	KR20        Stat          `json:"kr20"`
	Items       []ItemSummary `json:"items"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Difficulty is the classical p-value: the mean dichotomous score across
// attempts where the item was answered. Reported only at or above
// minAttempts responses.
func Difficulty(scores []int, minAttempts int) Stat {
	n := len(scores)
	if n == 0 {
		return notComputable("no responses")
	}
	if n < minAttempts {
		return notComputable("%d responses, need %d", n, minAttempts)
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return computed(float64(sum) / float64(n))
}

// PointBiserial correlates an item's 0/1 vector with each examinee's total
// score excluding that item, which avoids self-correlation inflation.
// Degenerate variance on either side is reported, not fabricated.
func PointBiserial(itemScores []int, restTotals []float64) Stat {
	n := len(itemScores)
	if n != len(restTotals) {
		return notComputable("mismatched score vectors")
	}
	if n < minAttemptsPointBiserial {
		return notComputable("%d responses, need %d", n, minAttemptsPointBiserial)
	}

	xs := make([]float64, n)
	for i, s := range itemScores {
		xs[i] = float64(s)
	}
	varX := variance(xs)
	varY := variance(restTotals)
	if varX == 0 {
		return notComputable("no variance in item scores")
	}
	if varY == 0 {
		return notComputable("no variance in rest-of-test totals")
	}

	meanX := mean(xs)
	meanY := mean(restTotals)
	cov := 0.0
	for i := range xs {
		cov += (xs[i] - meanX) * (restTotals[i] - meanY)
	}
	cov /= float64(n)
	return computed(cov / math.Sqrt(varX*varY))
}

// TopBottomIndex is the 27% extreme-group discrimination index: item
// difficulty among the top-scoring group minus the bottom-scoring group,
// ranked by total score. Robust to outliers; needs at least 10 responses.
func TopBottomIndex(itemScores []int, totals []float64) Stat {
	n := len(itemScores)
	if n != len(totals) {
		return notComputable("mismatched score vectors")
	}
	if n < minAttemptsTopBottom {
		return notComputable("%d responses, need %d", n, minAttemptsTopBottom)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return totals[order[a]] > totals[order[b]]
	})

	groupSize := int(math.Ceil(extremeGroupFraction * float64(n)))
	top, bottom := 0.0, 0.0
	for i := 0; i < groupSize; i++ {
		top += float64(itemScores[order[i]])
		bottom += float64(itemScores[order[n-1-i]])
	}
	return computed((top - bottom) / float64(groupSize))
}

// KR20 computes Kuder-Richardson Formula 20 over a dichotomous score matrix:
// one row per attempt, one column per item, every row complete.
//
//	KR20 = (k/(k-1)) * (1 - sum(p*q)/Var(total))
func KR20(matrix [][]int, minItems int) Stat {
	n := len(matrix)
	if n == 0 {
		return notComputable("no attempts")
	}
	k := len(matrix[0])
	if k < minItems {
		return notComputable("%d common items, need %d", k, minItems)
	}
	if k < 2 {
		return notComputable("need at least 2 items")
	}

	totals := make([]float64, n)
	for i, row := range matrix {
		if len(row) != k {
			return notComputable("ragged score matrix")
		}
		for _, s := range row {
			totals[i] += float64(s)
		}
	}
	varTotal := variance(totals)
	if varTotal == 0 {
		return notComputable("no variance in total scores")
	}

	sumPQ := 0.0
	for j := 0; j < k; j++ {
		correct := 0
		for i := 0; i < n; i++ {
			correct += matrix[i][j]
		}
		p := float64(correct) / float64(n)
		sumPQ += p * (1 - p)
	}

	kf := float64(k)
	return computed((kf / (kf - 1)) * (1 - sumPQ/varTotal))
}

// AnalyzeCase runs the full retrospective item-quality report for one case
// over its finalized attempts. Different examinees may have seen different
// rotations, so reliability uses the intersection of items common to every
// attempt, while per-item statistics use whichever attempts answered the item.
func AnalyzeCase(caseID string, attempts []AttemptVector, policy Policy) CaseSummary {
	summary := CaseSummary{
		CaseID:      caseID,
		N:           len(attempts),
		GeneratedAt: time.Now().UTC(),
	}
	if len(attempts) == 0 {
		summary.KR20 = notComputable("no finalized attempts")
		return summary
	}

	itemIDs := collectItemIDs(attempts)
	totals := make(map[string]float64, len(attempts))
	for _, attempt := range attempts {
		t := 0.0
		for _, s := range attempt.ItemScores {
			t += float64(s)
		}
		totals[attempt.AttemptID] = t
	}

	for _, itemID := range itemIDs {
		var scores []int
		var restTotals []float64
		var fullTotals []float64
		for _, attempt := range attempts {
			score, answered := attempt.ItemScores[itemID]
			if !answered {
				continue
			}
			scores = append(scores, score)
			restTotals = append(restTotals, totals[attempt.AttemptID]-float64(score))
			fullTotals = append(fullTotals, totals[attempt.AttemptID])
		}
		summary.Items = append(summary.Items, ItemSummary{
			ItemID:         itemID,
			N:              len(scores),
			PValue:         Difficulty(scores, policy.MinAttemptsPerItem),
			Discrimination: PointBiserial(scores, restTotals),
			TopBottomIndex: TopBottomIndex(scores, fullTotals),
		})
	}

	summary.CommonItems = commonItems(attempts)
	matrix := make([][]int, len(attempts))
	for i, attempt := range attempts {
		row := make([]int, len(summary.CommonItems))
		for j, itemID := range summary.CommonItems {
			row[j] = attempt.ItemScores[itemID]
		}
		matrix[i] = row
	}
	summary.KR20 = KR20(matrix, policy.MinItemsIntersection)

	return summary
}

// collectItemIDs returns every item id answered by at least one attempt, in
// stable sorted order.
func collectItemIDs(attempts []AttemptVector) []string {
	seen := make(map[string]struct{})
	for _, attempt := range attempts {
		for itemID := range attempt.ItemScores {
			seen[itemID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for itemID := range seen {
		ids = append(ids, itemID)
	}
	sort.Strings(ids)
	return ids
}

// commonItems returns the sorted intersection of items answered by every
// attempt in the aggregation.
func commonItems(attempts []AttemptVector) []string {
	if len(attempts) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, attempt := range attempts {
		for itemID := range attempt.ItemScores {
			counts[itemID]++
		}
	}
	var common []string
	for itemID, count := range counts {
		if count == len(attempts) {
			common = append(common, itemID)
		}
	}
	sort.Strings(common)
	return common
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance is the population variance, matching the KR-20 convention.
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}
